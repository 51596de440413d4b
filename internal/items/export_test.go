package items

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

func TestService_ExportCSV(t *testing.T) {
	t.Run("UTF-8はBOM付き", func(t *testing.T) {
		svc, mock, _, db := setupService(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY i.scanned_at DESC")).
			WillReturnRows(itemRow(7))

		data, filename, err := svc.ExportCSV(context.Background(), "all", "", "")
		require.NoError(t, err)

		assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "BOMで始まること")
		assert.Contains(t, string(data), "バーコード")
		assert.Contains(t, string(data), "BC-001")
		assert.Equal(t, "barcode_export_20250610_120000.csv", filename)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sjis指定でcp932に変換される", func(t *testing.T) {
		svc, mock, _, db := setupService(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY i.scanned_at DESC")).
			WillReturnRows(itemRow(7))

		data, _, err := svc.ExportCSV(context.Background(), "all", "", "sjis")
		require.NoError(t, err)

		assert.False(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "sjisにBOMは付けない")
		assert.NotContains(t, string(data), "バーコード", "UTF-8のままではいけない")

		decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
		require.NoError(t, err)
		assert.Contains(t, string(decoded), "バーコード")
	})
}

func TestService_ExportXLSX(t *testing.T) {
	svc, mock, _, db := setupService(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY i.scanned_at DESC")).
		WillReturnRows(itemRow(7))

	data, filename, err := svc.ExportXLSX(context.Background(), "all", "")
	require.NoError(t, err)

	// xlsx は zip 形式
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
	assert.Equal(t, "barcode_export_20250610_120000.xlsx", filename)
	assert.NoError(t, mock.ExpectationsWereMet())
}
