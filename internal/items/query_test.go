package items

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHistoryWhere(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	todayStart := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	yesterdayStart := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	t.Run("all", func(t *testing.T) {
		where, args := buildHistoryWhere("all", "", now)
		assert.Equal(t, ` WHERE i.deleted_at IS NULL`, where)
		assert.Empty(t, args)
	})

	t.Run("未知のフィルタは追加条件なし", func(t *testing.T) {
		where, args := buildHistoryWhere("nonsense", "", now)
		assert.Equal(t, ` WHERE i.deleted_at IS NULL`, where)
		assert.Empty(t, args)
	})

	t.Run("unreturnedとincompleteは同じ条件", func(t *testing.T) {
		w1, _ := buildHistoryWhere("unreturned", "", now)
		w2, _ := buildHistoryWhere("incomplete", "", now)
		assert.Equal(t, w1, w2)
		assert.Contains(t, w1, "i.completed = FALSE")
	})

	t.Run("overdue", func(t *testing.T) {
		where, args := buildHistoryWhere("overdue", "", now)
		assert.Contains(t, where, "i.completed = FALSE")
		assert.Contains(t, where, "i.expected_return_date < ?")
		require.Len(t, args, 1)
		assert.Equal(t, now, args[0])
	})

	t.Run("today", func(t *testing.T) {
		where, args := buildHistoryWhere("today", "", now)
		assert.Contains(t, where, "i.scanned_at >= ?")
		require.Len(t, args, 1)
		assert.Equal(t, todayStart, args[0])
	})

	t.Run("yesterday", func(t *testing.T) {
		where, args := buildHistoryWhere("yesterday", "", now)
		assert.Contains(t, where, "i.scanned_at >= ? AND i.scanned_at < ?")
		require.Len(t, args, 2)
		assert.Equal(t, yesterdayStart, args[0])
		assert.Equal(t, todayStart, args[1])
	})

	t.Run("yesterday_incomplete", func(t *testing.T) {
		where, args := buildHistoryWhere("yesterday_incomplete", "", now)
		assert.Contains(t, where, "i.completed = FALSE")
		require.Len(t, args, 2)
	})

	t.Run("検索語は3カラムを部分一致", func(t *testing.T) {
		where, args := buildHistoryWhere("all", "ABC", now)
		assert.Contains(t, where, "i.barcode LIKE ? OR i.patient_id LIKE ? OR i.notes LIKE ?")
		require.Len(t, args, 3)
		for _, a := range args {
			assert.Equal(t, "%ABC%", a)
		}
	})

	t.Run("フィルタと検索の併用", func(t *testing.T) {
		where, args := buildHistoryWhere("overdue", "X", now)
		assert.Contains(t, where, "i.expected_return_date < ?")
		assert.Contains(t, where, "i.barcode LIKE ?")
		assert.Len(t, args, 4)
	})
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, ` ORDER BY i.scanned_at DESC`, orderClause("newest"))
	assert.Equal(t, ` ORDER BY i.scanned_at DESC`, orderClause(""))
	assert.Equal(t, ` ORDER BY i.scanned_at ASC`, orderClause("oldest"))
	assert.Equal(t, ` ORDER BY i.expected_return_date IS NULL, i.expected_return_date ASC`, orderClause("overdue"))
	assert.Equal(t, ` ORDER BY i.barcode ASC, i.scanned_at DESC`, orderClause("barcode"))
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, pageCount(0, 50))
	assert.Equal(t, 1, pageCount(1, 50))
	assert.Equal(t, 1, pageCount(50, 50))
	assert.Equal(t, 2, pageCount(51, 50))
	assert.Equal(t, 3, pageCount(101, 50))
}

func TestHistoryQueryNormalize(t *testing.T) {
	q := HistoryQuery{Page: 0, PerPage: -1}
	q.normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, defaultPerPage, q.PerPage)

	q = HistoryQuery{Page: 3, PerPage: 20}
	q.normalize()
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 20, q.PerPage)
}
