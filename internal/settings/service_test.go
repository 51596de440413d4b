package settings

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"PRISM-backend/internal/platform/apperr"
)

type recorderSpy struct {
	action string
	table  string
	calls  int
}

func (r *recorderSpy) Record(ctx context.Context, action, tableName string, recordID int64, actorID *int64, actorName string, oldValue, newValue any) {
	r.action = action
	r.table = tableName
	r.calls++
}

func setupService(t *testing.T) (*Service, sqlmock.Sqlmock, *recorderSpy, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	spy := &recorderSpy{}
	svc := NewService(db, spy, 14, zap.NewNop())
	return svc, mock, spy, db
}

func valueRows(v string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"value"}).AddRow(v)
}

func TestService_ReturnDays(t *testing.T) {
	t.Run("登録済みの値を返す", func(t *testing.T) {
		svc, mock, _, db := setupService(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM app_settings")).
			WithArgs(KeyReturnDays).
			WillReturnRows(valueRows("30"))

		assert.Equal(t, 30, svc.ReturnDays(context.Background()))
	})

	t.Run("未登録はデフォルトに落ちる", func(t *testing.T) {
		svc, mock, _, db := setupService(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM app_settings")).
			WithArgs(KeyReturnDays).
			WillReturnError(sql.ErrNoRows)

		assert.Equal(t, 14, svc.ReturnDays(context.Background()))
	})

	t.Run("数値でない値はデフォルトに落ちる", func(t *testing.T) {
		svc, mock, _, db := setupService(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM app_settings")).
			WithArgs(KeyReturnDays).
			WillReturnRows(valueRows("abc"))

		assert.Equal(t, 14, svc.ReturnDays(context.Background()))
	})

	t.Run("範囲外の値はデフォルトに落ちる", func(t *testing.T) {
		svc, mock, _, db := setupService(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM app_settings")).
			WithArgs(KeyReturnDays).
			WillReturnRows(valueRows("9999"))

		assert.Equal(t, 14, svc.ReturnDays(context.Background()))
	})
}

func TestService_SetReturnDays(t *testing.T) {
	t.Run("保存と監査", func(t *testing.T) {
		svc, mock, spy, db := setupService(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM app_settings")).
			WithArgs(KeyReturnDays).
			WillReturnRows(valueRows("14"))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO app_settings")).
			WithArgs(KeyReturnDays, "30").
			WillReturnResult(sqlmock.NewResult(1, 1))

		days := 30
		n, err := svc.SetReturnDays(context.Background(), 1, "管理者", &days)
		require.NoError(t, err)
		assert.Equal(t, 30, n)
		assert.Equal(t, 1, spy.calls)
		assert.Equal(t, "UPDATE", spy.action)
		assert.Equal(t, TableName, spy.table)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("範囲外は拒否", func(t *testing.T) {
		svc, _, spy, db := setupService(t)
		defer db.Close()

		days := 366
		_, err := svc.SetReturnDays(context.Background(), 1, "管理者", &days)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
		assert.Zero(t, spy.calls)
	})

	t.Run("未指定はデフォルト14日", func(t *testing.T) {
		svc, mock, _, db := setupService(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM app_settings")).
			WithArgs(KeyReturnDays).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO app_settings")).
			WithArgs(KeyReturnDays, "14").
			WillReturnResult(sqlmock.NewResult(1, 1))

		n, err := svc.SetReturnDays(context.Background(), 1, "管理者", nil)
		require.NoError(t, err)
		assert.Equal(t, 14, n)
	})
}
