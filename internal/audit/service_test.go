package audit

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type sinkSpy struct {
	lines []Line
	err   error
}

func (s *sinkSpy) Write(line Line) error {
	s.lines = append(s.lines, line)
	return s.err
}

func setupService(t *testing.T, sink Sink) (*Service, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	svc := &Service{
		store: NewStore(db),
		clock: fixedClock{t: testNow},
		sink:  sink,
		log:   zap.NewNop(),
	}
	return svc, mock, db
}

func TestService_Record(t *testing.T) {
	t.Run("挿入と複製の両方に書く", func(t *testing.T) {
		sink := &sinkSpy{}
		svc, mock, db := setupService(t, sink)
		defer db.Close()

		actorID := int64(3)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
			WithArgs("UPDATE", "item_logs", int64(7), &actorID, testNow, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		svc.Record(context.Background(), "UPDATE", "item_logs", 7, &actorID, "検査 太郎",
			map[string]int{"quantity": 1}, map[string]int{"quantity": 2})

		require.Len(t, sink.lines, 1)
		line := sink.lines[0]
		assert.Equal(t, "UPDATE", line.Action)
		assert.Equal(t, "検査 太郎", line.ActorName)
		assert.JSONEq(t, `{"quantity":1}`, line.OldValue)
		assert.JSONEq(t, `{"quantity":2}`, line.NewValue)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("操作者不明はSYSTEM扱い", func(t *testing.T) {
		sink := &sinkSpy{}
		svc, mock, db := setupService(t, sink)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
			WillReturnResult(sqlmock.NewResult(1, 1))

		svc.Record(context.Background(), "CREATE", "users", 5, nil, "", nil, map[string]string{"name": "x"})

		require.Len(t, sink.lines, 1)
		assert.Equal(t, "SYSTEM", sink.lines[0].ActorName)
	})

	t.Run("挿入失敗でもパニックしない", func(t *testing.T) {
		sink := &sinkSpy{}
		svc, mock, db := setupService(t, sink)
		defer db.Close()

		actorID := int64(3)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
			WillReturnError(errors.New("disk full"))

		// 監査の失敗は呼び出し元の変更に影響させない
		svc.Record(context.Background(), "DELETE", "item_logs", 7, &actorID, "検査 太郎", map[string]int{"id": 7}, nil)

		assert.Len(t, sink.lines, 1, "複製シンクへは挿入失敗後も書く")
	})

	t.Run("複製シンクの失敗も握りつぶす", func(t *testing.T) {
		sink := &sinkSpy{err: errors.New("log rotate")}
		svc, mock, db := setupService(t, sink)
		defer db.Close()

		actorID := int64(3)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
			WillReturnResult(sqlmock.NewResult(1, 1))

		svc.Record(context.Background(), "CREATE", "item_logs", 8, &actorID, "検査 太郎", nil, map[string]int{"id": 8})
	})
}

func TestService_List(t *testing.T) {
	sink := &sinkSpy{}
	svc, mock, db := setupService(t, sink)
	defer db.Close()

	old := `{"quantity":1}`
	rows := sqlmock.NewRows([]string{"id", "action", "table_name", "record_id", "user_id", "name", "timestamp", "old_value", "new_value"}).
		AddRow(2, "UPDATE", "item_logs", 7, 3, "検査 太郎", testNow, old, nil).
		AddRow(1, "CREATE", "item_logs", 7, 3, "検査 太郎", testNow.Add(-time.Hour), nil, old)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY a.timestamp DESC")).
		WithArgs(50, 0).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	res, err := svc.List(context.Background(), 1, 50)
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 1, res.Pages)
	require.Len(t, res.Logs, 2)
	assert.Equal(t, "UPDATE", res.Logs[0].Action)
	require.NotNil(t, res.Logs[0].OldValue)
	assert.JSONEq(t, old, *res.Logs[0].OldValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarshalSnapshot(t *testing.T) {
	assert.Nil(t, marshalSnapshot(nil))

	got := marshalSnapshot(map[string]string{"k": "v"})
	require.NotNil(t, got)
	assert.JSONEq(t, `{"k":"v"}`, *got)

	// JSON化できない値でもエラーを返さず目印を残す
	got = marshalSnapshot(make(chan int))
	require.NotNil(t, got)
	assert.Contains(t, *got, "snapshot marshal failed")
}
