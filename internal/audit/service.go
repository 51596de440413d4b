package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Line は運用ログ（第二シンク）へ流す1行分。
type Line struct {
	Action    string
	TableName string
	RecordID  int64
	ActorName string
	OldValue  string
	NewValue  string
}

// Sink は監査エントリの複製先。書き込み失敗は呼び出し元で握りつぶされ、
// 主となる audit_logs への書き込みに影響しない。
type Sink interface {
	Write(line Line) error
}

type zapSink struct{ log *zap.Logger }

func (s zapSink) Write(line Line) error {
	s.log.Info("AUDIT",
		zap.String("action", line.Action),
		zap.String("table", line.TableName),
		zap.Int64("record", line.RecordID),
		zap.String("user", line.ActorName),
		zap.String("old", line.OldValue),
		zap.String("new", line.NewValue),
	)
	return nil
}

type Service struct {
	store *Store
	clock Clock
	sink  Sink
	log   *zap.Logger
}

func NewService(db *sql.DB, log *zap.Logger) *Service {
	return &Service{
		store: NewStore(db),
		clock: realClock{},
		sink:  zapSink{log: log.Named("audit")},
		log:   log,
	}
}

// Record は1件の変更を監査トレイルに追記する。主書き込み（audit_logs）と
// 運用ログの複製は独立しており、どちらの失敗も呼び出し元の変更を巻き戻さない。
// コミット済みの変更に対して呼ぶこと。
func (s *Service) Record(ctx context.Context, action, tableName string, recordID int64, actorID *int64, actorName string, oldValue, newValue any) {
	m := &AuditLog{
		Action:    action,
		TableName: tableName,
		RecordID:  recordID,
		UserID:    actorID,
		Timestamp: s.clock.Now().UTC(),
	}
	m.OldValue = marshalSnapshot(oldValue)
	m.NewValue = marshalSnapshot(newValue)

	if err := s.store.Insert(ctx, m); err != nil {
		// 主変更はコミット済みなので巻き戻せない。記録失敗として残すのみ。
		s.log.Error("監査ログの書き込みに失敗",
			zap.String("action", action),
			zap.String("table", tableName),
			zap.Int64("record", recordID),
			zap.Error(err),
		)
	}

	line := Line{
		Action:    action,
		TableName: tableName,
		RecordID:  recordID,
		ActorName: actorName,
	}
	if line.ActorName == "" || actorID == nil {
		line.ActorName = "SYSTEM"
	}
	if m.OldValue != nil {
		line.OldValue = *m.OldValue
	}
	if m.NewValue != nil {
		line.NewValue = *m.NewValue
	}
	if err := s.sink.Write(line); err != nil {
		s.log.Warn("監査ログの複製書き込みに失敗", zap.Error(err))
	}
}

// List は監査ログを新しい順に返す。
func (s *Service) List(ctx context.Context, page, perPage int) (*PagedLogs, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 50
	}

	rows, total, err := s.store.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}

	logs := make([]AuditLogResponse, 0, len(rows))
	for i := range rows {
		logs = append(logs, toResponse(&rows[i]))
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if total == 0 {
		pages = 0
	}
	return &PagedLogs{Logs: logs, Total: total, Pages: pages, CurrentPage: page}, nil
}

func marshalSnapshot(v any) *string {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		s := `{"error":"snapshot marshal failed"}`
		return &s
	}
	s := string(b)
	return &s
}
