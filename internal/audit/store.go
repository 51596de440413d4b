package audit

import (
	"context"
	"database/sql"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, m *AuditLog) error {
	const q = `
	INSERT INTO audit_logs (action, table_name, record_id, user_id, timestamp, old_value, new_value)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, q,
		m.Action, m.TableName, m.RecordID, m.UserID, m.Timestamp, m.OldValue, m.NewValue,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// List は新しい順にページ分を返す。
func (s *Store) List(ctx context.Context, limit, offset int) ([]AuditLog, int64, error) {
	const q = `
	SELECT a.id, a.action, a.table_name, a.record_id, a.user_id, u.name, a.timestamp, a.old_value, a.new_value
	FROM audit_logs a
	LEFT JOIN users u ON u.id = a.user_id
	ORDER BY a.timestamp DESC
	LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []AuditLog
	for rows.Next() {
		var m AuditLog
		if err := rows.Scan(
			&m.ID, &m.Action, &m.TableName, &m.RecordID, &m.UserID, &m.UserName,
			&m.Timestamp, &m.OldValue, &m.NewValue,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
