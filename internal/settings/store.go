package settings

import (
	"context"
	"database/sql"
)

const TableName = "app_settings"

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Get は設定値を返す。未登録なら found=false。
func (s *Store) Get(ctx context.Context, key string) (value string, found bool, err error) {
	const q = `SELECT ` + "`value`" + ` FROM app_settings WHERE ` + "`key`" + ` = ?`
	err = s.db.QueryRowContext(ctx, q, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Upsert はキーが存在すれば更新、なければ挿入する。
func (s *Store) Upsert(ctx context.Context, key, value string) error {
	const q = `
	INSERT INTO app_settings (` + "`key`" + `, ` + "`value`" + `)
	VALUES (?, ?)
	ON DUPLICATE KEY UPDATE ` + "`value`" + ` = VALUES(` + "`value`" + `)`
	_, err := s.db.ExecContext(ctx, q, key, value)
	return err
}
