package users

import (
	"context"
	"database/sql"

	"PRISM-backend/internal/platform/apperr"
	"PRISM-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const userColumns = `id, name, password_hash, is_admin, is_active, created_at`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("ユーザーが見つかりません")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// NameExists は同名ユーザーの有無を調べる。excludeID > 0 なら自分自身を除外する。
func (s *Store) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	return nameExists(ctx, s.db, name, excludeID)
}

func nameExists(ctx context.Context, q db.DBTX, name string, excludeID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM users WHERE name = ? AND id <> ?`
	var n int64
	if err := q.QueryRowContext(ctx, query, name, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) List(ctx context.Context, onlyActive bool) ([]User, error) {
	q := `SELECT ` + userColumns + ` FROM users`
	if onlyActive {
		q += ` WHERE is_active = TRUE`
	}
	q += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// InsertUnique は重複名チェックと挿入を同一トランザクションで行う。
// 同名の同時登録で片方だけが通ることを保証する。
func (s *Store) InsertUnique(ctx context.Context, u *User) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		exists, err := nameExists(ctx, tx, u.Name, 0)
		if err != nil {
			return err
		}
		if exists {
			return apperr.DuplicateName("この名前は既に使用されています")
		}
		return insert(ctx, tx, u)
	})
}

func insert(ctx context.Context, q db.DBTX, u *User) error {
	const query = `
	INSERT INTO users (name, password_hash, is_admin, is_active, created_at)
	VALUES (?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query, u.Name, u.PasswordHash, u.IsAdmin, u.IsActive, u.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (s *Store) Update(ctx context.Context, u *User) error {
	const q = `
	UPDATE users SET name = ?, password_hash = ?, is_admin = ?, is_active = ?
	WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q, u.Name, u.PasswordHash, u.IsAdmin, u.IsActive, u.ID)
	return err
}

// CountActiveAdmins は有効な管理者数を返す（最後の管理者保護用）。
func (s *Store) CountActiveAdmins(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM users WHERE is_admin = TRUE AND is_active = TRUE`
	var n int64
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
