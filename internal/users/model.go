package users

import "time"

const TableName = "users"

// User は操作者/管理者。is_active=false がソフトデリートに相当する。
type User struct {
	ID           int64
	Name         string
	PasswordHash *string // nil ならパスワードなしで選択可能
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
}

func (u *User) HasPassword() bool { return u.PasswordHash != nil }
