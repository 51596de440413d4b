package users

import "time"

// ===== Requests =====

type LoginRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Password string `json:"password"`
}

// ログイン画面からの自己登録（パスワードなしの一般ユーザーのみ）
type SelfRegisterRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateUserRequest struct {
	Name     string  `json:"name" binding:"required"`
	Password *string `json:"password,omitempty"`
	IsAdmin  bool    `json:"is_admin"`
}

type UpdateUserRequest struct {
	Name          *string `json:"name,omitempty"`
	IsAdmin       *bool   `json:"is_admin,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
	Password      *string `json:"password,omitempty"`
	ClearPassword bool    `json:"clear_password"`
}

// ===== Responses =====

type UserResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	IsAdmin     bool      `json:"is_admin"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		IsAdmin:     u.IsAdmin,
		HasPassword: u.HasPassword(),
		CreatedAt:   u.CreatedAt,
		IsActive:    u.IsActive,
	}
}
