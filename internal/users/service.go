package users

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"PRISM-backend/internal/platform/apperr"
	"PRISM-backend/internal/platform/auth"
	"PRISM-backend/internal/validate"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Recorder は監査トレイルへの書き込み窓口（items 側と同じ契約）。
type Recorder interface {
	Record(ctx context.Context, action, tableName string, recordID int64, actorID *int64, actorName string, oldValue, newValue any)
}

type Service struct {
	store  *Store
	audit  Recorder
	issuer *auth.Issuer
	clock  Clock
	log    *zap.Logger
}

func NewService(db *sql.DB, aud Recorder, issuer *auth.Issuer, log *zap.Logger) *Service {
	return &Service{
		store:  NewStore(db),
		audit:  aud,
		issuer: issuer,
		clock:  realClock{},
		log:    log,
	}
}

// Login はユーザー選択+パスワードで認証してトークンを発行する。
// パスワード未設定のユーザーは入力パスワードに関わらず常に認証成功する。
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.store.GetByID(ctx, req.UserID)
	if err != nil || !u.IsActive {
		return nil, apperr.Validation("ユーザー", "無効なユーザーです")
	}

	if u.HasPassword() {
		if req.Password == "" {
			return nil, apperr.Validation("パスワード", "パスワードを入力してください")
		}
		if bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)) != nil {
			return nil, apperr.Validation("パスワード", "パスワードが正しくありません")
		}
	}

	token, err := s.issuer.Issue(u.ID, u.Name, u.IsAdmin)
	if err != nil {
		return nil, err
	}

	s.log.Info("ユーザーログイン", zap.String("name", u.Name))
	return &LoginResponse{Token: token, User: toResponse(u)}, nil
}

// LoginUsers はログイン画面のユーザー選択肢（有効なユーザーのみ）を返す。
func (s *Service) LoginUsers(ctx context.Context) ([]UserResponse, error) {
	rows, err := s.store.List(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return out, nil
}

// List は無効化済みを含む全ユーザーを返す（管理画面用）。
func (s *Service) List(ctx context.Context) ([]UserResponse, error) {
	rows, err := s.store.List(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	return out, nil
}

// SelfRegister はログイン画面からの登録。パスワードなしの一般ユーザーのみ作れる。
func (s *Service) SelfRegister(ctx context.Context, req SelfRegisterRequest) (*UserResponse, error) {
	name, err := validate.UserName(&req.Name, true)
	if err != nil {
		return nil, err
	}

	u := &User{Name: *name, IsAdmin: false, IsActive: true, CreatedAt: s.clock.Now().UTC()}
	if err := s.store.InsertUnique(ctx, u); err != nil {
		return nil, err
	}

	resp := toResponse(u)
	// 未ログイン状態からの登録なのでシステム起点として記録する
	s.audit.Record(ctx, "CREATE", TableName, u.ID, nil, "", nil, resp)

	s.log.Info("ユーザー登録", zap.String("name", u.Name))
	return &resp, nil
}

// Create は管理者によるユーザー作成。
func (s *Service) Create(ctx context.Context, actorID int64, actorName string, req CreateUserRequest) (*UserResponse, error) {
	name, err := validate.UserName(&req.Name, true)
	if err != nil {
		return nil, err
	}
	password, err := validate.Password(req.Password, false)
	if err != nil {
		return nil, err
	}

	u := &User{Name: *name, IsAdmin: req.IsAdmin, IsActive: true, CreatedAt: s.clock.Now().UTC()}
	if password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		h := string(hash)
		u.PasswordHash = &h
	}

	if err := s.store.InsertUnique(ctx, u); err != nil {
		return nil, err
	}

	resp := toResponse(u)
	s.audit.Record(ctx, "CREATE", TableName, u.ID, &actorID, actorName, nil, resp)

	s.log.Info("ユーザー作成", zap.String("name", u.Name), zap.String("by", actorName))
	return &resp, nil
}

// Update はユーザー属性の部分更新。管理者の降格・無効化には最後の管理者保護が掛かる。
func (s *Service) Update(ctx context.Context, actorID int64, actorName string, id int64, req UpdateUserRequest) (*UserResponse, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldValue := toResponse(u)

	if req.Name != nil {
		name, err := validate.UserName(req.Name, true)
		if err != nil {
			return nil, err
		}
		exists, err := s.store.NameExists(ctx, *name, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.DuplicateName("この名前は既に使用されています")
		}
		u.Name = *name
	}

	losesAdmin := (req.IsAdmin != nil && !*req.IsAdmin) || (req.IsActive != nil && !*req.IsActive)
	if u.IsAdmin && u.IsActive && losesAdmin {
		if err := s.ensureNotLastAdmin(ctx); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil && !*req.IsActive && id == actorID {
		return nil, apperr.Forbidden("自分自身は無効化できません")
	}

	if req.IsAdmin != nil {
		u.IsAdmin = *req.IsAdmin
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if req.Password != nil {
		password, err := validate.Password(req.Password, false)
		if err != nil {
			return nil, err
		}
		if password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			h := string(hash)
			u.PasswordHash = &h
		} else if req.ClearPassword {
			u.PasswordHash = nil
		}
	} else if req.ClearPassword {
		u.PasswordHash = nil
	}

	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}

	resp := toResponse(u)
	s.audit.Record(ctx, "UPDATE", TableName, u.ID, &actorID, actorName, oldValue, resp)
	return &resp, nil
}

// Delete はユーザーの無効化（ソフトデリート）。
// 自分自身と最後の有効な管理者は削除できない。
func (s *Service) Delete(ctx context.Context, actorID int64, actorName string, id int64) error {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if id == actorID {
		return apperr.Forbidden("自分自身は削除できません")
	}
	if u.IsAdmin && u.IsActive {
		if err := s.ensureNotLastAdmin(ctx); err != nil {
			return err
		}
	}

	oldValue := toResponse(u)
	u.IsActive = false
	if err := s.store.Update(ctx, u); err != nil {
		return err
	}

	s.audit.Record(ctx, "DELETE", TableName, u.ID, &actorID, actorName, oldValue, nil)

	s.log.Info("ユーザー削除", zap.String("name", u.Name), zap.String("by", actorName))
	return nil
}

// Bootstrap は初回起動時にデフォルト管理者を作成する。
func (s *Service) Bootstrap(ctx context.Context, adminName, adminPassword string) error {
	n, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	u := &User{Name: adminName, IsAdmin: true, IsActive: true, CreatedAt: s.clock.Now().UTC()}
	if adminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		h := string(hash)
		u.PasswordHash = &h
	}
	if err := s.store.InsertUnique(ctx, u); err != nil {
		return err
	}

	s.audit.Record(ctx, "CREATE", TableName, u.ID, nil, "", nil, toResponse(u))
	s.log.Info("デフォルト管理者ユーザーを作成しました", zap.String("name", adminName))
	return nil
}

func (s *Service) ensureNotLastAdmin(ctx context.Context) error {
	n, err := s.store.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return apperr.Forbidden("有効な管理者は最低1人必要です")
	}
	return nil
}
