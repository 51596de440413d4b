package settings

import (
	"context"
	"database/sql"
	"strconv"

	"go.uber.org/zap"

	"PRISM-backend/internal/validate"
)

// 設定キー
const KeyReturnDays = "default_return_days"

type Recorder interface {
	Record(ctx context.Context, action, tableName string, recordID int64, actorID *int64, actorName string, oldValue, newValue any)
}

type Service struct {
	store       *Store
	audit       Recorder
	defaultDays int
	log         *zap.Logger
}

func NewService(db *sql.DB, aud Recorder, defaultReturnDays int, log *zap.Logger) *Service {
	return &Service{
		store:       NewStore(db),
		audit:       aud,
		defaultDays: defaultReturnDays,
		log:         log,
	}
}

// Get は設定値を返す。未登録ならデフォルト値にフォールバックする。
func (s *Service) Get(ctx context.Context, key, def string) (string, error) {
	v, found, err := s.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !found {
		return def, nil
	}
	return v, nil
}

func (s *Service) Set(ctx context.Context, actorID int64, actorName, key, value string) error {
	old, found, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := s.store.Upsert(ctx, key, value); err != nil {
		return err
	}

	var oldValue any
	if found {
		oldValue = map[string]string{"key": key, "value": old}
	}
	s.audit.Record(ctx, "UPDATE", TableName, 0, &actorID, actorName,
		oldValue, map[string]string{"key": key, "value": value})
	return nil
}

// ReturnDays は返却期限日数を返す。不正値や未登録は設定ファイルのデフォルトに落とす。
func (s *Service) ReturnDays(ctx context.Context) int {
	v, found, err := s.store.Get(ctx, KeyReturnDays)
	if err != nil {
		s.log.Warn("設定の読み込みに失敗", zap.String("key", KeyReturnDays), zap.Error(err))
		return s.defaultDays
	}
	if !found {
		return s.defaultDays
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > validate.MaxReturnDays {
		return s.defaultDays
	}
	return n
}

func (s *Service) SetReturnDays(ctx context.Context, actorID int64, actorName string, days *int) (int, error) {
	n, err := validate.ReturnDays(days)
	if err != nil {
		return 0, err
	}
	if err := s.Set(ctx, actorID, actorName, KeyReturnDays, strconv.Itoa(n)); err != nil {
		return 0, err
	}
	s.log.Info("返却期限日数を更新", zap.Int("days", n), zap.String("by", actorName))
	return n, nil
}
