package items

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"PRISM-backend/internal/platform/apperr"
	"PRISM-backend/internal/validate"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Recorder は監査トレイルへの書き込み窓口。コミット済みの変更を記録する。
type Recorder interface {
	Record(ctx context.Context, action, tableName string, recordID int64, actorID *int64, actorName string, oldValue, newValue any)
}

// ReturnDaysProvider は返却期限日数の現在値を供給する（設定ストア）。
type ReturnDaysProvider interface {
	ReturnDays(ctx context.Context) int
}

// ===== Service本体 =====

type Service struct {
	store    *Store
	audit    Recorder
	settings ReturnDaysProvider
	clock    Clock
	id       IDGen
	log      *zap.Logger
}

func NewService(db *sql.DB, aud Recorder, settings ReturnDaysProvider, log *zap.Logger) *Service {
	return &Service{
		store:    NewStore(db),
		audit:    aud,
		settings: settings,
		clock:    realClock{},
		id:       ulidGen{},
		log:      log,
	}
}

// スキャン登録
func (s *Service) Create(ctx context.Context, actorID int64, actorName string, req CreateItemRequest) (*ItemResponse, error) {
	barcode, err := validate.Barcode(req.Barcode, false)
	if err != nil {
		return nil, err
	}
	patientID, err := validate.PatientID(req.PatientID)
	if err != nil {
		return nil, err
	}
	notes, err := validate.Notes(req.Notes)
	if err != nil {
		return nil, err
	}

	// バーコードまたはメモのいずれかが必要
	if barcode == nil && notes == nil {
		return nil, apperr.Validation("バーコード", "バーコードまたはメモを入力してください")
	}

	quantity, err := validate.Integer(req.Quantity, "個数", 1, validate.MaxQuantity, 1)
	if err != nil {
		return nil, err
	}
	blockQty, err := validate.Quantity(req.BlockQuantity, "ブロック個数", 0)
	if err != nil {
		return nil, err
	}
	slideQty, err := validate.Quantity(req.SlideQuantity, "スライド個数", 0)
	if err != nil {
		return nil, err
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	expected := now.AddDate(0, 0, s.settings.ReturnDays(ctx))

	m := &ItemLog{
		ItemULID:           idStr,
		Barcode:            barcode,
		PatientID:          patientID,
		Quantity:           quantity,
		ScannedByID:        actorID,
		ScannedByName:      actorName,
		ScannedAt:          now,
		ExpectedReturnDate: &expected,
		Notes:              notes,
	}

	// 登録時点でアクティブな側面には同じ遷移規則で時刻を刻む
	m.Returned = req.Returned
	m.ReturnedAt = stampFor(req.Returned, false, nil, now)
	m.PreliminaryReport = req.PreliminaryReport
	m.PreliminaryReportAt = stampFor(req.PreliminaryReport, false, nil, now)
	m.BlockQuantity = blockQty
	m.BlockReturnedAt = stampFor(blockQty > 0, false, nil, now)
	m.SlideQuantity = slideQty
	m.SlideReturnedAt = stampFor(slideQty > 0, false, nil, now)

	if err := s.store.Insert(ctx, m); err != nil {
		return nil, err
	}

	resp := toResponse(m, now)
	s.audit.Record(ctx, "CREATE", TableName, m.ID, &actorID, actorName, nil, resp)

	s.log.Info("スキャン登録",
		zap.Int64("id", m.ID),
		zap.Stringp("barcode", barcode),
		zap.Int("quantity", quantity),
		zap.String("user", actorName),
	)
	return &resp, nil
}

// 履歴単一取得（ID or ULID）。削除済みも返す。
func (s *Service) Get(ctx context.Context, key string) (*ItemResponse, error) {
	m, err := s.getByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	resp := toResponse(m, s.clock.Now().UTC())
	return &resp, nil
}

// 履歴更新。nil でないフィールドだけを適用する。
func (s *Service) Update(ctx context.Context, actorID int64, actorName string, key string, req UpdateItemRequest) (*ItemResponse, error) {
	m, err := s.getByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	oldValue := toResponse(m, now)

	if req.Barcode != nil {
		v, err := validate.Barcode(req.Barcode, false)
		if err != nil {
			return nil, err
		}
		m.Barcode = v
	}
	if req.PatientID != nil {
		v, err := validate.PatientID(req.PatientID)
		if err != nil {
			return nil, err
		}
		m.PatientID = v
	}
	if req.Quantity != nil {
		v, err := validate.Integer(req.Quantity, "個数", 1, validate.MaxQuantity, m.Quantity)
		if err != nil {
			return nil, err
		}
		m.Quantity = v
	}
	if req.Notes != nil {
		v, err := validate.Notes(req.Notes)
		if err != nil {
			return nil, err
		}
		m.Notes = v
	}

	if req.Returned != nil {
		m.ReturnedAt = stampFor(*req.Returned, m.Returned, m.ReturnedAt, now)
		m.Returned = *req.Returned
	}
	if req.PreliminaryReport != nil {
		m.PreliminaryReportAt = stampFor(*req.PreliminaryReport, m.PreliminaryReport, m.PreliminaryReportAt, now)
		m.PreliminaryReport = *req.PreliminaryReport
	}
	if req.BlockQuantity != nil {
		v, err := validate.Quantity(req.BlockQuantity, "ブロック個数", m.BlockQuantity)
		if err != nil {
			return nil, err
		}
		m.BlockReturnedAt = stampFor(v > 0, m.BlockQuantity > 0, m.BlockReturnedAt, now)
		m.BlockQuantity = v
	}
	if req.SlideQuantity != nil {
		v, err := validate.Quantity(req.SlideQuantity, "スライド個数", m.SlideQuantity)
		if err != nil {
			return nil, err
		}
		m.SlideReturnedAt = stampFor(v > 0, m.SlideQuantity > 0, m.SlideReturnedAt, now)
		m.SlideQuantity = v
	}
	if req.Completed != nil {
		m.CompletedAt = stampFor(*req.Completed, m.Completed, m.CompletedAt, now)
		m.Completed = *req.Completed
	}

	if req.ExpectedReturnDate != nil {
		if *req.ExpectedReturnDate == "" {
			m.ExpectedReturnDate = nil
		} else {
			t, err := parseDateTime(*req.ExpectedReturnDate)
			if err != nil {
				return nil, apperr.Validation("期待返却日", "日時の形式が正しくありません")
			}
			m.ExpectedReturnDate = &t
		}
	}

	if err := s.store.Update(ctx, m); err != nil {
		return nil, err
	}

	resp := toResponse(m, now)
	s.audit.Record(ctx, "UPDATE", TableName, m.ID, &actorID, actorName, oldValue, resp)

	s.log.Info("履歴更新", zap.Int64("id", m.ID), zap.String("user", actorName))
	return &resp, nil
}

// 履歴削除（ソフトデリート）
func (s *Service) SoftDelete(ctx context.Context, actorID int64, actorName string, key string) error {
	m, err := s.getByKey(ctx, key)
	if err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	oldValue := toResponse(m, now)

	if err := s.store.MarkDeleted(ctx, m.ID, now); err != nil {
		return err
	}

	s.audit.Record(ctx, "DELETE", TableName, m.ID, &actorID, actorName, oldValue, nil)

	s.log.Info("履歴削除", zap.Int64("id", m.ID), zap.String("user", actorName))
	return nil
}

// 履歴一覧
func (s *Service) QueryHistory(ctx context.Context, q HistoryQuery) (*PagedItems, error) {
	q.normalize()
	now := s.clock.Now().UTC()

	rows, total, err := s.store.ListHistory(ctx, q, now)
	if err != nil {
		return nil, err
	}

	items := make([]ItemResponse, 0, len(rows))
	for i := range rows {
		items = append(items, toResponse(&rows[i], now))
	}

	pages := pageCount(total, q.PerPage)
	return &PagedItems{
		Items:       items,
		Total:       total,
		Pages:       pages,
		CurrentPage: q.Page,
		HasNext:     q.Page < pages,
		HasPrev:     q.Page > 1,
	}, nil
}

// ===== ヘルパー =====

func (s *Service) getByKey(ctx context.Context, key string) (*ItemLog, error) {
	if key == "" {
		return nil, apperr.Validation("id", "id または ulid を指定してください")
	}
	// 数値として解釈できればID検索、それ以外は item_ulid とみなす
	if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > 0 {
		return s.store.GetByID(ctx, id)
	}
	return s.store.GetByULID(ctx, key)
}

// parseDateTime は RFC3339 / "YYYY-MM-DDTHH:MM" / "YYYY-MM-DD" を受け付ける。
func parseDateTime(s string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}
	var lastErr error
	for _, l := range layouts {
		t, err := time.Parse(l, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
