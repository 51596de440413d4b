package items

import (
	"math"
	"time"
)

const TableName = "item_logs"

// ItemLog は item_logs テーブルの1行（1回の持ち出しイベント）を表す。
type ItemLog struct {
	ID                  int64
	ItemULID            string
	Barcode             *string
	PatientID           *string
	Quantity            int
	ScannedByID         int64
	ScannedByName       string
	ScannedAt           time.Time
	ExpectedReturnDate  *time.Time
	PreliminaryReport   bool
	PreliminaryReportAt *time.Time
	Returned            bool
	ReturnedAt          *time.Time
	BlockQuantity       int
	BlockReturnedAt     *time.Time
	SlideQuantity       int
	SlideReturnedAt     *time.Time
	Completed           bool
	CompletedAt         *time.Time
	Notes               *string
	DeletedAt           *time.Time
}

// stampFor は フラグ/数量 と対になるタイムスタンプの遷移を一箇所に集約する。
// 非アクティブ→アクティブ のときだけ現在時刻を刻む（同じ状態の再送信では
// 既存の時刻を上書きしない）。非アクティブ化では無条件にクリアする。
func stampFor(nowActive, wasActive bool, current *time.Time, now time.Time) *time.Time {
	switch {
	case !nowActive:
		return nil
	case !wasActive || current == nil:
		return &now
	default:
		return current
	}
}

// BlockReturned: ブロック返却済みかどうか（個数 > 0 なら返却済み）
func (m *ItemLog) BlockReturned() bool { return m.BlockQuantity > 0 }

// SlideReturned: スライド返却済みかどうか（個数 > 0 なら返却済み）
func (m *ItemLog) SlideReturned() bool { return m.SlideQuantity > 0 }

// AllReturned: 全て返却済みかどうか（完了ボタン押下で完了）
func (m *ItemLog) AllReturned() bool { return m.Completed }

// IsOverdue: 期限超過かどうか
func (m *ItemLog) IsOverdue(now time.Time) bool {
	if m.Returned || m.DeletedAt != nil {
		return false
	}
	if m.ExpectedReturnDate == nil {
		return false
	}
	return now.After(*m.ExpectedReturnDate)
}

// DaysUntilDue: 返却期限までの日数（負の場合は超過日数）。期限未設定なら nil。
func (m *ItemLog) DaysUntilDue(now time.Time) *int {
	if m.ExpectedReturnDate == nil {
		return nil
	}
	days := int(math.Floor(m.ExpectedReturnDate.Sub(now).Hours() / 24))
	return &days
}
