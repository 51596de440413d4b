package items

import "time"

// ===== Requests =====

// スキャン登録リクエスト
type CreateItemRequest struct {
	Barcode           *string `json:"barcode,omitempty"`
	PatientID         *string `json:"patient_id,omitempty"`
	Quantity          *int    `json:"quantity,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	Returned          bool    `json:"returned"`
	PreliminaryReport bool    `json:"preliminary_report"`
	BlockQuantity     *int    `json:"block_quantity,omitempty"`
	SlideQuantity     *int    `json:"slide_quantity,omitempty"`
}

// 履歴更新リクエスト。nil のフィールドは変更しない。
// ExpectedReturnDate は空文字でクリア、それ以外は日時文字列として解釈する。
type UpdateItemRequest struct {
	Barcode            *string `json:"barcode,omitempty"`
	PatientID          *string `json:"patient_id,omitempty"`
	Quantity           *int    `json:"quantity,omitempty"`
	Notes              *string `json:"notes,omitempty"`
	Returned           *bool   `json:"returned,omitempty"`
	PreliminaryReport  *bool   `json:"preliminary_report,omitempty"`
	BlockQuantity      *int    `json:"block_quantity,omitempty"`
	SlideQuantity      *int    `json:"slide_quantity,omitempty"`
	Completed          *bool   `json:"completed,omitempty"`
	ExpectedReturnDate *string `json:"expected_return_date,omitempty"`
}

// ===== Responses =====

type ItemResponse struct {
	ID                  int64      `json:"id"`
	ItemULID            string     `json:"item_ulid"`
	Barcode             *string    `json:"barcode"`
	PatientID           *string    `json:"patient_id"`
	Quantity            int        `json:"quantity"`
	ScannedByID         int64      `json:"scanned_by_id"`
	ScannedByName       string     `json:"scanned_by_name"`
	ScannedAt           time.Time  `json:"scanned_at"`
	ExpectedReturnDate  *time.Time `json:"expected_return_date"`
	PreliminaryReport   bool       `json:"preliminary_report"`
	PreliminaryReportAt *time.Time `json:"preliminary_report_at"`
	Returned            bool       `json:"returned"`
	ReturnedAt          *time.Time `json:"returned_at"`
	BlockQuantity       int        `json:"block_quantity"`
	BlockReturned       bool       `json:"block_returned"`
	BlockReturnedAt     *time.Time `json:"block_returned_at"`
	SlideQuantity       int        `json:"slide_quantity"`
	SlideReturned       bool       `json:"slide_returned"`
	SlideReturnedAt     *time.Time `json:"slide_returned_at"`
	Completed           bool       `json:"completed"`
	CompletedAt         *time.Time `json:"completed_at"`
	AllReturned         bool       `json:"all_returned"`
	Notes               *string    `json:"notes"`
	DeletedAt           *time.Time `json:"deleted_at"`
	IsOverdue           bool       `json:"is_overdue"`
	DaysUntilDue        *int       `json:"days_until_due"`
}

type PagedItems struct {
	Items       []ItemResponse `json:"items"`
	Total       int64          `json:"total"`
	Pages       int            `json:"pages"`
	CurrentPage int            `json:"current_page"`
	HasNext     bool           `json:"has_next"`
	HasPrev     bool           `json:"has_prev"`
}

func toResponse(m *ItemLog, now time.Time) ItemResponse {
	return ItemResponse{
		ID:                  m.ID,
		ItemULID:            m.ItemULID,
		Barcode:             m.Barcode,
		PatientID:           m.PatientID,
		Quantity:            m.Quantity,
		ScannedByID:         m.ScannedByID,
		ScannedByName:       m.ScannedByName,
		ScannedAt:           m.ScannedAt,
		ExpectedReturnDate:  m.ExpectedReturnDate,
		PreliminaryReport:   m.PreliminaryReport,
		PreliminaryReportAt: m.PreliminaryReportAt,
		Returned:            m.Returned,
		ReturnedAt:          m.ReturnedAt,
		BlockQuantity:       m.BlockQuantity,
		BlockReturned:       m.BlockReturned(),
		BlockReturnedAt:     m.BlockReturnedAt,
		SlideQuantity:       m.SlideQuantity,
		SlideReturned:       m.SlideReturned(),
		SlideReturnedAt:     m.SlideReturnedAt,
		Completed:           m.Completed,
		CompletedAt:         m.CompletedAt,
		AllReturned:         m.AllReturned(),
		Notes:               m.Notes,
		DeletedAt:           m.DeletedAt,
		IsOverdue:           m.IsOverdue(now),
		DaysUntilDue:        m.DaysUntilDue(now),
	}
}
