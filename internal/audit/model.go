package audit

import "time"

// AuditLog は audit_logs テーブルの1行。追記専用で、作成後は変更も削除もしない。
type AuditLog struct {
	ID        int64
	Action    string // CREATE / UPDATE / DELETE
	TableName string
	RecordID  int64
	UserID    *int64
	UserName  *string // users との JOIN で補完（削除済みユーザーは nil）
	Timestamp time.Time
	OldValue  *string
	NewValue  *string
}

type AuditLogResponse struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	TableName string    `json:"table_name"`
	RecordID  int64     `json:"record_id"`
	UserID    *int64    `json:"user_id"`
	UserName  *string   `json:"user_name"`
	Timestamp time.Time `json:"timestamp"`
	OldValue  *string   `json:"old_value"`
	NewValue  *string   `json:"new_value"`
}

type PagedLogs struct {
	Logs        []AuditLogResponse `json:"logs"`
	Total       int64              `json:"total"`
	Pages       int                `json:"pages"`
	CurrentPage int                `json:"current_page"`
}

func toResponse(m *AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:        m.ID,
		Action:    m.Action,
		TableName: m.TableName,
		RecordID:  m.RecordID,
		UserID:    m.UserID,
		UserName:  m.UserName,
		Timestamp: m.Timestamp,
		OldValue:  m.OldValue,
		NewValue:  m.NewValue,
	}
}
