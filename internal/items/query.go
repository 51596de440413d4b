package items

import (
	"strings"
	"time"
)

// 履歴検索条件
type HistoryQuery struct {
	Filter  string
	Search  string
	Sort    string
	Page    int
	PerPage int
}

const defaultPerPage = 50

func (q *HistoryQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = defaultPerPage
	}
}

// startOfDayUTC は現在のUTC時刻の時分秒以下をゼロにした「その日の開始」を返す。
func startOfDayUTC(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// buildHistoryWhere はフィルタ・検索条件から WHERE 句と引数を組み立てる。
// 一覧と件数カウントで同じ条件を共有するため関数に切り出している。
func buildHistoryWhere(filter, search string, now time.Time) (string, []any) {
	sb := strings.Builder{}
	sb.WriteString(` WHERE i.deleted_at IS NULL`)
	args := []any{}

	todayStart := startOfDayUTC(now)
	yesterdayStart := todayStart.AddDate(0, 0, -1)

	switch filter {
	case "unreturned", "incomplete":
		sb.WriteString(` AND i.completed = FALSE`)
	case "overdue":
		sb.WriteString(` AND i.completed = FALSE AND i.expected_return_date < ?`)
		args = append(args, now.UTC())
	case "today":
		sb.WriteString(` AND i.scanned_at >= ?`)
		args = append(args, todayStart)
	case "yesterday":
		sb.WriteString(` AND i.scanned_at >= ? AND i.scanned_at < ?`)
		args = append(args, yesterdayStart, todayStart)
	case "today_incomplete":
		sb.WriteString(` AND i.scanned_at >= ? AND i.completed = FALSE`)
		args = append(args, todayStart)
	case "yesterday_incomplete":
		sb.WriteString(` AND i.scanned_at >= ? AND i.scanned_at < ? AND i.completed = FALSE`)
		args = append(args, yesterdayStart, todayStart)
	default:
		// "all" および未知のフィルタは追加条件なし
	}

	if search != "" {
		sb.WriteString(` AND (i.barcode LIKE ? OR i.patient_id LIKE ? OR i.notes LIKE ?)`)
		term := "%" + search + "%"
		args = append(args, term, term, term)
	}

	return sb.String(), args
}

func orderClause(sort string) string {
	switch sort {
	case "oldest":
		return ` ORDER BY i.scanned_at ASC`
	case "overdue":
		// 期限超過を優先（期限が古い順、未設定は末尾）
		return ` ORDER BY i.expected_return_date IS NULL, i.expected_return_date ASC`
	case "barcode":
		return ` ORDER BY i.barcode ASC, i.scanned_at DESC`
	default: // newest
		return ` ORDER BY i.scanned_at DESC`
	}
}

// pageCount = ceil(total / perPage)
func pageCount(total int64, perPage int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
