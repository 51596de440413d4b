package items

import (
	"context"
	"database/sql"
	"time"

	"PRISM-backend/internal/platform/apperr"
	"PRISM-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const itemColumns = `
	i.id, i.item_ulid, i.barcode, i.patient_id, i.quantity,
	i.scanned_by_id, COALESCE(u.name, ''), i.scanned_at, i.expected_return_date,
	i.preliminary_report, i.preliminary_report_at,
	i.returned, i.returned_at,
	i.block_quantity, i.block_returned_at,
	i.slide_quantity, i.slide_returned_at,
	i.completed, i.completed_at,
	i.notes, i.deleted_at`

const itemFrom = ` FROM item_logs i LEFT JOIN users u ON u.id = i.scanned_by_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*ItemLog, error) {
	var m ItemLog
	err := row.Scan(
		&m.ID, &m.ItemULID, &m.Barcode, &m.PatientID, &m.Quantity,
		&m.ScannedByID, &m.ScannedByName, &m.ScannedAt, &m.ExpectedReturnDate,
		&m.PreliminaryReport, &m.PreliminaryReportAt,
		&m.Returned, &m.ReturnedAt,
		&m.BlockQuantity, &m.BlockReturnedAt,
		&m.SlideQuantity, &m.SlideReturnedAt,
		&m.Completed, &m.CompletedAt,
		&m.Notes, &m.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) Insert(ctx context.Context, m *ItemLog) error {
	const q = `
	INSERT INTO item_logs
	(item_ulid, barcode, patient_id, quantity, scanned_by_id, scanned_at, expected_return_date,
	 preliminary_report, preliminary_report_at, returned, returned_at,
	 block_quantity, block_returned_at, slide_quantity, slide_returned_at,
	 completed, completed_at, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, q,
		m.ItemULID, m.Barcode, m.PatientID, m.Quantity, m.ScannedByID, m.ScannedAt, m.ExpectedReturnDate,
		m.PreliminaryReport, m.PreliminaryReportAt, m.Returned, m.ReturnedAt,
		m.BlockQuantity, m.BlockReturnedAt, m.SlideQuantity, m.SlideReturnedAt,
		m.Completed, m.CompletedAt, m.Notes,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// GetByID は削除済みレコードも返す（個別参照・監査用）。
func (s *Store) GetByID(ctx context.Context, id int64) (*ItemLog, error) {
	q := `SELECT` + itemColumns + itemFrom + ` WHERE i.id = ?`
	m, err := scanItem(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("履歴が見つかりません")
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) GetByULID(ctx context.Context, ulid string) (*ItemLog, error) {
	q := `SELECT` + itemColumns + itemFrom + ` WHERE i.item_ulid = ?`
	m, err := scanItem(s.db.QueryRowContext(ctx, q, ulid))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("履歴が見つかりません")
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Update は可変カラムを一括で書き戻す。タイムスタンプの遷移判定は
// サービス層で済んでいるため、ここでは値をそのまま永続化するだけ。
func (s *Store) Update(ctx context.Context, m *ItemLog) error {
	const q = `
	UPDATE item_logs SET
		barcode = ?, patient_id = ?, quantity = ?, expected_return_date = ?,
		preliminary_report = ?, preliminary_report_at = ?,
		returned = ?, returned_at = ?,
		block_quantity = ?, block_returned_at = ?,
		slide_quantity = ?, slide_returned_at = ?,
		completed = ?, completed_at = ?,
		notes = ?
	WHERE id = ?`

	res, err := s.db.ExecContext(ctx, q,
		m.Barcode, m.PatientID, m.Quantity, m.ExpectedReturnDate,
		m.PreliminaryReport, m.PreliminaryReportAt,
		m.Returned, m.ReturnedAt,
		m.BlockQuantity, m.BlockReturnedAt,
		m.SlideQuantity, m.SlideReturnedAt,
		m.Completed, m.CompletedAt,
		m.Notes,
		m.ID,
	)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff > 1 {
		return apperr.Internal("複数行が更新されました")
	}
	return nil
}

// MarkDeleted は deleted_at のみを設定する（他のフィールドには触れない）。
func (s *Store) MarkDeleted(ctx context.Context, id int64, at time.Time) error {
	const q = `UPDATE item_logs SET deleted_at = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, at, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.NotFound("履歴が見つかりません")
	}
	return nil
}

// ListHistory は一覧と総件数を返す。WHERE 句は buildHistoryWhere を共有し、
// 一覧と件数が同じスナップショットを見るよう読み取り専用Txで囲む。
func (s *Store) ListHistory(ctx context.Context, q HistoryQuery, now time.Time) ([]ItemLog, int64, error) {
	where, args := buildHistoryWhere(q.Filter, q.Search, now)

	var out []ItemLog
	var total int64
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		listQ := `SELECT` + itemColumns + itemFrom + where + orderClause(q.Sort) + ` LIMIT ? OFFSET ?`
		listArgs := append(append([]any{}, args...), q.PerPage, (q.Page-1)*q.PerPage)

		rows, err := tx.QueryContext(ctx, listQ, listArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			m, err := scanItem(rows)
			if err != nil {
				return err
			}
			out = append(out, *m)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		countQ := `SELECT COUNT(*)` + itemFrom + where
		return tx.QueryRowContext(ctx, countQ, args...).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListExport はエクスポート用に全件（ページネーションなし・新しい順）を返す。
func (s *Store) ListExport(ctx context.Context, filter, search string, now time.Time) ([]ItemLog, error) {
	where, args := buildHistoryWhere(filter, search, now)
	q := `SELECT` + itemColumns + itemFrom + where + ` ORDER BY i.scanned_at DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemLog
	for rows.Next() {
		m, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
