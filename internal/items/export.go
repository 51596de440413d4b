package items

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// エクスポート列（履歴一覧と同じフィルタ・検索条件、新しい順）
var exportHeader = []string{
	"ID", "バーコード", "個数", "スキャン者", "スキャン日時", "ブロック個数", "スライド個数", "メモ",
}

func exportRow(m *ItemLog) []string {
	barcode := ""
	if m.Barcode != nil {
		barcode = *m.Barcode
	}
	notes := ""
	if m.Notes != nil {
		notes = *m.Notes
	}
	return []string{
		strconv.FormatInt(m.ID, 10),
		barcode,
		strconv.Itoa(m.Quantity),
		m.ScannedByName,
		m.ScannedAt.Format("2006-01-02 15:04:05"),
		strconv.Itoa(m.BlockQuantity),
		strconv.Itoa(m.SlideQuantity),
		notes,
	}
}

// ExportCSV は CSV バイト列とダウンロード用ファイル名を返す。
// encoding="sjis" で cp932（Excel 向け）、それ以外は BOM 付き UTF-8。
func (s *Service) ExportCSV(ctx context.Context, filter, search, encoding string) ([]byte, string, error) {
	rows, err := s.store.ListExport(ctx, filter, search, s.clock.Now().UTC())
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	var w *csv.Writer
	if encoding == "sjis" {
		// cp932 変換を挟む（Shift_JIS 系の表計算ソフト向け）
		w = csv.NewWriter(transform.NewWriter(&buf, japanese.ShiftJIS.NewEncoder()))
	} else {
		// UTF-8 の BOM を先頭に付ける（表計算ソフトでの文字化け対策）
		buf.Write([]byte{0xEF, 0xBB, 0xBF})
		w = csv.NewWriter(&buf)
	}

	if err := w.Write(exportHeader); err != nil {
		return nil, "", err
	}
	for i := range rows {
		if err := w.Write(exportRow(&rows[i])); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("barcode_export_%s.csv", s.clock.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

// ExportXLSX は同じ列構成の xlsx を生成する。
func (s *Service) ExportXLSX(ctx context.Context, filter, search string) ([]byte, string, error) {
	rows, err := s.store.ListExport(ctx, filter, search, s.clock.Now().UTC())
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	const sheetName = "履歴"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, "", err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, "", err
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		f.Close()
		return nil, "", err
	}
	endCol, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err := f.SetCellStyle(sheetName, "A1", endCol, headerStyle); err != nil {
		f.Close()
		return nil, "", err
	}

	for i := range rows {
		cells := exportRow(&rows[i])
		row := make([]any, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			f.Close()
			return nil, "", err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, "", err
	}
	_ = f.Close()

	filename := fmt.Sprintf("barcode_export_%s.xlsx", s.clock.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}
