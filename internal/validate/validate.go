// Package validate は利用者入力の正規化と境界チェックを行う。
// すべて副作用なしの純関数で、失敗時は apperr の VALIDATION エラーを返す。
package validate

import (
	"strconv"
	"strings"

	"PRISM-backend/internal/platform/apperr"
)

// 入力制限値
const (
	MaxBarcode    = 100 // バーコード最大長
	MaxPatientID  = 50  // 患者ID最大長
	MaxNotes      = 500 // メモ最大長
	MaxUserName   = 50  // ユーザー名最大長
	MaxPassword   = 100 // パスワード最大長
	MaxQuantity   = 9999
	MaxReturnDays = 365

	// 個別バリデーション前の一律上限（防御的な足切り）
	sanitizeCap = 10000
)

// Sanitize は文字列を10,000文字で打ち切る。フィールド検証の前段で必ず通す。
func Sanitize(value string) string {
	runes := []rune(value)
	if len(runes) > sanitizeCap {
		return string(runes[:sanitizeCap])
	}
	return value
}

// String は前後空白を除去し、文字数（バイト数ではない）で上限を検査する。
// nil または空文字は required でなければ nil を返す。超過時は切り詰めずエラー。
func String(value *string, fieldName string, maxLength int, required bool) (*string, error) {
	if value == nil {
		if required {
			return nil, apperr.Validation(fieldName, fieldName+"を入力してください")
		}
		return nil, nil
	}

	v := strings.TrimSpace(Sanitize(*value))
	if v == "" {
		if required {
			return nil, apperr.Validation(fieldName, fieldName+"を入力してください")
		}
		return nil, nil
	}

	if n := len([]rune(v)); n > maxLength {
		return nil, apperr.Validation(fieldName,
			fieldName+"は"+strconv.Itoa(maxLength)+"文字以内で入力してください（現在"+strconv.Itoa(n)+"文字）")
	}
	return &v, nil
}

// Integer は nil ならデフォルト値を返し、範囲外は違反した境界を明示してエラーにする。
func Integer(value *int, fieldName string, minVal, maxVal, def int) (int, error) {
	if value == nil {
		return def, nil
	}
	v := *value
	if v < minVal {
		return 0, apperr.Validation(fieldName, fieldName+"は"+strconv.Itoa(minVal)+"以上で入力してください")
	}
	if v > maxVal {
		return 0, apperr.Validation(fieldName, fieldName+"は"+strconv.Itoa(maxVal)+"以下で入力してください")
	}
	return v, nil
}

// stripControl は ASCII 制御文字 (0x00-0x1F, 0x7F) を除去する。
// keepLineBreaks の場合はタブ・改行系 (\t \n \r) のみ残す。
func stripControl(value string, keepLineBreaks bool) string {
	return strings.Map(func(r rune) rune {
		if r == 0x7f {
			return -1
		}
		if r < 0x20 {
			if keepLineBreaks && (r == '\t' || r == '\n' || r == '\r') {
				return r
			}
			return -1
		}
		return r
	}, value)
}

// バーコードバリデーション
func Barcode(value *string, required bool) (*string, error) {
	v, err := String(value, "バーコード", MaxBarcode, required)
	if err != nil || v == nil {
		return v, err
	}
	s := stripControl(*v, false)
	return &s, nil
}

// 患者IDバリデーション
func PatientID(value *string) (*string, error) {
	v, err := String(value, "患者ID", MaxPatientID, false)
	if err != nil || v == nil {
		return v, err
	}
	s := stripControl(*v, false)
	return &s, nil
}

// メモバリデーション（改行は許可するが、その他の制御文字は除去）
func Notes(value *string) (*string, error) {
	v, err := String(value, "メモ", MaxNotes, false)
	if err != nil || v == nil {
		return v, err
	}
	s := stripControl(*v, true)
	return &s, nil
}

// ユーザー名バリデーション
func UserName(value *string, required bool) (*string, error) {
	return String(value, "ユーザー名", MaxUserName, required)
}

// パスワードバリデーション
func Password(value *string, required bool) (*string, error) {
	return String(value, "パスワード", MaxPassword, required)
}

// 数量バリデーション
func Quantity(value *int, fieldName string, def int) (int, error) {
	return Integer(value, fieldName, 0, MaxQuantity, def)
}

// 返却期限日数バリデーション
func ReturnDays(value *int) (int, error) {
	return Integer(value, "返却期限日数", 1, MaxReturnDays, 14)
}
