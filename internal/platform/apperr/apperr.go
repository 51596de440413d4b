package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

// 共通エラーコード（必要に応じて追加）
const (
	CodeValidation         Code = "VALIDATION"
	CodeNotFound           Code = "NOT_FOUND"
	CodeDuplicateName      Code = "DUPLICATE_NAME"
	CodeForbidden          Code = "FORBIDDEN"
	CodeConflict           Code = "CONFLICT"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	CodeInternal           Code = "INTERNAL"
)

// Error はコンポーネント境界を越えて返す構造化エラー。
// Field はバリデーションエラーのみが使用する。
type Error struct {
	Code    Code
	Message string
	Field   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func Validation(field, msg string) error {
	return &Error{Code: CodeValidation, Message: msg, Field: field}
}

func NotFound(msg string) error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func DuplicateName(msg string) error {
	return &Error{Code: CodeDuplicateName, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Code: CodeConflict, Message: msg}
}

func StorageUnavailable(msg string) error {
	return &Error{Code: CodeStorageUnavailable, Message: msg}
}

func Internal(msg string) error {
	return &Error{Code: CodeInternal, Message: msg}
}

// CodeOf は err からコードを取り出す。未知のエラーは INTERNAL 扱い。
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateName, CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
