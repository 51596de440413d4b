package apperr

import "errors"

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field,omitempty"`
	} `json:"error"`
}

// Body はハンドラがそのまま c.JSON に渡せるエラーボディを組み立てる。
func Body(err error) any {
	var dto errorDTO
	var e *Error
	if errors.As(err, &e) {
		dto.Error.Code = e.Code
		dto.Error.Message = e.Message
		dto.Error.Field = e.Field
		return dto
	}
	dto.Error.Code = CodeInternal
	dto.Error.Message = err.Error()
	return dto
}
