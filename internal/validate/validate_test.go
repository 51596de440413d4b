package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PRISM-backend/internal/platform/apperr"
)

func strp(s string) *string { return &s }
func intp(v int) *int       { return &v }

func validationError(t *testing.T, err error) *apperr.Error {
	t.Helper()
	var e *apperr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, apperr.CodeValidation, e.Code)
	return e
}

func TestStringRequired(t *testing.T) {
	_, err := String(nil, "メモ", 500, true)
	validationError(t, err)

	_, err = String(strp("   "), "メモ", 500, true)
	validationError(t, err)

	v, err := String(nil, "メモ", 500, false)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestStringTrimsAndKeeps(t *testing.T) {
	v, err := String(strp("  A1-23  "), "バーコード", 100, true)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "A1-23", *v)
}

func TestStringLengthBoundary(t *testing.T) {
	// 上限ちょうどは成功し、値は変更されない
	ok := strings.Repeat("x", 500)
	v, err := String(strp(ok), "メモ", 500, false)
	require.NoError(t, err)
	assert.Equal(t, ok, *v)

	// 1文字超過は上限と実際の文字数を報告して失敗する
	_, err = String(strp(strings.Repeat("x", 501)), "メモ", 500, false)
	e := validationError(t, err)
	assert.Equal(t, "メモ", e.Field)
	assert.Contains(t, e.Message, "500")
	assert.Contains(t, e.Message, "501")
}

func TestStringCountsRunesNotBytes(t *testing.T) {
	// 3バイト文字 x 500 = 1500バイトでも500文字として通る
	v, err := String(strp(strings.Repeat("あ", 500)), "メモ", 500, false)
	require.NoError(t, err)
	assert.Equal(t, 500, len([]rune(*v)))
}

func TestSanitizeCap(t *testing.T) {
	long := strings.Repeat("a", 12000)
	assert.Equal(t, 10000, len([]rune(Sanitize(long))))
	assert.Equal(t, "abc", Sanitize("abc"))
}

func TestIntegerDefaultsAndBounds(t *testing.T) {
	v, err := Integer(nil, "個数", 0, 9999, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = Integer(intp(-1), "個数", 0, 9999, 0)
	e := validationError(t, err)
	assert.Contains(t, e.Message, "0以上")

	_, err = Integer(intp(10000), "個数", 0, 9999, 0)
	e = validationError(t, err)
	assert.Contains(t, e.Message, "9999以下")
}

func TestBarcodeStripsControlChars(t *testing.T) {
	v, err := Barcode(strp("AB\x00C\tD\x7fE"), true)
	require.NoError(t, err)
	assert.Equal(t, "ABCDE", *v)
}

func TestNotesKeepsLineBreaks(t *testing.T) {
	v, err := Notes(strp("line1\nline2\tok\x00bad\x0bgone"))
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\tokbadgone", *v)
}

func TestReturnDaysBounds(t *testing.T) {
	v, err := ReturnDays(nil)
	require.NoError(t, err)
	assert.Equal(t, 14, v)

	_, err = ReturnDays(intp(0))
	validationError(t, err)

	_, err = ReturnDays(intp(366))
	validationError(t, err)

	v, err = ReturnDays(intp(30))
	require.NoError(t, err)
	assert.Equal(t, 30, v)
}
