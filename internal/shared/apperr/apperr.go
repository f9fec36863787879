// Package apperr はHTTP層がステータスコードに変換するエラー種別を定義します。
// 各フィーチャーはセンチネルエラーをこれらの種別の*Errorとして宣言します。
package apperr

import (
	"errors"
	"net/http"
)

// Kind はアプリケーションエラーの種別です。
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
	KindTooManyRequests
)

// Status は種別に対応するHTTPステータスコードを返します。
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error はクライアントに返してよいメッセージを持つアプリケーションエラーです。
type Error struct {
	Kind    Kind
	Message string
}

// New は指定された種別の*Errorを生成します。
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// FieldError はフィールド単位のバリデーションエラー1件です。
type FieldError struct {
	Field   string
	Message string
}

// ValidationError は1件以上のフィールドエラーを保持します。
type ValidationError struct {
	Fields []FieldError
}

// NewValidation はフィールドエラー1件のValidationErrorを生成します。
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Field + ": " + e.Fields[0].Message
}

// Add はフィールドエラーを追加します。
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil はフィールドエラーがない場合にnilを返します。
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// KindOf はerrの種別を返します。*Errorでも*ValidationErrorでもないエラーはKindInternalです。
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
