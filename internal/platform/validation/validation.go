// Package validation はgin/validatorのカスタムルールと、
// バリデーションエラーをフィールド単位のエラーへ変換する機能を提供します。
package validation

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"task_backend/internal/shared/apperr"
)

// DefaultMessage はmsgタグがないフィールドのメッセージです。
const DefaultMessage = "Invalid value"

// dateLayouts はisodateルールが受け付けるISO-8601形式です。
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate はISO-8601の日付または日時を解析し、UTCで返します。
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 date %q", s)
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(f.String()) != ""
}

func isoDate(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}
	_, err := ParseDate(f.String())
	return err == nil
}

// trimmedEmail は前後の空白を除いた値をemailルールで検証します。
func trimmedEmail(v *validator.Validate) validator.Func {
	return func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return false
		}
		return v.Var(strings.TrimSpace(f.String()), "required,email") == nil
	}
}

// jsonName はエラーのフィールド名としてjsonタグ名を使います。
func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// RegisterOn はvにカスタムルールとタグ名関数を登録します。
func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonName)
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return fmt.Errorf("register notblank: %w", err)
	}
	if err := v.RegisterValidation("isodate", isoDate); err != nil {
		return fmt.Errorf("register isodate: %w", err)
	}
	if err := v.RegisterValidation("trimmedemail", trimmedEmail(v)); err != nil {
		return fmt.Errorf("register trimmedemail: %w", err)
	}
	return nil
}

var (
	registerOnce sync.Once
	registerErr  error
)

// Register はginのバインディング用バリデーターにカスタムルールを登録します。
// 何度呼び出しても登録は1回だけ行われます。
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// messageFor はobjの構造体フィールドのmsgタグを返します。
func messageFor(obj any, structField string) string {
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return DefaultMessage
	}
	if f, ok := t.FieldByName(structField); ok {
		if msg := f.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	return DefaultMessage
}

// Translate はバインド時のエラーをapperr.ValidationErrorに変換します。
// 同じフィールドに複数のルール違反がある場合は最初の1件のみを報告します。
func Translate(err error, obj any) *apperr.ValidationError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &apperr.ValidationError{}
		seen := make(map[string]bool, len(verrs))
		for _, fe := range verrs {
			field := fe.Field()
			if seen[field] {
				continue
			}
			seen[field] = true
			out.Add(field, messageFor(obj, fe.StructField()))
		}
		return out
	}
	return apperr.NewValidation("body", "Invalid request body")
}

// BindJSON はリクエストボディをobjにバインドして検証します。
// 空のボディはすべてのフィールドが未指定のものとして検証します。
func BindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err != nil {
		return Translate(err, obj)
	}
	return nil
}
