// Package middleware はginの共通ミドルウェアを提供します。
package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"task_backend/internal/api"
	"task_backend/internal/shared/apperr"
)

// ServerErrorMessage は原因を公開しない500応答のメッセージです。
const ServerErrorMessage = "Server Error"

// ErrorHandler はハンドラーがc.Errorで登録した最後のエラーをJSON応答に変換します。
// apperrの種別でステータスコードを決め、未知のエラーは詳細を隠して500を返します。
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			fields := make([]api.FieldError, 0, len(ve.Fields))
			for _, f := range ve.Fields {
				fields = append(fields, api.FieldError{Field: f.Field, Message: f.Message})
			}
			c.JSON(http.StatusBadRequest, api.ValidationErrorResponse{Errors: fields})
			return
		}

		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
			c.JSON(ae.Kind.Status(), api.ErrorResponse{Error: ae.Message})
			return
		}

		slog.Error("unhandled request error",
			"error", err,
			"request_id", RequestIDFrom(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: ServerErrorMessage})
	}
}

// NotFound は未定義ルートに対する404ハンドラーです。
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Route not found"})
}
