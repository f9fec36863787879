package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader はリクエストIDを伝搬するヘッダーです。
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
)

// RequestID はリクエストIDを受け取るか生成し、コンテキストと応答ヘッダーに設定します。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFrom はコンテキストのリクエストIDを返します。未設定の場合は空文字です。
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
