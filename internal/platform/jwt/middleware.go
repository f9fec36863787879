package jwtmw

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"task_backend/internal/shared/apperr"
)

// ContextUserID はginコンテキストに格納する認証済みユーザーIDのキーです。
const ContextUserID = "userID"

// ErrNotAuthorized は認証に失敗したすべてのケースで返すエラーです。
// 失敗理由はクライアントに区別させません。
var ErrNotAuthorized = apperr.New(apperr.KindUnauthorized, "Not authorized to access this route")

// UserChecker はトークンの主体となるユーザーが存在するかを確認します。
type UserChecker interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users whose account still exists.
func AuthRequired(secret string, users UserChecker) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		deny := func(reason string, err error) {
			slog.Warn("authentication failed", "reason", reason, "error", err, "remote_addr", c.ClientIP())
			_ = c.Error(ErrNotAuthorized)
			c.Abort()
		}

		// 1. Get Authorization header
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			deny("missing bearer token", nil)
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		// 2. Parse and verify JWT signature and expiry
		userID, err := ParseToken(key, tokenStr)
		if err != nil {
			deny("invalid token", err)
			return
		}

		// 3. The account must still exist
		ok, err := users.UserExists(c.Request.Context(), userID)
		if err != nil {
			deny("user lookup failed", err)
			return
		}
		if !ok {
			deny("user not found", nil)
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserIDFrom は認証済みユーザーIDを返します。
func UserIDFrom(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}
