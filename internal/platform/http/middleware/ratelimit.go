package middleware

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"task_backend/internal/shared/apperr"
	"task_backend/internal/shared/ratelimiter"
)

// ErrTooManyRequests はレート制限超過時のエラーです。
var ErrTooManyRequests = apperr.New(apperr.KindTooManyRequests, "Too many requests from this IP, please try again later.")

// Limiter はキーごとのリクエスト数を数えます。
type Limiter interface {
	Allow(ctx context.Context, key string) (ratelimiter.Decision, error)
}

// RateLimit はクライアントIPごとにリクエスト数を制限します。
// リミッターが失敗した場合はリクエストを通します。
func RateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			slog.Warn("rate limiter unavailable", "error", err, "remote_addr", c.ClientIP())
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			retry := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			slog.Warn("rate limit exceeded", "remote_addr", c.ClientIP(), "request_id", RequestIDFrom(c))
			_ = c.Error(ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
