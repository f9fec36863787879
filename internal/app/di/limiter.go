package di

import (
	"github.com/redis/go-redis/v9"

	"task_backend/internal/platform/config"
	"task_backend/internal/platform/http/middleware"
	"task_backend/internal/shared/ratelimiter"
)

// NewLimiter はAPIのレート制限を生成します。
// Redisが利用可能な場合はインスタンス間で共有されるRedis実装、それ以外はプロセス内実装を返します。
func NewLimiter(rdb *redis.Client, cfg config.Server) middleware.Limiter {
	if rdb != nil {
		return ratelimiter.NewRedisRateLimiter(rdb, cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	return ratelimiter.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
}
