package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// RedisRateLimiter はRedisのINCRとEXPIREで複数インスタンス間のカウントを共有します。
type RedisRateLimiter struct {
	client   *redis.Client
	limit    int
	interval time.Duration
}

// NewRedisRateLimiter は新しいRedisRateLimiterのインスタンスを生成します。
func NewRedisRateLimiter(client *redis.Client, limit int, interval time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, interval: interval}
}

// Allow はkeyのカウントを1つ進め、上限内かどうかを返します。
// 最初のリクエストでウィンドウの有効期限を設定します。
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := keyPrefix + key

	count, err := rl.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, k, rl.interval).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	ttl, err := rl.client.TTL(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit ttl: %w", err)
	}
	if ttl < 0 {
		// 有効期限が失われたキーを回復させます。
		if err := rl.client.Expire(ctx, k, rl.interval).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire: %w", err)
		}
		ttl = rl.interval
	}

	remaining := rl.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   int(count) <= rl.limit,
		Limit:     rl.limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}, nil
}
