// Package cache provides Redis-backed caches used by the usecases.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
)

// StatsCache stores dashboard stats per owner in Redis.
// A nil client turns every method into a no-op, so callers never need to branch on configuration.
// All errors are swallowed: the cache is an optimisation and the repository stays the source of truth.
type StatsCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.StatsCache = (*StatsCache)(nil)

// NewStatsCache creates a StatsCache.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "stats".
func NewStatsCache(rdb *redis.Client, ttl time.Duration, namespace string) *StatsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "stats"
	}
	return &StatsCache{rdb: rdb, ttl: ttl, namespace: namespace}
}

// Get returns the cached stats for ownerID.
func (c *StatsCache) Get(ctx context.Context, ownerID string) (*entity.DashboardStats, bool) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return nil, false
	}

	key := c.cacheKey(ownerID)
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return nil, false
	}

	var out entity.DashboardStats
	if err := json.Unmarshal(b, &out); err != nil {
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
		return nil, false
	}
	return &out, true
}

// Set stores stats for ownerID (best effort).
func (c *StatsCache) Set(ctx context.Context, ownerID string, stats *entity.DashboardStats) {
	if c.rdb == nil || stats == nil {
		return
	}
	b, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.cacheKey(ownerID), b, c.ttl).Err(); err != nil {
		slog.Warn("failed to cache stats", "error", err, "user_id", ownerID)
	}
}

// Invalidate drops the cached stats for ownerID.
func (c *StatsCache) Invalidate(ctx context.Context, ownerID string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.cacheKey(ownerID)).Err(); err != nil {
		slog.Warn("failed to invalidate stats cache", "error", err, "user_id", ownerID)
	}
}

// cacheKey generates the cache key for an owner.
func (c *StatsCache) cacheKey(ownerID string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(ownerID))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
