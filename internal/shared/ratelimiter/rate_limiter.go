// Package ratelimiter はクライアントごとの固定ウィンドウ方式のレート制限を提供します。
package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// Decision は1回のリクエストに対する判定結果です。
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// window は1つのキーに対するカウンターです。
type window struct {
	count     int
	lastReset time.Time
}

// RateLimiter はプロセス内のメモリでキーごとにリクエスト数を数えます。
// Redisが設定されていない場合に使用します。
type RateLimiter struct {
	limit    int           // ウィンドウあたりの上限
	interval time.Duration // どの単位でリセットするか
	now      func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		now:       time.Now,
		windows:   make(map[string]*window),
		lastSweep: time.Now(),
	}
}

// Allow はkeyのカウントを1つ進め、上限内かどうかを返します。
func (rl *RateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweep(now)

	w, ok := rl.windows[key]
	// interval を過ぎたらカウントリセット
	if !ok || now.Sub(w.lastReset) >= rl.interval {
		w = &window{lastReset: now}
		rl.windows[key] = w
	}
	w.count++

	remaining := rl.limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   w.count <= rl.limit,
		Limit:     rl.limit,
		Remaining: remaining,
		ResetAt:   w.lastReset.Add(rl.interval),
	}, nil
}

// sweep は期限切れのウィンドウを削除します。呼び出し元がロックを保持している必要があります。
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.interval {
		return
	}
	for k, w := range rl.windows {
		if now.Sub(w.lastReset) >= rl.interval {
			delete(rl.windows, k)
		}
	}
	rl.lastSweep = now
}
