package gemini

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"task_backend/internal/feature/tasks/usecase"
)

// BreakerSettings はサーキットブレーカーの設定です。
type BreakerSettings struct {
	// ConsecutiveFailures を超えて連続失敗するとオープン状態になります。
	ConsecutiveFailures uint32
	// OpenTimeout はオープン状態からハーフオープンへ移るまでの時間です。
	OpenTimeout time.Duration
}

// DefaultBreakerSettings はデフォルトのブレーカー設定です。
var DefaultBreakerSettings = BreakerSettings{ConsecutiveFailures: 3, OpenTimeout: 30 * time.Second}

// breakerSuggester はSuggesterをサーキットブレーカーでラップするデコレーターです。
// オープン中は上流を呼ばずにgobreaker.ErrOpenStateを返します。
type breakerSuggester struct {
	next usecase.Suggester
	cb   *gobreaker.CircuitBreaker
}

var _ usecase.Suggester = (*breakerSuggester)(nil)

// NewBreakerSuggester はnextをサーキットブレーカーでラップします。
func NewBreakerSuggester(next usecase.Suggester, s BreakerSettings) *breakerSuggester {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ai-suggester",
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &breakerSuggester{next: next, cb: cb}
}

// Suggest はブレーカーが閉じている場合のみ上流を呼び出します。
func (b *breakerSuggester) Suggest(ctx context.Context, prompt string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Suggest(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
