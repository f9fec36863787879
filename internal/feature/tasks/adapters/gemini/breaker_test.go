package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

// mockSuggester is a mock implementation of usecase.Suggester.
type mockSuggester struct {
	SuggestFunc func(ctx context.Context, prompt string) (string, error)
	calls       int
}

func (m *mockSuggester) Suggest(ctx context.Context, prompt string) (string, error) {
	m.calls++
	return m.SuggestFunc(ctx, prompt)
}

func TestBreakerSuggester(t *testing.T) {
	t.Parallel()

	t.Run("passes through success", func(t *testing.T) {
		t.Parallel()
		inner := &mockSuggester{SuggestFunc: func(context.Context, string) (string, error) { return "ok", nil }}
		b := NewBreakerSuggester(inner, DefaultBreakerSettings)

		got, err := b.Suggest(context.Background(), "p")
		assert.NoError(t, err)
		assert.Equal(t, "ok", got)
	})

	t.Run("opens after consecutive failures", func(t *testing.T) {
		t.Parallel()
		upstream := errors.New("quota exceeded")
		inner := &mockSuggester{SuggestFunc: func(context.Context, string) (string, error) { return "", upstream }}
		b := NewBreakerSuggester(inner, BreakerSettings{ConsecutiveFailures: 2, OpenTimeout: time.Minute})

		for i := 0; i < 3; i++ {
			_, err := b.Suggest(context.Background(), "p")
			assert.ErrorIs(t, err, upstream)
		}

		_, err := b.Suggest(context.Background(), "p")
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, 3, inner.calls, "open breaker must not call upstream")
	})
}
