package di

import (
	"context"

	"task_backend/internal/feature/tasks/adapters/gemini"
	taskusecase "task_backend/internal/feature/tasks/usecase"
	"task_backend/internal/platform/config"
	infrahttp "task_backend/internal/platform/http"
)

// NewSuggester はAI提案機能を生成します。
// AI_API_KEYが未設定の場合はnilを返し、タスクは提案なしで作成されます。
func NewSuggester(ctx context.Context, cfg config.AI) (taskusecase.Suggester, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	g, err := gemini.NewGeminiSuggester(ctx, gemini.Config{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		HTTPClient: infrahttp.NewHTTPClient(cfg.Timeout),
	})
	if err != nil {
		return nil, err
	}
	return gemini.NewBreakerSuggester(g, gemini.DefaultBreakerSettings), nil
}
