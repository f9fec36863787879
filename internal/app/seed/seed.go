// Package seed はデモユーザーとサンプルタスクを投入します。
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	authentity "task_backend/internal/feature/auth/domain/entity"
	authusecase "task_backend/internal/feature/auth/usecase"
	"task_backend/internal/feature/tasks/domain/entity"
)

// デモアカウントの認証情報
const (
	DemoName     = "Demo User"
	DemoEmail    = "demo@example.com"
	DemoPassword = "password123"
)

const day = 24 * time.Hour

// Accounts はデモユーザーの作成・ログインを行います。
type Accounts interface {
	Register(ctx context.Context, name, email, password string) (*authentity.User, string, error)
	Login(ctx context.Context, email, password string) (*authentity.User, string, error)
}

// Tasks はデモユーザーのタスクを操作します。
type Tasks interface {
	List(ctx context.Context, ownerID string, filter entity.Filter) ([]entity.Task, error)
	Create(ctx context.Context, ownerID string, task *entity.Task) (*entity.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// SampleTasks はnowを基準にしたサンプルタスクを返します。
func SampleTasks(now time.Time) []entity.Task {
	return []entity.Task{
		{
			Title:       "Complete project proposal",
			Description: "Finish the Q4 project proposal for client presentation",
			Priority:    entity.PriorityHigh,
			Status:      entity.StatusInProgress,
			DueDate:     now.Add(7 * day),
		},
		{
			Title:       "Team meeting preparation",
			Description: "Prepare slides and agenda for weekly team sync",
			Priority:    entity.PriorityMedium,
			Status:      entity.StatusPending,
			DueDate:     now.Add(2 * day),
		},
		{
			Title:       "Code review",
			Description: "Review pull requests from team members",
			Priority:    entity.PriorityMedium,
			Status:      entity.StatusCompleted,
			DueDate:     now.Add(-1 * day),
		},
		{
			Title:       "Update documentation",
			Description: "Update API documentation with new endpoints",
			Priority:    entity.PriorityLow,
			Status:      entity.StatusPending,
			DueDate:     now.Add(14 * day),
		},
		{
			Title:       "Bug fix - login issue",
			Description: "Fix critical login bug reported by users",
			Priority:    entity.PriorityUrgent,
			Status:      entity.StatusInProgress,
			DueDate:     now.Add(1 * day),
		},
	}
}

// Run はデモユーザーを用意し、そのタスクをサンプルで置き換えます。
// 他のユーザーのデータには触れません。
func Run(ctx context.Context, accounts Accounts, tasks Tasks, now time.Time) (*authentity.User, int, error) {
	user, _, err := accounts.Register(ctx, DemoName, DemoEmail, DemoPassword)
	if errors.Is(err, authusecase.ErrEmailAlreadyExists) {
		user, _, err = accounts.Login(ctx, DemoEmail, DemoPassword)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("prepare demo user: %w", err)
	}

	existing, err := tasks.List(ctx, user.ID, entity.Filter{})
	if err != nil {
		return nil, 0, fmt.Errorf("list demo tasks: %w", err)
	}
	for _, t := range existing {
		if err := tasks.Delete(ctx, user.ID, t.ID); err != nil {
			return nil, 0, fmt.Errorf("delete demo task %s: %w", t.ID, err)
		}
	}
	slog.Info("cleared demo tasks", "count", len(existing))

	samples := SampleTasks(now)
	for i := range samples {
		if _, err := tasks.Create(ctx, user.ID, &samples[i]); err != nil {
			return nil, 0, fmt.Errorf("create demo task %q: %w", samples[i].Title, err)
		}
	}
	return user, len(samples), nil
}
