package usecase

import (
	"context"

	"task_backend/internal/feature/tasks/domain/entity"
)

// TaskStore hands out repositories narrowed to a single owner.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type TaskStore interface {
	// ForOwner returns a repository whose every query is filtered by ownerID.
	ForOwner(ownerID string) OwnerTaskRepository
}

// OwnerTaskRepository is the persistence contract for one owner's tasks.
// Implementations must return ErrTaskNotFound for ids that are absent or owned by someone else,
// and ErrInvalidTaskID for ids they cannot parse.
type OwnerTaskRepository interface {
	// List returns the owner's tasks matching filter, ordered by filter.Sort.
	List(ctx context.Context, filter entity.Filter) ([]entity.Task, error)

	// FindByID returns a single task.
	FindByID(ctx context.Context, id string) (*entity.Task, error)

	// Create persists task, assigning its ID. task.OwnerID is overwritten with the repository's owner.
	Create(ctx context.Context, task *entity.Task) error

	// Save writes the mutable fields (title, description, priority, status, dueDate, aiSuggestion, updatedAt).
	Save(ctx context.Context, task *entity.Task) error

	// Delete removes a task.
	Delete(ctx context.Context, id string) error

	// Summary returns the single-row dashboard rollup. Zero tasks yield a zero Summary.
	Summary(ctx context.Context) (entity.Summary, error)

	// CountByPriority groups the owner's tasks by priority.
	CountByPriority(ctx context.Context) ([]entity.GroupCount, error)

	// CountByStatus groups the owner's tasks by status.
	CountByStatus(ctx context.Context) ([]entity.GroupCount, error)
}

// Suggester produces a free-text recommendation for a prompt.
type Suggester interface {
	Suggest(ctx context.Context, prompt string) (string, error)
}

// StatsCache stores dashboard stats per owner. Implementations are best effort.
type StatsCache interface {
	Get(ctx context.Context, ownerID string) (*entity.DashboardStats, bool)
	Set(ctx context.Context, ownerID string, stats *entity.DashboardStats)
	Invalidate(ctx context.Context, ownerID string)
}

type noopStatsCache struct{}

func (noopStatsCache) Get(context.Context, string) (*entity.DashboardStats, bool) { return nil, false }
func (noopStatsCache) Set(context.Context, string, *entity.DashboardStats)        {}
func (noopStatsCache) Invalidate(context.Context, string)                         {}
