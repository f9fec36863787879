package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/shared/apperr"
)

const (
	// SuggestionPromptTemplate は優先度の提案を求めるプロンプトです。
	SuggestionPromptTemplate = `Analyze this task and provide a brief priority recommendation and tips:

Title: %s
Description: %s
Current Priority: %s
Due Date: %s

Provide a concise analysis (max 100 words) with:
1. Priority recommendation (low/medium/high/urgent)
2. Key considerations
3. One actionable tip`

	dueDateLayout = "2006-01-02"
)

// taskUsecase は所有者単位に絞り込んだストア上でタスクのCRUDとダッシュボード集計を実装します。
type taskUsecase struct {
	tasks     TaskStore
	suggester Suggester
	cache     StatsCache
	now       func() time.Time

	// generations は所有者ごとのキャッシュ無効化回数です。
	mu          sync.Mutex
	generations map[string]uint64
}

// NewTaskUsecase はtaskUsecaseの新しいインスタンスを生成します。
// suggesterがnilの場合はAI提案を付与しません。cacheがnilの場合は毎回集計します。
func NewTaskUsecase(tasks TaskStore, suggester Suggester, cache StatsCache) *taskUsecase {
	if cache == nil {
		cache = noopStatsCache{}
	}
	return &taskUsecase{
		tasks:       tasks,
		suggester:   suggester,
		cache:       cache,
		now:         func() time.Time { return time.Now().UTC() },
		generations: make(map[string]uint64),
	}
}

// BuildSuggestionPrompt はsuggesterに送るプロンプトを生成します。
func BuildSuggestionPrompt(t *entity.Task) string {
	return fmt.Sprintf(SuggestionPromptTemplate, t.Title, t.Description, t.Priority, t.DueDate.Format(dueDateLayout))
}

// ValidateTask は永続化するタスクが満たすべき条件をチェックします。
func ValidateTask(t *entity.Task) error {
	ve := &apperr.ValidationError{}
	if strings.TrimSpace(t.Title) == "" {
		ve.Add("title", "Title is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		ve.Add("description", "Description is required")
	}
	if t.DueDate.IsZero() {
		ve.Add("dueDate", "Valid due date is required")
	}
	if !t.Priority.Valid() {
		ve.Add("priority", "Invalid priority")
	}
	if !t.Status.Valid() {
		ve.Add("status", "Invalid status")
	}
	return ve.OrNil()
}

// List は呼び出し元ユーザーのタスク一覧を返します。
func (u *taskUsecase) List(ctx context.Context, ownerID string, filter entity.Filter) ([]entity.Task, error) {
	if len(filter.Sort) == 0 {
		filter.Sort = entity.DefaultSort
	}
	return u.tasks.ForOwner(ownerID).List(ctx, filter)
}

// Get は呼び出し元ユーザーのタスクを1件返します。
func (u *taskUsecase) Get(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	return u.tasks.ForOwner(ownerID).FindByID(ctx, id)
}

// Create は呼び出し元ユーザーのタスクを作成し、その後AI提案の付与を試みます。
// 提案の失敗によって作成が失敗することはありません。
func (u *taskUsecase) Create(ctx context.Context, ownerID string, task *entity.Task) (*entity.Task, error) {
	task.ID = ""
	task.OwnerID = ownerID
	task.AISuggestion = ""
	task.Title = strings.TrimSpace(task.Title)
	task.Description = strings.TrimSpace(task.Description)
	task.ApplyDefaults()
	if err := ValidateTask(task); err != nil {
		return nil, err
	}

	now := u.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	repo := u.tasks.ForOwner(ownerID)
	if err := repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	u.invalidate(ctx, ownerID)

	u.annotate(ctx, repo, task)
	return task, nil
}

// annotate はsuggesterから提案を取得してタスクに保存します。
func (u *taskUsecase) annotate(ctx context.Context, repo OwnerTaskRepository, task *entity.Task) {
	if u.suggester == nil {
		return
	}

	suggestion, err := u.suggester.Suggest(ctx, BuildSuggestionPrompt(task))
	if err != nil {
		slog.Warn("ai suggestion failed", "error", err, "task_id", task.ID)
		return
	}
	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" {
		slog.Warn("ai suggestion was empty", "task_id", task.ID)
		return
	}

	task.AISuggestion = suggestion
	if err := repo.Save(ctx, task); err != nil {
		slog.Warn("failed to store ai suggestion", "error", err, "task_id", task.ID)
		task.AISuggestion = ""
	}
}

// Update は許可されたフィールドのみをタスクに反映します。
func (u *taskUsecase) Update(ctx context.Context, ownerID, id string, patch entity.Patch) (*entity.Task, error) {
	repo := u.tasks.ForOwner(ownerID)
	task, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return task, nil
	}

	task.Apply(patch)
	if err := ValidateTask(task); err != nil {
		return nil, err
	}
	task.UpdatedAt = u.now()

	if err := repo.Save(ctx, task); err != nil {
		return nil, err
	}
	u.invalidate(ctx, ownerID)
	return task, nil
}

// Delete は呼び出し元ユーザーのタスクを削除します。
func (u *taskUsecase) Delete(ctx context.Context, ownerID, id string) error {
	repo := u.tasks.ForOwner(ownerID)
	if _, err := repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	u.invalidate(ctx, ownerID)
	return nil
}

// invalidate は所有者の世代を進めてからキャッシュを削除します。
func (u *taskUsecase) invalidate(ctx context.Context, ownerID string) {
	u.mu.Lock()
	u.generations[ownerID]++
	u.mu.Unlock()
	u.cache.Invalidate(ctx, ownerID)
}

func (u *taskUsecase) generation(ownerID string) uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.generations[ownerID]
}

// DashboardStats は呼び出し元ユーザーの3種類の集計を返します。キャッシュがあればそれを使います。
// 集計中に同じ所有者のタスクが変更された場合、結果はキャッシュしません。
func (u *taskUsecase) DashboardStats(ctx context.Context, ownerID string) (*entity.DashboardStats, error) {
	if stats, ok := u.cache.Get(ctx, ownerID); ok {
		return stats, nil
	}
	gen := u.generation(ownerID)

	repo := u.tasks.ForOwner(ownerID)
	summary, err := repo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}
	byPriority, err := repo.CountByPriority(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count by priority: %w", err)
	}
	byStatus, err := repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	stats := &entity.DashboardStats{
		Summary:           summary,
		PriorityBreakdown: byPriority,
		StatusBreakdown:   byStatus,
	}
	if u.generation(ownerID) == gen {
		u.cache.Set(ctx, ownerID, stats)
	}
	return stats, nil
}
