// Package adapters はtasksフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
)

// TaskModel はtasksテーブルのGORMモデルです。
type TaskModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	UserID       string    `gorm:"type:varchar(36);not null;index:idx_tasks_user_created,priority:1"`
	Title        string    `gorm:"type:varchar(200);not null"`
	Description  string    `gorm:"type:text;not null"`
	Priority     string    `gorm:"type:varchar(16);not null;index"`
	Status       string    `gorm:"type:varchar(16);not null;index"`
	DueDate      time.Time `gorm:"not null"`
	AISuggestion string    `gorm:"column:ai_suggestion;type:text"`
	CreatedAt    time.Time `gorm:"index:idx_tasks_user_created,priority:2"`
	UpdatedAt    time.Time
}

// TableName はテーブル名を返します。
func (TaskModel) TableName() string { return "tasks" }

func (m *TaskModel) toEntity() entity.Task {
	return entity.Task{
		ID:           m.ID,
		OwnerID:      m.UserID,
		Title:        m.Title,
		Description:  m.Description,
		Priority:     entity.Priority(m.Priority),
		Status:       entity.Status(m.Status),
		DueDate:      m.DueDate.UTC(),
		AISuggestion: m.AISuggestion,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// sortColumns はAPIのソートフィールド名をカラム名に対応付けます。
var sortColumns = map[entity.SortField]string{
	entity.SortCreatedAt: "created_at",
	entity.SortUpdatedAt: "updated_at",
	entity.SortDueDate:   "due_date",
	entity.SortTitle:     "title",
	entity.SortPriority:  "priority",
	entity.SortStatus:    "status",
}

// taskGorm はTaskStoreインターフェースのGORM実装です。
type taskGorm struct {
	db *gorm.DB
}

// taskGormがTaskStoreを実装していることをコンパイル時に検証します。
var _ usecase.TaskStore = (*taskGorm)(nil)

// NewTaskGorm は指定されたgorm.DB接続でtaskGormの新しいインスタンスを生成します。
func NewTaskGorm(db *gorm.DB) *taskGorm {
	return &taskGorm{db: db}
}

// ForOwner はownerIDで絞り込まれたリポジトリを返します。
func (s *taskGorm) ForOwner(ownerID string) usecase.OwnerTaskRepository {
	return &ownerTaskGorm{db: s.db, ownerID: ownerID}
}

// ownerTaskGorm は1人の所有者に限定されたタスクリポジトリです。
// すべてのクエリはscopeを経由し、user_idで絞り込まれます。
type ownerTaskGorm struct {
	db      *gorm.DB
	ownerID string
}

var _ usecase.OwnerTaskRepository = (*ownerTaskGorm)(nil)

func (r *ownerTaskGorm) scope(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&TaskModel{}).Where("user_id = ?", r.ownerID)
}

// parseID はUUID形式でないIDをusecase.ErrInvalidTaskIDとして扱います。
func parseID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", usecase.ErrInvalidTaskID
	}
	return u.String(), nil
}

// List は条件に一致するタスクを指定順で返します。
func (r *ownerTaskGorm) List(ctx context.Context, f entity.Filter) ([]entity.Task, error) {
	q := r.scope(ctx)
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", string(f.Priority))
	}

	keys := f.Sort
	if len(keys) == 0 {
		keys = entity.DefaultSort
	}
	for _, k := range keys {
		col, ok := sortColumns[k.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported sort field %q", k.Field)
		}
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: k.Desc})
	}

	var rows []TaskModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	tasks := make([]entity.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, rows[i].toEntity())
	}
	return tasks, nil
}

// FindByID はIDでタスクを取得します。
// 存在しない場合や他のユーザーのタスクの場合、usecase.ErrTaskNotFoundを返します。
func (r *ownerTaskGorm) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var m TaskModel
	if err := r.scope(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrTaskNotFound
		}
		return nil, err
	}
	t := m.toEntity()
	return &t, nil
}

// Create はタスクを追加し、採番したIDをtaskに設定します。
func (r *ownerTaskGorm) Create(ctx context.Context, task *entity.Task) error {
	m := TaskModel{
		ID:           uuid.NewString(),
		UserID:       r.ownerID,
		Title:        task.Title,
		Description:  task.Description,
		Priority:     string(task.Priority),
		Status:       string(task.Status),
		DueDate:      task.DueDate.UTC(),
		AISuggestion: task.AISuggestion,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	task.ID = m.ID
	task.OwnerID = m.UserID
	task.CreatedAt = m.CreatedAt.UTC()
	task.UpdatedAt = m.UpdatedAt.UTC()
	return nil
}

// Save は変更可能なフィールドのみを書き込みます。user_idとcreated_atは更新しません。
func (r *ownerTaskGorm) Save(ctx context.Context, task *entity.Task) error {
	id, err := parseID(task.ID)
	if err != nil {
		return err
	}

	updatedAt := task.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	res := r.scope(ctx).Where("id = ?", id).Updates(map[string]any{
		"title":         task.Title,
		"description":   task.Description,
		"priority":      string(task.Priority),
		"status":        string(task.Status),
		"due_date":      task.DueDate.UTC(),
		"ai_suggestion": task.AISuggestion,
		"updated_at":    updatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrTaskNotFound
	}
	task.UpdatedAt = updatedAt
	return nil
}

// Delete はタスクを削除します。
func (r *ownerTaskGorm) Delete(ctx context.Context, id string) error {
	id, err := parseID(id)
	if err != nil {
		return err
	}

	res := r.scope(ctx).Where("id = ?", id).Delete(&TaskModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrTaskNotFound
	}
	return nil
}

// Summary はダッシュボードの集計を1行で返します。タスクがない場合はすべて0です。
func (r *ownerTaskGorm) Summary(ctx context.Context) (entity.Summary, error) {
	var row struct {
		Total        int64
		Completed    int64
		Pending      int64
		InProgress   int64
		HighPriority int64
	}
	err := r.scope(ctx).Select(
		`COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed,
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending,
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS in_progress,
		COALESCE(SUM(CASE WHEN priority IN (?, ?) THEN 1 ELSE 0 END), 0) AS high_priority`,
		string(entity.StatusCompleted),
		string(entity.StatusPending),
		string(entity.StatusInProgress),
		string(entity.PriorityHigh),
		string(entity.PriorityUrgent),
	).Scan(&row).Error
	if err != nil {
		return entity.Summary{}, err
	}
	return entity.Summary{
		Total:        row.Total,
		Completed:    row.Completed,
		Pending:      row.Pending,
		InProgress:   row.InProgress,
		HighPriority: row.HighPriority,
	}, nil
}

// CountByPriority は優先度ごとの件数を返します。
func (r *ownerTaskGorm) CountByPriority(ctx context.Context) ([]entity.GroupCount, error) {
	return r.countBy(ctx, "priority")
}

// CountByStatus はステータスごとの件数を返します。
func (r *ownerTaskGorm) CountByStatus(ctx context.Context) ([]entity.GroupCount, error) {
	return r.countBy(ctx, "status")
}

// countBy はcolumnでグループ化した件数を件数の多い順に返します。
// columnは内部定数のみを受け取ります。
func (r *ownerTaskGorm) countBy(ctx context.Context, column string) ([]entity.GroupCount, error) {
	var rows []struct {
		Grp   string
		Count int64
	}
	err := r.scope(ctx).
		Select(column + " AS grp, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Order(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entity.GroupCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.GroupCount{Key: row.Grp, Count: row.Count})
	}
	return out, nil
}
