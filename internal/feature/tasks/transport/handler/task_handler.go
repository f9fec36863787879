// Package handler はtasksフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"task_backend/internal/api"
	"task_backend/internal/feature/tasks/domain/entity"
	jwtmw "task_backend/internal/platform/jwt"
	"task_backend/internal/platform/validation"
	"task_backend/internal/shared/apperr"
)

// TaskUsecase はタスク操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type TaskUsecase interface {
	List(ctx context.Context, ownerID string, filter entity.Filter) ([]entity.Task, error)
	Get(ctx context.Context, ownerID, id string) (*entity.Task, error)
	Create(ctx context.Context, ownerID string, task *entity.Task) (*entity.Task, error)
	Update(ctx context.Context, ownerID, id string, patch entity.Patch) (*entity.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
	DashboardStats(ctx context.Context, ownerID string) (*entity.DashboardStats, error)
}

// TaskHandler はタスクのHTTPリクエストを処理します。
// すべてのルートはAuthRequiredミドルウェアの後段で使用します。
type TaskHandler struct {
	tasks TaskUsecase
}

// NewTaskHandler はTaskHandlerの新しいインスタンスを生成します。
func NewTaskHandler(tasks TaskUsecase) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// ToTaskResponse はタスクを公開用の表現に変換します。
func ToTaskResponse(t *entity.Task) api.TaskResponse {
	return api.TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     string(t.Priority),
		Status:       string(t.Status),
		DueDate:      t.DueDate,
		UserID:       t.OwnerID,
		AISuggestion: t.AISuggestion,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toGroupCounts(groups []entity.GroupCount) []api.GroupCount {
	out := make([]api.GroupCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, api.GroupCount{ID: g.Key, Count: g.Count})
	}
	return out
}

// owner は認証済みユーザーIDを返します。未設定の場合は401を登録します。
func owner(c *gin.Context) (string, bool) {
	id, ok := jwtmw.UserIDFrom(c)
	if !ok {
		_ = c.Error(jwtmw.ErrNotAuthorized)
	}
	return id, ok
}

// List はGET /api/tasksを処理します。
// status・priorityの完全一致フィルタと、sort（例: -priority,dueDate）を受け付けます。
func (h *TaskHandler) List(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	sortKeys, err := entity.ParseSort(c.Query("sort"))
	if err != nil {
		_ = c.Error(apperr.NewValidation("sort", "Invalid sort field"))
		return
	}
	filter := entity.Filter{
		Status:   entity.Status(c.Query("status")),
		Priority: entity.Priority(c.Query("priority")),
		Sort:     sortKeys,
	}

	tasks, err := h.tasks.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := make([]api.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, ToTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, api.TaskListResponse{Success: true, Count: len(out), Tasks: out})
}

// Get はGET /api/tasks/:idを処理します。
func (h *TaskHandler) Get(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, api.TaskEnvelope{Success: true, Task: ToTaskResponse(task)})
}

// Create はPOST /api/tasksを処理します。所有者はトークンのユーザーに固定されます。
func (h *TaskHandler) Create(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	var req api.CreateTaskRequest
	if err := validation.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	due, err := validation.ParseDate(req.DueDate)
	if err != nil {
		_ = c.Error(apperr.NewValidation("dueDate", "Valid due date is required"))
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), ownerID, &entity.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    entity.Priority(req.Priority),
		Status:      entity.Status(req.Status),
		DueDate:     due,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	slog.Info("task created", "task_id", task.ID, "user_id", ownerID, "has_suggestion", task.AISuggestion != "")
	c.JSON(http.StatusCreated, api.TaskEnvelope{Success: true, Task: ToTaskResponse(task)})
}

// Update はPUT /api/tasks/:idを処理します。
// 許可されたフィールドのみを反映し、userIdや_idなどは無視します。
func (h *TaskHandler) Update(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	var req api.UpdateTaskRequest
	if err := validation.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	patch := entity.Patch{Title: req.Title, Description: req.Description}
	if req.Priority != nil {
		p := entity.Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		s := entity.Status(*req.Status)
		patch.Status = &s
	}
	if req.DueDate != nil {
		due, err := validation.ParseDate(*req.DueDate)
		if err != nil {
			_ = c.Error(apperr.NewValidation("dueDate", "Valid due date is required"))
			return
		}
		patch.DueDate = &due
	}

	task, err := h.tasks.Update(c.Request.Context(), ownerID, c.Param("id"), patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, api.TaskEnvelope{Success: true, Task: ToTaskResponse(task)})
}

// Delete はDELETE /api/tasks/:idを処理します。
func (h *TaskHandler) Delete(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.tasks.Delete(c.Request.Context(), ownerID, id); err != nil {
		_ = c.Error(err)
		return
	}
	slog.Info("task deleted", "task_id", id, "user_id", ownerID)
	c.JSON(http.StatusOK, api.MessageResponse{Success: true, Message: "Task deleted successfully"})
}

// Stats はGET /api/tasks/stats/dashboardを処理します。
func (h *TaskHandler) Stats(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	stats, err := h.tasks.DashboardStats(c.Request.Context(), ownerID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, api.StatsResponse{
		Success: true,
		Stats: api.StatsSummary{
			Total:        stats.Summary.Total,
			Completed:    stats.Summary.Completed,
			Pending:      stats.Summary.Pending,
			InProgress:   stats.Summary.InProgress,
			HighPriority: stats.Summary.HighPriority,
		},
		PriorityBreakdown: toGroupCounts(stats.PriorityBreakdown),
		StatusBreakdown:   toGroupCounts(stats.StatusBreakdown),
	})
}
