// Package api defines the JSON request and response bodies of the HTTP API.
//
// Request structs carry gin binding rules and a `msg` tag holding the message reported
// when any rule on that field fails.
package api

import "time"

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse is the body of a 400 caused by invalid input.
type ValidationErrorResponse struct {
	Success bool         `json:"success"`
	Errors  []FieldError `json:"errors"`
}

// MessageResponse is a success body carrying only a message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,notblank,min=2" msg:"Name must be at least 2 characters"`
	Email    string `json:"email" binding:"required,trimmedemail" msg:"Please provide a valid email"`
	Password string `json:"password" binding:"required,min=6" msg:"Password must be at least 6 characters"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,trimmedemail" msg:"Please provide a valid email"`
	Password string `json:"password" binding:"required" msg:"Password is required"`
}

// UserResponse is the public view of a user. The password hash is never exposed.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// MeResponse is returned by GET /api/auth/me.
type MeResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"notblank" msg:"Title is required"`
	Description string `json:"description" binding:"notblank" msg:"Description is required"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high urgent" msg:"Invalid priority"`
	Status      string `json:"status" binding:"omitempty,oneof=pending in-progress completed" msg:"Invalid status"`
	DueDate     string `json:"dueDate" binding:"isodate" msg:"Valid due date is required"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/:id. Absent fields are left untouched.
// Fields outside this struct, such as userId or _id, are ignored.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,notblank" msg:"Title is required"`
	Description *string `json:"description,omitempty" binding:"omitempty,notblank" msg:"Description is required"`
	Priority    *string `json:"priority,omitempty" binding:"omitempty,oneof=low medium high urgent" msg:"Invalid priority"`
	Status      *string `json:"status,omitempty" binding:"omitempty,oneof=pending in-progress completed" msg:"Invalid status"`
	DueDate     *string `json:"dueDate,omitempty" binding:"omitempty,isodate" msg:"Valid due date is required"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Priority     string    `json:"priority"`
	Status       string    `json:"status"`
	DueDate      time.Time `json:"dueDate"`
	UserID       string    `json:"userId"`
	AISuggestion string    `json:"aiSuggestion,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TaskListResponse is returned by GET /api/tasks.
type TaskListResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Tasks   []TaskResponse `json:"tasks"`
}

// TaskEnvelope wraps a single task.
type TaskEnvelope struct {
	Success bool         `json:"success"`
	Task    TaskResponse `json:"task"`
}

// StatsSummary is the single-row dashboard rollup.
type StatsSummary struct {
	Total        int64 `json:"total"`
	Completed    int64 `json:"completed"`
	Pending      int64 `json:"pending"`
	InProgress   int64 `json:"inProgress"`
	HighPriority int64 `json:"highPriority"`
}

// GroupCount is one bucket of a grouped count.
type GroupCount struct {
	ID    string `json:"_id"`
	Count int64  `json:"count"`
}

// StatsResponse is returned by GET /api/tasks/stats/dashboard.
type StatsResponse struct {
	Success           bool         `json:"success"`
	Stats             StatsSummary `json:"stats"`
	PriorityBreakdown []GroupCount `json:"priorityBreakdown"`
	StatusBreakdown   []GroupCount `json:"statusBreakdown"`
}
