// Package usecase implements the business logic for the tasks feature.
package usecase

import "task_backend/internal/shared/apperr"

var (
	// ErrTaskNotFound is returned when a task does not exist or belongs to another user.
	// The two cases are intentionally indistinguishable.
	ErrTaskNotFound = apperr.New(apperr.KindNotFound, "Task not found")

	// ErrInvalidTaskID is returned when an identifier cannot be parsed by the storage backend.
	ErrInvalidTaskID = apperr.NewValidation("id", "Invalid task id")
)
