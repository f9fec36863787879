// Package entity defines the domain model for the tasks feature.
package entity

import (
	"strings"
	"time"
)

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// IsHigh reports whether p counts towards the dashboard's high-priority total.
func (p Priority) IsHigh() bool {
	return p == PriorityHigh || p == PriorityUrgent
}

// Status is the progress state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Next returns the status that follows s in the pending -> in-progress -> completed cycle.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	Priority     Priority
	Status       Status
	DueDate      time.Time
	AISuggestion string // empty when no suggestion was attached
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApplyDefaults fills in priority and status when they were not supplied.
func (t *Task) ApplyDefaults() {
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
}

// Patch holds the fields an update may change. Nil fields are left untouched.
// Owner, identifier and timestamps are deliberately absent.
type Patch struct {
	Title       *string
	Description *string
	Priority    *Priority
	Status      *Status
	DueDate     *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.Status == nil && p.DueDate == nil
}

// Apply copies the non-nil fields of p onto t.
func (t *Task) Apply(p Patch) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
}
