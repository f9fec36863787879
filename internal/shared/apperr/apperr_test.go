package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	notFound := New(KindNotFound, "Task not found")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain error is internal", errors.New("boom"), KindInternal},
		{"app error", notFound, KindNotFound},
		{"wrapped app error", fmt.Errorf("lookup: %w", notFound), KindNotFound},
		{"validation error", NewValidation("title", "Title is required"), KindValidation},
		{"wrapped validation error", fmt.Errorf("create: %w", NewValidation("id", "bad")), KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKind_Status(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, KindValidation.Status())
	assert.Equal(t, http.StatusUnauthorized, KindUnauthorized.Status())
	assert.Equal(t, http.StatusNotFound, KindNotFound.Status())
	assert.Equal(t, http.StatusConflict, KindConflict.Status())
	assert.Equal(t, http.StatusTooManyRequests, KindTooManyRequests.Status())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.Status())
}

func TestValidationError_OrNil(t *testing.T) {
	t.Parallel()

	ve := &ValidationError{}
	assert.NoError(t, ve.OrNil())

	ve.Add("title", "Title is required")
	ve.Add("dueDate", "Valid due date is required")
	err := ve.OrNil()
	assert.Error(t, err)
	assert.Equal(t, "title: Title is required", err.Error())
	assert.Len(t, ve.Fields, 2)
}

func TestError_IsComparableByIdentity(t *testing.T) {
	t.Parallel()

	a := New(KindNotFound, "Task not found")
	b := New(KindNotFound, "Task not found")

	assert.ErrorIs(t, fmt.Errorf("x: %w", a), a)
	assert.NotErrorIs(t, a, b)
}
