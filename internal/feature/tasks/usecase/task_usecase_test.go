package usecase

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/shared/apperr"
)

// memoryStore is an in-memory TaskStore that enforces owner scoping the same way the real adapters do.
type memoryStore struct {
	mu     sync.Mutex
	seq    int
	tasks  map[string]entity.Task
	saves  int
	failOn map[string]error // method name -> forced error
	// onSummary は集計の直前に呼ばれます。
	onSummary func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tasks: map[string]entity.Task{}, failOn: map[string]error{}}
}

func (s *memoryStore) ForOwner(ownerID string) OwnerTaskRepository {
	return &memoryOwnerRepo{store: s, owner: ownerID}
}

type memoryOwnerRepo struct {
	store *memoryStore
	owner string
}

func (r *memoryOwnerRepo) fail(method string) error {
	return r.store.failOn[method]
}

func (r *memoryOwnerRepo) List(_ context.Context, f entity.Filter) ([]entity.Task, error) {
	if err := r.fail("List"); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []entity.Task
	for _, t := range r.store.tasks {
		if t.OwnerID != r.owner {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryOwnerRepo) FindByID(_ context.Context, id string) (*entity.Task, error) {
	if err := r.fail("FindByID"); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tasks[id]
	if !ok || t.OwnerID != r.owner {
		return nil, ErrTaskNotFound
	}
	return &t, nil
}

func (r *memoryOwnerRepo) Create(_ context.Context, task *entity.Task) error {
	if err := r.fail("Create"); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.seq++
	task.ID = strconv.Itoa(r.store.seq)
	task.OwnerID = r.owner
	r.store.tasks[task.ID] = *task
	return nil
}

func (r *memoryOwnerRepo) Save(_ context.Context, task *entity.Task) error {
	if err := r.fail("Save"); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cur, ok := r.store.tasks[task.ID]
	if !ok || cur.OwnerID != r.owner {
		return ErrTaskNotFound
	}
	r.store.saves++
	cur.Title = task.Title
	cur.Description = task.Description
	cur.Priority = task.Priority
	cur.Status = task.Status
	cur.DueDate = task.DueDate
	cur.AISuggestion = task.AISuggestion
	cur.UpdatedAt = task.UpdatedAt
	r.store.tasks[task.ID] = cur
	return nil
}

func (r *memoryOwnerRepo) Delete(_ context.Context, id string) error {
	if err := r.fail("Delete"); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tasks[id]
	if !ok || t.OwnerID != r.owner {
		return ErrTaskNotFound
	}
	delete(r.store.tasks, id)
	return nil
}

func (r *memoryOwnerRepo) Summary(_ context.Context) (entity.Summary, error) {
	if err := r.fail("Summary"); err != nil {
		return entity.Summary{}, err
	}
	if hook := r.store.onSummary; hook != nil {
		r.store.onSummary = nil
		hook()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var s entity.Summary
	for _, t := range r.store.tasks {
		if t.OwnerID != r.owner {
			continue
		}
		s.Total++
		switch t.Status {
		case entity.StatusCompleted:
			s.Completed++
		case entity.StatusPending:
			s.Pending++
		case entity.StatusInProgress:
			s.InProgress++
		}
		if t.Priority.IsHigh() {
			s.HighPriority++
		}
	}
	return s, nil
}

func (r *memoryOwnerRepo) group(key func(entity.Task) string) []entity.GroupCount {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	counts := map[string]int64{}
	for _, t := range r.store.tasks {
		if t.OwnerID == r.owner {
			counts[key(t)]++
		}
	}
	out := make([]entity.GroupCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, entity.GroupCount{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *memoryOwnerRepo) CountByPriority(_ context.Context) ([]entity.GroupCount, error) {
	return r.group(func(t entity.Task) string { return string(t.Priority) }), nil
}

func (r *memoryOwnerRepo) CountByStatus(_ context.Context) ([]entity.GroupCount, error) {
	return r.group(func(t entity.Task) string { return string(t.Status) }), nil
}

// mockSuggester is a mock implementation of Suggester.
type mockSuggester struct {
	SuggestFunc func(ctx context.Context, prompt string) (string, error)
	calls       int
}

func (m *mockSuggester) Suggest(ctx context.Context, prompt string) (string, error) {
	m.calls++
	if m.SuggestFunc != nil {
		return m.SuggestFunc(ctx, prompt)
	}
	return "", errors.New("not configured")
}

// mockStatsCache records invalidations and serves a preset value.
type mockStatsCache struct {
	cached      map[string]*entity.DashboardStats
	invalidated []string
}

func newMockStatsCache() *mockStatsCache {
	return &mockStatsCache{cached: map[string]*entity.DashboardStats{}}
}

func (m *mockStatsCache) Get(_ context.Context, ownerID string) (*entity.DashboardStats, bool) {
	s, ok := m.cached[ownerID]
	return s, ok
}

func (m *mockStatsCache) Set(_ context.Context, ownerID string, stats *entity.DashboardStats) {
	m.cached[ownerID] = stats
}

func (m *mockStatsCache) Invalidate(_ context.Context, ownerID string) {
	delete(m.cached, ownerID)
	m.invalidated = append(m.invalidated, ownerID)
}

func newTask(title string) *entity.Task {
	return &entity.Task{
		Title:       title,
		Description: "desc",
		DueDate:     time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTaskUsecase_Create(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults and stores suggestion", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore()
		var gotPrompt string
		sug := &mockSuggester{SuggestFunc: func(_ context.Context, prompt string) (string, error) {
			gotPrompt = prompt
			return "  Do it soon.  ", nil
		}}
		cache := newMockStatsCache()
		uc := NewTaskUsecase(store, sug, cache)

		task, err := uc.Create(context.Background(), "u1", newTask("  Write report "))
		require.NoError(t, err)

		assert.NotEmpty(t, task.ID)
		assert.Equal(t, "u1", task.OwnerID)
		assert.Equal(t, "Write report", task.Title)
		assert.Equal(t, entity.PriorityMedium, task.Priority)
		assert.Equal(t, entity.StatusPending, task.Status)
		assert.Equal(t, "Do it soon.", task.AISuggestion)
		assert.False(t, task.CreatedAt.IsZero())
		assert.Contains(t, gotPrompt, "Title: Write report")
		assert.Contains(t, gotPrompt, "Due Date: 2026-11-01")
		assert.Contains(t, gotPrompt, "Current Priority: medium")
		assert.Equal(t, []string{"u1"}, cache.invalidated)

		stored, err := store.ForOwner("u1").FindByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Do it soon.", stored.AISuggestion)
	})

	t.Run("suggestion failure still creates the task", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore()
		sug := &mockSuggester{SuggestFunc: func(context.Context, string) (string, error) {
			return "", errors.New("upstream down")
		}}
		uc := NewTaskUsecase(store, sug, nil)

		task, err := uc.Create(context.Background(), "u1", newTask("A"))
		require.NoError(t, err)
		assert.Empty(t, task.AISuggestion)
		assert.Equal(t, 0, store.saves)
	})

	t.Run("suggestion save failure returns the persisted state", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore()
		store.failOn["Save"] = errors.New("write failed")
		sug := &mockSuggester{SuggestFunc: func(context.Context, string) (string, error) {
			return "tip", nil
		}}
		uc := NewTaskUsecase(store, sug, nil)

		task, err := uc.Create(context.Background(), "u1", newTask("A"))
		require.NoError(t, err)
		assert.Empty(t, task.AISuggestion)
	})

	t.Run("nil suggester skips annotation", func(t *testing.T) {
		t.Parallel()
		uc := NewTaskUsecase(newMemoryStore(), nil, nil)

		task, err := uc.Create(context.Background(), "u1", newTask("A"))
		require.NoError(t, err)
		assert.Empty(t, task.AISuggestion)
	})

	t.Run("client-supplied id, owner and suggestion are ignored", func(t *testing.T) {
		t.Parallel()
		uc := NewTaskUsecase(newMemoryStore(), nil, nil)
		in := newTask("A")
		in.ID = "forged"
		in.OwnerID = "someone-else"
		in.AISuggestion = "forged"

		task, err := uc.Create(context.Background(), "u1", in)
		require.NoError(t, err)
		assert.NotEqual(t, "forged", task.ID)
		assert.Equal(t, "u1", task.OwnerID)
		assert.Empty(t, task.AISuggestion)
	})

	t.Run("validation errors list every field", func(t *testing.T) {
		t.Parallel()
		sug := &mockSuggester{}
		uc := NewTaskUsecase(newMemoryStore(), sug, nil)

		_, err := uc.Create(context.Background(), "u1", &entity.Task{Title: "  ", Priority: "critical"})
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		fields := map[string]string{}
		for _, f := range ve.Fields {
			fields[f.Field] = f.Message
		}
		assert.Equal(t, "Title is required", fields["title"])
		assert.Equal(t, "Description is required", fields["description"])
		assert.Equal(t, "Valid due date is required", fields["dueDate"])
		assert.Equal(t, "Invalid priority", fields["priority"])
		assert.Equal(t, 0, sug.calls)
	})

	t.Run("repository failure is wrapped", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore()
		dbErr := errors.New("db down")
		store.failOn["Create"] = dbErr
		uc := NewTaskUsecase(store, nil, nil)

		_, err := uc.Create(context.Background(), "u1", newTask("A"))
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestTaskUsecase_OwnerIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc := NewTaskUsecase(newMemoryStore(), nil, nil)

	mine, err := uc.Create(ctx, "alice", newTask("mine"))
	require.NoError(t, err)

	_, err = uc.Get(ctx, "bob", mine.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	title := "hijacked"
	_, err = uc.Update(ctx, "bob", mine.ID, entity.Patch{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	assert.ErrorIs(t, uc.Delete(ctx, "bob", mine.ID), ErrTaskNotFound)

	list, err := uc.List(ctx, "bob", entity.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := uc.Get(ctx, "alice", mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
}

func TestTaskUsecase_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		t.Parallel()
		cache := newMockStatsCache()
		uc := NewTaskUsecase(newMemoryStore(), nil, cache)
		created, err := uc.Create(ctx, "u1", newTask("A"))
		require.NoError(t, err)

		status := entity.StatusCompleted
		updated, err := uc.Update(ctx, "u1", created.ID, entity.Patch{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, entity.StatusCompleted, updated.Status)
		assert.Equal(t, "A", updated.Title)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.Equal(t, []string{"u1", "u1"}, cache.invalidated)
	})

	t.Run("invalid value is rejected without writing", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore()
		uc := NewTaskUsecase(store, nil, nil)
		created, err := uc.Create(ctx, "u1", newTask("A"))
		require.NoError(t, err)

		bad := entity.Status("done")
		_, err = uc.Update(ctx, "u1", created.ID, entity.Patch{Status: &bad})
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "status", ve.Fields[0].Field)
		assert.Equal(t, 0, store.saves)
	})

	t.Run("blank title is rejected", func(t *testing.T) {
		t.Parallel()
		uc := NewTaskUsecase(newMemoryStore(), nil, nil)
		created, err := uc.Create(ctx, "u1", newTask("A"))
		require.NoError(t, err)

		blank := "   "
		_, err = uc.Update(ctx, "u1", created.ID, entity.Patch{Title: &blank})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("empty patch returns the task unchanged", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore()
		uc := NewTaskUsecase(store, nil, nil)
		created, err := uc.Create(ctx, "u1", newTask("A"))
		require.NoError(t, err)

		got, err := uc.Update(ctx, "u1", created.ID, entity.Patch{})
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, 0, store.saves)
	})

	t.Run("invalid id is passed through", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore()
		store.failOn["FindByID"] = ErrInvalidTaskID
		uc := NewTaskUsecase(store, nil, nil)

		_, err := uc.Update(ctx, "u1", "???", entity.Patch{})
		assert.ErrorIs(t, err, ErrInvalidTaskID)
	})
}

func TestTaskUsecase_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc := NewTaskUsecase(newMemoryStore(), nil, nil)

	created, err := uc.Create(ctx, "u1", newTask("A"))
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, "u1", created.ID))
	_, err = uc.Get(ctx, "u1", created.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, "u1", created.ID), ErrTaskNotFound)
}

func TestTaskUsecase_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc := NewTaskUsecase(newMemoryStore(), nil, nil)

	a := newTask("A")
	a.Status = entity.StatusCompleted
	_, err := uc.Create(ctx, "u1", a)
	require.NoError(t, err)
	_, err = uc.Create(ctx, "u1", newTask("B"))
	require.NoError(t, err)

	all, err := uc.List(ctx, "u1", entity.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	done, err := uc.List(ctx, "u1", entity.Filter{Status: entity.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "A", done[0].Title)
}

func TestTaskUsecase_DashboardStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("zero tasks yield zeros", func(t *testing.T) {
		t.Parallel()
		uc := NewTaskUsecase(newMemoryStore(), nil, nil)

		stats, err := uc.DashboardStats(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, entity.Summary{}, stats.Summary)
		assert.Empty(t, stats.PriorityBreakdown)
		assert.Empty(t, stats.StatusBreakdown)
	})

	t.Run("counts are consistent", func(t *testing.T) {
		t.Parallel()
		cache := newMockStatsCache()
		uc := NewTaskUsecase(newMemoryStore(), nil, cache)
		for _, p := range []entity.Priority{entity.PriorityHigh, entity.PriorityUrgent, entity.PriorityLow} {
			task := newTask("t")
			task.Priority = p
			_, err := uc.Create(ctx, "u1", task)
			require.NoError(t, err)
		}
		_, err := uc.Create(ctx, "other", newTask("x"))
		require.NoError(t, err)

		stats, err := uc.DashboardStats(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.Summary.Total)
		assert.Equal(t, int64(2), stats.Summary.HighPriority)
		assert.Equal(t, stats.Summary.Total, stats.Summary.Completed+stats.Summary.Pending+stats.Summary.InProgress)

		var sum int64
		for _, g := range stats.PriorityBreakdown {
			sum += g.Count
		}
		assert.Equal(t, stats.Summary.Total, sum)
		assert.Same(t, stats, cache.cached["u1"])
	})

	t.Run("cache hit skips the repository", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore()
		store.failOn["Summary"] = errors.New("must not be called")
		cache := newMockStatsCache()
		want := &entity.DashboardStats{Summary: entity.Summary{Total: 7}}
		cache.cached["u1"] = want
		uc := NewTaskUsecase(store, nil, cache)

		got, err := uc.DashboardStats(ctx, "u1")
		require.NoError(t, err)
		assert.Same(t, want, got)
	})

	t.Run("write during computation skips caching", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore()
		cache := newMockStatsCache()
		uc := NewTaskUsecase(store, nil, cache)
		_, err := uc.Create(ctx, "u1", newTask("first"))
		require.NoError(t, err)

		store.onSummary = func() {
			_, err := uc.Create(ctx, "u1", newTask("concurrent"))
			require.NoError(t, err)
		}
		_, err = uc.DashboardStats(ctx, "u1")
		require.NoError(t, err)
		_, cached := cache.cached["u1"]
		assert.False(t, cached)

		stats, err := uc.DashboardStats(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Summary.Total)
		assert.Same(t, stats, cache.cached["u1"])
	})

	t.Run("repository failure", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore()
		store.failOn["Summary"] = errors.New("db down")
		uc := NewTaskUsecase(store, nil, nil)

		_, err := uc.DashboardStats(ctx, "u1")
		assert.Error(t, err)
	})
}
