package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"task_backend/internal/app/di"
	authusecase "task_backend/internal/feature/auth/usecase"
	"task_backend/internal/feature/tasks/domain/entity"
	taskusecase "task_backend/internal/feature/tasks/usecase"
	"task_backend/internal/platform/db"
	jwtmw "task_backend/internal/platform/jwt"
)

func setup(t *testing.T) (Accounts, Tasks) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	stores := di.NewGormStores(gdb)
	return authusecase.NewAuthUsecase(stores.Users, jwtmw.NewGenerator("seed-secret", time.Hour)),
		taskusecase.NewTaskUsecase(stores.Tasks, nil, nil)
}

func TestSampleTasks(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	samples := SampleTasks(now)
	require.Len(t, samples, 5)
	assert.Equal(t, now.Add(7*day), samples[0].DueDate)
	assert.Equal(t, entity.PriorityUrgent, samples[4].Priority)
}

func TestRun_IsRepeatable(t *testing.T) {
	t.Parallel()
	accounts, tasks := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// デモユーザー以外のデータは残ること
	other, _, err := accounts.Register(ctx, "Ann", "ann@example.com", "secret123")
	require.NoError(t, err)
	_, err = tasks.Create(ctx, other.ID, &entity.Task{Title: "Mine", Description: "d", DueDate: now})
	require.NoError(t, err)

	user, n, err := Run(ctx, accounts, tasks, now)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, DemoEmail, user.Email)

	again, n, err := Run(ctx, accounts, tasks, now)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, user.ID, again.ID)

	list, err := tasks.List(ctx, user.ID, entity.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 5)

	mine, err := tasks.List(ctx, other.ID, entity.Filter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
