// Package di はアプリケーションコンポーネントを生成する依存性注入ファクトリーを提供します。
package di

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	authadapters "task_backend/internal/feature/auth/adapters"
	authusecase "task_backend/internal/feature/auth/usecase"
	taskadapters "task_backend/internal/feature/tasks/adapters"
	taskusecase "task_backend/internal/feature/tasks/usecase"
	"task_backend/internal/platform/config"
	"task_backend/internal/platform/db"
	"task_backend/internal/platform/mongodb"
)

// Stores は選択されたバックエンドのリポジトリ一式です。
type Stores struct {
	Users authusecase.UserRepository
	Tasks taskusecase.TaskStore
	// Close はバックエンドへの接続を閉じます。
	Close func(ctx context.Context) error
}

// NewStores はSTORAGE_DRIVERに応じてMongoDBまたはGORMのリポジトリを生成します。
func NewStores(ctx context.Context, cfg config.Storage) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return newMongoStores(ctx, cfg)
	case config.DriverPostgres, config.DriverSQLite:
		gdb, err := db.Open(db.Config{
			Driver:     cfg.Driver,
			Host:       cfg.PGHost,
			Port:       cfg.PGPort,
			User:       cfg.PGUser,
			Password:   cfg.PGPassword,
			Name:       cfg.PGName,
			SSLMode:    cfg.PGSSLMode,
			SQLitePath: cfg.SQLitePath,
		})
		if err != nil {
			return nil, err
		}
		if cfg.RunMigrations {
			if err := db.Migrate(gdb); err != nil {
				return nil, err
			}
		}
		return NewGormStores(gdb), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
	}
}

// NewGormStores はGORM接続からリポジトリを生成します。
func NewGormStores(gdb *gorm.DB) *Stores {
	return &Stores{
		Users: authadapters.NewUserGorm(gdb),
		Tasks: taskadapters.NewTaskGorm(gdb),
		Close: func(context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

func newMongoStores(ctx context.Context, cfg config.Storage) (*Stores, error) {
	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	database := client.Database(cfg.MongoDatabase)

	users := authadapters.NewUserMongo(database.Collection(mongodb.UsersCollection))
	tasks := taskadapters.NewTaskMongo(database.Collection(mongodb.TasksCollection))
	if cfg.RunMigrations {
		if err := users.EnsureIndexes(ctx); err != nil {
			slog.Warn("failed to ensure user indexes", "error", err)
		}
		if err := tasks.EnsureIndexes(ctx); err != nil {
			slog.Warn("failed to ensure task indexes", "error", err)
		}
	}

	return &Stores{
		Users: users,
		Tasks: tasks,
		Close: client.Disconnect,
	}, nil
}
