package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"task_backend/internal/app/di"
	"task_backend/internal/app/seed"
	authusecase "task_backend/internal/feature/auth/usecase"
	taskusecase "task_backend/internal/feature/tasks/usecase"
	"task_backend/internal/platform/config"
	jwtmw "task_backend/internal/platform/jwt"
	"task_backend/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	closer := logger.Setup(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stores, err := di.NewStores(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}()

	// AI提案はシードでは使わない
	authUC := authusecase.NewAuthUsecase(stores.Users, jwtmw.NewGenerator(cfg.App.JWTSecret, cfg.App.JWTExpiration))
	taskUC := taskusecase.NewTaskUsecase(stores.Tasks, nil, nil)

	user, n, err := seed.Run(ctx, authUC, taskUC, time.Now().UTC())
	if err != nil {
		return err
	}
	slog.Info("seed data inserted", "email", user.Email, "password", seed.DemoPassword, "tasks", n)
	return nil
}
