package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redisv9 "github.com/redis/go-redis/v9"

	"task_backend/internal/app/di"
	"task_backend/internal/app/router"
	authhandler "task_backend/internal/feature/auth/transport/handler"
	authusecase "task_backend/internal/feature/auth/usecase"
	taskhandler "task_backend/internal/feature/tasks/transport/handler"
	taskusecase "task_backend/internal/feature/tasks/usecase"
	"task_backend/internal/platform/cache"
	"task_backend/internal/platform/config"
	jwtmw "task_backend/internal/platform/jwt"
	"task_backend/internal/platform/logger"
	infraredis "task_backend/internal/platform/redis"
	"task_backend/internal/platform/validation"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	closer := logger.Setup(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	defer closer.Close()

	if err := validation.Register(); err != nil {
		return err
	}

	// Storage
	stores, err := di.NewStores(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}()

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, infraredis.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}); err != nil {
			slog.Warn("Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("Failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// AI suggestion
	suggester, err := di.NewSuggester(ctx, cfg.AI)
	if err != nil {
		slog.Warn("AI suggestions disabled", "error", err)
		suggester = nil
	}
	if suggester == nil {
		slog.Info("AI suggestions are not configured")
	}

	// Usecase
	authUC := authusecase.NewAuthUsecase(stores.Users, jwtmw.NewGenerator(cfg.App.JWTSecret, cfg.App.JWTExpiration))
	statsCache := cache.NewStatsCache(rdb, cfg.Redis.StatsTTL, "stats")
	taskUC := taskusecase.NewTaskUsecase(stores.Tasks, suggester, statsCache)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// ルータ生成
	engine := router.NewRouter(router.Options{
		JWTSecret:   cfg.App.JWTSecret,
		Users:       authUC,
		Limiter:     di.NewLimiter(rdb, cfg.Server),
		FrontendURL: cfg.Server.FrontendURL,
		Registry:    reg,
	}, authhandler.NewAuthHandler(authUC), taskhandler.NewTaskHandler(taskUC))

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "address", cfg.Server.Address, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
