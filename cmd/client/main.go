package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"task_backend/internal/client/apiclient"
	"task_backend/internal/client/state"
	"task_backend/internal/platform/config"
	"task_backend/internal/platform/logger"
	"task_backend/internal/tui"
)

func main() {
	if err := run(); err != nil {
		slog.Error("client exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	// 画面を壊さないよう、ログはファイル指定時のみ出力する
	if cfg.Log.File != "" {
		l, closer := logger.New(io.Discard, logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
		defer closer.Close()
		slog.SetDefault(l)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := apiclient.New(cfg.APIURL, cfg.Timeout)
	if err != nil {
		return err
	}
	store := state.NewStore(client)

	if cfg.Token != "" {
		client.SetToken(cfg.Token)
		user, err := client.Me(ctx)
		if err != nil {
			slog.Warn("stored token rejected", "error", err)
			client.SetToken("")
		} else {
			store.Dispatch(state.AuthSucceeded{Token: cfg.Token, User: *user})
		}
	}

	return tui.Run(ctx, store)
}
