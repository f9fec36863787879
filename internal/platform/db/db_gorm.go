// Package db はリレーショナルストア（PostgreSQL / SQLite）への接続を提供します。
package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authadapters "task_backend/internal/feature/auth/adapters"
	taskadapters "task_backend/internal/feature/tasks/adapters"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// Config はデータベース接続の設定です。
type Config struct {
	Driver string // "postgres" または "sqlite"

	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	SQLitePath string

	// ConnectTimeout は接続リトライを諦めるまでの時間
	ConnectTimeout time.Duration
}

// Opener はDSNからDBを開く関数です。テストで差し替え可能。
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN はPostgreSQL用のDSN文字列を生成します。
func BuildDSN(cfg Config) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// gormConfig は全ドライバー共通のGORM設定です。
// TranslateError によりユニーク制約違反が gorm.ErrDuplicatedKey に変換される。
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// ConnectWithRetry はタイムアウトまで一定間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

// Open は設定されたドライバーでDBを開きます。
func Open(cfg Config) (*gorm.DB, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	switch cfg.Driver {
	case "postgres":
		return ConnectWithRetry(BuildDSN(cfg), timeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gormConfig())
		})
	case "sqlite":
		gdb, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormConfig())
		if err != nil {
			return nil, err
		}
		// SQLiteは書き込みが直列なので接続を1本に制限する（:memory: の共有にも必要）
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return gdb, nil
	default:
		return nil, fmt.Errorf("unsupported gorm driver %q", cfg.Driver)
	}
}

// Migrate はusers / tasks テーブルをマイグレーションします。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&authadapters.UserModel{},
		&taskadapters.TaskModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
