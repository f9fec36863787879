// Package config はアプリケーション設定を環境変数から読み込みます。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ストレージドライバー
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnknownDriver はSTORAGE_DRIVERがサポート外の値の場合に返されます。
var ErrUnknownDriver = errors.New("unknown storage driver")

// Config はアプリケーション全体の設定です。
type Config struct {
	Server  Server  `envPrefix:"SERVER_"`
	App     App     `envPrefix:"APP_"`
	Storage Storage `envPrefix:"STORAGE_"`
	Redis   Redis   `envPrefix:"REDIS_"`
	AI      AI      `envPrefix:"AI_"`
	Log     Log     `envPrefix:"LOG_"`
}

// Server はHTTPサーバーの設定です。
type Server struct {
	Address         string        `env:"ADDRESS" envDefault:":5000"`
	FrontendURL     string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// App は認証関連の設定です。
type App struct {
	JWTSecret     string        `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"720h"`
}

// Storage は永続化層の設定です。
type Storage struct {
	Driver        string `env:"DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"task_backend"`

	PGHost     string `env:"PG_HOST" envDefault:"localhost"`
	PGPort     string `env:"PG_PORT" envDefault:"5432"`
	PGUser     string `env:"PG_USER" envDefault:"postgres"`
	PGPassword string `env:"PG_PASSWORD"`
	PGName     string `env:"PG_NAME" envDefault:"task_backend"`
	PGSSLMode  string `env:"PG_SSLMODE" envDefault:"disable"`

	SQLitePath    string `env:"SQLITE_PATH" envDefault:"task_backend.db"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
}

// Redis はRedis接続の設定です。Addressが空の場合Redisは使用しません。
type Redis struct {
	Address  string `env:"ADDRESS"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	// StatsTTL はダッシュボード統計のキャッシュ期間
	StatsTTL time.Duration `env:"STATS_TTL" envDefault:"1m"`
}

// AI はAI提案機能の設定です。APIKeyが空の場合は無効になります。
type AI struct {
	APIKey  string        `env:"API_KEY"`
	Model   string        `env:"MODEL" envDefault:"gemini-2.5-flash"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Log はロギングの設定です。
type Log struct {
	Level string `env:"LEVEL" envDefault:"info"`
	File  string `env:"FILE"`
}

// Enabled はAI提案が設定されているかを返します。
func (a AI) Enabled() bool { return a.APIKey != "" }

// Enabled はRedisが設定されているかを返します。
func (r Redis) Enabled() bool { return r.Address != "" }

// Load は .env ファイル（存在する場合）を読み込んだ後、環境変数から設定を構築します。
func Load() (*Config, error) {
	// .envが無いのは本番では普通なので警告に留める
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not loaded", "error", err)
	}
	return Parse()
}

// Parse は現在の環境変数から設定を構築し検証します。
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は設定値の整合性を確認します。
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongo, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Storage.Driver)
	}
	if c.Server.RateLimitMax <= 0 {
		return errors.New("SERVER_RATE_LIMIT_MAX must be positive")
	}
	if c.Server.RateLimitWindow <= 0 {
		return errors.New("SERVER_RATE_LIMIT_WINDOW must be positive")
	}
	if c.App.JWTExpiration <= 0 {
		return errors.New("APP_JWT_EXPIRATION must be positive")
	}
	return nil
}

// Client はターミナルクライアントの設定です。
type Client struct {
	APIURL  string        `env:"API_URL" envDefault:"http://localhost:5000"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
	// Token が設定されている場合、ログイン画面を省略する
	Token string `env:"TOKEN"`
	Log   Log    `envPrefix:"LOG_"`
}

// LoadClient は TASK_CLIENT_ 接頭辞の環境変数からクライアント設定を読み込みます。
func LoadClient() (*Client, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not loaded", "error", err)
	}
	var cfg Client
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "TASK_CLIENT_"}); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	return &cfg, nil
}
