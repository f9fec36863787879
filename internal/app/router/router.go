package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "task_backend/internal/feature/auth/transport/handler"
	taskhandler "task_backend/internal/feature/tasks/transport/handler"
	"task_backend/internal/platform/http/handler"
	"task_backend/internal/platform/http/middleware"
	jwtmw "task_backend/internal/platform/jwt"
)

// Options はルーター構築に必要な横断的な依存です。
type Options struct {
	JWTSecret   string
	Users       jwtmw.UserChecker
	Limiter     middleware.Limiter
	FrontendURL string
	// Registry がnilの場合、/metrics は公開しない
	Registry *prometheus.Registry
}

func NewRouter(opts Options, authHandler *authhandler.AuthHandler, tasks *taskhandler.TaskHandler) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	if opts.Registry != nil {
		r.Use(middleware.NewMetrics(opts.Registry).Handler())
	}
	r.Use(middleware.SecurityHeaders())
	if opts.FrontendURL != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{opts.FrontendURL},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.ErrorHandler())

	// 認証不要
	// 導通確認用
	r.GET("/health", handler.Health)
	r.HEAD("/health", handler.Health)
	r.OPTIONS("/health", handler.Health)
	if opts.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	if opts.Limiter != nil {
		api.Use(middleware.RateLimit(opts.Limiter))
	}

	// 新規ユーザー登録 / ログイン（JWT 発行）
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	auth := api.Group("")
	auth.Use(jwtmw.AuthRequired(opts.JWTSecret, opts.Users))
	{
		auth.GET("/auth/me", authHandler.Me)

		auth.GET("/tasks", tasks.List)
		auth.POST("/tasks", tasks.Create)
		// :id より前に登録し、"stats" がIDとして解釈されないようにする
		auth.GET("/tasks/stats/dashboard", tasks.Stats)
		auth.GET("/tasks/:id", tasks.Get)
		auth.PUT("/tasks/:id", tasks.Update)
		auth.DELETE("/tasks/:id", tasks.Delete)
	}

	r.NoRoute(middleware.NotFound)

	return r
}
