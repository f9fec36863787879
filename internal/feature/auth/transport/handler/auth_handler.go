// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"task_backend/internal/api"
	"task_backend/internal/feature/auth/domain/entity"
	jwtmw "task_backend/internal/platform/jwt"
	"task_backend/internal/platform/validation"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録し、ユーザーとJWTトークンを返します。
	Register(ctx context.Context, name, email, password string) (*entity.User, string, error)
	// Login はユーザーを認証し、成功時にユーザーとJWTトークンを返します。
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	// Me は指定されたIDのユーザーを返します。
	Me(ctx context.Context, userID string) (*entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// エラーはc.Errorで登録し、共通のエラーミドルウェアが応答に変換します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタで、外部からAuthUsecaseを注入します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// ToUserResponse はユーザーを公開用の表現に変換します。パスワードハッシュは含みません。
func ToUserResponse(u *entity.User) api.UserResponse {
	return api.UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却
// - 成功時はトークン付きで201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req api.RegisterRequest
	if err := validation.BindJSON(c, &req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(err)
		return
	}
	user, token, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		slog.Warn("register failed", "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(err)
		return
	}
	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, api.AuthResponse{Success: true, Token: token, User: ToUserResponse(user)})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 認証失敗時は401を返却
// - 認証成功時はJWTトークン付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := validation.BindJSON(c, &req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(err)
		return
	}
	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		slog.Warn("login failed", "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(err)
		return
	}
	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.AuthResponse{Success: true, Token: token, User: ToUserResponse(user)})
}

// Me は認証済みユーザーの情報を返します。AuthRequiredミドルウェアの後段で使用します。
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		_ = c.Error(jwtmw.ErrNotAuthorized)
		return
	}
	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		slog.Warn("me lookup failed", "error", err, "user_id", userID)
		_ = c.Error(jwtmw.ErrNotAuthorized)
		return
	}
	c.JSON(http.StatusOK, api.MeResponse{Success: true, User: ToUserResponse(user)})
}
