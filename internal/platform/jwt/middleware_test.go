package jwtmw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockUserChecker is a mock implementation of UserChecker.
type mockUserChecker struct {
	UserExistsFunc func(ctx context.Context, id string) (bool, error)
}

func (m *mockUserChecker) UserExists(ctx context.Context, id string) (bool, error) {
	if m.UserExistsFunc != nil {
		return m.UserExistsFunc(ctx, id)
	}
	return true, nil
}

// run executes the middleware once against a request carrying authHeader.
func run(t *testing.T, secret string, users UserChecker, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	AuthRequired(secret, users)(c)
	return w, c
}

// TestAuthRequired_Rejects は認証に失敗するすべてのケースで中断され、同じエラーが登録されることを検証します。
func TestAuthRequired_Rejects(t *testing.T) {
	t.Parallel()
	const secret = "test-secret"

	tests := []struct {
		name       string
		authHeader string
		users      UserChecker
	}{
		{"no header", "", &mockUserChecker{}},
		{"basic auth", "Basic dXNlcjpwYXNz", &mockUserChecker{}},
		{"bearer lowercase", "bearer token123", &mockUserChecker{}},
		{"malformed token", "Bearer not.a.valid.token", &mockUserChecker{}},
		{"wrong secret", "Bearer " + createTokenWithSecret("wrong-secret", "u1", time.Hour), &mockUserChecker{}},
		{"expired token", "Bearer " + createTokenWithSecret(secret, "u1", -time.Hour), &mockUserChecker{}},
		{
			"deleted user",
			"Bearer " + createTokenWithSecret(secret, "u1", time.Hour),
			&mockUserChecker{UserExistsFunc: func(context.Context, string) (bool, error) { return false, nil }},
		},
		{
			"lookup failure",
			"Bearer " + createTokenWithSecret(secret, "u1", time.Hour),
			&mockUserChecker{UserExistsFunc: func(context.Context, string) (bool, error) { return false, errors.New("db down") }},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, c := run(t, secret, tt.users, tt.authHeader)

			assert.True(t, c.IsAborted(), "expected request to be aborted")
			if assert.Len(t, c.Errors, 1) {
				assert.ErrorIs(t, c.Errors.Last().Err, ErrNotAuthorized)
			}
			_, ok := UserIDFrom(c)
			assert.False(t, ok)
		})
	}
}

// TestAuthRequired_ValidToken は有効なトークンでリクエストが通過し、コンテキストにユーザーIDが設定されることを検証します。
func TestAuthRequired_ValidToken(t *testing.T) {
	t.Parallel()
	const secret = "test-secret-key-for-valid"

	var looked string
	users := &mockUserChecker{UserExistsFunc: func(_ context.Context, id string) (bool, error) {
		looked = id
		return true, nil
	}}
	_, c := run(t, secret, users, "Bearer "+createTokenWithSecret(secret, "665f1c2ab4d3e9a1c0f4b2a7", time.Hour))

	assert.False(t, c.IsAborted())
	id, ok := UserIDFrom(c)
	assert.True(t, ok)
	assert.Equal(t, "665f1c2ab4d3e9a1c0f4b2a7", id)
	assert.Equal(t, id, looked)
}

// TestAuthRequired_InvalidSigningMethod はnoneアルゴリズム（未署名）のトークンが拒否されることを検証します。
func TestAuthRequired_InvalidSigningMethod(t *testing.T) {
	t.Parallel()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	tokenStr, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)

	_, c := run(t, "test-secret-key-for-signing", &mockUserChecker{}, "Bearer "+tokenStr)
	assert.True(t, c.IsAborted())
}

// createTokenWithSecret はテスト用に指定されたシークレットとユーザーIDで署名済みJWTトークンを生成します。
func createTokenWithSecret(secret, userID string, expiration time.Duration) string {
	claims := jwt.MapClaims{
		"sub":   userID,
		"exp":   time.Now().Add(expiration).Unix(),
		"iat":   time.Now().Unix(),
		"email": "test@example.com",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte(secret))
	return signed
}
