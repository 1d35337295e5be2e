package controller

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
	apperrors "github.com/rhinoeg/rhino-backend/internal/errors"
	"github.com/rhinoeg/rhino-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret"

type memoryRevoker struct {
	revoked map[string]time.Duration
}

func (m *memoryRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.revoked[tokenID] = ttl
	return nil
}

func setupAuthControllerTest(t *testing.T) (*controllerEnv, *memoryRevoker) {
	env := setupControllerTest(t)
	revoker := &memoryRevoker{revoked: map[string]time.Duration{}}
	authService := service.NewAuthService(repository.NewUserRepository(env.db), revoker, testJWTSecret, time.Hour)
	ctrl := NewAuthController(authService)

	env.router.POST("/auth/register", ctrl.Register)
	env.router.POST("/auth/login", ctrl.Login)
	env.router.GET("/auth/me", asUser(env.user.ID, ctrl.GetMe))
	env.router.POST("/auth/logout", func(c *gin.Context) {
		claims, err := util.ValidateToken(c.GetHeader("X-Token"), testJWTSecret)
		if err == nil {
			c.Set("claims", claims)
		}
		ctrl.Logout(c)
	})
	return env, revoker
}

func TestAuthController_RegisterAndLogin(t *testing.T) {
	env, _ := setupAuthControllerTest(t)

	w := env.do(t, http.MethodPost, "/auth/register", map[string]string{
		"email":    "new@example.com",
		"password": "password123",
		"name":     "New User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, "Bearer", body["token_type"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "new@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")

	w = env.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "new@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthController_Errors(t *testing.T) {
	env, _ := setupAuthControllerTest(t)

	tests := []struct {
		name       string
		path       string
		body       map[string]string
		wantStatus int
		wantCode   string
	}{
		{"Invalid email", "/auth/register", map[string]string{"email": "nope", "password": "password123", "name": "X"}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"Short password", "/auth/register", map[string]string{"email": "a@example.com", "password": "short", "name": "X"}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"Duplicate email", "/auth/register", map[string]string{"email": "test@example.com", "password": "password123", "name": "X"}, http.StatusConflict, apperrors.AuthEmailAlreadyExists},
		{"Wrong password", "/auth/login", map[string]string{"email": "test@example.com", "password": "password123"}, http.StatusUnauthorized, apperrors.AuthInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, tt.path, tt.body)
			assertErrorCode(t, w, tt.wantStatus, tt.wantCode)
		})
	}
}

func TestAuthController_MeAndLogout(t *testing.T) {
	env, revoker := setupAuthControllerTest(t)

	w := env.do(t, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test@example.com", decodeBody(t, w)["user"].(map[string]interface{})["email"])

	token, claims, err := util.GenerateAccessToken(env.user.ID, env.user.Email, "user", testJWTSecret, time.Hour)
	require.NoError(t, err)

	w = env.do(t, http.MethodPost, "/auth/logout", nil)
	assertErrorCode(t, w, http.StatusUnauthorized, apperrors.AuthUnauthorized)

	w = env.doWithHeader(t, http.MethodPost, "/auth/logout", "X-Token", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, revoker.revoked, claims.ID)
}
