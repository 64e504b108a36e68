package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpf-signin/internal/identity"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("USER_POOL_ID", "sa-east-1_pool")
	t.Setenv("CLIENT_ID", "client")
	t.Setenv("BACKEND_URL", "http://backend.local")
	t.Setenv("SHARED_PASSWORD", " Shared123! ")
}

func TestLoadConfig(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_RATE_LIMIT_MAX", "3")
	t.Setenv("LOGIN_RATE_LIMIT_WINDOW_SECONDS", "bogus")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "sa-east-1_pool", cfg.UserPoolID)
	assert.Equal(t, "client", cfg.ClientID)
	assert.Equal(t, "http://backend.local", cfg.BackendURL)
	assert.Equal(t, " Shared123! ", cfg.SharedPassword)
	assert.Equal(t, 3, cfg.RateLimitMax)
	assert.Equal(t, 60*time.Second, cfg.RateLimitWin)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	for _, name := range []string{"USER_POOL_ID", "CLIENT_ID", "BACKEND_URL", "SHARED_PASSWORD"} {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(name, "")

			_, err := LoadConfig()

			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestBuildWithConfig_Routes(t *testing.T) {
	runtime, err := BuildWithConfig(context.Background(), Config{
		UserPoolID:     "sa-east-1_pool",
		ClientID:       "client",
		BackendURL:     "http://127.0.0.1:1",
		SharedPassword: "Shared123!",
		Cognito: identity.CognitoConfig{
			Region:          "sa-east-1",
			Endpoint:        "http://127.0.0.1:1",
			AccessKeyID:     "test",
			SecretAccessKey: "test",
		},
		LogLevel: "error",
	})
	require.NoError(t, err)
	defer runtime.Close()

	rec := httptest.NewRecorder()
	runtime.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	runtime.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"cpf":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	runtime.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signin_requests_total")
}
