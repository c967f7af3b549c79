package auth_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"time"

	"github.com/hireloop-ats/hireloop/internal/auth"
)

func newTestRouter(t *testing.T) (chi.Router, *auth.Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	svc := auth.NewService(
		logger,
		seededRepo(t),
		auth.NewTokenIssuer("test-secret", time.Hour),
		auth.NewSessionRegistry(client, time.Hour),
	)
	handler := auth.NewHandler(logger, svc)
	r := chi.NewRouter()
	r.Use(auth.Middleware(svc))
	r.Route("/api/auth", handler.MountRoutes)
	return r, svc
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	res := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "ana", "password": "correct horse",
	})
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		User        struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.AccessToken)
	require.Equal(t, "bearer", payload.TokenType)
	require.Equal(t, "ana", payload.User.Username)
	require.Equal(t, "hr_manager", payload.User.Role)
}

func TestLoginEndpointRejectsBadCredentials(t *testing.T) {
	router, _ := newTestRouter(t)
	res := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "ana", "password": "nope",
	})
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestMeRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)
	res := doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	router, _ := newTestRouter(t)

	res := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "ana", "password": "correct horse",
	})
	require.Equal(t, http.StatusOK, res.Code)
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))

	res = doJSON(t, router, http.MethodGet, "/api/auth/me", payload.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.Code)

	res = doJSON(t, router, http.MethodPost, "/api/auth/logout", payload.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.Code)

	res = doJSON(t, router, http.MethodGet, "/api/auth/me", payload.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}
