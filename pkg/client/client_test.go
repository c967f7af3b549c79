package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	api := New(srv.URL)
	require.NoError(t, api.sessions.Save(Session{Token: "tok-123"}))

	var out map[string]bool
	require.NoError(t, api.JSON(context.Background(), http.MethodGet, "/api/candidates", nil, &out))
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.True(t, out["ok"])
}

func TestUnauthorizedClearsSessionAndFiresHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid authentication credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	hookCalls := 0
	api := New(srv.URL, WithUnauthorizedHook(func() { hookCalls++ }))
	require.NoError(t, api.sessions.Save(Session{Token: "stale", Profile: Profile{ID: 7, Role: "admin"}}))

	err := api.JSON(context.Background(), http.MethodGet, "/api/auth/me", nil, nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, 1, hookCalls)
	require.Empty(t, api.Token())
	require.Zero(t, api.Session().Profile)
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"version conflict"}`, http.StatusConflict)
	}))
	defer srv.Close()

	api := New(srv.URL)
	err := api.JSON(context.Background(), http.MethodPut, "/api/candidates/1", map[string]string{"status": "hired"}, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, "version conflict", apiErr.Message)
}

func TestLoginPersistsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-9","token_type":"bearer","user":{"id":9,"username":"dana","full_name":"Dana","role":"hr_manager","is_active":true}}`))
	}))
	defer srv.Close()

	api := New(srv.URL)
	user, err := api.Login(context.Background(), "dana", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "hr_manager", user.Role)
	require.Equal(t, "tok-9", api.Token())
	require.Equal(t, Profile{ID: 9, FullName: "Dana", Role: "hr_manager"}, api.Session().Profile)
}

func TestLiveURLCarriesCredential(t *testing.T) {
	api := New("https://ats.example.com/")
	require.NoError(t, api.sessions.Save(Session{Token: "tok"}))

	endpoint, err := api.LiveURL()
	require.NoError(t, err)
	require.Equal(t, "wss://ats.example.com/ws?token=tok", endpoint)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	store := NewFileStore(path)

	session, err := store.Load()
	require.NoError(t, err)
	require.Zero(t, session)

	require.NoError(t, store.Save(Session{Token: "tok", Profile: Profile{ID: 3, Role: "recruiter"}}))
	session, err = store.Load()
	require.NoError(t, err)
	require.Equal(t, "tok", session.Token)
	require.Equal(t, "recruiter", session.Profile.Role)

	require.NoError(t, store.Clear())
	session, err = store.Load()
	require.NoError(t, err)
	require.Zero(t, session)
}
