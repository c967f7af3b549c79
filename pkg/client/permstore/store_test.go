package permstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hireloop-ats/hireloop/pkg/client"
)

type fakeFetcher struct {
	mu      sync.Mutex
	token   string
	perms   client.Permissions
	err     error
	calls   int
	release chan struct{}
}

func (f *fakeFetcher) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeFetcher) MyPermissions(ctx context.Context) (client.Permissions, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.perms, f.err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUnknownActionsAreDenied(t *testing.T) {
	api := &fakeFetcher{
		token: "tok",
		perms: client.Permissions{
			Permissions: map[string]bool{"view_candidates": true, "manage_users": false},
			Role:        "recruiter",
		},
	}
	store := NewStore(api, testLogger())
	store.Load(context.Background())

	require.Equal(t, StateReady, store.State())
	require.True(t, store.HasPermission("view_candidates"))
	require.False(t, store.HasPermission("manage_users"), "explicit false is denied")
	require.False(t, store.HasPermission("delete_candidate"), "absent key is denied")
}

func TestChecksFailClosedWhileLoading(t *testing.T) {
	api := &fakeFetcher{
		token: "tok",
		perms: client.Permissions{
			Permissions: map[string]bool{"view_candidates": true},
			Role:        "admin",
		},
	}
	store := NewStore(api, testLogger())

	require.Equal(t, StateUninitialized, store.State())
	require.False(t, store.HasPermission("view_candidates"))

	store.Load(context.Background())
	require.True(t, store.HasPermission("view_candidates"))
	require.True(t, store.RoleIs("admin"))

	// Hold the refresh in flight: previously granted actions must deny.
	api.mu.Lock()
	api.release = make(chan struct{})
	api.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Refresh(context.Background())
	}()

	require.Eventually(t, func() bool {
		return store.State() == StateLoading
	}, time.Second, time.Millisecond)
	require.False(t, store.HasPermission("view_candidates"))
	require.False(t, store.RoleIs("admin"))

	close(api.release)
	<-done
	require.True(t, store.HasPermission("view_candidates"))
}

func TestHasAnyAndHasAll(t *testing.T) {
	api := &fakeFetcher{
		token: "tok",
		perms: client.Permissions{
			Permissions: map[string]bool{"view_candidates": true, "manage_users": false},
			Role:        "recruiter",
		},
	}
	store := NewStore(api, testLogger())
	store.Load(context.Background())

	require.True(t, store.HasAny("manage_users", "view_candidates"))
	require.False(t, store.HasAll("manage_users", "view_candidates"))
	require.True(t, store.HasAll("view_candidates"))
	require.False(t, store.HasAny("manage_users", "delete_candidate"))
}

func TestFetchFailureReachesReadyFullyDenied(t *testing.T) {
	api := &fakeFetcher{
		token: "tok",
		perms: client.Permissions{
			Permissions: map[string]bool{"view_candidates": true},
			Role:        "admin",
		},
	}
	store := NewStore(api, testLogger())
	store.Load(context.Background())
	require.True(t, store.RoleIs("admin"))

	api.mu.Lock()
	api.err = errors.New("connection refused")
	api.mu.Unlock()

	store.Refresh(context.Background())

	require.Equal(t, StateReady, store.State(), "failed load must not hang dependents")
	require.False(t, store.HasPermission("view_candidates"))
	require.False(t, store.RoleIs("admin"), "prior role is cleared on a failed load")
	require.Empty(t, store.Role())
}

func TestMissingCredentialSkipsFetch(t *testing.T) {
	api := &fakeFetcher{}
	store := NewStore(api, testLogger())
	store.Load(context.Background())

	require.Equal(t, StateReady, store.State())
	require.Zero(t, api.callCount(), "unauthenticated load must not hit the endpoint")
	require.False(t, store.HasPermission("view_candidates"))
}
