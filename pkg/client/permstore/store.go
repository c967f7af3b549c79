// Package permstore caches the signed-in user's role and capability set.
// It is the single source of truth for "what can the current user do": the
// view layer reads it synchronously and every check fails closed until a
// load has finished.
package permstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hireloop-ats/hireloop/pkg/client"
)

// State tracks the store lifecycle. Loading and denied are distinct
// observable states so views can suppress content instead of flashing a
// denial.
type State int

const (
	// StateUninitialized means Load has never been called.
	StateUninitialized State = iota
	// StateLoading means a load or refresh is in flight.
	StateLoading
	// StateReady means the last load finished, successfully or not.
	StateReady
)

// Fetcher supplies the capability map. *client.Client satisfies it.
type Fetcher interface {
	Token() string
	MyPermissions(ctx context.Context) (client.Permissions, error)
}

// Store holds the capability set and role from the most recent load. The
// two are always written together from the same response, never partially.
type Store struct {
	api    Fetcher
	logger *slog.Logger

	mu    sync.RWMutex
	state State
	caps  map[string]bool
	role  string
}

// NewStore constructs a Store. Load must be called before permission
// checks return anything but false.
func NewStore(api Fetcher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: api, logger: logger}
}

// Load populates the store from the permissions endpoint. Without a
// credential, or on any fetch failure, the store still reaches READY with
// an empty capability set: checks fail closed and dependent views never
// hang on a load that cannot succeed.
func (s *Store) Load(ctx context.Context) {
	s.setState(StateLoading)

	if s.api.Token() == "" {
		s.finish(nil, "")
		return
	}

	perms, err := s.api.MyPermissions(ctx)
	if err != nil {
		s.logger.Warn("load permissions", slog.Any("error", err))
		s.finish(nil, "")
		return
	}
	s.finish(perms.Permissions, perms.Role)
}

// Refresh re-enters LOADING and reloads, for use after role changes.
// While the refresh is in flight every check returns false, including
// actions the previous READY state had granted.
func (s *Store) Refresh(ctx context.Context) {
	s.Load(ctx)
}

// State reports the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// HasPermission returns true only when the store is READY and the action
// maps to an explicit grant.
func (s *Store) HasPermission(action string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateReady && s.caps[action]
}

// HasAny reports whether any of the actions is granted.
func (s *Store) HasAny(actions ...string) bool {
	for _, action := range actions {
		if s.HasPermission(action) {
			return true
		}
	}
	return false
}

// HasAll reports whether every action is granted. An empty list is
// vacuously true once the store is READY.
func (s *Store) HasAll(actions ...string) bool {
	if s.State() != StateReady {
		return false
	}
	for _, action := range actions {
		if !s.HasPermission(action) {
			return false
		}
	}
	return true
}

// RoleIs matches the cached role exactly. False unless READY; a failed
// load clears any prior role.
func (s *Store) RoleIs(expected string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateReady && s.role == expected
}

// Role returns the cached role, empty unless READY.
func (s *Store) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return ""
	}
	return s.role
}

func (s *Store) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Store) finish(caps map[string]bool, role string) {
	s.mu.Lock()
	s.state = StateReady
	s.caps = caps
	s.role = role
	s.mu.Unlock()
}
