package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Profile is the cached identity of the signed-in user.
type Profile struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Session bundles the bearer credential with the profile it was issued for.
// A zero Session means signed out.
type Session struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

// SessionStore persists the session between calls. Implementations must be
// safe for concurrent use.
type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// MemoryStore holds the session in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	session Session
}

// NewMemoryStore constructs an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements SessionStore.
func (s *MemoryStore) Load() (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, nil
}

// Save implements SessionStore.
func (s *MemoryStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return nil
}

// Clear implements SessionStore.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
	return nil
}

// FileStore persists the session as a JSON file, the CLI equivalent of the
// dashboard's browser-local storage.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore constructs a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements SessionStore. A missing file is a signed-out session, not
// an error.
func (s *FileStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Save implements SessionStore.
func (s *FileStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear implements SessionStore.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
