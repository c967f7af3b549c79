package auth_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hireloop-ats/hireloop/internal/auth"
	"github.com/hireloop-ats/hireloop/internal/shared"
	_ "github.com/hireloop-ats/hireloop/testing"
)

type stubRepo struct {
	users map[int64]*auth.User
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindByLogin(ctx context.Context, login string) (*auth.User, error) {
	for _, u := range s.users {
		if u.Username == login || u.Email == login {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) CreateUser(ctx context.Context, user auth.User) (*auth.User, error) {
	user.ID = int64(len(s.users) + 1)
	user.IsActive = true
	user.CreatedAt = time.Now()
	s.users[user.ID] = &user
	return &user, nil
}

func (s *stubRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	if u, ok := s.users[id]; ok {
		u.LastLogin = at
	}
	return nil
}

func newService(t *testing.T, repo auth.Repository) *auth.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	registry := auth.NewSessionRegistry(client, time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewService(logger, repo, issuer, registry)
}

func seededRepo(t *testing.T) *stubRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &stubRepo{users: map[int64]*auth.User{
		1: {ID: 1, Email: "ana@hireloop.test", Username: "ana", FullName: "Ana Pratama",
			PasswordHash: string(hash), Role: "hr_manager", IsActive: true},
	}}
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	repo := seededRepo(t)
	svc := newService(t, repo)

	user, token, err := svc.Login(context.Background(), "ana", "correct horse")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
	require.NotEmpty(t, token)
	require.False(t, repo.users[1].LastLogin.IsZero())

	principal, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, int64(1), principal.UserID)
	require.Equal(t, "hr_manager", principal.Role)
	require.Equal(t, "Ana Pratama", principal.Name)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc := newService(t, seededRepo(t))
	_, _, err := svc.Login(context.Background(), "ana", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	repo := seededRepo(t)
	repo.users[1].IsActive = false
	svc := newService(t, repo)
	_, _, err := svc.Login(context.Background(), "ana", "correct horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newService(t, seededRepo(t))
	_, token, err := svc.Login(context.Background(), "ana", "correct horse")
	require.NoError(t, err)

	principal, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), principal.TokenID))

	_, err = svc.Resolve(context.Background(), token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestResolveRejectsGarbage(t *testing.T) {
	svc := newService(t, seededRepo(t))
	_, err := svc.Resolve(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := newService(t, seededRepo(t))
	_, err := svc.Register(context.Background(), "ana@hireloop.test", "ana2", "Ana Again", "password123", "")
	require.ErrorIs(t, err, auth.ErrAccountExists)

	_, err = svc.Register(context.Background(), "other@hireloop.test", "ana", "Ana Again", "password123", "")
	require.ErrorIs(t, err, auth.ErrAccountExists)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := newService(t, seededRepo(t))
	_, err := svc.Register(context.Background(), "new@hireloop.test", "newbie", "New Person", "password123", "superuser")
	require.Error(t, err)
}

func TestRegisterDefaultsRole(t *testing.T) {
	repo := seededRepo(t)
	svc := newService(t, repo)
	user, err := svc.Register(context.Background(), "new@hireloop.test", "newbie", "New Person", "password123", "")
	require.NoError(t, err)
	require.Equal(t, "hr_manager", user.Role)
}

type failingStampRepo struct {
	*stubRepo
}

func (f *failingStampRepo) UpdateLastLogin(context.Context, int64, time.Time) error {
	return errors.New("write timeout")
}

func TestLoginSurvivesLastLoginStampFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	svc := auth.NewService(logger, &failingStampRepo{stubRepo: seededRepo(t)},
		auth.NewTokenIssuer("test-secret", time.Hour),
		auth.NewSessionRegistry(client, time.Hour))

	user, token, err := svc.Login(context.Background(), "ana", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "ana", user.Username)
	require.Contains(t, buf.String(), "stamp last login")
}
