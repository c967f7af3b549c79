package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hireloop-ats/hireloop/internal/activity"
	"github.com/hireloop-ats/hireloop/internal/auth"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

type memRepo struct {
	users map[int64]*auth.User
}

func (m *memRepo) List(context.Context) ([]auth.User, error) {
	var out []auth.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, id int64) (*auth.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) UpdateRole(_ context.Context, id int64, role string) (*auth.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

func (m *memRepo) SetActive(_ context.Context, id int64, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = active
	return nil
}

type memActivityRepo struct {
	entries []activity.Entry
}

func (m *memActivityRepo) Insert(_ context.Context, entry activity.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memActivityRepo) List(context.Context, int, int) ([]activity.Entry, int, error) {
	return m.entries, len(m.entries), nil
}

func newTestService(t *testing.T) (*Service, *memRepo, *memActivityRepo) {
	t.Helper()
	repo := &memRepo{users: map[int64]*auth.User{
		1: {ID: 1, Username: "root", FullName: "Root Admin", Role: "admin", IsActive: true},
		2: {ID: 2, Username: "sam", FullName: "Sam Recruiter", Role: "recruiter", IsActive: true},
	}}
	trail := &memActivityRepo{}
	return NewService(repo, activity.NewService(trail, nil)), repo, trail
}

var admin = &shared.Principal{UserID: 1, Name: "Root Admin", Role: "admin", IsActive: true}

func TestChangeRole(t *testing.T) {
	svc, repo, trail := newTestService(t)

	user, err := svc.ChangeRole(context.Background(), 2, "hr_manager", admin)
	require.NoError(t, err)
	require.Equal(t, "hr_manager", user.Role)
	require.Equal(t, "hr_manager", repo.users[2].Role)

	require.Len(t, trail.entries, 1)
	require.Equal(t, "role_changed", trail.entries[0].Action)
}

func TestChangeRoleRejectsInvalidRole(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ChangeRole(context.Background(), 2, "superuser", admin)
	require.Error(t, err)
}

func TestChangeRoleRefusesSelf(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ChangeRole(context.Background(), 1, "recruiter", admin)
	require.ErrorIs(t, err, ErrSelfChange)
}

func TestChangeRoleUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ChangeRole(context.Background(), 404, "recruiter", admin)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeactivate(t *testing.T) {
	svc, repo, _ := newTestService(t)

	require.NoError(t, svc.Deactivate(context.Background(), 2, admin))
	require.False(t, repo.users[2].IsActive)
}

func TestDeactivateRefusesSelf(t *testing.T) {
	svc, repo, _ := newTestService(t)

	require.ErrorIs(t, svc.Deactivate(context.Background(), 1, admin), ErrSelfChange)
	require.True(t, repo.users[1].IsActive)
}
