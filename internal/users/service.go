package users

import (
	"context"
	"errors"

	"github.com/hireloop-ats/hireloop/internal/activity"
	"github.com/hireloop-ats/hireloop/internal/auth"
	"github.com/hireloop-ats/hireloop/internal/rbac"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// ErrSelfChange guards administrators from locking themselves out.
var ErrSelfChange = errors.New("users: cannot change your own account")

// Service handles user administration.
type Service struct {
	repo  Repository
	trail *activity.Service
}

// NewService builds a Service instance.
func NewService(repo Repository, trail *activity.Service) *Service {
	return &Service{repo: repo, trail: trail}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]auth.User, error) {
	return s.repo.List(ctx)
}

// ChangeRole assigns a new role to an account. Administrators cannot
// change their own role.
func (s *Service) ChangeRole(ctx context.Context, targetID int64, role string, actor *shared.Principal) (*auth.User, error) {
	if !rbac.Role(role).Valid() {
		return nil, errors.New("users: invalid role " + role)
	}
	if targetID == actor.UserID {
		return nil, ErrSelfChange
	}
	user, err := s.repo.UpdateRole(ctx, targetID, role)
	if err != nil {
		return nil, err
	}
	s.trail.Record(ctx, activity.Entry{
		User:   actor.Name,
		Action: "role_changed",
		Details: map[string]any{
			"target_user": user.FullName,
			"new_role":    role,
		},
	})
	return user, nil
}

// Deactivate disables an account. Self-deactivation is refused.
func (s *Service) Deactivate(ctx context.Context, targetID int64, actor *shared.Principal) error {
	if targetID == actor.UserID {
		return ErrSelfChange
	}
	if err := s.repo.SetActive(ctx, targetID, false); err != nil {
		return err
	}
	s.trail.Record(ctx, activity.Entry{
		User:    actor.Name,
		Action:  "user_deactivated",
		Details: map[string]any{"target_user_id": targetID},
	})
	return nil
}
