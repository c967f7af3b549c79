package users

import (
	"context"

	"github.com/hireloop-ats/hireloop/internal/auth"
)

// Repository defines persistence for user administration. Accounts share
// the users table with the auth module.
type Repository interface {
	List(ctx context.Context) ([]auth.User, error)
	Get(ctx context.Context, id int64) (*auth.User, error)
	UpdateRole(ctx context.Context, id int64, role string) (*auth.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
}
