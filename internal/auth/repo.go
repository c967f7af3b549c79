package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByLogin(ctx context.Context, login string) (*User, error)
	CreateUser(ctx context.Context, user User) (*User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, email, username, full_name, password_hash, role, is_active, created_at, COALESCE(last_login, 'epoch'::timestamptz)`

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByLogin fetches a user by username or email.
func (r *PGRepository) FindByLogin(ctx context.Context, login string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`, login)
	return scanUser(row)
}

// CreateUser inserts a new account and returns it with generated fields.
func (r *PGRepository) CreateUser(ctx context.Context, user User) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, username, full_name, password_hash, role, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, TRUE, NOW())
		 RETURNING `+userColumns,
		user.Email, user.Username, user.FullName, user.PasswordHash, user.Role)
	return scanUser(row)
}

// UpdateLastLogin stamps the last successful login.
func (r *PGRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at.UTC())
	return err
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.FullName,
		&user.PasswordHash, &user.Role, &user.IsActive, &user.CreatedAt, &user.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
