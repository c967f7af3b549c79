package openings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop-ats/hireloop/internal/shared"
)

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var _ Repository = (*PGRepository)(nil)

const openingColumns = `id, title, description,
	COALESCE(required_skills, '[]'::jsonb), COALESCE(preferred_skills, '[]'::jsonb),
	COALESCE(experience_years, 0), COALESCE(education_level, ''),
	COALESCE(created_by, ''), created_at, is_active`

func scanOpening(row pgx.Row) (*Opening, error) {
	var o Opening
	err := row.Scan(&o.ID, &o.Title, &o.Description,
		&o.RequiredSkills, &o.PreferredSkills,
		&o.ExperienceYears, &o.EducationLevel,
		&o.CreatedBy, &o.CreatedAt, &o.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// List returns active openings, newest first.
func (r *PGRepository) List(ctx context.Context) ([]Opening, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+openingColumns+` FROM job_descriptions WHERE is_active ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Opening
	for rows.Next() {
		o, err := scanOpening(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *o)
	}
	return list, rows.Err()
}

// Get fetches an opening by ID.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Opening, error) {
	return scanOpening(r.pool.QueryRow(ctx,
		`SELECT `+openingColumns+` FROM job_descriptions WHERE id = $1`, id))
}

// Insert stores a new opening.
func (r *PGRepository) Insert(ctx context.Context, o Opening) (*Opening, error) {
	return scanOpening(r.pool.QueryRow(ctx,
		`INSERT INTO job_descriptions
			(title, description, required_skills, preferred_skills, experience_years,
			 education_level, created_by, created_at, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), TRUE)
		 RETURNING `+openingColumns,
		o.Title, o.Description, o.RequiredSkills, o.PreferredSkills,
		o.ExperienceYears, o.EducationLevel, o.CreatedBy))
}

// Deactivate retires an opening without deleting its match history.
func (r *PGRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE job_descriptions SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
