package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository provides PostgreSQL backed aggregates.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var _ Repository = (*PGRepository)(nil)

// StatusCounts groups candidates by pipeline status.
func (r *PGRepository) StatusCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM candidates GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out[status] = count
	}
	return out, rows.Err()
}

// SkillCounts tallies skill occurrences across all candidates.
func (r *PGRepository) SkillCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT skill, COUNT(*)
		 FROM candidates, jsonb_array_elements_text(COALESCE(skills, '[]'::jsonb)) AS skill
		 GROUP BY skill`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var skill string
		var count int
		if err := rows.Scan(&skill, &count); err != nil {
			return nil, err
		}
		out[skill] = count
	}
	return out, rows.Err()
}

// RecentUploads counts candidates uploaded within the last N days.
func (r *PGRepository) RecentUploads(ctx context.Context, days int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM candidates WHERE uploaded_at >= NOW() - INTERVAL '%d days'`, days)).
		Scan(&count)
	return count, err
}

// BlacklistedCount counts flagged candidates.
func (r *PGRepository) BlacklistedCount(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM candidates WHERE is_blacklisted`).Scan(&count)
	return count, err
}

// BatchProgress reports processed/total for batches still in flight.
func (r *PGRepository) BatchProgress(ctx context.Context) ([]BatchProgress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, status, processed_count, total_resumes
		 FROM resume_batches
		 WHERE status IN ('processing', 'paused', 'ready')
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BatchProgress
	for rows.Next() {
		var bp BatchProgress
		if err := rows.Scan(&bp.BatchID, &bp.Name, &bp.Status, &bp.Processed, &bp.Total); err != nil {
			return nil, err
		}
		out = append(out, bp)
	}
	return out, rows.Err()
}
