package activity

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert appends an activity entry.
func (r *PGRepository) Insert(ctx context.Context, entry Entry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return err
	}
	var candidateID any
	if entry.CandidateID > 0 {
		candidateID = entry.CandidateID
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO activity_logs (actor, action, candidate_id, details, occurred_at)
		 VALUES ($1, $2, $3, $4, NOW())`,
		entry.User, entry.Action, candidateID, details)
	return err
}

// List returns entries newest first.
func (r *PGRepository) List(ctx context.Context, limit, offset int) ([]Entry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activity_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, actor, action, COALESCE(candidate_id, 0), details, occurred_at
		 FROM activity_logs ORDER BY occurred_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var details []byte
		if err := rows.Scan(&entry.ID, &entry.User, &entry.Action, &entry.CandidateID, &details, &entry.Timestamp); err != nil {
			return nil, 0, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &entry.Details)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

var _ Repository = (*PGRepository)(nil)
