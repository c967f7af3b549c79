package screening

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const batchColumns = `id, name, COALESCE(created_by, ''), created_at, status,
	total_resumes, processed_count,
	COALESCE(filter_skills, '[]'::jsonb), COALESCE(filter_min_experience, 0),
	COALESCE(filter_max_experience, 0), COALESCE(filter_locations, '[]'::jsonb)`

func scanBatch(row pgx.Row) (*Batch, error) {
	var b Batch
	err := row.Scan(&b.ID, &b.Name, &b.CreatedBy, &b.CreatedAt, &b.Status,
		&b.TotalResumes, &b.ProcessedCount,
		&b.Filters.Skills, &b.Filters.MinExperience,
		&b.Filters.MaxExperience, &b.Filters.Locations)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// InsertBatch stores a new batch.
func (r *PGRepository) InsertBatch(ctx context.Context, b Batch) (*Batch, error) {
	return scanBatch(r.pool.QueryRow(ctx,
		`INSERT INTO resume_batches
			(name, created_by, created_at, status, total_resumes, processed_count,
			 filter_skills, filter_min_experience, filter_max_experience, filter_locations)
		 VALUES ($1, $2, NOW(), $3, $4, 0, $5, $6, $7, $8)
		 RETURNING `+batchColumns,
		b.Name, b.CreatedBy, b.Status, b.TotalResumes,
		b.Filters.Skills, b.Filters.MinExperience, b.Filters.MaxExperience, b.Filters.Locations))
}

// GetBatch fetches a batch by ID.
func (r *PGRepository) GetBatch(ctx context.Context, id int64) (*Batch, error) {
	return scanBatch(r.pool.QueryRow(ctx,
		`SELECT `+batchColumns+` FROM resume_batches WHERE id = $1`, id))
}

// ListBatches returns batches in the given statuses, newest first.
func (r *PGRepository) ListBatches(ctx context.Context, statuses []string) ([]Batch, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+batchColumns+` FROM resume_batches
		 WHERE status = ANY($1) ORDER BY created_at DESC, id DESC`, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *b)
	}
	return list, rows.Err()
}

// SetBatchStatus updates the batch status.
func (r *PGRepository) SetBatchStatus(ctx context.Context, id int64, status string) (*Batch, error) {
	return scanBatch(r.pool.QueryRow(ctx,
		`UPDATE resume_batches SET status = $2 WHERE id = $1 RETURNING `+batchColumns,
		id, status))
}

// SetBatchProgress advances the processed counter.
func (r *PGRepository) SetBatchProgress(ctx context.Context, id int64, processed int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE resume_batches SET processed_count = $2 WHERE id = $1`, id, processed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteBatch removes a batch; items, potentials, rejections, and
// activities cascade.
func (r *PGRepository) DeleteBatch(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resume_batches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// InsertItems bulk-inserts intake records for a batch.
func (r *PGRepository) InsertItems(ctx context.Context, batchID int64, items []BatchItem) error {
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(
			`INSERT INTO batch_items
				(batch_id, name, email, phone, skills, experience_years, location,
				 education, resume_text, resume_filename, processed)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)`,
			batchID, item.Name, item.Email, item.Phone, item.Skills,
			item.ExperienceYears, item.Location, item.Education,
			item.ResumeText, item.ResumeFilename)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range items {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

const itemColumns = `id, batch_id, name, COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(skills, '[]'::jsonb), COALESCE(experience_years, 0), COALESCE(location, ''),
	education, COALESCE(resume_text, ''), COALESCE(resume_filename, ''), processed`

// PendingItems returns unprocessed intake records in submission order.
func (r *PGRepository) PendingItems(ctx context.Context, batchID int64) ([]BatchItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM batch_items
		 WHERE batch_id = $1 AND NOT processed ORDER BY id`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []BatchItem
	for rows.Next() {
		var item BatchItem
		if err := rows.Scan(&item.ID, &item.BatchID, &item.Name, &item.Email, &item.Phone,
			&item.Skills, &item.ExperienceYears, &item.Location,
			&item.Education, &item.ResumeText, &item.ResumeFilename, &item.Processed); err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// MarkItemProcessed flags an intake record as consumed.
func (r *PGRepository) MarkItemProcessed(ctx context.Context, itemID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE batch_items SET processed = TRUE WHERE id = $1`, itemID)
	return err
}

const potentialColumns = `id, batch_id, COALESCE(unique_hash, ''), name,
	COALESCE(email, ''), COALESCE(phone, ''), COALESCE(skills, '[]'::jsonb),
	COALESCE(experience_years, 0), COALESCE(location, ''), education,
	COALESCE(resume_text, ''), COALESCE(resume_filename, ''),
	COALESCE(match_score, 0), status, COALESCE(assigned_to, ''), created_at`

func scanPotential(row pgx.Row) (*Potential, error) {
	var p Potential
	err := row.Scan(&p.ID, &p.BatchID, &p.UniqueHash, &p.Name,
		&p.Email, &p.Phone, &p.Skills,
		&p.ExperienceYears, &p.Location, &p.Education,
		&p.ResumeText, &p.ResumeFilename,
		&p.MatchScore, &p.Status, &p.AssignedTo, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// InsertPotential stores a screened potential. Returns shared.ErrDuplicate
// when the (batch, hash) pair already exists.
func (r *PGRepository) InsertPotential(ctx context.Context, p Potential) (*Potential, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO potentials
			(batch_id, unique_hash, name, email, phone, skills, experience_years,
			 location, education, resume_text, resume_filename, match_score, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		 RETURNING `+potentialColumns,
		p.BatchID, p.UniqueHash, p.Name, p.Email, p.Phone, p.Skills, p.ExperienceYears,
		p.Location, p.Education, p.ResumeText, p.ResumeFilename, p.MatchScore, PotentialPending)
	inserted, err := scanPotential(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return inserted, nil
}

// ListPotentials pages through a batch's potentials, best match first.
func (r *PGRepository) ListPotentials(ctx context.Context, batchID int64, excludeStatuses []string, limit, offset int) ([]Potential, int, error) {
	if excludeStatuses == nil {
		excludeStatuses = []string{}
	}
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM potentials WHERE batch_id = $1 AND status != ALL($2)`,
		batchID, excludeStatuses).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+potentialColumns+` FROM potentials
		 WHERE batch_id = $1 AND status != ALL($2)
		 ORDER BY match_score DESC, id LIMIT $3 OFFSET $4`,
		batchID, excludeStatuses, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Potential
	for rows.Next() {
		p, err := scanPotential(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *p)
	}
	return list, total, rows.Err()
}

// GetPotential fetches a potential by ID.
func (r *PGRepository) GetPotential(ctx context.Context, id int64) (*Potential, error) {
	return scanPotential(r.pool.QueryRow(ctx,
		`SELECT `+potentialColumns+` FROM potentials WHERE id = $1`, id))
}

// SetPotentialStatus updates a potential's review status and assignee.
func (r *PGRepository) SetPotentialStatus(ctx context.Context, id int64, status, assignedTo string) (*Potential, error) {
	return scanPotential(r.pool.QueryRow(ctx,
		`UPDATE potentials SET status = $2, assigned_to = $3 WHERE id = $1
		 RETURNING `+potentialColumns, id, status, assignedTo))
}

// InsertRejected records a not-interested potential for later cleanup.
func (r *PGRepository) InsertRejected(ctx context.Context, rejected RejectedPotential) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rejected_potentials
			(batch_id, name, email, phone, resume_filename, rejected_by, rejected_at, rejection_reason)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7)`,
		rejected.BatchID, rejected.Name, rejected.Email, rejected.Phone,
		rejected.ResumeFilename, rejected.RejectedBy, rejected.RejectionReason)
	return err
}

// ListRejected returns a batch's rejected potentials, newest first.
func (r *PGRepository) ListRejected(ctx context.Context, batchID int64) ([]RejectedPotential, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, batch_id, name, COALESCE(email, ''), COALESCE(phone, ''),
			COALESCE(resume_filename, ''), rejected_by, rejected_at, COALESCE(rejection_reason, '')
		 FROM rejected_potentials WHERE batch_id = $1 ORDER BY rejected_at DESC, id DESC`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []RejectedPotential
	for rows.Next() {
		var rp RejectedPotential
		if err := rows.Scan(&rp.ID, &rp.BatchID, &rp.Name, &rp.Email, &rp.Phone,
			&rp.ResumeFilename, &rp.RejectedBy, &rp.RejectedAt, &rp.RejectionReason); err != nil {
			return nil, err
		}
		list = append(list, rp)
	}
	return list, rows.Err()
}

// DeleteRejectedBefore purges rejection records older than the cutoff.
func (r *PGRepository) DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM rejected_potentials WHERE rejected_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// InsertActivity appends a screening activity entry.
func (r *PGRepository) InsertActivity(ctx context.Context, a Activity) error {
	var potentialID any
	if a.PotentialID > 0 {
		potentialID = a.PotentialID
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO screening_activities (batch_id, "user", action, potential_id, details, timestamp)
		 VALUES ($1, $2, $3, $4, $5, NOW())`,
		a.BatchID, a.User, a.Action, potentialID, a.Details)
	return err
}

// ListActivities returns a batch's screening trail, newest first.
func (r *PGRepository) ListActivities(ctx context.Context, batchID int64, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, batch_id, "user", action, COALESCE(potential_id, 0), details, timestamp
		 FROM screening_activities WHERE batch_id = $1
		 ORDER BY timestamp DESC, id DESC LIMIT $2`, batchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.BatchID, &a.User, &a.Action, &a.PotentialID, &a.Details, &a.Timestamp); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
