package candidates

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

const candidateColumns = `id, unique_hash, name, COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(skills, '[]'::jsonb), experience, education, certifications, links,
	COALESCE(resume_text, ''), COALESCE(resume_filename, ''),
	is_blacklisted, COALESCE(blacklist_reason, ''), COALESCE(blacklisted_by, ''),
	COALESCE(blacklisted_at, 'epoch'::timestamptz),
	COALESCE(uploaded_by, ''), uploaded_at,
	status, version, COALESCE(last_modified_by, ''), COALESCE(last_modified_at, 'epoch'::timestamptz)`

func scanCandidate(row pgx.Row) (*Candidate, error) {
	var c Candidate
	err := row.Scan(&c.ID, &c.UniqueHash, &c.Name, &c.Email, &c.Phone,
		&c.Skills, &c.Experience, &c.Education, &c.Certifications, &c.Links,
		&c.ResumeText, &c.ResumeFilename,
		&c.IsBlacklisted, &c.BlacklistReason, &c.BlacklistedBy, &c.BlacklistedAt,
		&c.UploadedBy, &c.UploadedAt,
		&c.Status, &c.Version, &c.LastModifiedBy, &c.LastModifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns candidates matching the filter, newest first.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Candidate, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s)", p, p))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if filter.Blacklisted != nil {
		where = append(where, "is_blacklisted = "+arg(*filter.Blacklisted))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE ` + clause +
		` ORDER BY uploaded_at DESC, id DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(filter.Offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Get fetches a candidate by ID.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Candidate, error) {
	return scanCandidate(r.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
}

// Insert stores a new candidate. Returns shared.ErrDuplicate when the
// unique hash collides with an existing record.
func (r *PGRepository) Insert(ctx context.Context, c Candidate) (*Candidate, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO candidates
			(unique_hash, name, email, phone, skills, experience, education, certifications, links,
			 resume_text, resume_filename, uploaded_by, uploaded_at, status, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), $13, 1)
		 RETURNING `+candidateColumns,
		c.UniqueHash, c.Name, c.Email, c.Phone, c.Skills, c.Experience, c.Education,
		c.Certifications, c.Links, c.ResumeText, c.ResumeFilename, c.UploadedBy, StatusNew)
	inserted, err := scanCandidate(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return inserted, nil
}

// UpdateStatus applies an optimistic-locked status transition.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status string, expectedVersion int, actor string) (*Candidate, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE candidates
		 SET status = $2, version = version + 1, last_modified_by = $3, last_modified_at = NOW()
		 WHERE id = $1 AND version = $4
		 RETURNING `+candidateColumns,
		id, status, actor, expectedVersion)
	updated, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Distinguish a missing row from a stale version.
			var exists bool
			if probeErr := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM candidates WHERE id = $1)`, id).Scan(&exists); probeErr == nil && exists {
				return nil, shared.ErrVersionConflict
			}
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a candidate and cascades to comments, notes and matches.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetBlacklist toggles the blacklist flag with audit fields.
func (r *PGRepository) SetBlacklist(ctx context.Context, id int64, blacklisted bool, reason, actor string) (*Candidate, error) {
	var row pgx.Row
	if blacklisted {
		row = r.pool.QueryRow(ctx,
			`UPDATE candidates
			 SET is_blacklisted = TRUE, blacklist_reason = $2, blacklisted_by = $3, blacklisted_at = NOW()
			 WHERE id = $1 RETURNING `+candidateColumns,
			id, reason, actor)
	} else {
		row = r.pool.QueryRow(ctx,
			`UPDATE candidates
			 SET is_blacklisted = FALSE, blacklist_reason = NULL, blacklisted_by = NULL, blacklisted_at = NULL
			 WHERE id = $1 RETURNING `+candidateColumns,
			id)
	}
	return scanCandidate(row)
}

// InsertComment stores a comment.
func (r *PGRepository) InsertComment(ctx context.Context, comment Comment) (*Comment, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO comments (candidate_id, author, body, created_at)
		 VALUES ($1, $2, $3, NOW())
		 RETURNING id, candidate_id, author, body, created_at`,
		comment.CandidateID, comment.Author, comment.Body)
	return scanComment(row)
}

// ListComments returns comments for a candidate, newest first.
func (r *PGRepository) ListComments(ctx context.Context, candidateID int64) ([]Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, candidate_id, author, body, created_at
		 FROM comments WHERE candidate_id = $1 ORDER BY created_at DESC, id DESC`,
		candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var comments []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// GetComment fetches a comment by ID.
func (r *PGRepository) GetComment(ctx context.Context, id int64) (*Comment, error) {
	return scanComment(r.pool.QueryRow(ctx,
		`SELECT id, candidate_id, author, body, created_at FROM comments WHERE id = $1`, id))
}

// DeleteComment removes a comment.
func (r *PGRepository) DeleteComment(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanComment(row pgx.Row) (*Comment, error) {
	var c Comment
	if err := row.Scan(&c.ID, &c.CandidateID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

const noteColumns = `id, candidate_id, user_id, body, is_pinned, created_at, updated_at`

func scanNote(row pgx.Row) (*Note, error) {
	var n Note
	if err := row.Scan(&n.ID, &n.CandidateID, &n.UserID, &n.Body, &n.IsPinned, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// InsertNote stores a note.
func (r *PGRepository) InsertNote(ctx context.Context, note Note) (*Note, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO notes (candidate_id, user_id, body, is_pinned, created_at, updated_at)
		 VALUES ($1, $2, $3, FALSE, NOW(), NOW())
		 RETURNING `+noteColumns,
		note.CandidateID, note.UserID, note.Body)
	return scanNote(row)
}

// ListNotes returns a candidate's notes, pinned first then newest.
func (r *PGRepository) ListNotes(ctx context.Context, candidateID int64) ([]Note, error) {
	return r.queryNotes(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE candidate_id = $1
		 ORDER BY is_pinned DESC, updated_at DESC, id DESC`, candidateID)
}

// GetNote fetches a note by ID.
func (r *PGRepository) GetNote(ctx context.Context, id int64) (*Note, error) {
	return scanNote(r.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id))
}

// UpdateNote replaces the note body.
func (r *PGRepository) UpdateNote(ctx context.Context, id int64, body string) (*Note, error) {
	return scanNote(r.pool.QueryRow(ctx,
		`UPDATE notes SET body = $2, updated_at = NOW() WHERE id = $1 RETURNING `+noteColumns,
		id, body))
}

// SetNotePinned toggles the pin flag.
func (r *PGRepository) SetNotePinned(ctx context.Context, id int64, pinned bool) (*Note, error) {
	return scanNote(r.pool.QueryRow(ctx,
		`UPDATE notes SET is_pinned = $2, updated_at = NOW() WHERE id = $1 RETURNING `+noteColumns,
		id, pinned))
}

// DeleteNote removes a note.
func (r *PGRepository) DeleteNote(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NotesByUser returns every note a user has written, newest first.
func (r *PGRepository) NotesByUser(ctx context.Context, userID int64) ([]Note, error) {
	return r.queryNotes(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = $1 ORDER BY updated_at DESC, id DESC`, userID)
}

// SearchNotes matches the user's notes against a substring.
func (r *PGRepository) SearchNotes(ctx context.Context, userID int64, query string) ([]Note, error) {
	return r.queryNotes(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = $1 AND body ILIKE $2
		 ORDER BY updated_at DESC, id DESC`, userID, "%"+query+"%")
}

// CountNotes counts notes on a candidate.
func (r *PGRepository) CountNotes(ctx context.Context, candidateID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notes WHERE candidate_id = $1`, candidateID).Scan(&count)
	return count, err
}

func (r *PGRepository) queryNotes(ctx context.Context, query string, args ...any) ([]Note, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
