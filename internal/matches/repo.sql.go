package matches

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

const resultColumns = `id, candidate_id, job_id, overall_score, skill_match_score,
	experience_match_score, semantic_score,
	COALESCE(matching_skills, '[]'::jsonb), COALESCE(missing_skills, '[]'::jsonb),
	COALESCE(strengths, '[]'::jsonb), COALESCE(concerns, '[]'::jsonb),
	COALESCE(recommended_questions, '[]'::jsonb), created_at`

func scanResult(row pgx.Row) (*Result, error) {
	var res Result
	err := row.Scan(&res.ID, &res.CandidateID, &res.JobID, &res.OverallScore,
		&res.SkillMatchScore, &res.ExperienceMatchScore, &res.SemanticScore,
		&res.MatchingSkills, &res.MissingSkills,
		&res.Strengths, &res.Concerns, &res.RecommendedQuestions, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// CandidateProfile reads the scoring material for one candidate.
func (r *PGRepository) CandidateProfile(ctx context.Context, candidateID int64) (*Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(skills, '[]'::jsonb), COALESCE(experience, '[]'::jsonb), COALESCE(resume_text, '')
		 FROM candidates WHERE id = $1`, candidateID).
		Scan(&p.Skills, &p.Experience, &p.ResumeText)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// JobRequirement reads the job side of a match.
func (r *PGRepository) JobRequirement(ctx context.Context, jobID int64) (*Requirement, error) {
	var req Requirement
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(required_skills, '[]'::jsonb), COALESCE(experience_years, 0)
		 FROM job_descriptions WHERE id = $1`, jobID).
		Scan(&req.RequiredSkills, &req.ExperienceYears)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// Insert stores a new match result.
func (r *PGRepository) Insert(ctx context.Context, result Result) (*Result, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO match_results
			(candidate_id, job_id, overall_score, skill_match_score, experience_match_score,
			 semantic_score, matching_skills, missing_skills, strengths, concerns,
			 recommended_questions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		 RETURNING `+resultColumns,
		result.CandidateID, result.JobID, result.OverallScore, result.SkillMatchScore,
		result.ExperienceMatchScore, result.SemanticScore, result.MatchingSkills,
		result.MissingSkills, result.Strengths, result.Concerns, result.RecommendedQuestions)
	return scanResult(row)
}

// ListByCandidate returns a candidate's match history, newest first.
func (r *PGRepository) ListByCandidate(ctx context.Context, candidateID int64) ([]Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM match_results WHERE candidate_id = $1 ORDER BY created_at DESC, id DESC`,
		candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}
