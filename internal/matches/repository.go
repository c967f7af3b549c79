package matches

import "context"

// Repository persists match results and reads the candidate and job
// material the scorer needs.
type Repository interface {
	CandidateProfile(ctx context.Context, candidateID int64) (*Profile, error)
	JobRequirement(ctx context.Context, jobID int64) (*Requirement, error)
	Insert(ctx context.Context, result Result) (*Result, error)
	ListByCandidate(ctx context.Context, candidateID int64) ([]Result, error)
}
