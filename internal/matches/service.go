package matches

import (
	"context"

	"github.com/hireloop-ats/hireloop/internal/activity"
	"github.com/hireloop-ats/hireloop/internal/realtime"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Service scores candidates against job openings and keeps the history.
type Service struct {
	repo      Repository
	activity  *activity.Service
	broadcast realtime.Broadcaster
}

// NewService constructs a Service instance.
func NewService(repo Repository, trail *activity.Service, broadcaster realtime.Broadcaster) *Service {
	return &Service{repo: repo, activity: trail, broadcast: broadcaster}
}

// Match scores one candidate against one job, stores the report and
// announces it. Returns shared.ErrNotFound when either side is missing.
func (s *Service) Match(ctx context.Context, candidateID, jobID int64, actor *shared.Principal) (*Result, error) {
	profile, err := s.repo.CandidateProfile(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	req, err := s.repo.JobRequirement(ctx, jobID)
	if err != nil {
		return nil, err
	}

	scored := Score(*profile, *req)
	scored.CandidateID = candidateID
	scored.JobID = jobID
	stored, err := s.repo.Insert(ctx, scored)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		User:        actor.Name,
		Action:      "matched_candidate",
		CandidateID: candidateID,
		Details:     map[string]any{"job_id": jobID, "score": stored.OverallScore},
	})
	s.broadcast.Broadcast(realtime.Event{
		Type:        realtime.EventMatchCreated,
		CandidateID: candidateID,
		JobID:       jobID,
		Score:       stored.OverallScore,
	})
	return stored, nil
}

// Matches returns a candidate's match history, newest first.
func (s *Service) Matches(ctx context.Context, candidateID int64) ([]Result, error) {
	list, err := s.repo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Result{}
	}
	return list, nil
}
