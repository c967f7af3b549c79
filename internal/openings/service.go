package openings

import (
	"context"
	"errors"
	"strings"

	"github.com/hireloop-ats/hireloop/internal/activity"
	"github.com/hireloop-ats/hireloop/internal/realtime"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Service manages job openings.
type Service struct {
	repo      Repository
	activity  *activity.Service
	broadcast realtime.Broadcaster
}

// NewService constructs a Service.
func NewService(repo Repository, activitySvc *activity.Service, broadcaster realtime.Broadcaster) *Service {
	if broadcaster == nil {
		broadcaster = realtime.NopBroadcaster{}
	}
	return &Service{repo: repo, activity: activitySvc, broadcast: broadcaster}
}

// List returns all active openings.
func (s *Service) List(ctx context.Context) ([]Opening, error) {
	return s.repo.List(ctx)
}

// Get fetches one opening.
func (s *Service) Get(ctx context.Context, id int64) (*Opening, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new opening and announces it.
func (s *Service) Create(ctx context.Context, opening Opening, actor *shared.Principal) (*Opening, error) {
	opening.Title = strings.TrimSpace(opening.Title)
	if opening.Title == "" {
		return nil, errors.New("openings: title required")
	}
	if strings.TrimSpace(opening.Description) == "" {
		return nil, errors.New("openings: description required")
	}
	if opening.RequiredSkills == nil {
		opening.RequiredSkills = []string{}
	}
	if opening.PreferredSkills == nil {
		opening.PreferredSkills = []string{}
	}
	opening.CreatedBy = actor.Name

	created, err := s.repo.Insert(ctx, opening)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		User:   actor.Name,
		Action: "created_job",
		Details: map[string]any{
			"job_title":    created.Title,
			"skills_count": len(created.RequiredSkills),
		},
	})
	s.broadcast.Broadcast(realtime.Event{
		Type:  realtime.EventJobCreated,
		JobID: created.ID,
		Name:  created.Title,
	})
	return created, nil
}

// Deactivate retires an opening.
func (s *Service) Deactivate(ctx context.Context, id int64, actor *shared.Principal) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, activity.Entry{
		User:    actor.Name,
		Action:  "deactivated_job",
		Details: map[string]any{"job_id": id},
	})
	return nil
}
