package screening

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hireloop-ats/hireloop/internal/activity"
	"github.com/hireloop-ats/hireloop/internal/candidates"
	"github.com/hireloop-ats/hireloop/internal/realtime"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// ErrBadState indicates a batch transition that is not allowed from the
// batch's current status.
var ErrBadState = errors.New("screening: batch is not in a state that allows this operation")

// Enqueuer hands batch processing off to the background worker.
type Enqueuer interface {
	EnqueueBatch(ctx context.Context, batchID int64) error
}

// NopEnqueuer discards enqueue requests. Used in tests.
type NopEnqueuer struct{}

// EnqueueBatch implements Enqueuer.
func (NopEnqueuer) EnqueueBatch(context.Context, int64) error { return nil }

// Importer moves a screened record into the main candidate pool.
type Importer interface {
	Import(ctx context.Context, candidate candidates.Candidate, actor *shared.Principal) (*candidates.Candidate, error)
}

// Service orchestrates batch screening: intake, background filtering,
// review transitions, and promotion into the candidate pool.
type Service struct {
	logger    *slog.Logger
	repo      Repository
	importer  Importer
	trail     *activity.Service
	broadcast realtime.Broadcaster
	enqueue   Enqueuer
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, repo Repository, importer Importer, trail *activity.Service, broadcaster realtime.Broadcaster, enqueuer Enqueuer) *Service {
	if broadcaster == nil {
		broadcaster = realtime.NopBroadcaster{}
	}
	if enqueuer == nil {
		enqueuer = NopEnqueuer{}
	}
	return &Service{
		logger:    logger,
		repo:      repo,
		importer:  importer,
		trail:     trail,
		broadcast: broadcaster,
		enqueue:   enqueuer,
	}
}

// record appends to the screening trail; failures are logged only.
func (s *Service) record(ctx context.Context, a Activity) {
	if err := s.repo.InsertActivity(ctx, a); err != nil && s.logger != nil {
		s.logger.Error("record screening activity",
			slog.String("action", a.Action),
			slog.Any("error", err))
	}
}

// Start creates a batch over pre-extracted intake records and hands it to
// the worker.
func (s *Service) Start(ctx context.Context, name string, filters Filters, items []BatchItem, actor *shared.Principal) (*Batch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("screening: batch name required")
	}
	if len(items) == 0 {
		return nil, errors.New("screening: at least one intake record required")
	}

	batch, err := s.repo.InsertBatch(ctx, Batch{
		Name:         name,
		CreatedBy:    actor.Name,
		Status:       BatchProcessing,
		TotalResumes: len(items),
		Filters:      filters,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.InsertItems(ctx, batch.ID, items); err != nil {
		return nil, err
	}

	s.record(ctx, Activity{
		BatchID: batch.ID,
		User:    actor.Name,
		Action:  "started_screening",
		Details: map[string]any{
			"batch_name": batch.Name,
			"total":      len(items),
		},
	})

	if err := s.enqueue.EnqueueBatch(ctx, batch.ID); err != nil {
		// The batch stays queued in the database; a restarted worker can
		// still pick it up via a manual resume.
		if s.logger != nil {
			s.logger.Error("enqueue batch", slog.Int64("batch_id", batch.ID), slog.Any("error", err))
		}
	}
	return batch, nil
}

// Batches lists batches still relevant to reviewers.
func (s *Service) Batches(ctx context.Context) ([]Batch, error) {
	return s.repo.ListBatches(ctx, []string{BatchProcessing, BatchPaused, BatchReady})
}

// Batch fetches a single batch.
func (s *Service) Batch(ctx context.Context, id int64) (*Batch, error) {
	return s.repo.GetBatch(ctx, id)
}

// Pause halts a processing batch between items.
func (s *Service) Pause(ctx context.Context, id int64, actor *shared.Principal) (*Batch, error) {
	batch, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch.Status != BatchProcessing {
		return nil, ErrBadState
	}
	batch, err = s.repo.SetBatchStatus(ctx, id, BatchPaused)
	if err != nil {
		return nil, err
	}
	s.record(ctx, Activity{BatchID: id, User: actor.Name, Action: "paused_batch",
		Details: map[string]any{"batch_name": batch.Name}})
	s.broadcast.Broadcast(realtime.Event{Type: realtime.EventBatchPaused, BatchID: id, Name: batch.Name})
	return batch, nil
}

// Resume restarts a paused batch and re-enqueues the worker task.
func (s *Service) Resume(ctx context.Context, id int64, actor *shared.Principal) (*Batch, error) {
	batch, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch.Status != BatchPaused {
		return nil, ErrBadState
	}
	batch, err = s.repo.SetBatchStatus(ctx, id, BatchProcessing)
	if err != nil {
		return nil, err
	}
	s.record(ctx, Activity{BatchID: id, User: actor.Name, Action: "resumed_batch",
		Details: map[string]any{"batch_name": batch.Name}})
	if err := s.enqueue.EnqueueBatch(ctx, id); err != nil && s.logger != nil {
		s.logger.Error("enqueue batch", slog.Int64("batch_id", id), slog.Any("error", err))
	}
	s.broadcast.Broadcast(realtime.Event{Type: realtime.EventBatchResumed, BatchID: id, Name: batch.Name})
	return batch, nil
}

// Cancel stops a batch for good. Finished batches cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id int64, actor *shared.Principal) (*Batch, error) {
	batch, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	switch batch.Status {
	case BatchReady, BatchCancelled, BatchError:
		return nil, ErrBadState
	}
	batch, err = s.repo.SetBatchStatus(ctx, id, BatchCancelled)
	if err != nil {
		return nil, err
	}
	s.record(ctx, Activity{BatchID: id, User: actor.Name, Action: "cancelled_batch",
		Details: map[string]any{
			"batch_name": batch.Name,
			"processed":  batch.ProcessedCount,
			"total":      batch.TotalResumes,
		}})
	s.broadcast.Broadcast(realtime.Event{Type: realtime.EventBatchCancelled, BatchID: id, Name: batch.Name})
	return batch, nil
}

// DeleteBatch removes a batch and everything attached to it.
func (s *Service) DeleteBatch(ctx context.Context, id int64, actor *shared.Principal) error {
	batch, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBatch(ctx, id); err != nil {
		return err
	}
	s.trail.Record(ctx, activity.Entry{
		User:    actor.Name,
		Action:  "deleted_batch",
		Details: map[string]any{"batch_name": batch.Name},
	})
	s.broadcast.Broadcast(realtime.Event{Type: realtime.EventBatchDeleted, BatchID: id})
	return nil
}

// Potentials pages through a batch's reviewable potentials. Promoted and
// not-interested entries are hidden from the review queue.
func (s *Service) Potentials(ctx context.Context, batchID int64, limit, offset int) ([]Potential, int, error) {
	return s.repo.ListPotentials(ctx, batchID,
		[]string{PotentialNotInterested, PotentialPromoted}, limit, offset)
}

// screeningActions maps review statuses to trail actions.
var screeningActions = map[string]string{
	PotentialToBeCalled:    "marked_to_be_called",
	PotentialInterested:    "marked_interested",
	PotentialWaitingResume: "marked_waiting",
	PotentialNotInterested: "marked_not_interested",
}

// UpdatePotentialStatus applies a review decision. Interested potentials
// are promoted into the candidate pool; not-interested ones move to the
// rejected list.
func (s *Service) UpdatePotentialStatus(ctx context.Context, potentialID int64, status string, actor *shared.Principal) (*Potential, error) {
	if !ValidReviewStatus(status) {
		return nil, errors.New("screening: unknown review status " + status)
	}
	potential, err := s.repo.SetPotentialStatus(ctx, potentialID, status, actor.Name)
	if err != nil {
		return nil, err
	}

	s.record(ctx, Activity{
		BatchID:     potential.BatchID,
		User:        actor.Name,
		Action:      screeningActions[status],
		PotentialID: potentialID,
		Details: map[string]any{
			"candidate_name": potential.Name,
			"new_status":     status,
		},
	})

	switch status {
	case PotentialInterested:
		return s.promote(ctx, potential, actor)
	case PotentialNotInterested:
		if err := s.repo.InsertRejected(ctx, RejectedPotential{
			BatchID:        potential.BatchID,
			Name:           potential.Name,
			Email:          potential.Email,
			Phone:          potential.Phone,
			ResumeFilename: potential.ResumeFilename,
			RejectedBy:     actor.Name,
		}); err != nil {
			return nil, err
		}
		s.broadcast.Broadcast(realtime.Event{
			Type:        realtime.EventPotentialRejected,
			PotentialID: potentialID,
		})
	}
	return potential, nil
}

// promote copies a potential into the candidate pool and marks it promoted.
func (s *Service) promote(ctx context.Context, potential *Potential, actor *shared.Principal) (*Potential, error) {
	candidate, err := s.importer.Import(ctx, candidates.Candidate{
		UniqueHash:     potential.UniqueHash,
		Name:           potential.Name,
		Email:          potential.Email,
		Phone:          potential.Phone,
		Skills:         potential.Skills,
		Education:      potential.Education,
		ResumeText:     potential.ResumeText,
		ResumeFilename: potential.ResumeFilename,
	}, actor)
	if err != nil {
		return nil, err
	}

	promoted, err := s.repo.SetPotentialStatus(ctx, potential.ID, PotentialPromoted, actor.Name)
	if err != nil {
		return nil, err
	}

	s.trail.Record(ctx, activity.Entry{
		User:        actor.Name,
		Action:      "promoted_from_screening",
		CandidateID: candidate.ID,
		Details:     map[string]any{"candidate_name": candidate.Name},
	})
	s.broadcast.Broadcast(realtime.Event{
		Type:        realtime.EventPotentialPromoted,
		PotentialID: potential.ID,
		CandidateID: candidate.ID,
	})
	return promoted, nil
}

// Activities returns a batch's screening trail.
func (s *Service) Activities(ctx context.Context, batchID int64, limit int) ([]Activity, error) {
	return s.repo.ListActivities(ctx, batchID, limit)
}

// Rejected returns a batch's rejected potentials.
func (s *Service) Rejected(ctx context.Context, batchID int64) ([]RejectedPotential, error) {
	return s.repo.ListRejected(ctx, batchID)
}

// CleanupRejected purges rejection records older than the retention window.
func (s *Service) CleanupRejected(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteRejectedBefore(ctx, time.Now().Add(-retention))
}

// ProcessBatch runs the screening loop for a batch: filter, score, dedup,
// and store each pending intake record. Pause and cancel flags are honored
// between items. Called from the background worker.
func (s *Service) ProcessBatch(ctx context.Context, batchID int64) error {
	items, err := s.repo.PendingItems(ctx, batchID)
	if err != nil {
		return err
	}

	batch, err := s.repo.GetBatch(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.Status != BatchProcessing {
		return nil
	}
	processed := batch.TotalResumes - len(items)

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err = s.repo.GetBatch(ctx, batchID)
		if err != nil {
			return err
		}
		if batch.Status != BatchProcessing {
			if s.logger != nil {
				s.logger.Info("batch interrupted",
					slog.Int64("batch_id", batchID),
					slog.String("status", batch.Status),
					slog.Int("processed", processed))
			}
			return nil
		}

		if MatchesFilters(item, batch.Filters) {
			_, err := s.repo.InsertPotential(ctx, Potential{
				BatchID:         batchID,
				UniqueHash:      candidates.Fingerprint(item.Name, item.Email, ""),
				Name:            item.Name,
				Email:           item.Email,
				Phone:           item.Phone,
				Skills:          item.Skills,
				ExperienceYears: item.ExperienceYears,
				Location:        item.Location,
				Education:       item.Education,
				ResumeText:      item.ResumeText,
				ResumeFilename:  item.ResumeFilename,
				MatchScore:      Score(item, batch.Filters),
			})
			if err != nil && !errors.Is(err, shared.ErrDuplicate) {
				return err
			}
		}

		if err := s.repo.MarkItemProcessed(ctx, item.ID); err != nil {
			return err
		}
		processed++
		if err := s.repo.SetBatchProgress(ctx, batchID, processed); err != nil {
			return err
		}
	}

	_, err = s.repo.SetBatchStatus(ctx, batchID, BatchReady)
	return err
}
