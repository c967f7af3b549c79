package candidates

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/hireloop-ats/hireloop/internal/activity"
	"github.com/hireloop-ats/hireloop/internal/realtime"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Service orchestrates candidate lifecycle operations. Every mutation
// records an activity entry and broadcasts a live event; both are advisory
// and never fail the operation.
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

// Fingerprint derives the dedup hash for a resume. Identity is the resume
// content when available, otherwise the contact tuple.
func Fingerprint(name, email, resumeText string) string {
	basis := strings.TrimSpace(resumeText)
	if basis == "" {
		basis = strings.ToLower(strings.TrimSpace(name) + "|" + strings.TrimSpace(email))
	}
	sum := sha256.Sum256([]byte(basis))
	return hex.EncodeToString(sum[:])
}

// List returns candidates matching the filter plus the total count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Candidate, int, error) {
	return s.repo.List(ctx, filter)
}

// Get fetches one candidate.
func (s *Service) Get(ctx context.Context, id int64) (*Candidate, error) {
	return s.repo.Get(ctx, id)
}

// Import stores an already-extracted candidate record without announcing
// it. The screening promotion flow uses this and publishes its own events.
func (s *Service) Import(ctx context.Context, candidate Candidate, actor *shared.Principal) (*Candidate, error) {
	candidate.Name = strings.TrimSpace(candidate.Name)
	if candidate.Name == "" {
		return nil, errors.New("candidates: name required")
	}
	if candidate.UniqueHash == "" {
		candidate.UniqueHash = Fingerprint(candidate.Name, candidate.Email, candidate.ResumeText)
	}
	if candidate.Skills == nil {
		candidate.Skills = []string{}
	}
	candidate.UploadedBy = actor.Name
	return s.repo.Insert(ctx, candidate)
}

// Ingest stores an already-extracted candidate record. Dedup happens on the
// content fingerprint.
func (s *Service) Ingest(ctx context.Context, candidate Candidate, actor *shared.Principal) (*Candidate, error) {
	created, err := s.Import(ctx, candidate, actor)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		User:        actor.Name,
		Action:      "uploaded_resume",
		CandidateID: created.ID,
		Details:     map[string]any{"candidate_name": created.Name, "filename": created.ResumeFilename},
	})
	s.broadcast.Broadcast(realtime.Event{
		Type:        realtime.EventNewCandidate,
		CandidateID: created.ID,
		Name:        created.Name,
	})
	return created, nil
}

// UpdateStatus transitions the candidate pipeline status under optimistic
// locking. The caller passes the version it read; a mismatch returns
// shared.ErrVersionConflict for the view to surface locally.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string, expectedVersion int, actor *shared.Principal) (*Candidate, error) {
	if !ValidStatus(status) {
		return nil, errors.New("candidates: unknown status " + status)
	}
	candidate, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(actor, candidate) {
		return nil, shared.ErrForbidden
	}
	if expectedVersion <= 0 {
		expectedVersion = candidate.Version
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status, expectedVersion, actor.Name)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		User:        actor.Name,
		Action:      "status_change",
		CandidateID: id,
		Details:     map[string]any{"candidate_name": updated.Name, "new_status": status},
	})
	s.broadcast.Broadcast(realtime.Event{
		Type:        realtime.EventStatusChange,
		CandidateID: id,
		Status:      status,
	})
	return updated, nil
}

// Delete permanently removes a candidate and associated data.
func (s *Service) Delete(ctx context.Context, id int64, actor *shared.Principal) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, activity.Entry{
		User:        actor.Name,
		Action:      "deleted_candidate",
		CandidateID: id,
	})
	s.broadcast.Broadcast(realtime.Event{
		Type:        realtime.EventCandidateDeleted,
		CandidateID: id,
	})
	return nil
}

// Blacklist flags a candidate with a reason.
func (s *Service) Blacklist(ctx context.Context, id int64, reason string, actor *shared.Principal) (*Candidate, error) {
	candidate, err := s.repo.SetBlacklist(ctx, id, true, strings.TrimSpace(reason), actor.Name)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, activity.Entry{
		User:        actor.Name,
		Action:      "blacklisted",
		CandidateID: id,
		Details:     map[string]any{"candidate_name": candidate.Name, "reason": reason},
	})
	s.broadcast.Broadcast(realtime.Event{
		Type:        realtime.EventCandidateBlacklisted,
		CandidateID: id,
		Name:        candidate.Name,
	})
	return candidate, nil
}

// Unblacklist clears the blacklist flag.
func (s *Service) Unblacklist(ctx context.Context, id int64, actor *shared.Principal) (*Candidate, error) {
	candidate, err := s.repo.SetBlacklist(ctx, id, false, "", actor.Name)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, activity.Entry{
		User:        actor.Name,
		Action:      "unblacklisted",
		CandidateID: id,
		Details:     map[string]any{"candidate_name": candidate.Name},
	})
	s.broadcast.Broadcast(realtime.Event{
		Type:        realtime.EventCandidateUnblacklisted,
		CandidateID: id,
	})
	return candidate, nil
}

// ListBlacklist returns blacklisted candidates only.
func (s *Service) ListBlacklist(ctx context.Context, limit, offset int) ([]Candidate, int, error) {
	flag := true
	return s.repo.List(ctx, ListFilter{Blacklisted: &flag, Limit: limit, Offset: offset})
}

// AddComment attaches a comment to a candidate.
func (s *Service) AddComment(ctx context.Context, candidateID int64, body string, actor *shared.Principal) (*Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("candidates: comment body required")
	}
	if _, err := s.repo.Get(ctx, candidateID); err != nil {
		return nil, err
	}
	comment, err := s.repo.InsertComment(ctx, Comment{
		CandidateID: candidateID,
		Author:      actor.Name,
		Body:        body,
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, activity.Entry{
		User:        actor.Name,
		Action:      "added_comment",
		CandidateID: candidateID,
	})
	s.broadcast.Broadcast(realtime.Event{
		Type:        realtime.EventNewComment,
		CandidateID: candidateID,
		CommentID:   comment.ID,
	})
	return comment, nil
}

// Comments lists a candidate's comments.
func (s *Service) Comments(ctx context.Context, candidateID int64) ([]Comment, error) {
	return s.repo.ListComments(ctx, candidateID)
}

// DeleteComment removes a comment, honoring the ownership rule.
func (s *Service) DeleteComment(ctx context.Context, commentID int64, actor *shared.Principal) error {
	comment, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !CanDeleteComment(actor, comment) {
		return shared.ErrForbidden
	}
	return s.repo.DeleteComment(ctx, commentID)
}

// AddNote creates a working note on a candidate.
func (s *Service) AddNote(ctx context.Context, candidateID int64, body string, actor *shared.Principal) (*Note, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("candidates: note body required")
	}
	if _, err := s.repo.Get(ctx, candidateID); err != nil {
		return nil, err
	}
	return s.repo.InsertNote(ctx, Note{CandidateID: candidateID, UserID: actor.UserID, Body: body})
}

// Notes lists a candidate's notes, pinned first.
func (s *Service) Notes(ctx context.Context, candidateID int64) ([]Note, error) {
	return s.repo.ListNotes(ctx, candidateID)
}

// UpdateNote edits a note's body, honoring the ownership rule.
func (s *Service) UpdateNote(ctx context.Context, noteID int64, body string, actor *shared.Principal) (*Note, error) {
	note, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !CanEditNote(actor, note) {
		return nil, shared.ErrForbidden
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("candidates: note body required")
	}
	return s.repo.UpdateNote(ctx, noteID, body)
}

// PinNote toggles a note's pinned flag.
func (s *Service) PinNote(ctx context.Context, noteID int64, pinned bool, actor *shared.Principal) (*Note, error) {
	note, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !CanEditNote(actor, note) {
		return nil, shared.ErrForbidden
	}
	return s.repo.SetNotePinned(ctx, noteID, pinned)
}

// DeleteNote removes a note, honoring the ownership rule.
func (s *Service) DeleteNote(ctx context.Context, noteID int64, actor *shared.Principal) error {
	note, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		return err
	}
	if !CanEditNote(actor, note) {
		return shared.ErrForbidden
	}
	return s.repo.DeleteNote(ctx, noteID)
}

// MyNotes lists every note the actor has written.
func (s *Service) MyNotes(ctx context.Context, actor *shared.Principal) ([]Note, error) {
	return s.repo.NotesByUser(ctx, actor.UserID)
}

// SearchNotes matches the actor's notes against a substring.
func (s *Service) SearchNotes(ctx context.Context, query string, actor *shared.Principal) ([]Note, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("candidates: search query required")
	}
	return s.repo.SearchNotes(ctx, actor.UserID, query)
}

// CountNotes counts notes on a candidate.
func (s *Service) CountNotes(ctx context.Context, candidateID int64) (int, error) {
	return s.repo.CountNotes(ctx, candidateID)
}
