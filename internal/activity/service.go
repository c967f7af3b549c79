package activity

import (
	"context"
	"log/slog"
)

// Service records and lists activity entries.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an entry. Failures are logged and swallowed: the activity
// trail must never fail the operation it describes.
func (s *Service) Record(ctx context.Context, entry Entry) {
	if err := s.repo.Insert(ctx, entry); err != nil && s.logger != nil {
		s.logger.Error("record activity",
			slog.String("action", entry.Action),
			slog.Any("error", err))
	}
}

// List returns entries newest first plus the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Entry, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}
