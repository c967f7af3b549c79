package analytics

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/singleflight"

	"github.com/hireloop-ats/hireloop/internal/realtime"
)

// BatchProgress summarizes one screening batch for the dashboard.
type BatchProgress struct {
	BatchID   int64  `json:"batch_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
}

// Summary is the dashboard overview payload.
type Summary struct {
	TotalCandidates  int             `json:"total_candidates"`
	ByStatus         map[string]int  `json:"by_status"`
	TopSkills        map[string]int  `json:"top_skills"`
	RecentCount      int             `json:"recent_count"`
	BlacklistedCount int             `json:"blacklisted_count"`
	Screening        []BatchProgress `json:"screening"`
}

// Repository exposes the aggregate queries the dashboard needs.
type Repository interface {
	StatusCounts(ctx context.Context) (map[string]int, error)
	SkillCounts(ctx context.Context) (map[string]int, error)
	RecentUploads(ctx context.Context, days int) (int, error)
	BlacklistedCount(ctx context.Context) (int, error)
	BatchProgress(ctx context.Context) ([]BatchProgress, error)
}

// topSkillLimit caps the dashboard skill cloud.
const topSkillLimit = 10

// Service coordinates analytics query execution with the cache layer.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  *SummaryCache
	group  singleflight.Group
}

// NewService wires a Repository with a SummaryCache.
func NewService(logger *slog.Logger, repo Repository, cache *SummaryCache) *Service {
	return &Service{logger: logger, repo: repo, cache: cache}
}

// Summary builds the dashboard overview, served from cache when warm.
// Concurrent cold-cache requests collapse into one load per instance.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}
	v, err, _ := s.group.Do("summary", func() (interface{}, error) {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, nil
		}
		out, err := s.load(ctx)
		if err != nil {
			return Summary{}, err
		}
		if err := s.cache.Put(ctx, out); err != nil && s.logger != nil {
			// Non-fatal: the summary is still served, just not cached.
			s.logger.Warn("cache dashboard summary", slog.Any("error", err))
		}
		return out, nil
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

// WarmOnInvalidation rebuilds the summary whenever another instance or the
// background worker invalidates it, so the next dashboard request is served
// warm. Blocks until ctx is cancelled.
func (s *Service) WarmOnInvalidation(ctx context.Context) {
	for range s.cache.Refreshes(ctx) {
		if _, err := s.Summary(ctx); err != nil && s.logger != nil {
			s.logger.Warn("rebuild dashboard summary", slog.Any("error", err))
		}
	}
}

func (s *Service) load(ctx context.Context) (Summary, error) {
	byStatus, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return Summary{}, err
	}
	total := 0
	for _, n := range byStatus {
		total += n
	}

	skills, err := s.repo.SkillCounts(ctx)
	if err != nil {
		return Summary{}, err
	}

	recent, err := s.repo.RecentUploads(ctx, 7)
	if err != nil {
		return Summary{}, err
	}
	blacklisted, err := s.repo.BlacklistedCount(ctx)
	if err != nil {
		return Summary{}, err
	}
	screening, err := s.repo.BatchProgress(ctx)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		TotalCandidates:  total,
		ByStatus:         byStatus,
		TopSkills:        topSkills(skills, topSkillLimit),
		RecentCount:      recent,
		BlacklistedCount: blacklisted,
		Screening:        screening,
	}, nil
}

func topSkills(counts map[string]int, limit int) map[string]int {
	type pair struct {
		skill string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for skill, count := range counts {
		pairs = append(pairs, pair{skill, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].skill < pairs[j].skill
	})
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	out := make(map[string]int, len(pairs))
	for _, p := range pairs {
		out[p.skill] = p.count
	}
	return out
}

// InvalidatingBroadcaster invalidates the dashboard summary whenever a
// domain event goes out, then forwards the event. Presence events do not
// change dashboard data and are passed through untouched.
type InvalidatingBroadcaster struct {
	Next   realtime.Broadcaster
	Cache  *SummaryCache
	Logger *slog.Logger
}

// Broadcast implements realtime.Broadcaster.
func (b InvalidatingBroadcaster) Broadcast(event realtime.Event) {
	switch event.Type {
	case realtime.EventUserConnected, realtime.EventUserDisconnected:
	default:
		if err := b.Cache.Invalidate(context.Background()); err != nil && b.Logger != nil {
			b.Logger.Warn("invalidate dashboard summary", slog.Any("error", err))
		}
	}
	b.Next.Broadcast(event)
}
