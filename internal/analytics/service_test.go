package analytics

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/hireloop-ats/hireloop/internal/realtime"
)

type memRepo struct {
	mu       sync.Mutex
	statuses map[string]int
	skills   map[string]int
	recent   int
	flagged  int
	batches  []BatchProgress
	loads    int
}

func (m *memRepo) StatusCounts(context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	return m.statuses, nil
}

func (m *memRepo) SkillCounts(context.Context) (map[string]int, error) {
	return m.skills, nil
}

func (m *memRepo) RecentUploads(_ context.Context, days int) (int, error) {
	return m.recent, nil
}

func (m *memRepo) BlacklistedCount(context.Context) (int, error) {
	return m.flagged, nil
}

func (m *memRepo) BatchProgress(context.Context) ([]BatchProgress, error) {
	return m.batches, nil
}

func (m *memRepo) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

func newFixture(t *testing.T) (*Service, *memRepo, *SummaryCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &memRepo{
		statuses: map[string]int{"new": 3, "hired": 1},
		skills:   map[string]int{"go": 4, "sql": 2, "docker": 1},
		recent:   2,
		flagged:  1,
		batches:  []BatchProgress{{BatchID: 1, Name: "drive", Status: "processing", Processed: 4, Total: 10}},
	}
	cache := NewSummaryCache(client, time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, repo, cache), repo, cache
}

func TestSummaryAggregates(t *testing.T) {
	svc, _, _ := newFixture(t)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, summary.TotalCandidates)
	require.Equal(t, map[string]int{"new": 3, "hired": 1}, summary.ByStatus)
	require.Equal(t, 4, summary.TopSkills["go"])
	require.Equal(t, 2, summary.RecentCount)
	require.Equal(t, 1, summary.BlacklistedCount)
	require.Len(t, summary.Screening, 1)
}

func TestSummaryServedFromCache(t *testing.T) {
	svc, repo, _ := newFixture(t)

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)
	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.loadCount())
}

func TestInvalidateForcesRebuild(t *testing.T) {
	svc, repo, cache := newFixture(t)

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)

	repo.statuses = map[string]int{"new": 5}
	require.NoError(t, cache.Invalidate(context.Background()))

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, summary.TotalCandidates)
	require.Equal(t, 2, repo.loadCount())
}

func TestSummaryWithoutCacheClient(t *testing.T) {
	repo := &memRepo{statuses: map[string]int{"new": 1}}
	svc := NewService(nil, repo, nil)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.TotalCandidates)
}

func TestWarmOnInvalidationRebuildsSummary(t *testing.T) {
	svc, repo, cache := newFixture(t)

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.loadCount())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.WarmOnInvalidation(ctx)

	// Let the subscription attach before publishing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, cache.Invalidate(context.Background()))

	require.Eventually(t, func() bool {
		return repo.loadCount() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTopSkillsCapsAndOrders(t *testing.T) {
	counts := map[string]int{}
	for i := 0; i < 15; i++ {
		counts[string(rune('a'+i))] = i + 1
	}
	top := topSkills(counts, 10)
	require.Len(t, top, 10)
	require.NotContains(t, top, "a")
	require.Contains(t, top, "o")
}

type recordingBroadcaster struct {
	events []realtime.Event
}

func (r *recordingBroadcaster) Broadcast(e realtime.Event) { r.events = append(r.events, e) }

func TestInvalidatingBroadcasterBumpsOnDomainEvents(t *testing.T) {
	svc, repo, cache := newFixture(t)
	next := &recordingBroadcaster{}
	bc := InvalidatingBroadcaster{Next: next, Cache: cache}

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)

	bc.Broadcast(realtime.Event{Type: realtime.EventUserConnected, User: "sam"})
	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.loadCount())

	bc.Broadcast(realtime.Event{Type: realtime.EventNewCandidate, CandidateID: 9})
	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.loadCount())

	require.Len(t, next.events, 2)
}
