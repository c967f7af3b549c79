package matches

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hireloop-ats/hireloop/internal/activity"
	"github.com/hireloop-ats/hireloop/internal/realtime"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

type memRepo struct {
	profiles     map[int64]*Profile
	requirements map[int64]*Requirement
	results      []Result
	nextID       int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		profiles:     make(map[int64]*Profile),
		requirements: make(map[int64]*Requirement),
		nextID:       1,
	}
}

func (m *memRepo) CandidateProfile(_ context.Context, id int64) (*Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (m *memRepo) JobRequirement(_ context.Context, id int64) (*Requirement, error) {
	r, ok := m.requirements[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return r, nil
}

func (m *memRepo) Insert(_ context.Context, result Result) (*Result, error) {
	result.ID = m.nextID
	m.nextID++
	result.CreatedAt = time.Now()
	m.results = append(m.results, result)
	cp := result
	return &cp, nil
}

func (m *memRepo) ListByCandidate(_ context.Context, candidateID int64) ([]Result, error) {
	var out []Result
	for i := len(m.results) - 1; i >= 0; i-- {
		if m.results[i].CandidateID == candidateID {
			out = append(out, m.results[i])
		}
	}
	return out, nil
}

var _ Repository = (*memRepo)(nil)

type memActivityRepo struct {
	entries []activity.Entry
}

func (m *memActivityRepo) Insert(_ context.Context, entry activity.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memActivityRepo) List(_ context.Context, limit, offset int) ([]activity.Entry, int, error) {
	return m.entries, len(m.entries), nil
}

type captureBroadcaster struct {
	events []realtime.Event
}

func (c *captureBroadcaster) Broadcast(e realtime.Event) {
	c.events = append(c.events, e)
}

func newTestService(t *testing.T) (*Service, *memRepo, *memActivityRepo, *captureBroadcaster) {
	t.Helper()
	repo := newMemRepo()
	trail := &memActivityRepo{}
	bc := &captureBroadcaster{}
	svc := NewService(repo, activity.NewService(trail, nil), bc)
	return svc, repo, trail, bc
}

var matcher = &shared.Principal{UserID: 2, Name: "dana", Role: "hr_manager", IsActive: true}

func seedPair(repo *memRepo) {
	repo.profiles[1] = &Profile{
		Skills:     []string{"go", "sql"},
		Experience: json.RawMessage(`[{"company":"acme"},{"company":"initech"}]`),
	}
	repo.requirements[5] = &Requirement{RequiredSkills: []string{"go", "sql"}, ExperienceYears: 4}
}

func TestMatchStoresAndBroadcasts(t *testing.T) {
	svc, repo, trail, bc := newTestService(t)
	seedPair(repo)

	result, err := svc.Match(context.Background(), 1, 5, matcher)
	require.NoError(t, err)
	require.Equal(t, int64(1), result.CandidateID)
	require.Equal(t, int64(5), result.JobID)
	require.Equal(t, 97.0, result.OverallScore)
	require.NotZero(t, result.ID)

	require.Len(t, trail.entries, 1)
	require.Equal(t, "matched_candidate", trail.entries[0].Action)
	require.Equal(t, int64(1), trail.entries[0].CandidateID)

	require.Len(t, bc.events, 1)
	require.Equal(t, realtime.EventMatchCreated, bc.events[0].Type)
	require.Equal(t, int64(1), bc.events[0].CandidateID)
	require.Equal(t, int64(5), bc.events[0].JobID)
	require.Equal(t, result.OverallScore, bc.events[0].Score)
}

func TestMatchMissingCandidateOrJob(t *testing.T) {
	svc, repo, _, bc := newTestService(t)
	seedPair(repo)

	_, err := svc.Match(context.Background(), 404, 5, matcher)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Match(context.Background(), 1, 404, matcher)
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.Empty(t, bc.events)
}

func TestMatchesListsNewestFirst(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	seedPair(repo)
	repo.requirements[6] = &Requirement{RequiredSkills: []string{"kubernetes"}}

	first, err := svc.Match(context.Background(), 1, 5, matcher)
	require.NoError(t, err)
	second, err := svc.Match(context.Background(), 1, 6, matcher)
	require.NoError(t, err)

	list, err := svc.Matches(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)
}

func TestMatchesEmptyHistory(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	list, err := svc.Matches(context.Background(), 9)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}
