package openings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hireloop-ats/hireloop/internal/activity"
	"github.com/hireloop-ats/hireloop/internal/realtime"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

type memRepo struct {
	openings map[int64]*Opening
	nextID   int64
}

func newMemRepo() *memRepo {
	return &memRepo{openings: make(map[int64]*Opening), nextID: 1}
}

func (m *memRepo) List(_ context.Context) ([]Opening, error) {
	var out []Opening
	for _, o := range m.openings {
		if o.IsActive {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, id int64) (*Opening, error) {
	o, ok := m.openings[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) Insert(_ context.Context, o Opening) (*Opening, error) {
	o.ID = m.nextID
	m.nextID++
	o.IsActive = true
	m.openings[o.ID] = &o
	cp := o
	return &cp, nil
}

func (m *memRepo) Deactivate(_ context.Context, id int64) error {
	o, ok := m.openings[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.IsActive = false
	return nil
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

func newTestService(t *testing.T) (*Service, *memActivityRepo, *captureBroadcaster) {
	t.Helper()
	trail := &memActivityRepo{}
	bc := &captureBroadcaster{}
	return NewService(newMemRepo(), activity.NewService(trail, nil), bc), trail, bc
}

func TestCreateAnnouncesOpening(t *testing.T) {
	svc, trail, bc := newTestService(t)
	hr := &shared.Principal{UserID: 2, Name: "dana", Role: "hr_manager"}

	created, err := svc.Create(context.Background(), Opening{
		Title:          "Backend Engineer",
		Description:    "Build the hiring pipeline services.",
		RequiredSkills: []string{"go", "postgres"},
	}, hr)
	require.NoError(t, err)
	require.Equal(t, "dana", created.CreatedBy)
	require.True(t, created.IsActive)

	require.Len(t, trail.entries, 1)
	require.Equal(t, "created_job", trail.entries[0].Action)

	require.Len(t, bc.events, 1)
	require.Equal(t, realtime.EventJobCreated, bc.events[0].Type)
	require.Equal(t, created.ID, bc.events[0].JobID)
	require.Equal(t, "Backend Engineer", bc.events[0].Name)
}

func TestCreateRequiresTitleAndDescription(t *testing.T) {
	svc, _, _ := newTestService(t)
	hr := &shared.Principal{Name: "dana", Role: "hr_manager"}

	_, err := svc.Create(context.Background(), Opening{Description: "body"}, hr)
	require.Error(t, err)

	_, err = svc.Create(context.Background(), Opening{Title: "x", Description: "  "}, hr)
	require.Error(t, err)
}

func TestDeactivateHidesFromList(t *testing.T) {
	svc, _, _ := newTestService(t)
	hr := &shared.Principal{Name: "dana", Role: "hr_manager"}

	created, err := svc.Create(context.Background(), Opening{Title: "QA", Description: "Test things."}, hr)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), created.ID, hr))

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)

	// Still fetchable directly for historical match reports.
	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	require.ErrorIs(t, svc.Deactivate(context.Background(), 404, hr), shared.ErrNotFound)
}
