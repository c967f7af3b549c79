package livechan

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// wsFixture runs a websocket endpoint and hands the server side of each
// accepted connection to the test.
type wsFixture struct {
	t      *testing.T
	srv    *httptest.Server
	mu     sync.Mutex
	conns  []*websocket.Conn
	tokens []string
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	f := &wsFixture{t: t}
	upgrader := websocket.Upgrader{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		f.mu.Lock()
		f.conns = append(f.conns, conn)
		f.tokens = append(f.tokens, r.URL.Query().Get("token"))
		f.mu.Unlock()
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *wsFixture) conn(i int) *websocket.Conn {
	require.Eventually(f.t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.conns) > i
	}, time.Second, time.Millisecond)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conns[i]
}

func (f *wsFixture) token(i int) string {
	f.conn(i)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[i]
}

func (f *wsFixture) push(i int, frame string) {
	require.NoError(f.t, f.conn(i).WriteMessage(websocket.TextMessage, []byte(frame)))
}

type staticSource struct {
	mu    sync.Mutex
	url   string
	token string
}

func (s *staticSource) LiveURL() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url + "?token=" + s.token, nil
}

func (s *staticSource) rotate(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func newTestChannel(t *testing.T) (*Channel, *wsFixture, *staticSource) {
	t.Helper()
	fixture := newWSFixture(t)
	source := &staticSource{url: "ws" + strings.TrimPrefix(fixture.srv.URL, "http"), token: "tok-1"}
	ch := NewChannel(source, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = ch.Close() })
	return ch, fixture, source
}

func TestFrameUpdatesLastEventAndNotifiesSubscriberOnce(t *testing.T) {
	ch, fixture, _ := newTestChannel(t)
	require.NoError(t, ch.Connect(context.Background()))

	events, cancel := ch.Subscribe(EventBatchPaused)
	defer cancel()

	fixture.push(0, `{"type":"batch_paused","batch_id":7}`)

	// Exactly one re-fetch trigger for the subscribed type.
	select {
	case event := <-events:
		require.Equal(t, EventBatchPaused, event.Type)
		require.Equal(t, int64(7), event.BatchID)
	case <-time.After(time.Second):
		t.Fatal("expected a batch_paused notification")
	}
	select {
	case event := <-events:
		t.Fatalf("unexpected second notification: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}

	last, ok := ch.LastEvent()
	require.True(t, ok)
	require.Equal(t, EventBatchPaused, last.Type)
	require.Equal(t, int64(7), last.BatchID)
}

func TestUnknownTypeUpdatesLastEventButSkipsFilteredSubscribers(t *testing.T) {
	ch, fixture, _ := newTestChannel(t)
	require.NoError(t, ch.Connect(context.Background()))

	events, cancel := ch.Subscribe(EventBatchPaused, EventBatchResumed)
	defer cancel()

	fixture.push(0, `{"type":"schema_migrated","batch_id":1}`)

	require.Eventually(t, func() bool {
		last, ok := ch.LastEvent()
		return ok && last.Type == EventType("schema_migrated")
	}, time.Second, time.Millisecond)

	select {
	case event := <-events:
		t.Fatalf("filtered subscriber must not see unknown types, got %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseStopsDeliveryAndIsIdempotent(t *testing.T) {
	ch, fixture, _ := newTestChannel(t)
	require.NoError(t, ch.Connect(context.Background()))

	events, cancel := ch.Subscribe()
	defer cancel()

	fixture.push(0, `{"type":"new_candidate","candidate_id":3}`)
	require.Eventually(t, func() bool {
		_, ok := ch.LastEvent()
		return ok
	}, time.Second, time.Millisecond)

	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close(), "second close is a no-op")

	// Frames racing in after close must not surface anywhere.
	_ = fixture.conn(0).WriteMessage(websocket.TextMessage, []byte(`{"type":"status_change","candidate_id":9}`))
	time.Sleep(50 * time.Millisecond)

	last, ok := ch.LastEvent()
	require.True(t, ok)
	require.Equal(t, EventNewCandidate, last.Type)

	event, open := <-events
	require.True(t, open, "event delivered before close stays readable")
	require.Equal(t, EventNewCandidate, event.Type)
	if _, open := <-events; open {
		t.Fatal("subscriber channel should be closed")
	}
	require.ErrorIs(t, ch.Send(map[string]string{"type": "ping"}), ErrClosed)
}

func TestSendRequiresOpenConnection(t *testing.T) {
	ch, _, _ := newTestChannel(t)
	require.ErrorIs(t, ch.Send(map[string]string{"type": "ping"}), ErrNotConnected)

	require.NoError(t, ch.Connect(context.Background()))
	require.NoError(t, ch.Send(map[string]string{"type": "ping"}))
}

func TestReconnectDialsWithFreshCredential(t *testing.T) {
	ch, fixture, source := newTestChannel(t)
	require.NoError(t, ch.Connect(context.Background()))
	require.Equal(t, "tok-1", fixture.token(0))

	source.rotate("tok-2")
	require.NoError(t, ch.Reconnect(context.Background()))
	require.Equal(t, "tok-2", fixture.token(1))

	// The new socket delivers; the old one is gone.
	events, cancel := ch.Subscribe(EventJobCreated)
	defer cancel()
	fixture.push(1, `{"type":"job_created","job_id":4}`)

	select {
	case event := <-events:
		require.Equal(t, int64(4), event.JobID)
	case <-time.After(time.Second):
		t.Fatal("expected delivery on the reconnected socket")
	}
}

func TestConnectTwiceFails(t *testing.T) {
	ch, _, _ := newTestChannel(t)
	require.NoError(t, ch.Connect(context.Background()))
	require.Error(t, ch.Connect(context.Background()))
}
