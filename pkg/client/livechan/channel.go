// Package livechan maintains the single live connection per session and
// delivers coarse "something changed" notifications. Consumers re-fetch the
// authoritative record themselves; the channel never carries data payloads.
//
// There is no automatic reconnect on drop and no replay: a subscriber that
// attaches after an event fires never sees it, so every live-updated view
// must also be refreshable by explicit user action.
package livechan

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrNotConnected is returned by Send when the socket is not open. Messages
// are never queued for later delivery.
var ErrNotConnected = errors.New("livechan: not connected")

// ErrClosed is returned when operating on a closed channel.
var ErrClosed = errors.New("livechan: closed")

// URLSource supplies the websocket endpoint with the current credential in
// the handshake query. *client.Client satisfies it; the credential is read
// fresh on every dial, so a reconnect after token rotation picks up the new
// one.
type URLSource interface {
	LiveURL() (string, error)
}

type subscriber struct {
	types map[EventType]struct{}
	ch    chan Event
}

func (s *subscriber) wants(t EventType) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// Channel is the live update connection. One Channel per session.
type Channel struct {
	source URLSource
	logger *slog.Logger
	dialer *websocket.Dialer

	mu      sync.Mutex
	conn    *websocket.Conn
	last    Event
	hasLast bool
	subs    map[*subscriber]struct{}
	closed  bool
}

// NewChannel constructs a Channel. Call Connect to open the socket.
func NewChannel(source URLSource, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		source: source,
		logger: logger,
		dialer: websocket.DefaultDialer,
		subs:   make(map[*subscriber]struct{}),
	}
}

// Connect opens the socket using the credential carried in the handshake
// query. Calling Connect while already connected is an error; use Reconnect
// for an explicit credential change.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.conn != nil {
		c.mu.Unlock()
		return errors.New("livechan: already connected")
	}
	c.mu.Unlock()

	return c.dial(ctx)
}

// Reconnect closes the current socket, if any, and dials again. The
// credential is read fresh from the source, making token rotation an
// explicit, observable transition instead of a remount side effect.
func (c *Channel) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	return c.dial(ctx)
}

func (c *Channel) dial(ctx context.Context) error {
	endpoint, err := c.source.LiveURL()
	if err != nil {
		return err
	}
	conn, resp, err := c.dialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

// readLoop consumes frames until the connection drops. Errors are logged
// only; the channel stays usable for an explicit Reconnect.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.logger.Warn("live channel read", slog.Any("error", err))
			}
			return
		}
		event, err := parseEvent(frame)
		if err != nil || event.Type == "" {
			c.logger.Warn("live channel frame dropped", slog.Any("error", err))
			continue
		}
		c.deliver(event)
	}
}

// deliver records the event as last-received and fans it out to matching
// subscribers. Delivery is at-most-once: a subscriber that cannot keep up
// loses the event rather than blocking the channel.
func (c *Channel) deliver(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.last = event
	c.hasLast = true
	for sub := range c.subs {
		if !sub.wants(event.Type) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
}

// LastEvent returns the most recently received event. Consumers must treat
// it as read-only.
func (c *Channel) LastEvent() (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.hasLast
}

// Subscribe registers interest in the given event types; with no types,
// every event is delivered. The returned cancel function releases the
// subscription and closes its channel.
func (c *Channel) Subscribe(types ...EventType) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, 8)}
	if len(types) > 0 {
		sub.types = make(map[EventType]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	c.subs[sub] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subs[sub]; ok {
			delete(c.subs, sub)
			close(sub.ch)
		}
		c.mu.Unlock()
	}
	return sub.ch, cancel
}

// Send writes a message on the open socket. It never queues: without an
// open connection the message is dropped with ErrNotConnected.
func (c *Channel) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.WriteJSON(v)
}

// Close tears the channel down exactly once. No events are delivered after
// Close even if frames race in on the underlying transport.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	var err error
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	for sub := range c.subs {
		delete(c.subs, sub)
		close(sub.ch)
	}
	return err
}
