package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Hub fans broadcast events out to every connected client. It owns the
// client set; registration, removal and broadcast all serialize through the
// run loop so no locks are needed.
type Hub struct {
	logger     *slog.Logger
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}

	onCountChange func(total int)
	onBroadcast   func()
}

// NewHub constructs a Hub. Call Run before serving connections.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 64),
		done:       make(chan struct{}),
	}
}

// SetConnectionGauge installs a callback invoked with the connection count
// whenever it changes.
func (h *Hub) SetConnectionGauge(fn func(total int)) {
	h.onCountChange = fn
}

// SetBroadcastCounter installs a callback invoked once per fanned-out
// event.
func (h *Hub) SetBroadcastCounter(fn func()) {
	h.onBroadcast = fn
}

// Run processes hub events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				client.closeSend()
			}
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.countChanged()
			h.fanOut(Event{Type: EventUserConnected, User: client.user, Total: len(h.clients)})
		case client := <-h.unregister:
			if _, ok := h.clients[client]; !ok {
				continue
			}
			delete(h.clients, client)
			client.closeSend()
			h.countChanged()
			h.fanOut(Event{Type: EventUserDisconnected, User: client.user})
		case event := <-h.broadcast:
			h.fanOut(event)
		}
	}
}

// Broadcast queues an event for delivery to all connected clients. Drops the
// event when the hub is saturated or stopped; live updates are advisory and
// every page keeps a manual refresh path.
func (h *Hub) Broadcast(event Event) {
	select {
	case h.broadcast <- event:
	case <-h.done:
	default:
		if h.logger != nil {
			h.logger.Warn("hub broadcast dropped", slog.String("type", string(event.Type)))
		}
	}
}

func (h *Hub) fanOut(event Event) {
	if h.onBroadcast != nil {
		h.onBroadcast()
	}
	frame, err := json.Marshal(event)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("marshal event", slog.Any("error", err))
		}
		return
	}
	for client := range h.clients {
		select {
		case client.send <- frame:
		default:
			// Slow consumer: drop it rather than block the hub.
			delete(h.clients, client)
			client.closeSend()
			h.countChanged()
		}
	}
}

func (h *Hub) countChanged() {
	if h.onCountChange != nil {
		h.onCountChange(len(h.clients))
	}
}
