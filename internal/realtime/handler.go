package realtime

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Handler upgrades HTTP requests to hub connections.
type Handler struct {
	logger   *slog.Logger
	hub      *Hub
	resolve  func(r *http.Request, token string) (*shared.Principal, error)
	upgrader websocket.Upgrader
}

// NewHandler constructs a websocket Handler. resolve maps the handshake
// token to a principal; a failed resolution connects the client as
// anonymous rather than rejecting the upgrade.
func NewHandler(logger *slog.Logger, hub *Hub, resolve func(r *http.Request, token string) (*shared.Principal, error)) *Handler {
	return &Handler{
		logger:  logger,
		hub:     hub,
		resolve: resolve,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from a different origin than the API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles GET /ws?token=<credential>.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user := "Anonymous"
	if token := r.URL.Query().Get("token"); token != "" && h.resolve != nil {
		if principal, err := h.resolve(r, token); err == nil && principal != nil {
			user = principal.Name
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("websocket upgrade", slog.Any("error", err))
		}
		return
	}

	client := newClient(h.hub, conn, user, h.logger)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}
