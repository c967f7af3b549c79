package analytics

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hireloop-ats/hireloop/internal/rbac"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Handler serves the dashboard summary.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authz}
}

// MountRoutes registers analytics routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.RequirePermission(rbac.ActionViewAnalytics)).Get("/", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("analytics summary", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, summary)
}
