package activity

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hireloop-ats/hireloop/internal/rbac"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Handler serves the activity trail.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: mw}
}

// MountRoutes registers activity routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequirePermission(rbac.ActionViewActivity)).Get("/", h.list)
}

type listResponse struct {
	Entries    []Entry           `json:"entries"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	pagination := shared.NewPagination(page, perPage, 0)
	entries, total, err := h.service.List(r.Context(), pagination.PerPage, pagination.Offset())
	if err != nil {
		h.logger.Error("list activity", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, listResponse{
		Entries:    entries,
		Pagination: shared.NewPagination(page, perPage, total),
	})
}
