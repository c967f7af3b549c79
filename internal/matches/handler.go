package matches

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hireloop-ats/hireloop/internal/rbac"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Handler wires HTTP endpoints for candidate/job matching.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authz, validator: validator.New()}
}

// MountRoutes registers the match scoring endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.RequirePermission(rbac.ActionMatchCandidates)).Post("/", h.handleMatch)
}

// CandidateMatches serves a candidate's match history; the candidates
// module mounts it under its /{id} routes.
func (h *Handler) CandidateMatches() http.Handler {
	return h.authz.RequirePermission(rbac.ActionMatchCandidates)(http.HandlerFunc(h.handleListMatches))
}

type matchRequest struct {
	CandidateID int64 `json:"candidate_id" validate:"required,gt=0"`
	JobID       int64 `json:"job_id" validate:"required,gt=0"`
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	result, err := h.service.Match(r.Context(), req.CandidateID, req.JobID, p)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("match candidate", slog.Any("error", err))
		}
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleListMatches(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	results, err := h.service.Matches(r.Context(), id)
	if err != nil {
		h.logger.Error("list matches", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, results)
}
