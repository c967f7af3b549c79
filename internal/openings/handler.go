package openings

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hireloop-ats/hireloop/internal/rbac"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Handler wires HTTP endpoints for job openings.
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

// MountRoutes registers opening routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.RequirePermission(rbac.ActionViewJobs)).Get("/", h.handleList)
	r.With(h.authz.RequirePermission(rbac.ActionCreateJob)).Post("/", h.handleCreate)
	r.With(h.authz.RequirePermission(rbac.ActionViewJobs)).Get("/{id}", h.handleGet)
	r.With(h.authz.RequirePermission(rbac.ActionDeleteJob)).Delete("/{id}", h.handleDeactivate)
}

type createRequest struct {
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description" validate:"required"`
	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`
	ExperienceYears int      `json:"experience_years" validate:"gte=0"`
	EducationLevel  string   `json:"education_level"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	created, err := h.service.Create(r.Context(), Opening{
		Title:           req.Title,
		Description:     req.Description,
		RequiredSkills:  req.RequiredSkills,
		PreferredSkills: req.PreferredSkills,
		ExperienceYears: req.ExperienceYears,
		EducationLevel:  req.EducationLevel,
	}, p)
	if err != nil {
		h.logger.Error("create opening", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list openings", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	if list == nil {
		list = []Opening{}
	}
	shared.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	opening, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, opening)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	if err := h.service.Deactivate(r.Context(), id, p); err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"message": "job deactivated"})
}
