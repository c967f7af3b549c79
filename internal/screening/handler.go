package screening

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hireloop-ats/hireloop/internal/auth"
	"github.com/hireloop-ats/hireloop/internal/rbac"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Handler wires HTTP endpoints for batch screening.
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

// MountRoutes registers screening routes on the provided router. Every
// screening route requires an authenticated reviewer; destructive
// operations additionally reuse the candidate permission gates.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(auth.RequireAuth)

	r.Post("/start", h.handleStart)
	r.Get("/batches", h.handleListBatches)
	r.Put("/batches/{id}/pause", h.handlePause)
	r.Put("/batches/{id}/resume", h.handleResume)
	r.Put("/batches/{id}/cancel", h.handleCancel)
	r.With(h.authz.RequirePermission(rbac.ActionDeleteCandidate)).Delete("/batches/{id}", h.handleDeleteBatch)

	r.Get("/potentials/{id}", h.handleListPotentials)
	r.Put("/potentials/{id}/status", h.handleUpdatePotentialStatus)
	r.Get("/activities/{id}", h.handleListActivities)
	r.With(h.authz.RequirePermission(rbac.ActionViewActivity)).Get("/rejected/{id}", h.handleListRejected)
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

type intakeItem struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Phone           string   `json:"phone"`
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years" validate:"gte=0"`
	Location        string   `json:"location"`
	ResumeText      string   `json:"resume_text"`
	ResumeFilename  string   `json:"resume_filename"`
}

type startRequest struct {
	Name    string       `json:"name" validate:"required"`
	Filters Filters      `json:"filters"`
	Items   []intakeItem `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	items := make([]BatchItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, BatchItem{
			Name:            item.Name,
			Email:           item.Email,
			Phone:           item.Phone,
			Skills:          item.Skills,
			ExperienceYears: item.ExperienceYears,
			Location:        item.Location,
			ResumeText:      item.ResumeText,
			ResumeFilename:  item.ResumeFilename,
		})
	}
	p := shared.PrincipalFromContext(r.Context())
	batch, err := h.service.Start(r.Context(), req.Name, req.Filters, items, p)
	if err != nil {
		h.logger.Error("start screening", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, batch)
}

func (h *Handler) handleListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.service.Batches(r.Context())
	if err != nil {
		h.logger.Error("list batches", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	if batches == nil {
		batches = []Batch{}
	}
	shared.RespondJSON(w, http.StatusOK, batches)
}

// transition funnels pause/resume/cancel through one shape.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(int64, *shared.Principal) (*Batch, error)) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	batch, err := op(id, p)
	if err != nil {
		if errors.Is(err, ErrBadState) {
			shared.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, batch)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int64, p *shared.Principal) (*Batch, error) {
		return h.service.Pause(r.Context(), id, p)
	})
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int64, p *shared.Principal) (*Batch, error) {
		return h.service.Resume(r.Context(), id, p)
	})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int64, p *shared.Principal) (*Batch, error) {
		return h.service.Cancel(r.Context(), id, p)
	})
}

func (h *Handler) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	if err := h.service.DeleteBatch(r.Context(), id, p); err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"message": "batch deleted", "batch_id": id})
}

type potentialsResponse struct {
	Potentials []Potential       `json:"potentials"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) handleListPotentials(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	page, perPage := shared.PageParams(r)
	potentials, total, err := h.service.Potentials(r.Context(), id, perPage, (page-1)*perPage)
	if err != nil {
		h.logger.Error("list potentials", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	if potentials == nil {
		potentials = []Potential{}
	}
	shared.RespondJSON(w, http.StatusOK, potentialsResponse{
		Potentials: potentials,
		Pagination: shared.NewPagination(page, perPage, total),
	})
}

type potentialStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) handleUpdatePotentialStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid potential id")
		return
	}
	var req potentialStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !ValidReviewStatus(req.Status) {
		shared.RespondError(w, http.StatusBadRequest, "unknown review status")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	potential, err := h.service.UpdatePotentialStatus(r.Context(), id, req.Status, p)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, potential)
}

func (h *Handler) handleListActivities(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	activities, err := h.service.Activities(r.Context(), id, limit)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	if activities == nil {
		activities = []Activity{}
	}
	shared.RespondJSON(w, http.StatusOK, activities)
}

func (h *Handler) handleListRejected(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	rejected, err := h.service.Rejected(r.Context(), id)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	if rejected == nil {
		rejected = []RejectedPotential{}
	}
	shared.RespondJSON(w, http.StatusOK, rejected)
}
