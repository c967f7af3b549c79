package candidates

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

// Handler wires HTTP endpoints for the candidates module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     rbac.Middleware
	validator *validator.Validate

	// MatchHistory, when set, serves GET /{id}/matches. The matches
	// module owns scoring and storage; the route lives here because
	// chi resolves /{id} subroutes in one place.
	MatchHistory http.Handler
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authz, validator: validator.New()}
}

// MountRoutes registers candidate routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.RequirePermission(rbac.ActionViewCandidates)).Get("/", h.handleList)
	r.With(h.authz.RequirePermission(rbac.ActionUploadResume)).Post("/", h.handleIngest)

	r.Route("/{id}", func(r chi.Router) {
		r.With(h.authz.RequirePermission(rbac.ActionViewCandidates)).Get("/", h.handleGet)
		r.With(h.authz.RequirePermission(rbac.ActionChangeStatus)).Put("/status", h.handleUpdateStatus)
		r.With(h.authz.RequirePermission(rbac.ActionDeleteCandidate)).Delete("/", h.handleDelete)
		r.With(h.authz.RequirePermission(rbac.ActionBlacklistCandidate)).Put("/blacklist", h.handleBlacklist)
		r.With(h.authz.RequirePermission(rbac.ActionUnblacklistCandidate)).Put("/unblacklist", h.handleUnblacklist)

		r.With(h.authz.RequirePermission(rbac.ActionViewComments)).Get("/comments", h.handleListComments)
		r.With(h.authz.RequirePermission(rbac.ActionAddComment)).Post("/comments", h.handleAddComment)

		if h.MatchHistory != nil {
			r.Method(http.MethodGet, "/matches", h.MatchHistory)
		}

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Get("/notes", h.handleListNotes)
			r.Post("/notes", h.handleAddNote)
			r.Get("/notes/count", h.handleCountNotes)
		})
	})
}

// MountBlacklistRoutes registers the blacklist listing endpoint.
func (h *Handler) MountBlacklistRoutes(r chi.Router) {
	r.With(h.authz.RequirePermission(rbac.ActionViewBlacklist)).Get("/", h.handleListBlacklist)
}

// MountCommentRoutes registers comment endpoints addressed by comment id.
// Object-level deletion rules apply in the service.
func (h *Handler) MountCommentRoutes(r chi.Router) {
	r.Use(auth.RequireAuth)
	r.Delete("/{id}", h.handleDeleteComment)
}

// MountNoteRoutes registers note endpoints addressed by note id, plus the
// per-user views. Notes are visible to every authenticated role, so the
// only gate is authentication; ownership checks live in the service.
func (h *Handler) MountNoteRoutes(r chi.Router) {
	r.Use(auth.RequireAuth)
	r.Get("/my-notes", h.handleMyNotes)
	r.Get("/search", h.handleSearchNotes)
	r.Put("/{id}", h.handleUpdateNote)
	r.Put("/{id}/pin", h.handlePinNote)
	r.Delete("/{id}", h.handleDeleteNote)
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

type listResponse struct {
	Candidates []Candidate       `json:"candidates"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	filter := ListFilter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if filter.Status != "" && !ValidStatus(filter.Status) {
		shared.RespondError(w, http.StatusBadRequest, "unknown status filter")
		return
	}
	// The main listing hides blacklisted candidates; they live under
	// /api/blacklist.
	hidden := false
	filter.Blacklisted = &hidden

	candidates, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list candidates", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, listResponse{
		Candidates: candidates,
		Pagination: shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	candidate, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, candidate)
}

type ingestRequest struct {
	Name           string   `json:"name" validate:"required"`
	Email          string   `json:"email" validate:"omitempty,email"`
	Phone          string   `json:"phone"`
	Skills         []string `json:"skills"`
	ResumeText     string   `json:"resume_text"`
	ResumeFilename string   `json:"resume_filename"`
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	created, err := h.service.Ingest(r.Context(), Candidate{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Skills:         req.Skills,
		ResumeText:     req.ResumeText,
		ResumeFilename: req.ResumeFilename,
	}, p)
	if err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			shared.RespondError(w, http.StatusConflict, "candidate already exists")
			return
		}
		h.logger.Error("ingest candidate", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, created)
}

type updateStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Version int    `json:"version"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	var req updateStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !ValidStatus(req.Status) {
		shared.RespondError(w, http.StatusBadRequest, "unknown status")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	updated, err := h.service.UpdateStatus(r.Context(), id, req.Status, req.Version, p)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), id, p); err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"message": "candidate deleted"})
}

type blacklistRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	var req blacklistRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	candidate, err := h.service.Blacklist(r.Context(), id, req.Reason, p)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, candidate)
}

func (h *Handler) handleUnblacklist(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	candidate, err := h.service.Unblacklist(r.Context(), id, p)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, candidate)
}

func (h *Handler) handleListBlacklist(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	candidates, total, err := h.service.ListBlacklist(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		h.logger.Error("list blacklist", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, listResponse{
		Candidates: candidates,
		Pagination: shared.NewPagination(page, perPage, total),
	})
}

type commentRequest struct {
	Comment string `json:"comment" validate:"required"`
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	var req commentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	comment, err := h.service.AddComment(r.Context(), id, req.Comment, p)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, comment)
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	comments, err := h.service.Comments(r.Context(), id)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, comments)
}

func (h *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid comment id")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	if err := h.service.DeleteComment(r.Context(), id, p); err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

type noteRequest struct {
	Note string `json:"note" validate:"required"`
}

func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	var req noteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	note, err := h.service.AddNote(r.Context(), id, req.Note, p)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, note)
}

func (h *Handler) handleListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	notes, err := h.service.Notes(r.Context(), id)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, notes)
}

func (h *Handler) handleCountNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	count, err := h.service.CountNotes(r.Context(), id)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid note id")
		return
	}
	var req noteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	note, err := h.service.UpdateNote(r.Context(), id, req.Note, p)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, note)
}

type pinNoteRequest struct {
	Pinned bool `json:"pinned"`
}

func (h *Handler) handlePinNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid note id")
		return
	}
	var req pinNoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	note, err := h.service.PinNote(r.Context(), id, req.Pinned, p)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, note)
}

func (h *Handler) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		shared.RespondError(w, http.StatusBadRequest, "invalid note id")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	if err := h.service.DeleteNote(r.Context(), id, p); err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"message": "note deleted"})
}

func (h *Handler) handleMyNotes(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	notes, err := h.service.MyNotes(r.Context(), p)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, notes)
}

func (h *Handler) handleSearchNotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		shared.RespondError(w, http.StatusBadRequest, "search query required")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	notes, err := h.service.SearchNotes(r.Context(), query, p)
	if err != nil {
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, notes)
}
