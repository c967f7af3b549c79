package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hireloop-ats/hireloop/internal/auth"
	"github.com/hireloop-ats/hireloop/internal/rbac"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Handler manages user administration endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authz}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.RequirePermission(rbac.ActionViewUsers)).Get("/", h.handleList)
	r.With(h.authz.RequirePermission(rbac.ActionManageUsers)).Put("/{id}/role", h.handleChangeRole)
	r.With(h.authz.RequirePermission(rbac.ActionManageUsers)).Delete("/{id}", h.handleDeactivate)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		shared.RespondDomainError(w, err)
		return
	}
	out := make([]auth.UserResponse, 0, len(list))
	for i := range list {
		out = append(out, auth.NewUserResponse(&list[i]))
	}
	shared.RespondJSON(w, http.StatusOK, out)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req roleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	user, err := h.service.ChangeRole(r.Context(), id, req.Role, p)
	if err != nil {
		if errors.Is(err, ErrSelfChange) {
			shared.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, shared.ErrNotFound) {
			shared.RespondError(w, http.StatusNotFound, "user not found")
			return
		}
		shared.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	shared.RespondJSON(w, http.StatusOK, auth.NewUserResponse(user))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	if err := h.service.Deactivate(r.Context(), id, p); err != nil {
		if errors.Is(err, ErrSelfChange) {
			shared.RespondError(w, http.StatusBadRequest, "cannot deactivate your own account")
			return
		}
		shared.RespondDomainError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"message": "user deactivated successfully"})
}
