package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hireloop-ats/hireloop/internal/shared"
)

// PermissionsHandler serves the capability map for the current user. The
// dashboard loads this once per session and gates its UI on the result.
type PermissionsHandler struct {
	logger *slog.Logger
}

// NewPermissionsHandler builds a PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger) *PermissionsHandler {
	return &PermissionsHandler{logger: logger}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/users/me/permissions", h.myPermissions)
}

// PermissionsResponse is the payload for GET /api/users/me/permissions.
type PermissionsResponse struct {
	Permissions map[string]bool `json:"permissions"`
	Role        string          `json:"role"`
}

func (h *PermissionsHandler) myPermissions(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	if p == nil {
		shared.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	shared.RespondJSON(w, http.StatusOK, PermissionsResponse{
		Permissions: PermissionsFor(Role(p.Role)),
		Role:        p.Role,
	})
}
