package rbac

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hireloop-ats/hireloop/internal/shared"
)

// Middleware wires authorization checks for HTTP handlers. All checks fail
// closed: a missing principal or unknown role denies the request.
type Middleware struct {
	Logger *slog.Logger
}

// RequirePermission ensures the current user may perform the action.
func (m Middleware) RequirePermission(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := shared.PrincipalFromContext(r.Context())
			if p == nil {
				shared.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !Has(Role(p.Role), action) {
				if m.Logger != nil {
					m.Logger.Warn("permission denied",
						slog.String("action", action),
						slog.String("role", p.Role),
						slog.Int64("user_id", p.UserID))
				}
				shared.RespondError(w, http.StatusForbidden,
					fmt.Sprintf("insufficient permissions: %s required", action))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole ensures the current user holds one of the listed roles.
func (m Middleware) RequireAnyRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := shared.PrincipalFromContext(r.Context())
			if p == nil {
				shared.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, role := range roles {
				if Role(p.Role) == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			shared.RespondError(w, http.StatusForbidden, "insufficient role")
		})
	}
}

// RequireMinRole ensures the current user is at or above the given role in
// the hierarchy.
func (m Middleware) RequireMinRole(min Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := shared.PrincipalFromContext(r.Context())
			if p == nil {
				shared.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if Role(p.Role).Level() < min.Level() || min.Level() == 0 {
				shared.RespondError(w, http.StatusForbidden,
					fmt.Sprintf("insufficient permissions: minimum role %s required", min))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
