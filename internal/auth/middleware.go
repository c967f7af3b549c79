package auth

import (
	"net/http"
	"strings"

	"github.com/hireloop-ats/hireloop/internal/shared"
)

// BearerToken extracts the bearer credential from a request. Falls back to
// the token query parameter for transports that cannot set headers (the
// websocket handshake).
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// Middleware resolves the bearer token into a request principal. Requests
// without a token pass through unauthenticated; permission middleware
// downstream rejects them where authentication is required.
func Middleware(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := service.Resolve(r.Context(), token)
			if err != nil {
				shared.RespondError(w, http.StatusUnauthorized, "invalid authentication credentials")
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAuth rejects unauthenticated requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.PrincipalFromContext(r.Context()) == nil {
			shared.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
