package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hireloop-ats/hireloop/internal/rbac"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

func serve(t *testing.T, mw func(http.Handler) http.Handler, p *shared.Principal) *httptest.ResponseRecorder {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if p != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), p))
	}
	res := httptest.NewRecorder()
	mw(next).ServeHTTP(res, req)
	return res
}

func TestRequirePermissionUnauthenticated(t *testing.T) {
	mw := rbac.Middleware{}
	res := serve(t, mw.RequirePermission(rbac.ActionViewCandidates), nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequirePermissionDenied(t *testing.T) {
	mw := rbac.Middleware{}
	p := &shared.Principal{UserID: 7, Role: string(rbac.RoleRecruiter)}
	res := serve(t, mw.RequirePermission(rbac.ActionManageUsers), p)
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequirePermissionGranted(t *testing.T) {
	mw := rbac.Middleware{}
	p := &shared.Principal{UserID: 1, Role: string(rbac.RoleAdmin)}
	res := serve(t, mw.RequirePermission(rbac.ActionManageUsers), p)
	require.Equal(t, http.StatusOK, res.Code)
}

func TestRequireAnyRole(t *testing.T) {
	mw := rbac.Middleware{}
	p := &shared.Principal{UserID: 2, Role: string(rbac.RoleHRManager)}

	res := serve(t, mw.RequireAnyRole(rbac.RoleAdmin, rbac.RoleHRManager), p)
	require.Equal(t, http.StatusOK, res.Code)

	res = serve(t, mw.RequireAnyRole(rbac.RoleAdmin), p)
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestRequireMinRole(t *testing.T) {
	mw := rbac.Middleware{}

	res := serve(t, mw.RequireMinRole(rbac.RoleHRManager), &shared.Principal{Role: string(rbac.RoleAdmin)})
	require.Equal(t, http.StatusOK, res.Code)

	res = serve(t, mw.RequireMinRole(rbac.RoleHRManager), &shared.Principal{Role: string(rbac.RoleRecruiter)})
	require.Equal(t, http.StatusForbidden, res.Code)

	// Unknown minimum role fails closed rather than letting everyone in.
	res = serve(t, mw.RequireMinRole(rbac.Role("ghost")), &shared.Principal{Role: string(rbac.RoleAdmin)})
	require.Equal(t, http.StatusForbidden, res.Code)
}
