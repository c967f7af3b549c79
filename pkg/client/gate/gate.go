// Package gate provides permission-gated rendering decisions on top of the
// permission store. Every decision is tri-state: while the store loads the
// answer is Pending, not Deny, so callers can suppress content instead of
// flashing a denial that a moment later flips to a grant.
package gate

import "github.com/hireloop-ats/hireloop/pkg/client/permstore"

// Decision is the outcome of a gate check.
type Decision int

const (
	// Pending means the store has not finished loading.
	Pending Decision = iota
	// Allow means the check passed on an explicit grant.
	Allow
	// Deny means the check failed after load. Fail closed.
	Deny
)

// PermissionSource is the slice of the permission store gates consult.
type PermissionSource interface {
	State() permstore.State
	HasPermission(action string) bool
	RoleIs(expected string) bool
}

// Capability gates on a single action key.
func Capability(store PermissionSource, action string) Decision {
	if store.State() != permstore.StateReady {
		return Pending
	}
	if store.HasPermission(action) {
		return Allow
	}
	return Deny
}

// Role gates on exact membership in a role set, for branches keyed on who
// the user is rather than what they may do.
func Role(store PermissionSource, roles ...string) Decision {
	if store.State() != permstore.StateReady {
		return Pending
	}
	for _, role := range roles {
		if store.RoleIs(role) {
			return Allow
		}
	}
	return Deny
}

// Content lazily produces gated output. Gated content is built only when
// the decision allows it, so a denied viewer's content is never even
// constructed.
type Content func() string

// Render resolves a decision to output. Pending renders nothing; Deny
// renders the fallback, or nothing when no fallback is given.
func (d Decision) Render(allowed, fallback Content) string {
	switch d {
	case Allow:
		if allowed == nil {
			return ""
		}
		return allowed()
	case Deny:
		if fallback == nil {
			return ""
		}
		return fallback()
	default:
		return ""
	}
}

// Page wraps a whole view behind a capability. While the store loads it
// yields the loading placeholder; on denial it yields the access-denied
// view. The page content function is never invoked for an unauthorized
// user, even momentarily.
type Page struct {
	Store   PermissionSource
	Action  string
	Loading Content
	Denied  Content
}

// Render resolves the page for the current store state.
func (p Page) Render(page Content) string {
	switch Capability(p.Store, p.Action) {
	case Allow:
		if page == nil {
			return ""
		}
		return page()
	case Deny:
		if p.Denied == nil {
			return "access denied"
		}
		return p.Denied()
	default:
		if p.Loading == nil {
			return "loading"
		}
		return p.Loading()
	}
}
