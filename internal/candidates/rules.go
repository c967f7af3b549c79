package candidates

import (
	"github.com/hireloop-ats/hireloop/internal/rbac"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// CanModify reports whether the actor may modify a specific candidate.
// Admins and HR managers may modify any candidate; recruiters only the ones
// they uploaded.
func CanModify(p *shared.Principal, candidate *Candidate) bool {
	if p == nil {
		return false
	}
	switch rbac.Role(p.Role) {
	case rbac.RoleAdmin, rbac.RoleHRManager:
		return true
	case rbac.RoleRecruiter:
		return candidate.UploadedBy == p.Name
	default:
		return false
	}
}

// CanDeleteComment reports whether the actor may delete a comment. Admins
// and HR managers may delete any comment; everyone may delete their own.
func CanDeleteComment(p *shared.Principal, comment *Comment) bool {
	if p == nil {
		return false
	}
	switch rbac.Role(p.Role) {
	case rbac.RoleAdmin, rbac.RoleHRManager:
		return true
	}
	return comment.Author == p.Name
}

// CanEditNote reports whether the actor may update or delete a note. Notes
// belong to their author; admins may clean up after departed users.
func CanEditNote(p *shared.Principal, note *Note) bool {
	if p == nil {
		return false
	}
	if rbac.Role(p.Role) == rbac.RoleAdmin {
		return true
	}
	return note.UserID == p.UserID
}
