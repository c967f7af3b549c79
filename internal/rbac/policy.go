package rbac

import "sort"

// policy maps each action to the roles allowed to perform it. The table is
// static: role capabilities are part of the product definition, not data.
var policy = map[string][]Role{
	ActionViewCandidates:       {RoleAdmin, RoleHRManager, RoleRecruiter},
	ActionUploadResume:         {RoleAdmin, RoleHRManager, RoleRecruiter},
	ActionEditCandidate:        {RoleAdmin, RoleHRManager},
	ActionDeleteCandidate:      {RoleAdmin},
	ActionBlacklistCandidate:   {RoleAdmin, RoleHRManager},
	ActionUnblacklistCandidate: {RoleAdmin, RoleHRManager},

	ActionViewJobs:  {RoleAdmin, RoleHRManager, RoleRecruiter},
	ActionCreateJob: {RoleAdmin, RoleHRManager},
	ActionEditJob:   {RoleAdmin, RoleHRManager},
	ActionDeleteJob: {RoleAdmin},

	ActionMatchCandidates: {RoleAdmin, RoleHRManager, RoleRecruiter},
	ActionViewAnalytics:   {RoleAdmin, RoleHRManager, RoleRecruiter},

	ActionAddComment:    {RoleAdmin, RoleHRManager, RoleRecruiter},
	ActionViewComments:  {RoleAdmin, RoleHRManager, RoleRecruiter},
	ActionDeleteComment: {RoleAdmin, RoleHRManager},

	ActionViewActivity:  {RoleAdmin, RoleHRManager},
	ActionViewBlacklist: {RoleAdmin, RoleHRManager},

	ActionManageUsers:  {RoleAdmin},
	ActionViewUsers:    {RoleAdmin, RoleHRManager},
	ActionChangeStatus: {RoleAdmin, RoleHRManager},
}

// Has reports whether the role may perform the action. Unknown actions are
// always denied.
func Has(role Role, action string) bool {
	for _, allowed := range policy[action] {
		if allowed == role {
			return true
		}
	}
	return false
}

// PermissionsFor returns the full capability map for a role, one explicit
// boolean per known action.
func PermissionsFor(role Role) map[string]bool {
	perms := make(map[string]bool, len(policy))
	for action, allowed := range policy {
		granted := false
		for _, r := range allowed {
			if r == role {
				granted = true
				break
			}
		}
		perms[action] = granted
	}
	return perms
}

// Actions lists every known action in stable order.
func Actions() []string {
	actions := make([]string, 0, len(policy))
	for action := range policy {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}
