package rbac

// Role identifies a high-level permission grouping.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleHRManager Role = "hr_manager"
	RoleRecruiter Role = "recruiter"
)

// roleLevels orders roles for minimum-role checks.
var roleLevels = map[Role]int{
	RoleAdmin:     3,
	RoleHRManager: 2,
	RoleRecruiter: 1,
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the hierarchy level for the role, 0 when unknown.
func (r Role) Level() int {
	return roleLevels[r]
}

// Actions gated by the static policy table.
const (
	ActionViewCandidates       = "view_candidates"
	ActionUploadResume         = "upload_resume"
	ActionEditCandidate        = "edit_candidate"
	ActionDeleteCandidate      = "delete_candidate"
	ActionBlacklistCandidate   = "blacklist_candidate"
	ActionUnblacklistCandidate = "unblacklist_candidate"

	ActionViewJobs  = "view_jobs"
	ActionCreateJob = "create_job"
	ActionEditJob   = "edit_job"
	ActionDeleteJob = "delete_job"

	ActionMatchCandidates = "match_candidates"
	ActionViewAnalytics   = "view_analytics"

	ActionAddComment    = "add_comment"
	ActionViewComments  = "view_comments"
	ActionDeleteComment = "delete_comment"

	ActionViewActivity  = "view_activity"
	ActionViewBlacklist = "view_blacklist"

	ActionManageUsers  = "manage_users"
	ActionViewUsers    = "view_users"
	ActionChangeStatus = "change_status"
)
