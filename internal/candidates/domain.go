package candidates

import (
	"encoding/json"
	"time"
)

// Candidate is a fully ingested candidate record.
type Candidate struct {
	ID             int64           `json:"id"`
	UniqueHash     string          `json:"unique_hash"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone,omitempty"`
	Skills         []string        `json:"skills"`
	Experience     json.RawMessage `json:"experience,omitempty"`
	Education      json.RawMessage `json:"education,omitempty"`
	Certifications json.RawMessage `json:"certifications,omitempty"`
	Links          json.RawMessage `json:"links,omitempty"`
	ResumeText     string          `json:"resume_text,omitempty"`
	ResumeFilename string          `json:"resume_filename,omitempty"`

	IsBlacklisted   bool      `json:"is_blacklisted"`
	BlacklistReason string    `json:"blacklist_reason,omitempty"`
	BlacklistedBy   string    `json:"blacklisted_by,omitempty"`
	BlacklistedAt   time.Time `json:"blacklisted_at,omitempty"`

	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`

	Status         string    `json:"status"`
	Version        int       `json:"version"`
	LastModifiedBy string    `json:"last_modified_by,omitempty"`
	LastModifiedAt time.Time `json:"last_modified_at,omitempty"`
}

// Candidate pipeline statuses.
const (
	StatusNew          = "new"
	StatusReviewed     = "reviewed"
	StatusShortlisted  = "shortlisted"
	StatusInterviewing = "interviewing"
	StatusOffered      = "offered"
	StatusHired        = "hired"
	StatusRejected     = "rejected"
)

// knownStatuses is the set of accepted pipeline statuses.
var knownStatuses = map[string]struct{}{
	StatusNew:          {},
	StatusReviewed:     {},
	StatusShortlisted:  {},
	StatusInterviewing: {},
	StatusOffered:      {},
	StatusHired:        {},
	StatusRejected:     {},
}

// ValidStatus reports whether s is a known pipeline status.
func ValidStatus(s string) bool {
	_, ok := knownStatuses[s]
	return ok
}

// Comment is a short remark left by a team member on a candidate.
type Comment struct {
	ID          int64     `json:"id"`
	CandidateID int64     `json:"candidate_id"`
	Author      string    `json:"author"`
	Body        string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// Note is a private-by-author working note, optionally pinned to the top of
// the candidate view.
type Note struct {
	ID          int64     `json:"id"`
	CandidateID int64     `json:"candidate_id"`
	UserID      int64     `json:"user_id"`
	Body        string    `json:"note"`
	IsPinned    bool      `json:"is_pinned"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
