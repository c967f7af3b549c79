package screening

import (
	"encoding/json"
	"time"
)

// Batch statuses.
const (
	BatchProcessing = "processing"
	BatchPaused     = "paused"
	BatchCancelled  = "cancelled"
	BatchReady      = "ready"
	BatchError      = "error"
)

// Filters narrow which intake records become potentials.
type Filters struct {
	Skills        []string `json:"skills"`
	MinExperience float64  `json:"min_experience"`
	MaxExperience float64  `json:"max_experience"`
	Locations     []string `json:"locations"`
}

// Batch tracks one screening run over a set of submitted resumes.
type Batch struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	Status         string    `json:"status"`
	TotalResumes   int       `json:"total_resumes"`
	ProcessedCount int       `json:"processed_count"`
	Filters        Filters   `json:"filters"`
}

// BatchItem is one raw intake record awaiting screening. Fields arrive
// pre-extracted; the worker only filters, scores, and dedups them.
type BatchItem struct {
	ID              int64           `json:"id"`
	BatchID         int64           `json:"batch_id"`
	Name            string          `json:"name"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Skills          []string        `json:"skills"`
	ExperienceYears float64         `json:"experience_years"`
	Location        string          `json:"location,omitempty"`
	Education       json.RawMessage `json:"education,omitempty"`
	ResumeText      string          `json:"resume_text,omitempty"`
	ResumeFilename  string          `json:"resume_filename,omitempty"`
	Processed       bool            `json:"processed"`
}

// Potential statuses.
const (
	PotentialPending       = "pending"
	PotentialToBeCalled    = "to_be_called"
	PotentialInterested    = "interested"
	PotentialWaitingResume = "waiting_resume"
	PotentialNotInterested = "not_interested"
	PotentialPromoted      = "promoted"
)

// reviewStatuses are the transitions a reviewer may apply to a potential.
var reviewStatuses = map[string]struct{}{
	PotentialToBeCalled:    {},
	PotentialInterested:    {},
	PotentialWaitingResume: {},
	PotentialNotInterested: {},
}

// ValidReviewStatus reports whether s is a reviewer-assignable status.
func ValidReviewStatus(s string) bool {
	_, ok := reviewStatuses[s]
	return ok
}

// Potential is a screening-stage candidate that passed the batch filters.
type Potential struct {
	ID              int64           `json:"id"`
	BatchID         int64           `json:"batch_id"`
	UniqueHash      string          `json:"unique_hash"`
	Name            string          `json:"name"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Skills          []string        `json:"skills"`
	ExperienceYears float64         `json:"experience_years"`
	Location        string          `json:"location,omitempty"`
	Education       json.RawMessage `json:"education,omitempty"`
	ResumeText      string          `json:"resume_text,omitempty"`
	ResumeFilename  string          `json:"resume_filename,omitempty"`
	MatchScore      float64         `json:"match_score"`
	Status          string          `json:"status"`
	AssignedTo      string          `json:"assigned_to,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RejectedPotential keeps a trace of not-interested candidates for later
// cleanup.
type RejectedPotential struct {
	ID              int64     `json:"id"`
	BatchID         int64     `json:"batch_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	ResumeFilename  string    `json:"resume_filename,omitempty"`
	RejectedBy      string    `json:"rejected_by"`
	RejectedAt      time.Time `json:"rejected_at"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
}

// Activity is the screening-stage audit trail, kept separate from the
// global activity log.
type Activity struct {
	ID          int64          `json:"id"`
	BatchID     int64          `json:"batch_id"`
	User        string         `json:"user"`
	Action      string         `json:"action"`
	PotentialID int64          `json:"potential_id,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}
