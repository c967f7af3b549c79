package activity

import "time"

// Entry is one row of the append-only activity trail.
type Entry struct {
	ID          int64          `json:"id"`
	User        string         `json:"user"`
	Action      string         `json:"action"`
	CandidateID int64          `json:"candidate_id,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}
