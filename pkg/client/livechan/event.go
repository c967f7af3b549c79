package livechan

import "encoding/json"

// EventType tags an inbound live update frame. The set mirrors the server's
// broadcast taxonomy; unknown tags are preserved verbatim so LastEvent still
// reflects them.
type EventType string

const (
	EventNewCandidate           EventType = "new_candidate"
	EventStatusChange           EventType = "status_change"
	EventCandidateDeleted       EventType = "candidate_deleted"
	EventCandidateBlacklisted   EventType = "candidate_blacklisted"
	EventCandidateUnblacklisted EventType = "candidate_unblacklisted"

	EventBatchPaused    EventType = "batch_paused"
	EventBatchResumed   EventType = "batch_resumed"
	EventBatchCancelled EventType = "batch_cancelled"
	EventBatchDeleted   EventType = "batch_deleted"

	EventPotentialPromoted EventType = "potential_promoted"
	EventPotentialRejected EventType = "potential_rejected"

	EventJobCreated   EventType = "job_created"
	EventMatchCreated EventType = "match_created"
	EventNewComment   EventType = "new_comment"

	EventUserConnected    EventType = "user_connected"
	EventUserDisconnected EventType = "user_disconnected"
)

// Event is a parsed live update notification. It is a cache-invalidation
// signal only: the identifiers say what to re-fetch, never what changed.
type Event struct {
	Type        EventType `json:"type"`
	CandidateID int64     `json:"candidate_id,omitempty"`
	BatchID     int64     `json:"batch_id,omitempty"`
	PotentialID int64     `json:"potential_id,omitempty"`
	JobID       int64     `json:"job_id,omitempty"`
	CommentID   int64     `json:"comment_id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Status      string    `json:"status,omitempty"`
	User        string    `json:"user,omitempty"`
	Total       int       `json:"total,omitempty"`
	Score       float64   `json:"score,omitempty"`
}

// parseEvent decodes a JSON text frame. Frames without a type tag are
// dropped by the caller.
func parseEvent(frame []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(frame, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}
