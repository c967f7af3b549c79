package realtime

// EventType tags a live update notification. Events carry identifiers only;
// consumers re-fetch the authoritative record themselves.
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

// Event is the JSON frame broadcast to every connected dashboard. Only the
// fields relevant to the event type are populated.
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

// Broadcaster publishes events to connected clients. Services hold this
// narrow interface; a failed broadcast never fails the originating request.
type Broadcaster interface {
	Broadcast(event Event)
}

// NopBroadcaster discards events. Used in tests and the worker binary.
type NopBroadcaster struct{}

// Broadcast implements Broadcaster.
func (NopBroadcaster) Broadcast(Event) {}
