// Package queue defines message payloads exchanged over the message broker
// together with the publisher used by the API and the consumer run by
// cmd/activity-logger.
package queue

// ActivityQueueName is the durable queue carrying saved-event activity.
const ActivityQueueName = "saved_events.activity"

// Activity types.
const (
	ActivitySaved   = "saved_event.added"
	ActivityRemoved = "saved_event.removed"
)

// SavedEventActivity is published after a user saves or removes an event.
// It carries enough information for downstream consumers to log or build
// analytics without querying the user store.
type SavedEventActivity struct {
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	EventID    string `json:"event_id"`
	EventName  string `json:"event_name,omitempty"`
	SavedCount int    `json:"saved_count"`
	OccurredAt string `json:"occurred_at"`
}
