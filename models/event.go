// backend/models/event.go
package models

import "time"

// EventType classifies messages streamed from a background scrape run to the
// HTTP layer.
type EventType string

const (
	EventLog       EventType = "log"
	EventStatus    EventType = "status"
	EventComplete  EventType = "complete"
	EventError     EventType = "error"
	EventHeartbeat EventType = "heartbeat"
)

// Event is one message on the run's channel. Complete carries the final
// human-readable trail of the whole run in Message.
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	Site    string    `json:"site,omitempty"`
	At      time.Time `json:"at"`
}
