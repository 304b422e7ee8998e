// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/iliyamo/theater-service/internal/model"

// Actions carried by TheaterChangedEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TheaterChangedEvent is published after a theater write is committed.  It
// carries enough for downstream consumers to log or reindex without
// querying the primary database.
type TheaterChangedEvent struct {
	Action     string  `json:"action"`
	TheaterID  int64   `json:"theater_id"`
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	Notes      *string `json:"notes"`
	OccurredAt string  `json:"occurred_at"`
}

// NewTheaterChangedEvent builds the event for t; occurredAt is RFC 3339.
func NewTheaterChangedEvent(action string, t *model.Theater, occurredAt string) TheaterChangedEvent {
	return TheaterChangedEvent{
		Action:     action,
		TheaterID:  t.ID,
		Name:       t.Name,
		Location:   t.Location,
		Notes:      t.Notes,
		OccurredAt: occurredAt,
	}
}
