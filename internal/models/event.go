package models

import "time"

// Event represents a loggable action in the catalog's activity feed.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`  // e.g. "user.signup", "book.create"
	Level       string    `json:"level"` // e.g. "info", "warn"
	Message     string    `json:"message"`
	ActorUserID *string   `json:"actorUserId,omitempty"` // Nullable for system events
	CreatedAt   time.Time `json:"createdAt"`
}
