package models

import "time"

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the authenticated identity derived from a verified bearer
// token. Handlers must treat it as the sole source of truth for who is
// making the request.
type Principal struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}
