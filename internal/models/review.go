package models

import "time"

// Review is a star rating with a comment attached to a book. ReviewerUsername
// is a snapshot of the reviewer's username at creation time. Reviews are never
// edited or deleted on their own; they go away with their book.
type Review struct {
	ID               string    `json:"id"`
	BookID           string    `json:"bookId"`
	ReviewerUserID   string    `json:"reviewerUserId"`
	ReviewerUsername string    `json:"reviewerUsername"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment"`
	CreatedAt        time.Time `json:"createdAt"`
}
