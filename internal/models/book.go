package models

import "time"

// Book represents a catalog entry created and owned by a single user.
// CreatedByUsername is a snapshot of the owner's username taken at creation
// time; usernames are immutable, so it is never synchronized afterwards.
type Book struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	Description       string    `json:"description"`
	Cover             string    `json:"cover"`
	CreatedAt         time.Time `json:"createdAt"`
	CreatedByUserID   string    `json:"createdByUserId"`
	CreatedByUsername string    `json:"createdByUsername"`
}

// BookDetail is the composite read returned for a single book: the book
// itself plus all of its reviews, newest first.
type BookDetail struct {
	Book
	Reviews []Review `json:"reviews"`
}

// BookPatch carries the optional fields of a partial update. A nil field was
// not supplied and is left untouched.
type BookPatch struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	Cover       *string `json:"cover"`
}
