package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/isdelr/bookshelf-be/internal/auth"
	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/rs/zerolog/log"
)

// BookHandler handles HTTP requests for the catalog and its reviews.
type BookHandler struct {
	books services.BookServiceProvider
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(books services.BookServiceProvider) *BookHandler {
	return &BookHandler{books: books}
}

// principal extracts the authenticated identity attached by the middleware.
func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		respondError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return models.Principal{}, false
	}
	return claims.Principal(), true
}

// bookID validates the {id} path parameter.
func bookID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book id")
		return "", false
	}
	return id, true
}

// List handles searching the catalog. With ?q= it filters by title or author
// substring, otherwise it returns every book, newest first.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.Search(r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, books)
}

// CreateBookPayload defines the structure for book creation requests.
type CreateBookPayload struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Cover       string `json:"cover"`
}

// Create handles adding a new book owned by the caller.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := principal(w, r)
	if !ok {
		return
	}

	var payload CreateBookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := h.books.Create(payload.Title, payload.Author, payload.Description, payload.Cover, owner)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, book)
}

// Get handles retrieving a single book together with its reviews.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}

	detail, err := h.books.GetDetail(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// Update handles a partial update of a book's text fields. Only the owner
// may update; absent fields are left untouched.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	owner, ok := principal(w, r)
	if !ok {
		return
	}

	var patch models.BookPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := h.books.Update(id, patch, owner)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, book)
}

// Delete handles removing a book; its reviews go with it.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	owner, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.books.Delete(id, owner); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReviewPayload defines the structure for review creation requests. Rating
// is decoded as a json.Number so that non-integer values are rejected
// instead of being silently truncated.
type ReviewPayload struct {
	Rating  json.Number `json:"rating"`
	Comment string      `json:"comment"`
}

// AddReview handles attaching a review to a book.
func (h *BookHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	reviewer, ok := principal(w, r)
	if !ok {
		return
	}

	var payload ReviewPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rating, err := payload.Rating.Int64()
	if err != nil {
		respondError(w, http.StatusBadRequest, "rating must be an integer between 1 and 5")
		return
	}

	review, err := h.books.AddReview(id, int(rating), payload.Comment, reviewer)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, review)
}
