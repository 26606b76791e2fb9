package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/rs/zerolog/log"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError translates a service error into its HTTP status and a
// client-safe message. Unrecognized errors are logged and reported as a
// generic 500 so storage error text never leaks to the client.
func respondServiceError(w http.ResponseWriter, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, "Book not found")
	case errors.Is(err, services.ErrForbidden):
		respondError(w, http.StatusForbidden, "Only the creator can modify this book")
	case errors.Is(err, services.ErrUsernameTaken):
		respondError(w, http.StatusConflict, "Username already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		log.Error().Err(err).Msg("Unexpected service error")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
