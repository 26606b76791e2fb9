package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/rs/zerolog/log"
)

// EventServiceProvider defines the interface for the activity feed.
type EventServiceProvider interface {
	Record(eventType, level, message string, actorUserID *string) error
	Recent(limit int) ([]models.Event, error)
}

// EventService logs catalog activity (signups, book and review mutations)
// for the feed. Recording is best-effort: a failure here must never fail the
// request that triggered it, so callers are free to ignore the error.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// Record logs a new event to the database.
func (s *EventService) Record(eventType, level, message string, actorUserID *string) error {
	event := models.Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		Level:       level,
		Message:     message,
		ActorUserID: actorUserID,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.Exec(
		"INSERT INTO events(id, type, level, message, actor_user_id, created_at) VALUES(?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.ActorUserID, event.CreatedAt,
	)
	if err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record event")
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Recent retrieves the most recent events, newest first.
func (s *EventService) Recent(limit int) ([]models.Event, error) {
	rows, err := s.db.Query(
		"SELECT id, type, level, message, actor_user_id, created_at FROM events ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.ActorUserID, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
