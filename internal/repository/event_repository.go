package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nautia-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrEventNotFound = errors.New("event not found")
)

// EventRepository defines the interface for event data access
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	List(ctx context.Context, featuredOnly bool) ([]*domain.Event, error)
	Count(ctx context.Context) (int, error)
}

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new instance of EventRepository
func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, title, description, date, time, location, type, image_key, image_url, featured, content, created_at`

// Create inserts a new event
func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (id, title, description, date, time, location, type, image_key, image_url, featured, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.Title,
		event.Description,
		event.Date,
		event.Time,
		event.Location,
		event.Type,
		event.ImageKey,
		event.ImageURL,
		event.Featured,
		event.Content,
		event.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of an existing event
func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, date = $4, time = $5, location = $6,
		    type = $7, image_key = $8, image_url = $9, featured = $10, content = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.Title,
		event.Description,
		event.Date,
		event.Time,
		event.Location,
		event.Type,
		event.ImageKey,
		event.ImageURL,
		event.Featured,
		event.Content,
	)

	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// Delete removes an event
func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// FindByID retrieves an event by ID
func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event by ID: %w", err)
	}

	return event, nil
}

// List retrieves events newest-first by event date, not creation order.
// ISO dates sort correctly as text.
func (r *eventRepository) List(ctx context.Context, featuredOnly bool) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events`, eventColumns)
	if featuredOnly {
		query += ` WHERE featured = TRUE`
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// Count returns the total number of events
func (r *eventRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	event := &domain.Event{}
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Time,
		&event.Location,
		&event.Type,
		&event.ImageKey,
		&event.ImageURL,
		&event.Featured,
		&event.Content,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}
