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
	ErrLeadNotFound = errors.New("lead not found")
)

// LeadRepository defines the interface for lead data access
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Lead, error)
	Count(ctx context.Context) (int, error)
}

type leadRepository struct {
	db *sql.DB
}

// NewLeadRepository creates a new instance of LeadRepository
func NewLeadRepository(db *sql.DB) LeadRepository {
	return &leadRepository{db: db}
}

// Create inserts a new lead
func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Subject,
		lead.Message,
		lead.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	return nil
}

// Delete removes a lead
func (r *leadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrLeadNotFound
	}

	return nil
}

// List retrieves leads newest-first by creation time
func (r *leadRepository) List(ctx context.Context) ([]*domain.Lead, error) {
	query := `
		SELECT id, name, email, phone, subject, message, created_at
		FROM leads
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := []*domain.Lead{}
	for rows.Next() {
		lead := &domain.Lead{}
		err := rows.Scan(
			&lead.ID,
			&lead.Name,
			&lead.Email,
			&lead.Phone,
			&lead.Subject,
			&lead.Message,
			&lead.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leads: %w", err)
	}

	return leads, nil
}

// Count returns the total number of leads
func (r *leadRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}
