package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"nautia-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
)

// ChatRepository defines the interface for chat session and message data
// access. Messages are append-only: there is no update or delete.
type ChatRepository interface {
	CreateSession(ctx context.Context, session *domain.ChatSession) error
	FindSession(ctx context.Context, id uuid.UUID) (*domain.ChatSession, error)
	UpdateSessionStatus(ctx context.Context, id uuid.UUID, status string) error
	ListActiveSessions(ctx context.Context) ([]*domain.ChatSession, error)
	AppendMessage(ctx context.Context, message *domain.ChatMessage) error
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]*domain.ChatMessage, error)
}

type chatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new instance of ChatRepository
func NewChatRepository(db *sql.DB) ChatRepository {
	return &chatRepository{db: db}
}

// CreateSession inserts a new chat session
func (r *chatRepository) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, status, user_name, token, last_message_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.Status,
		session.UserName,
		session.Token,
		session.LastMessageAt,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}

	return nil
}

// FindSession retrieves a session by ID, including its capability token
func (r *chatRepository) FindSession(ctx context.Context, id uuid.UUID) (*domain.ChatSession, error) {
	query := `
		SELECT id, status, user_name, token, last_message_at, created_at
		FROM chat_sessions
		WHERE id = $1
	`

	session := &domain.ChatSession{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.Status,
		&session.UserName,
		&session.Token,
		&session.LastMessageAt,
		&session.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find chat session: %w", err)
	}

	return session, nil
}

// UpdateSessionStatus sets the session state. Transitions are idempotent:
// re-closing a closed session is not an error.
func (r *chatRepository) UpdateSessionStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE chat_sessions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update chat session status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// ListActiveSessions retrieves non-closed sessions, most recent activity
// first, for the admin console
func (r *chatRepository) ListActiveSessions(ctx context.Context) ([]*domain.ChatSession, error) {
	query := `
		SELECT id, status, user_name, token, last_message_at, created_at
		FROM chat_sessions
		WHERE status != $1
		ORDER BY last_message_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, domain.SessionClosed)
	if err != nil {
		return nil, fmt.Errorf("failed to list active chat sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*domain.ChatSession{}
	for rows.Next() {
		session := &domain.ChatSession{}
		err := rows.Scan(
			&session.ID,
			&session.Status,
			&session.UserName,
			&session.Token,
			&session.LastMessageAt,
			&session.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat sessions: %w", err)
	}

	return sessions, nil
}

// AppendMessage stores a message and advances the session's
// last_message_at in a single transaction, so a failed insert leaves the
// session row untouched. A bigserial seq column gives messages a stable
// creation order even when timestamps collide.
func (r *chatRepository) AppendMessage(ctx context.Context, message *domain.ChatMessage) error {
	options, err := json.Marshal(message.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(
		ctx,
		`UPDATE chat_sessions SET last_message_at = $2 WHERE id = $1`,
		message.SessionID,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to touch chat session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	query := `
		INSERT INTO chat_messages (id, session_id, sender, text, options, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		message.ID,
		message.SessionID,
		message.Sender,
		message.Text,
		options,
		message.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat message: %w", err)
	}

	return nil
}

// ListMessages retrieves a session's messages in creation order
func (r *chatRepository) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, session_id, sender, text, options, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	messages := []*domain.ChatMessage{}
	for rows.Next() {
		message := &domain.ChatMessage{}
		var options []byte
		err := rows.Scan(
			&message.ID,
			&message.SessionID,
			&message.Sender,
			&message.Text,
			&options,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &message.Options); err != nil {
				return nil, fmt.Errorf("failed to decode options: %w", err)
			}
		}
		messages = append(messages, message)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat messages: %w", err)
	}

	return messages, nil
}
