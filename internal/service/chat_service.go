package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"nautia-api/internal/auth"
	"nautia-api/internal/domain"
	"nautia-api/internal/realtime"
	"nautia-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrBotSenderForbidden rejects any client-supplied bot message. This
	// holds unconditionally, admin identities included; only the internal
	// responder path may create bot messages.
	ErrBotSenderForbidden = errors.New("bot messages cannot be created by clients")

	// ErrInvalidSessionToken rejects visitor calls that do not present the
	// capability token issued when the session was created. Knowing a
	// session id is not enough to post into it.
	ErrInvalidSessionToken = errors.New("invalid session token")

	// ErrUnknownSender rejects senders outside the known set.
	ErrUnknownSender = errors.New("unknown message sender")
)

// AddMessageParams carries one addMessage call. Identity is the resolved
// caller identity (nil for anonymous visitors); SessionToken is the
// capability presented by the chat widget.
type AddMessageParams struct {
	SessionID    uuid.UUID
	Sender       string
	Text         string
	Options      []string
	SessionToken string
	Identity     *auth.Identity
}

// ChatService owns the chat session state machine and the message log.
type ChatService interface {
	CreateSession(ctx context.Context, userName string) (*domain.ChatSession, error)
	AddMessage(ctx context.Context, params AddMessageParams) (*domain.ChatMessage, error)
	GetMessages(ctx context.Context, sessionID uuid.UUID, sessionToken string, identity *auth.Identity) ([]*domain.ChatMessage, error)
	RequestHuman(ctx context.Context, sessionID uuid.UUID, sessionToken string, identity *auth.Identity) error
	CloseSession(ctx context.Context, sessionID uuid.UUID, sessionToken string, identity *auth.Identity) error
	ListActiveSessions(ctx context.Context) ([]*domain.ChatSession, error)
	Authorize(ctx context.Context, sessionID uuid.UUID, sessionToken string, identity *auth.Identity) error
}

type chatService struct {
	repo      repository.ChatRepository
	gate      *auth.Gate
	responder *BotResponder
	broker    realtime.Broker
	logger    *zap.Logger
}

// NewChatService creates a new instance of ChatService
func NewChatService(
	repo repository.ChatRepository,
	gate *auth.Gate,
	responder *BotResponder,
	broker realtime.Broker,
	logger *zap.Logger,
) ChatService {
	return &chatService{
		repo:      repo,
		gate:      gate,
		responder: responder,
		broker:    broker,
		logger:    logger,
	}
}

// CreateSession opens a new conversation in the bot state and issues the
// per-session capability token. The token is returned exactly once, here.
func (s *chatService) CreateSession(ctx context.Context, userName string) (*domain.ChatSession, error) {
	now := time.Now()
	session := &domain.ChatSession{
		ID:            uuid.New(),
		Status:        domain.SessionBot,
		UserName:      userName,
		Token:         uuid.NewString(),
		LastMessageAt: now,
		CreatedAt:     now,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// AddMessage appends a message to a session. The sender checks run before
// any write: bot is rejected unconditionally, admin requires the gate, user
// requires the session capability. A user message also triggers the bot
// responder in-request, so a reply is guaranteed regardless of what the
// client does afterwards.
func (s *chatService) AddMessage(ctx context.Context, params AddMessageParams) (*domain.ChatMessage, error) {
	switch params.Sender {
	case domain.SenderBot:
		return nil, ErrBotSenderForbidden
	case domain.SenderAdmin, domain.SenderUser:
	default:
		return nil, ErrUnknownSender
	}

	session, err := s.repo.FindSession(ctx, params.SessionID)
	if err != nil {
		return nil, err
	}

	if params.Sender == domain.SenderAdmin {
		if err := s.gate.RequireAdmin(params.Identity); err != nil {
			return nil, err
		}
	} else if !s.gate.IsAdmin(params.Identity) {
		if !tokenMatches(session.Token, params.SessionToken) {
			return nil, ErrInvalidSessionToken
		}
	}

	message, err := s.append(ctx, session.ID, params.Sender, params.Text, params.Options)
	if err != nil {
		return nil, err
	}

	if params.Sender == domain.SenderUser && session.Status == domain.SessionBot {
		s.respond(ctx, session, params.Text)
	}

	return message, nil
}

// respond generates and stores the bot reply to a user message. Failures
// are logged, not surfaced: the user message is already durably stored.
func (s *chatService) respond(ctx context.Context, session *domain.ChatSession, text string) {
	reply := s.responder.Reply(ctx, text)

	if reply.Intent == IntentHuman {
		if err := s.repo.UpdateSessionStatus(ctx, session.ID, domain.SessionHuman); err != nil {
			s.logger.Error("Failed to hand session to a human",
				zap.String("session_id", session.ID.String()),
				zap.Error(err),
			)
		}
	}

	if _, err := s.append(ctx, session.ID, domain.SenderBot, reply.Text, reply.Options); err != nil {
		s.logger.Error("Failed to store bot reply",
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
	}
}

// append is the only write path for messages, internal bot replies
// included. The repository stores the message and bumps last_message_at
// atomically; on error neither side is visible. The publish happens after
// the commit.
func (s *chatService) append(ctx context.Context, sessionID uuid.UUID, sender, text string, options []string) (*domain.ChatMessage, error) {
	message := &domain.ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Sender:    sender,
		Text:      text,
		Options:   options,
		CreatedAt: time.Now(),
	}

	if err := s.repo.AppendMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to append chat message: %w", err)
	}

	if err := s.broker.Publish(ctx, message); err != nil {
		// Fan-out is best-effort; subscribers reconnecting re-fetch the log.
		s.logger.Warn("Failed to publish chat message",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
	}

	return message, nil
}

// Authorize checks that the caller may read or act on the session: either
// the admin gate passes or the capability token matches.
func (s *chatService) Authorize(ctx context.Context, sessionID uuid.UUID, sessionToken string, identity *auth.Identity) error {
	if s.gate.IsAdmin(identity) {
		return nil
	}

	session, err := s.repo.FindSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if !tokenMatches(session.Token, sessionToken) {
		return ErrInvalidSessionToken
	}

	return nil
}

// GetMessages returns the session's messages in creation order.
func (s *chatService) GetMessages(ctx context.Context, sessionID uuid.UUID, sessionToken string, identity *auth.Identity) ([]*domain.ChatMessage, error) {
	if err := s.Authorize(ctx, sessionID, sessionToken, identity); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, sessionID)
}

// RequestHuman moves the session to the human state. Calling it on a
// session already in human or closed state is not an error.
func (s *chatService) RequestHuman(ctx context.Context, sessionID uuid.UUID, sessionToken string, identity *auth.Identity) error {
	if err := s.Authorize(ctx, sessionID, sessionToken, identity); err != nil {
		return err
	}
	return s.repo.UpdateSessionStatus(ctx, sessionID, domain.SessionHuman)
}

// CloseSession moves the session to the closed state.
func (s *chatService) CloseSession(ctx context.Context, sessionID uuid.UUID, sessionToken string, identity *auth.Identity) error {
	if err := s.Authorize(ctx, sessionID, sessionToken, identity); err != nil {
		return err
	}
	return s.repo.UpdateSessionStatus(ctx, sessionID, domain.SessionClosed)
}

// ListActiveSessions returns non-closed sessions for the admin console.
// Route-level gating enforces admin access; the repository is never reached
// otherwise.
func (s *chatService) ListActiveSessions(ctx context.Context) ([]*domain.ChatSession, error) {
	return s.repo.ListActiveSessions(ctx)
}

func tokenMatches(expected, presented string) bool {
	if expected == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}
