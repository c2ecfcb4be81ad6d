package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"nautia-api/internal/auth"
	"nautia-api/internal/domain"
	"nautia-api/internal/middleware"
	"nautia-api/internal/realtime"
	"nautia-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sessionTokenHeader carries the per-session capability token issued at
// session creation.
const sessionTokenHeader = "X-Chat-Token"

// CreateSessionRequest is the payload for opening a conversation
type CreateSessionRequest struct {
	UserName string `json:"user_name"`
}

// CreateSessionResponse returns the new session and, exactly once, its
// capability token.
type CreateSessionResponse struct {
	Session *domain.ChatSession `json:"session"`
	Token   string              `json:"token"`
}

// AddMessageRequest is the payload for posting a message
type AddMessageRequest struct {
	Sender  string   `json:"sender" validate:"required,oneof=user admin bot"`
	Text    string   `json:"text" validate:"required"`
	Options []string `json:"options"`
}

// ChatHandler handles HTTP requests for the chat widget and the admin
// chat console.
type ChatHandler struct {
	chat   service.ChatService
	broker realtime.Broker
	logger *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chat service.ChatService, broker realtime.Broker, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		broker: broker,
		logger: logger,
	}
}

// RegisterRoutes registers chat routes
func (h *ChatHandler) RegisterRoutes(r chi.Router, requireAdmin, rateLimit func(http.Handler) http.Handler) {
	r.Route("/api/chat/sessions", func(r chi.Router) {
		r.With(rateLimit).Post("/", h.CreateSession)
		r.With(rateLimit).Post("/{id}/messages", h.AddMessage)
		r.Get("/{id}/messages", h.GetMessages)
		r.Get("/{id}/stream", h.Stream)
		r.Post("/{id}/human", h.RequestHuman)
		r.Post("/{id}/close", h.CloseSession)
	})

	r.With(requireAdmin).Get("/api/admin/chat/sessions", h.ListActiveSessions)
}

// CreateSession opens a conversation in the bot state
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	// Body is optional; an empty POST opens an anonymous session.
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	session, err := h.chat.CreateSession(r.Context(), req.UserName)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, CreateSessionResponse{
		Session: session,
		Token:   session.Token,
	})
}

// AddMessage posts a message into a session. The service enforces the
// sender rules; this handler only moves bytes.
func (h *ChatHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var req AddMessageRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	message, err := h.chat.AddMessage(r.Context(), service.AddMessageParams{
		SessionID:    sessionID,
		Sender:       req.Sender,
		Text:         req.Text,
		Options:      req.Options,
		SessionToken: r.Header.Get(sessionTokenHeader),
		Identity:     middleware.GetIdentity(r.Context()),
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, message)
}

// GetMessages returns a session's messages in creation order
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	messages, err := h.chat.GetMessages(r.Context(), sessionID,
		r.Header.Get(sessionTokenHeader), middleware.GetIdentity(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, messages)
}

// Stream pushes new session messages to the client over SSE. The widget
// subscribes here instead of polling GetMessages. The token may come from
// the header or, for EventSource clients that cannot set headers, the
// query string.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	token := r.Header.Get(sessionTokenHeader)
	if token == "" {
		token = r.URL.Query().Get("token")
	}

	if err := h.chat.Authorize(r.Context(), sessionID, token, middleware.GetIdentity(r.Context())); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	messages, cancel := h.broker.Subscribe(r.Context(), sessionID)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case message, open := <-messages:
			if !open {
				return
			}
			payload, err := json.Marshal(message)
			if err != nil {
				h.logger.Warn("Failed to encode streamed message", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// RequestHuman hands the session to a human agent
func (h *ChatHandler) RequestHuman(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.chat.RequestHuman)
}

// CloseSession ends the conversation
func (h *ChatHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.chat.CloseSession)
}

type transitionFunc func(ctx context.Context, sessionID uuid.UUID, sessionToken string, identity *auth.Identity) error

func (h *ChatHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	err = fn(r.Context(), sessionID, r.Header.Get(sessionTokenHeader), middleware.GetIdentity(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListActiveSessions returns non-closed sessions for the admin console
func (h *ChatHandler) ListActiveSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chat.ListActiveSessions(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sessions)
}
