package transport

import (
	"net/http"
	"time"

	"nautia-api/internal/domain"
	"nautia-api/internal/middleware"
	"nautia-api/internal/repository"
	"nautia-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventRequest is the create/update payload
type EventRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time"`
	Location    string `json:"location" validate:"required"`
	Type        string `json:"type"`
	ImageKey    string `json:"image_key"`
	ImageURL    string `json:"image_url"`
	Featured    bool   `json:"featured"`
	Content     string `json:"content"`
}

// EventResponse is an event with its image reference resolved
type EventResponse struct {
	*domain.Event
	Image string `json:"image"`
}

// EventHandler handles HTTP requests for events
type EventHandler struct {
	events repository.EventRepository
	media  service.MediaService
	logger *zap.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(events repository.EventRepository, media service.MediaService, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		events: events,
		media:  media,
		logger: logger,
	}
}

// RegisterRoutes registers event routes
func (h *EventHandler) RegisterRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns events newest-first by event date
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	featuredOnly := r.URL.Query().Get("featured") == "true"

	events, err := h.events.List(r.Context(), featuredOnly)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	out := make([]EventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, EventResponse{
			Event: event,
			Image: h.media.ResolveImageURL(r.Context(), event.ImageKey, event.ImageURL),
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// GetByID returns one event
func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.events.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, EventResponse{
		Event: event,
		Image: h.media.ResolveImageURL(r.Context(), event.ImageKey, event.ImageURL),
	})
}

// Create adds an event
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	event := &domain.Event{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Type:        req.Type,
		ImageKey:    req.ImageKey,
		ImageURL:    req.ImageURL,
		Featured:    req.Featured,
		Content:     req.Content,
		CreatedAt:   time.Now(),
	}

	if err := h.events.Create(r.Context(), event); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Event created", zap.String("event_id", event.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, event)
}

// Update replaces an event's fields
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req EventRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	event := &domain.Event{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Type:        req.Type,
		ImageKey:    req.ImageKey,
		ImageURL:    req.ImageURL,
		Featured:    req.Featured,
		Content:     req.Content,
	}

	if err := h.events.Update(r.Context(), event); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, event)
}

// Delete removes an event
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := h.events.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
