package transport

import (
	"net/http"
	"time"

	"nautia-api/internal/domain"
	"nautia-api/internal/middleware"
	"nautia-api/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadRequest is the public contact-form payload
type LeadRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// LeadHandler handles HTTP requests for sales leads. Creation is public;
// reading and deleting are admin-only.
type LeadHandler struct {
	leads  repository.LeadRepository
	logger *zap.Logger
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leads repository.LeadRepository, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leads:  leads,
		logger: logger,
	}
}

// RegisterRoutes registers lead routes
func (h *LeadHandler) RegisterRoutes(r chi.Router, requireAdmin, rateLimit func(http.Handler) http.Handler) {
	r.With(rateLimit).Post("/api/leads", h.Create)

	r.Route("/api/admin/leads", func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/", h.List)
		r.Delete("/{id}", h.Delete)
	})
}

// Create captures a contact-form submission
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req LeadRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	lead := &domain.Lead{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		CreatedAt: time.Now(),
	}

	if err := h.leads.Create(r.Context(), lead); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Lead captured", zap.String("lead_id", lead.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, lead)
}

// List returns leads newest-first for the admin console
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leads.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, leads)
}

// Delete removes a lead
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	if err := h.leads.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
