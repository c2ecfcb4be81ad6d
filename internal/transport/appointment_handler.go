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

// AppointmentRequest is the public booking payload
type AppointmentRequest struct {
	CustomerName string `json:"customer_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
	ServiceType  string `json:"service_type" validate:"required"`
	Location     string `json:"location" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string `json:"time" validate:"required"`
	Message      string `json:"message"`
}

// AppointmentStatusRequest is the admin status update payload. The status
// set is checked against the domain, not a tag, so the list lives in one
// place.
type AppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AppointmentHandler handles HTTP requests for service appointments.
// Creation is public; everything else lives under /api/admin.
type AppointmentHandler struct {
	appointments repository.AppointmentRepository
	logger       *zap.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler
func NewAppointmentHandler(appointments repository.AppointmentRepository, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		appointments: appointments,
		logger:       logger,
	}
}

// RegisterRoutes registers appointment routes
func (h *AppointmentHandler) RegisterRoutes(r chi.Router, requireAdmin, rateLimit func(http.Handler) http.Handler) {
	r.With(rateLimit).Post("/api/appointments", h.Create)

	r.Route("/api/admin/appointments", func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/", h.List)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Delete("/{id}", h.Delete)
	})
}

// Create books an appointment request. New appointments always start
// pending.
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AppointmentRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	appointment := &domain.Appointment{
		ID:           uuid.New(),
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		ServiceType:  req.ServiceType,
		Location:     req.Location,
		Date:         req.Date,
		Time:         req.Time,
		Message:      req.Message,
		Status:       domain.AppointmentPending,
		CreatedAt:    time.Now(),
	}

	if err := h.appointments.Create(r.Context(), appointment); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Appointment requested",
		zap.String("appointment_id", appointment.ID.String()),
		zap.String("service_type", appointment.ServiceType),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, appointment)
}

// List returns appointments newest-first for the admin console
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointments.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, appointments)
}

// UpdateStatus moves an appointment through its lifecycle
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var req AppointmentStatusRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	if !domain.ValidAppointmentStatus(req.Status) {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid appointment status")
		return
	}

	if err := h.appointments.UpdateStatus(r.Context(), id, req.Status); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// Delete removes an appointment
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	if err := h.appointments.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
