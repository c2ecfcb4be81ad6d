package transport

import (
	"net/http"

	"nautia-api/internal/middleware"
	"nautia-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UploadURLResponse carries a presigned upload URL and the object key the
// client should store on the entity once the upload succeeds.
type UploadURLResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// AdminHandler handles the admin dashboard endpoints that do not belong to
// a single entity: stats and media uploads.
type AdminHandler struct {
	stats  service.StatsService
	media  service.MediaService
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(stats service.StatsService, media service.MediaService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		stats:  stats,
		media:  media,
		logger: logger,
	}
}

// RegisterRoutes registers admin dashboard routes
func (h *AdminHandler) RegisterRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/api/admin/stats", h.GetStats)
		r.Post("/api/admin/uploads", h.GenerateUploadURL)
	})
}

// GetStats returns the dashboard aggregates
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.GetStats(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

// GenerateUploadURL issues a presigned single-use upload URL
func (h *AdminHandler) GenerateUploadURL(w http.ResponseWriter, r *http.Request) {
	url, key, err := h.media.GenerateUploadURL(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, UploadURLResponse{URL: url, Key: key})
}
