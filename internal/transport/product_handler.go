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

// ProductRequest is the create/update payload
type ProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Description string   `json:"description"`
	ImageKey    string   `json:"image_key"`
	ImageURL    string   `json:"image_url"`
	Status      string   `json:"status"`
	Brand       string   `json:"brand"`
	Specs       []string `json:"specs"`
}

// ProductResponse is a product with its image reference resolved
type ProductResponse struct {
	*domain.Product
	Image string `json:"image"`
}

// ProductHandler handles HTTP requests for catalog products
type ProductHandler struct {
	products repository.ProductRepository
	media    service.MediaService
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products repository.ProductRepository, media service.MediaService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		media:    media,
		logger:   logger,
	}
}

// RegisterRoutes registers product routes. Reads are public, writes are
// admin-gated.
func (h *ProductHandler) RegisterRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
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

// List returns the catalog, optionally filtered by category label
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	out := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		out = append(out, ProductResponse{
			Product: product,
			Image:   h.media.ResolveImageURL(r.Context(), product.ImageKey, product.ImageURL),
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// GetByID returns one product
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductResponse{
		Product: product,
		Image:   h.media.ResolveImageURL(r.Context(), product.ImageKey, product.ImageURL),
	})
}

// Create adds a product to the catalog
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		ImageKey:    req.ImageKey,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
		Brand:       req.Brand,
		Specs:       req.Specs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.products.Create(r.Context(), product); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update replaces a product's fields
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product := &domain.Product{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		ImageKey:    req.ImageKey,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
		Brand:       req.Brand,
		Specs:       req.Specs,
		UpdatedAt:   time.Now(),
	}

	if err := h.products.Update(r.Context(), product); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
