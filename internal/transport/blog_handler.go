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

const relatedPostsLimit = 3

// BlogPostRequest is the create/update payload
type BlogPostRequest struct {
	Title       string `json:"title" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	Excerpt     string `json:"excerpt"`
	Content     string `json:"content" validate:"required"`
	Author      string `json:"author" validate:"required"`
	PublishedAt string `json:"published_at" validate:"required,datetime=2006-01-02"`
	ImageKey    string `json:"image_key"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	ReadTime    string `json:"read_time"`
}

// BlogPostResponse is a post with its image reference resolved
type BlogPostResponse struct {
	*domain.BlogPost
	Image string `json:"image"`
}

// BlogHandler handles HTTP requests for blog posts
type BlogHandler struct {
	posts  repository.BlogRepository
	media  service.MediaService
	logger *zap.Logger
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(posts repository.BlogRepository, media service.MediaService, logger *zap.Logger) *BlogHandler {
	return &BlogHandler{
		posts:  posts,
		media:  media,
		logger: logger,
	}
}

// RegisterRoutes registers blog routes
func (h *BlogHandler) RegisterRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/api/blog", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/related", h.Related)
		r.Get("/{slug}", h.GetBySlug)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns all posts newest-first by publication date
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.withImages(r, posts))
}

// Related returns posts sharing a category, excluding one slug
func (h *BlogHandler) Related(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "category is required")
		return
	}

	posts, err := h.posts.FindRelated(r.Context(), category, r.URL.Query().Get("exclude"), relatedPostsLimit)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.withImages(r, posts))
}

// GetBySlug returns the first post matching the slug
func (h *BlogHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, BlogPostResponse{
		BlogPost: post,
		Image:    h.media.ResolveImageURL(r.Context(), post.ImageKey, post.ImageURL),
	})
}

// Create publishes a new post
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BlogPostRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	publishedAt, err := time.Parse("2006-01-02", req.PublishedAt)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid published_at date")
		return
	}

	post := &domain.BlogPost{
		ID:          uuid.New(),
		Title:       req.Title,
		Slug:        req.Slug,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		Author:      req.Author,
		PublishedAt: publishedAt,
		ImageKey:    req.ImageKey,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		ReadTime:    req.ReadTime,
		CreatedAt:   time.Now(),
	}

	if err := h.posts.Create(r.Context(), post); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Blog post created", zap.String("slug", post.Slug))
	middleware.RespondWithJSON(w, http.StatusCreated, post)
}

// Update replaces a post's fields
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid blog post id")
		return
	}

	var req BlogPostRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	publishedAt, err := time.Parse("2006-01-02", req.PublishedAt)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid published_at date")
		return
	}

	post := &domain.BlogPost{
		ID:          id,
		Title:       req.Title,
		Slug:        req.Slug,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		Author:      req.Author,
		PublishedAt: publishedAt,
		ImageKey:    req.ImageKey,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		ReadTime:    req.ReadTime,
	}

	if err := h.posts.Update(r.Context(), post); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, post)
}

// Delete removes a post
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid blog post id")
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BlogHandler) withImages(r *http.Request, posts []*domain.BlogPost) []BlogPostResponse {
	out := make([]BlogPostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, BlogPostResponse{
			BlogPost: post,
			Image:    h.media.ResolveImageURL(r.Context(), post.ImageKey, post.ImageURL),
		})
	}
	return out
}
