package service

import (
	"context"
	"fmt"

	"nautia-api/internal/config"
	"nautia-api/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaService issues upload URLs against the external blob store and
// resolves entity image references for display.
type MediaService interface {
	GenerateUploadURL(ctx context.Context) (url string, key string, err error)
	ResolveImageURL(ctx context.Context, imageKey, imageURL string) string
}

type mediaService struct {
	store  storage.ObjectStore
	cfg    config.MediaConfig
	logger *zap.Logger
}

// NewMediaService creates a new instance of MediaService
func NewMediaService(store storage.ObjectStore, cfg config.MediaConfig, logger *zap.Logger) MediaService {
	return &mediaService{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// GenerateUploadURL issues a presigned single-use upload URL. The returned
// key is what the caller stores on the entity as its stored-file reference.
func (s *mediaService) GenerateUploadURL(ctx context.Context) (string, string, error) {
	key := fmt.Sprintf("uploads/%s", uuid.New())

	url, err := s.store.PresignPut(ctx, key, s.cfg.UploadExpiry)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return url, key, nil
}

// ResolveImageURL applies the three-tier fallback uniformly to every entity
// exposing an image: stored file first, then the literal URL field, then the
// configured default. It never fails; a broken stored-file reference must
// degrade to a placeholder, not an error page.
func (s *mediaService) ResolveImageURL(ctx context.Context, imageKey, imageURL string) string {
	if imageKey != "" {
		url, err := s.store.PresignGet(ctx, imageKey, s.cfg.ResolveExpiry)
		if err == nil && url != "" {
			return url
		}
		if err != nil {
			s.logger.Debug("Stored image resolution failed, falling back",
				zap.String("image_key", imageKey),
				zap.Error(err),
			)
		}
	}

	if imageURL != "" {
		return imageURL
	}

	return s.cfg.DefaultImageURL
}
