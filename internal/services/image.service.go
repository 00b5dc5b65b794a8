package services

import (
	"context"
	"fmt"
	"strings"

	"questlog/internal/apperrors"
	"questlog/internal/models"
	"questlog/internal/repositories"
	"questlog/pkg/logger"

	"github.com/google/uuid"
)

// 5 MB cap keeps cover uploads reasonable for database-backed storage.
const MAX_IMAGE_SIZE = 5 * 1024 * 1024

// ImageService stores and serves uploaded cover images. Blobs live in the
// database so deployments need no shared filesystem.
type ImageService struct {
	imageRepo repositories.ImageRepository
	log       logger.Logger
}

func NewImageService(imageRepo repositories.ImageRepository) *ImageService {
	return &ImageService{
		imageRepo: imageRepo,
		log:       logger.New("ImageService"),
	}
}

// Store persists an uploaded image and returns its storage key. The key is
// what game entries carry in their image field when not pointing at an
// external URL.
func (s *ImageService) Store(
	ctx context.Context,
	userID uuid.UUID,
	contentType string,
	data []byte,
) (string, error) {
	log := s.log.TraceFromContext(ctx).Function("Store")

	if len(data) == 0 {
		return "", fmt.Errorf("%w: image data is required", apperrors.ErrValidation)
	}
	if len(data) > MAX_IMAGE_SIZE {
		return "", fmt.Errorf("%w: image exceeds maximum size of %d bytes", apperrors.ErrValidation, MAX_IMAGE_SIZE)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: unsupported content type %q", apperrors.ErrValidation, contentType)
	}

	keyID, err := uuid.NewV7()
	if err != nil {
		return "", log.Err("failed to generate image key", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err))
	}
	key := keyID.String()

	image := &models.ImageBlob{
		Key:         key,
		UserID:      userID,
		ContentType: contentType,
		Data:        data,
	}

	if err := s.imageRepo.Create(ctx, image); err != nil {
		return "", err
	}

	log.Info("Stored image", "key", key, "userID", userID, "size", len(data))
	return key, nil
}

// Retrieve loads a stored image by key.
func (s *ImageService) Retrieve(ctx context.Context, key string) (*models.ImageBlob, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: image key is required", apperrors.ErrValidation)
	}

	return s.imageRepo.GetByKey(ctx, key)
}

// Delete removes a stored image. Missing keys are a no-op success.
func (s *ImageService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	return s.imageRepo.DeleteByKey(ctx, key)
}
