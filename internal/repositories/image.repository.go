package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"questlog/internal/apperrors"
	"questlog/internal/database"
	. "questlog/internal/models"
	"questlog/pkg/logger"

	"gorm.io/gorm"
)

type ImageRepository interface {
	GetByKey(ctx context.Context, key string) (*ImageBlob, error)
	Create(ctx context.Context, image *ImageBlob) error
	DeleteByKey(ctx context.Context, key string) error
	DeleteOrphaned(ctx context.Context, olderThan time.Duration) (int64, error)
}

type imageRepository struct {
	db  database.DB
	log logger.Logger
}

func NewImageRepository(db database.DB) ImageRepository {
	return &imageRepository{
		db:  db,
		log: logger.New("imageRepository"),
	}
}

func (r *imageRepository) GetByKey(ctx context.Context, key string) (*ImageBlob, error) {
	log := r.log.Function("GetByKey")

	var image ImageBlob
	err := r.db.SQLWithContext(ctx).First(&image, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: image %s", apperrors.ErrNotFound, key)
		}
		return nil, log.Err("failed to get image", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "key", key)
	}

	return &image, nil
}

func (r *imageRepository) Create(ctx context.Context, image *ImageBlob) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(image).Error; err != nil {
		return log.Err("failed to create image", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "key", image.Key)
	}

	log.Info("Stored image", "key", image.Key, "contentType", image.ContentType, "size", len(image.Data))
	return nil
}

// DeleteByKey is idempotent; removing a missing key is a no-op success.
func (r *imageRepository) DeleteByKey(ctx context.Context, key string) error {
	log := r.log.Function("DeleteByKey")

	if err := r.db.SQLWithContext(ctx).Where("key = ?", key).Delete(&ImageBlob{}).Error; err != nil {
		return log.Err("failed to delete image", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "key", key)
	}

	return nil
}

// DeleteOrphaned removes stored blobs no game entry references anymore. The
// age floor keeps a freshly uploaded blob alive while its create request is
// still in flight.
func (r *imageRepository) DeleteOrphaned(ctx context.Context, olderThan time.Duration) (int64, error) {
	log := r.log.Function("DeleteOrphaned")

	cutoff := time.Now().Add(-olderThan)
	db := r.db.SQLWithContext(ctx)

	result := db.
		Where("created_at < ?", cutoff).
		Where("key NOT IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&Game{}).
			Select("image").
			Where("image IS NOT NULL")).
		Delete(&ImageBlob{})
	if result.Error != nil {
		return 0, log.Err("failed to delete orphaned images", fmt.Errorf("%w: %w", apperrors.ErrUpstream, result.Error))
	}

	if result.RowsAffected > 0 {
		log.Info("Deleted orphaned images", "count", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
