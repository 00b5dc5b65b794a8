package repositories

import (
	"context"
	"errors"
	"fmt"

	"questlog/internal/apperrors"
	"questlog/internal/database"
	. "questlog/internal/models"
	"questlog/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShareRepository interface {
	GetByToken(ctx context.Context, token string) (*Share, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Share, error)
	Create(ctx context.Context, share *Share) error
	DeleteByTokenAndUser(ctx context.Context, userID uuid.UUID, token string) error
}

type shareRepository struct {
	db  database.DB
	log logger.Logger
}

func NewShareRepository(db database.DB) ShareRepository {
	return &shareRepository{
		db:  db,
		log: logger.New("shareRepository"),
	}
}

func (r *shareRepository) GetByToken(ctx context.Context, token string) (*Share, error) {
	log := r.log.Function("GetByToken")

	var share Share
	err := r.db.SQLWithContext(ctx).
		Where("token = ? AND active = ?", token, true).
		First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: share", apperrors.ErrNotFound)
		}
		return nil, log.Err("failed to get share", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err))
	}

	return &share, nil
}

func (r *shareRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Share, error) {
	log := r.log.Function("GetByUserID")

	var shares []*Share
	if err := r.db.SQLWithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("created_at DESC").
		Find(&shares).Error; err != nil {
		return nil, log.Err("failed to get shares", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "userID", userID)
	}

	return shares, nil
}

func (r *shareRepository) Create(ctx context.Context, share *Share) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(share).Error; err != nil {
		return log.Err("failed to create share", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "userID", share.UserID)
	}

	log.Info("Created share", "userID", share.UserID, "scope", share.Scope)
	return nil
}

// DeleteByTokenAndUser removes a share only when the token belongs to the
// given owner. A missing token and a token owned by someone else both report
// ErrNotFound, so callers cannot probe for other owners' shares.
func (r *shareRepository) DeleteByTokenAndUser(ctx context.Context, userID uuid.UUID, token string) error {
	log := r.log.Function("DeleteByTokenAndUser")

	result := r.db.SQLWithContext(ctx).
		Where("token = ? AND user_id = ?", token, userID).
		Delete(&Share{})
	if result.Error != nil {
		return log.Err("failed to delete share", fmt.Errorf("%w: %w", apperrors.ErrUpstream, result.Error), "userID", userID)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: share", apperrors.ErrNotFound)
	}

	log.Info("Deleted share", "userID", userID)
	return nil
}
