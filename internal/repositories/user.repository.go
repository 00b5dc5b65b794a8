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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	USER_CACHE_PREFIX = "user_oidc"
	USER_CACHE_EXPIRY = 1 * time.Hour
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByOIDCUserID(ctx context.Context, oidcUserID string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

type userRepository struct {
	db    database.DB
	cache database.CacheClient
	log   logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:    db,
		cache: db.Cache.User,
		log:   logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	err := r.db.SQLWithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, id)
		}
		return nil, log.Err("failed to get user", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "userID", id)
	}

	return &user, nil
}

// GetByOIDCUserID resolves the external identity subject to a local user row.
// Hot path for every authenticated request, so it is cached.
func (r *userRepository) GetByOIDCUserID(ctx context.Context, oidcUserID string) (*User, error) {
	log := r.log.Function("GetByOIDCUserID")

	var cachedUser User
	found, err := database.NewCacheBuilder(r.cache, oidcUserID).
		WithContext(ctx).
		WithHash(USER_CACHE_PREFIX).
		Get(&cachedUser)
	if err != nil {
		log.Warn("failed to get user from cache", "oidcUserID", oidcUserID, "error", err)
	}
	if found {
		return &cachedUser, nil
	}

	var user User
	err = r.db.SQLWithContext(ctx).First(&user, "oidc_user_id = ?", oidcUserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", apperrors.ErrNotFound)
		}
		return nil, log.Err("failed to get user by OIDC ID", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err))
	}

	if err := database.NewCacheBuilder(r.cache, oidcUserID).
		WithContext(ctx).
		WithHash(USER_CACHE_PREFIX).
		WithStruct(user).
		WithTTL(USER_CACHE_EXPIRY).
		Set(); err != nil {
		log.Warn("failed to cache user", "oidcUserID", oidcUserID, "error", err)
	}

	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(user).Error; err != nil {
		return log.Err("failed to create user", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err))
	}

	log.Info("Created user", "userID", user.ID)
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *User) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(user).Error; err != nil {
		return log.Err("failed to update user", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "userID", user.ID)
	}

	r.clearUserCache(ctx, user.OIDCUserID)

	return nil
}

func (r *userRepository) clearUserCache(ctx context.Context, oidcUserID string) {
	if oidcUserID == "" {
		return
	}
	if err := database.NewCacheBuilder(r.cache, oidcUserID).
		WithContext(ctx).
		WithHash(USER_CACHE_PREFIX).
		Delete(); err != nil {
		r.log.Warn("failed to clear user cache", "oidcUserID", oidcUserID, "error", err)
	}
}
