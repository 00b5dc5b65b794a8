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
	USER_GAMES_CACHE_PREFIX = "user_games"
	USER_GAMES_CACHE_EXPIRY = 24 * time.Hour
)

type GameRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Game, error)
	GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*Game, error)
	Create(ctx context.Context, game *Game) error
	Update(ctx context.Context, game *Game) error
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	ClearUserGamesCache(ctx context.Context, userID uuid.UUID)
}

type gameRepository struct {
	db    database.DB
	cache database.CacheClient
	log   logger.Logger
}

func NewGameRepository(db database.DB) GameRepository {
	return &gameRepository{
		db:    db,
		cache: db.Cache.User,
		log:   logger.New("gameRepository"),
	}
}

// GetByUserID returns every entry in the owner's collection. An owner with no
// rows yields an empty slice, indistinguishable from a never-seen owner.
func (r *gameRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Game, error) {
	log := r.log.Function("GetByUserID")

	var cachedGames []*Game
	found, err := database.NewCacheBuilder(r.cache, userID).
		WithContext(ctx).
		WithHash(USER_GAMES_CACHE_PREFIX).
		Get(&cachedGames)
	if err != nil {
		log.Warn("failed to get games from cache", "userID", userID, "error", err)
	}

	if found {
		log.Debug("Games retrieved from cache", "userID", userID, "count", len(cachedGames))
		return cachedGames, nil
	}

	var games []*Game
	if err := r.db.SQLWithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&games).Error; err != nil {
		return nil, log.Err("failed to get games", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "userID", userID)
	}

	if err := database.NewCacheBuilder(r.cache, userID).
		WithContext(ctx).
		WithHash(USER_GAMES_CACHE_PREFIX).
		WithStruct(games).
		WithTTL(USER_GAMES_CACHE_EXPIRY).
		Set(); err != nil {
		log.Warn("failed to set games in cache", "userID", userID, "error", err)
	}

	return games, nil
}

func (r *gameRepository) GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*Game, error) {
	log := r.log.Function("GetByID")

	var game Game
	err := r.db.SQLWithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: game %s", apperrors.ErrNotFound, id)
		}
		return nil, log.Err("failed to get game", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "userID", userID, "gameID", id)
	}

	return &game, nil
}

func (r *gameRepository) Create(ctx context.Context, game *Game) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(game).Error; err != nil {
		return log.Err("failed to create game", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "userID", game.UserID)
	}

	r.ClearUserGamesCache(ctx, game.UserID)

	log.Info("Created game", "userID", game.UserID, "gameID", game.ID)
	return nil
}

func (r *gameRepository) Update(ctx context.Context, game *Game) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(game).Error; err != nil {
		return log.Err("failed to update game", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err), "userID", game.UserID, "gameID", game.ID)
	}

	r.ClearUserGamesCache(ctx, game.UserID)

	return nil
}

// Delete removes the entry if present. Deleting an id that does not exist in
// the owner's set is a no-op success, so the call is idempotent.
func (r *gameRepository) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	log := r.log.Function("Delete")

	result := r.db.SQLWithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&Game{})
	if result.Error != nil {
		return log.Err("failed to delete game", fmt.Errorf("%w: %w", apperrors.ErrUpstream, result.Error), "userID", userID, "gameID", id)
	}

	r.ClearUserGamesCache(ctx, userID)

	log.Info("Deleted game", "userID", userID, "gameID", id, "deletedCount", result.RowsAffected)
	return nil
}

func (r *gameRepository) ClearUserGamesCache(ctx context.Context, userID uuid.UUID) {
	if err := database.NewCacheBuilder(r.cache, userID).
		WithContext(ctx).
		WithHash(USER_GAMES_CACHE_PREFIX).
		Delete(); err != nil {
		r.log.Warn("failed to clear games cache", "userID", userID, "error", err)
	}
}
