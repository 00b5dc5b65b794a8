package gameController

import (
	"context"
	"errors"

	"questlog/config"
	"questlog/internal/apperrors"
	"questlog/internal/events"
	. "questlog/internal/models"
	"questlog/internal/repositories"
	"questlog/internal/services"
	"questlog/pkg/logger"

	"github.com/google/uuid"
)

// GameController owns the business logic for a user's game collection. Every
// operation is scoped to the authenticated owner; cross-user access reports
// not found rather than forbidden so entry IDs leak nothing.
type GameController struct {
	gameRepo     repositories.GameRepository
	imageService *services.ImageService
	eventBus     *events.EventBus
	config       config.Config
	log          logger.Logger
}

type GameControllerInterface interface {
	GetGames(ctx context.Context, user *User) ([]*Game, error)
	GetGame(ctx context.Context, user *User, gameID uuid.UUID) (*Game, error)
	CreateGame(ctx context.Context, user *User, request *GameCreateRequest) (*Game, error)
	UpdateGame(
		ctx context.Context,
		user *User,
		gameID uuid.UUID,
		request *GameUpdateRequest,
	) (*Game, error)
	DeleteGame(ctx context.Context, user *User, gameID uuid.UUID) error
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
) GameControllerInterface {
	return &GameController{
		gameRepo:     repos.Game,
		imageService: services.Image,
		eventBus:     eventBus,
		config:       config,
		log:          logger.New("gameController"),
	}
}

func (c *GameController) GetGames(ctx context.Context, user *User) ([]*Game, error) {
	log := c.log.Function("GetGames")

	games, err := c.gameRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, log.Err("failed to get games", err, "userID", user.ID)
	}

	return games, nil
}

// GetGame returns a single entry. The lookup is owner-scoped, so another
// user's entry reports not found.
func (c *GameController) GetGame(
	ctx context.Context,
	user *User,
	gameID uuid.UUID,
) (*Game, error) {
	return c.gameRepo.GetByID(ctx, user.ID, gameID)
}

func (c *GameController) CreateGame(
	ctx context.Context,
	user *User,
	request *GameCreateRequest,
) (*Game, error) {
	log := c.log.Function("CreateGame")

	if err := request.Validate(); err != nil {
		return nil, err
	}

	game := request.ToGame(user.ID)

	if err := c.gameRepo.Create(ctx, game); err != nil {
		return nil, log.Err("failed to create game", err, "userID", user.ID)
	}

	c.publishChange(events.GAME_CREATED, user.ID, game.ID.String(), log)

	log.Info("Game created", "userID", user.ID, "gameID", game.ID, "name", game.Name)
	return game, nil
}

// UpdateGame merges the request into the stored entry. Absent fields keep
// their stored values; explicit nulls clear optional fields.
func (c *GameController) UpdateGame(
	ctx context.Context,
	user *User,
	gameID uuid.UUID,
	request *GameUpdateRequest,
) (*Game, error) {
	log := c.log.Function("UpdateGame")

	game, err := c.GetGame(ctx, user, gameID)
	if err != nil {
		return nil, err
	}

	previousImage := ""
	if game.Image != nil {
		previousImage = *game.Image
	}

	if err := request.Apply(game); err != nil {
		return nil, err
	}

	if err := c.gameRepo.Update(ctx, game); err != nil {
		return nil, log.Err("failed to update game", err, "userID", user.ID, "gameID", gameID)
	}

	c.cleanupReplacedImage(ctx, game, previousImage)

	c.publishChange(events.GAME_UPDATED, user.ID, game.ID.String(), log)

	log.Info("Game updated", "userID", user.ID, "gameID", gameID)
	return game, nil
}

// DeleteGame removes an entry. Deleting a missing or already-deleted entry
// succeeds, so retried deletes are safe.
func (c *GameController) DeleteGame(ctx context.Context, user *User, gameID uuid.UUID) error {
	log := c.log.Function("DeleteGame")

	game, err := c.gameRepo.GetByID(ctx, user.ID, gameID)
	if err != nil {
		// Missing and foreign entries alike delete to a no-op success.
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := c.gameRepo.Delete(ctx, user.ID, gameID); err != nil {
		return log.Err("failed to delete game", err, "userID", user.ID, "gameID", gameID)
	}

	if game.HasStoredImage() {
		if err := c.imageService.Delete(ctx, *game.Image); err != nil {
			log.Warn("failed to delete stored image", "key", *game.Image, "error", err)
		}
	}

	c.publishChange(events.GAME_DELETED, user.ID, gameID.String(), log)

	log.Info("Game deleted", "userID", user.ID, "gameID", gameID)
	return nil
}

func (c *GameController) publishChange(
	eventType events.MessageType,
	userID uuid.UUID,
	gameID string,
	log logger.Logger,
) {
	if c.eventBus == nil {
		return
	}
	if err := c.eventBus.PublishGameChange(eventType, userID, gameID); err != nil {
		log.Warn("failed to publish collection event", "type", eventType, "gameID", gameID, "error", err)
	}
}

// cleanupReplacedImage deletes the previous stored blob when an update swapped
// the image out. External URLs are not ours to manage.
func (c *GameController) cleanupReplacedImage(ctx context.Context, game *Game, previousImage string) {
	if previousImage == "" {
		return
	}

	current := ""
	if game.Image != nil {
		current = *game.Image
	}
	if current == previousImage {
		return
	}

	stale := &Game{Image: &previousImage}
	if !stale.HasStoredImage() {
		return
	}

	if err := c.imageService.Delete(ctx, previousImage); err != nil {
		c.log.Warn("failed to delete replaced image", "key", previousImage, "error", err)
	}
}
