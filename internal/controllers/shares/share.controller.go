package shareController

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"questlog/config"
	"questlog/internal/apperrors"
	"questlog/internal/events"
	. "questlog/internal/models"
	"questlog/internal/repositories"
	"questlog/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// 32 random bytes gives a 256-bit token, comfortably above any brute-force
// horizon for an unauthenticated lookup key.
const SHARE_TOKEN_BYTES = 32

// ShareController manages read-only share links. A link's token is the only
// credential; anyone holding it sees the sanitized public projection of the
// owner's collection.
type ShareController struct {
	shareRepo repositories.ShareRepository
	gameRepo  repositories.GameRepository
	eventBus  *events.EventBus
	config    config.Config
	log       logger.Logger
}

type ShareControllerInterface interface {
	CreateShare(ctx context.Context, user *User, request *ShareCreateRequest) (*ShareCreateResponse, error)
	GetShares(ctx context.Context, user *User) ([]*ShareCreateResponse, error)
	RevokeShare(ctx context.Context, user *User, token string) error
	ResolveShare(ctx context.Context, token string) (*SharedCollection, error)
}

func New(
	repos repositories.Repository,
	eventBus *events.EventBus,
	config config.Config,
) ShareControllerInterface {
	return &ShareController{
		shareRepo: repos.Share,
		gameRepo:  repos.Game,
		eventBus:  eventBus,
		config:    config,
		log:       logger.New("shareController"),
	}
}

func (c *ShareController) CreateShare(
	ctx context.Context,
	user *User,
	request *ShareCreateRequest,
) (*ShareCreateResponse, error) {
	log := c.log.Function("CreateShare")

	scope := request.Scope
	if !scope.IsValid() {
		return nil, fmt.Errorf("%w: scope must be %q or %q", apperrors.ErrValidation, ShareScopeLibrary, ShareScopeWishlist)
	}

	displayName := strings.TrimSpace(request.DisplayName)
	if displayName == "" {
		displayName = user.FullName
	}

	token, err := generateToken()
	if err != nil {
		return nil, log.Err("failed to generate share token", fmt.Errorf("%w: %w", apperrors.ErrUpstream, err))
	}

	share := &Share{
		Token:       token,
		UserID:      user.ID,
		DisplayName: displayName,
		Scope:       scope,
		Active:      true,
	}

	if err := c.shareRepo.Create(ctx, share); err != nil {
		return nil, err
	}

	c.publishShareEvent(events.SHARE_CREATED, user.ID, log)

	log.Info("Share created", "userID", user.ID, "scope", scope)
	return c.toResponse(share), nil
}

func (c *ShareController) GetShares(ctx context.Context, user *User) ([]*ShareCreateResponse, error) {
	shares, err := c.shareRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return lo.Map(shares, func(share *Share, _ int) *ShareCreateResponse {
		return c.toResponse(share)
	}), nil
}

// RevokeShare deletes a link owned by the caller. A token that does not exist
// and a token owned by another user are indistinguishable to the caller.
func (c *ShareController) RevokeShare(ctx context.Context, user *User, token string) error {
	log := c.log.Function("RevokeShare")

	if token == "" {
		return fmt.Errorf("%w: token is required", apperrors.ErrValidation)
	}

	if err := c.shareRepo.DeleteByTokenAndUser(ctx, user.ID, token); err != nil {
		return err
	}

	c.publishShareEvent(events.SHARE_REVOKED, user.ID, log)

	log.Info("Share revoked", "userID", user.ID)
	return nil
}

// ResolveShare looks up a token and returns the sanitized collection view.
// No authentication: the token is the credential.
func (c *ShareController) ResolveShare(ctx context.Context, token string) (*SharedCollection, error) {
	log := c.log.Function("ResolveShare")

	if token == "" {
		return nil, fmt.Errorf("%w: share", apperrors.ErrNotFound)
	}

	share, err := c.shareRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	games, err := c.gameRepo.GetByUserID(ctx, share.UserID)
	if err != nil {
		return nil, log.Err("failed to load shared collection", err, "shareID", share.ID)
	}

	included := lo.Filter(games, func(game *Game, _ int) bool {
		return share.Includes(game)
	})

	publicGames := lo.Map(included, func(game *Game, _ int) PublicGame {
		return game.ToPublic(c.config.PublicBaseURL)
	})

	return &SharedCollection{
		DisplayName: share.DisplayName,
		Scope:       share.Scope,
		CreatedAt:   share.CreatedAt,
		Games:       publicGames,
	}, nil
}

func (c *ShareController) publishShareEvent(
	eventType events.MessageType,
	userID uuid.UUID,
	log logger.Logger,
) {
	if c.eventBus == nil {
		return
	}
	if err := c.eventBus.Publish(events.COLLECTION_CHANNEL, events.Event{
		Type:   eventType,
		UserID: &userID,
	}); err != nil {
		log.Warn("failed to publish share event", "type", eventType, "userID", userID, "error", err)
	}
}

func (c *ShareController) toResponse(share *Share) *ShareCreateResponse {
	return &ShareCreateResponse{
		Token:       share.Token,
		URL:         strings.TrimSuffix(c.config.PublicBaseURL, "/") + "/shared/" + share.Token,
		DisplayName: share.DisplayName,
		Scope:       share.Scope,
		CreatedAt:   share.CreatedAt,
	}
}

func generateToken() (string, error) {
	buf := make([]byte, SHARE_TOKEN_BYTES)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
