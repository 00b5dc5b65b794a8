package shareController

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"questlog/config"
	"questlog/internal/apperrors"
	"questlog/internal/models"
	"questlog/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShareRepository struct {
	mu     sync.Mutex
	shares map[string]*models.Share
}

func newFakeShareRepository() *fakeShareRepository {
	return &fakeShareRepository{shares: make(map[string]*models.Share)}
}

func (r *fakeShareRepository) GetByToken(ctx context.Context, token string) (*models.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	share, ok := r.shares[token]
	if !ok || !share.Active {
		return nil, fmt.Errorf("%w: share", apperrors.ErrNotFound)
	}
	copied := *share
	return &copied, nil
}

func (r *fakeShareRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var shares []*models.Share
	for _, share := range r.shares {
		if share.UserID == userID && share.Active {
			copied := *share
			shares = append(shares, &copied)
		}
	}
	return shares, nil
}

func (r *fakeShareRepository) Create(ctx context.Context, share *models.Share) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	share.ID = uuid.New()
	copied := *share
	r.shares[share.Token] = &copied
	return nil
}

func (r *fakeShareRepository) DeleteByTokenAndUser(ctx context.Context, userID uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	share, ok := r.shares[token]
	if !ok || share.UserID != userID {
		return fmt.Errorf("%w: share", apperrors.ErrNotFound)
	}
	delete(r.shares, token)
	return nil
}

type fakeGameLister struct {
	games []*models.Game
}

func (r *fakeGameLister) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Game, error) {
	var games []*models.Game
	for _, game := range r.games {
		if game.UserID == userID {
			copied := *game
			games = append(games, &copied)
		}
	}
	return games, nil
}

func (r *fakeGameLister) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Game, error) {
	return nil, fmt.Errorf("%w: game %s", apperrors.ErrNotFound, id)
}

func (r *fakeGameLister) Create(ctx context.Context, game *models.Game) error { return nil }

func (r *fakeGameLister) Update(ctx context.Context, game *models.Game) error { return nil }

func (r *fakeGameLister) Delete(ctx context.Context, userID, id uuid.UUID) error { return nil }

func (r *fakeGameLister) ClearUserGamesCache(ctx context.Context, userID uuid.UUID) {}

func newTestController(shares *fakeShareRepository, games *fakeGameLister) *ShareController {
	return &ShareController{
		shareRepo: shares,
		gameRepo:  games,
		config:    config.Config{PublicBaseURL: "https://questlog.example.com"},
		log:       logger.New("shareController"),
	}
}

func testUser(name string) *models.User {
	user := &models.User{FirstName: name, FullName: name, IsActive: true}
	user.ID = uuid.New()
	return user
}

func wishlistedGame(owner *models.User, name string) *models.Game {
	game := &models.Game{UserID: owner.ID, Name: name, PlatformDescription: "PC", IsWishlisted: true}
	game.ID = uuid.New()
	return game
}

func libraryGame(owner *models.User, name string) *models.Game {
	game := &models.Game{UserID: owner.ID, Name: name, PlatformDescription: "PC"}
	game.ID = uuid.New()
	return game
}

func TestCreateShareGeneratesUniqueOpaqueTokens(t *testing.T) {
	shares := newFakeShareRepository()
	controller := newTestController(shares, &fakeGameLister{})
	owner := testUser("Ash")

	seen := make(map[string]bool)
	for range 50 {
		share, err := controller.CreateShare(context.Background(), owner, &models.ShareCreateRequest{
			DisplayName: "Ash",
			Scope:       models.ShareScopeLibrary,
		})
		require.NoError(t, err)

		// 32 random bytes base64url-encoded
		assert.Len(t, share.Token, 43)
		assert.False(t, seen[share.Token], "token collision")
		seen[share.Token] = true
	}
}

func TestCreateShareRejectsUnknownScope(t *testing.T) {
	controller := newTestController(newFakeShareRepository(), &fakeGameLister{})

	_, err := controller.CreateShare(context.Background(), testUser("Ash"), &models.ShareCreateRequest{
		Scope: "everything",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateShareDefaultsDisplayNameToOwner(t *testing.T) {
	controller := newTestController(newFakeShareRepository(), &fakeGameLister{})
	owner := testUser("Ash")

	share, err := controller.CreateShare(context.Background(), owner, &models.ShareCreateRequest{
		Scope: models.ShareScopeWishlist,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ash", share.DisplayName)
	assert.Contains(t, share.URL, share.Token)
}

func TestResolveShareFiltersToScope(t *testing.T) {
	owner := testUser("Ash")
	games := &fakeGameLister{games: []*models.Game{
		wishlistedGame(owner, "Silksong"),
		wishlistedGame(owner, "Hades II"),
		libraryGame(owner, "Celeste"),
		libraryGame(owner, "Hades"),
		libraryGame(owner, "Outer Wilds"),
	}}
	shares := newFakeShareRepository()
	controller := newTestController(shares, games)

	created, err := controller.CreateShare(context.Background(), owner, &models.ShareCreateRequest{
		DisplayName: "Ash",
		Scope:       models.ShareScopeWishlist,
	})
	require.NoError(t, err)

	collection, err := controller.ResolveShare(context.Background(), created.Token)
	require.NoError(t, err)

	assert.Equal(t, "Ash", collection.DisplayName)
	require.Len(t, collection.Games, 2)
	for _, game := range collection.Games {
		assert.Contains(t, []string{"Silksong", "Hades II"}, game.Name)
	}
}

func TestResolveShareOmitsOwnerIdentity(t *testing.T) {
	owner := testUser("Ash")
	games := &fakeGameLister{games: []*models.Game{libraryGame(owner, "Celeste")}}
	controller := newTestController(newFakeShareRepository(), games)

	created, err := controller.CreateShare(context.Background(), owner, &models.ShareCreateRequest{
		DisplayName: "Ash",
		Scope:       models.ShareScopeLibrary,
	})
	require.NoError(t, err)

	collection, err := controller.ResolveShare(context.Background(), created.Token)
	require.NoError(t, err)

	payload, err := json.Marshal(collection)
	require.NoError(t, err)

	assert.NotContains(t, string(payload), owner.ID.String())
	assert.NotContains(t, string(payload), "ownerId")
	assert.NotContains(t, string(payload), "userId")
	assert.NotContains(t, string(payload), "isWishlisted")
}

func TestResolveShareUnknownTokenReportsNotFound(t *testing.T) {
	controller := newTestController(newFakeShareRepository(), &fakeGameLister{})

	_, err := controller.ResolveShare(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = controller.ResolveShare(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRevokeShareRemovesLink(t *testing.T) {
	shares := newFakeShareRepository()
	controller := newTestController(shares, &fakeGameLister{})
	owner := testUser("Ash")

	created, err := controller.CreateShare(context.Background(), owner, &models.ShareCreateRequest{
		Scope: models.ShareScopeLibrary,
	})
	require.NoError(t, err)

	require.NoError(t, controller.RevokeShare(context.Background(), owner, created.Token))

	_, err = controller.ResolveShare(context.Background(), created.Token)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRevokeShareAmbiguityBetweenMissingAndForeign(t *testing.T) {
	shares := newFakeShareRepository()
	controller := newTestController(shares, &fakeGameLister{})
	owner := testUser("Ash")
	stranger := testUser("Gary")

	created, err := controller.CreateShare(context.Background(), owner, &models.ShareCreateRequest{
		Scope: models.ShareScopeLibrary,
	})
	require.NoError(t, err)

	foreignErr := controller.RevokeShare(context.Background(), stranger, created.Token)
	missingErr := controller.RevokeShare(context.Background(), stranger, "no-such-token")

	// A foreign token and a missing token are the same error category.
	assert.ErrorIs(t, foreignErr, apperrors.ErrNotFound)
	assert.ErrorIs(t, missingErr, apperrors.ErrNotFound)

	// The owner's share is untouched.
	_, err = controller.ResolveShare(context.Background(), created.Token)
	assert.NoError(t, err)
}

func TestGenerateTokenEntropy(t *testing.T) {
	first, err := generateToken()
	require.NoError(t, err)
	second, err := generateToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, first, 43)
	assert.NotContains(t, first, "+")
	assert.NotContains(t, first, "/")
	assert.NotContains(t, first, "=")
}
