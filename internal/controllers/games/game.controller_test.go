package gameController

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"questlog/internal/apperrors"
	"questlog/internal/models"
	"questlog/internal/services"
	"questlog/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGameRepository struct {
	mu    sync.Mutex
	games map[uuid.UUID]*models.Game
}

func newFakeGameRepository() *fakeGameRepository {
	return &fakeGameRepository{games: make(map[uuid.UUID]*models.Game)}
}

func (r *fakeGameRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var games []*models.Game
	for _, game := range r.games {
		if game.UserID == userID {
			copied := *game
			games = append(games, &copied)
		}
	}
	return games, nil
}

func (r *fakeGameRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	game, ok := r.games[id]
	if !ok || game.UserID != userID {
		return nil, fmt.Errorf("%w: game %s", apperrors.ErrNotFound, id)
	}
	copied := *game
	return &copied, nil
}

func (r *fakeGameRepository) Create(ctx context.Context, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	game.ID = uuid.New()
	copied := *game
	r.games[game.ID] = &copied
	return nil
}

func (r *fakeGameRepository) Update(ctx context.Context, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[game.ID]; !ok {
		return fmt.Errorf("%w: game %s", apperrors.ErrNotFound, game.ID)
	}
	copied := *game
	r.games[game.ID] = &copied
	return nil
}

func (r *fakeGameRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	game, ok := r.games[id]
	if ok && game.UserID == userID {
		delete(r.games, id)
	}
	return nil
}

func (r *fakeGameRepository) ClearUserGamesCache(ctx context.Context, userID uuid.UUID) {}

type fakeImageRepository struct {
	mu      sync.Mutex
	deleted []string
}

func (r *fakeImageRepository) GetByKey(ctx context.Context, key string) (*models.ImageBlob, error) {
	return nil, fmt.Errorf("%w: image %s", apperrors.ErrNotFound, key)
}

func (r *fakeImageRepository) Create(ctx context.Context, image *models.ImageBlob) error {
	return nil
}

func (r *fakeImageRepository) DeleteByKey(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, key)
	return nil
}

func (r *fakeImageRepository) DeleteOrphaned(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

func newTestController(repo *fakeGameRepository, images *fakeImageRepository) *GameController {
	return &GameController{
		gameRepo:     repo,
		imageService: services.NewImageService(images),
		log:          logger.New("gameController"),
	}
}

func testUser() *models.User {
	user := &models.User{IsActive: true}
	user.ID = uuid.New()
	return user
}

func seedGame(t *testing.T, repo *fakeGameRepository, owner *models.User, name string) *models.Game {
	t.Helper()
	game := &models.Game{UserID: owner.ID, Name: name, PlatformDescription: "PC"}
	require.NoError(t, repo.Create(context.Background(), game))
	return game
}

func TestGetGamesOnlyReturnsOwnEntries(t *testing.T) {
	repo := newFakeGameRepository()
	controller := newTestController(repo, &fakeImageRepository{})

	alice := testUser()
	bob := testUser()
	seedGame(t, repo, alice, "Celeste")
	seedGame(t, repo, bob, "Hades")

	games, err := controller.GetGames(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Celeste", games[0].Name)
	assert.Equal(t, alice.ID, games[0].UserID)
}

func TestGetGameForeignOwnerReportsNotFound(t *testing.T) {
	repo := newFakeGameRepository()
	controller := newTestController(repo, &fakeImageRepository{})

	alice := testUser()
	bob := testUser()
	game := seedGame(t, repo, bob, "Hades")

	_, err := controller.GetGame(context.Background(), alice, game.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateGameAssignsOwnerFromCaller(t *testing.T) {
	repo := newFakeGameRepository()
	controller := newTestController(repo, &fakeImageRepository{})
	alice := testUser()

	game, err := controller.CreateGame(context.Background(), alice, &models.GameCreateRequest{
		Name:                "Celeste",
		PlatformDescription: "PC",
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, game.UserID)
	assert.NotEqual(t, uuid.Nil, game.ID)
}

func TestCreateGameValidationFailure(t *testing.T) {
	controller := newTestController(newFakeGameRepository(), &fakeImageRepository{})

	_, err := controller.CreateGame(context.Background(), testUser(), &models.GameCreateRequest{
		PlatformDescription: "PC",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateGameMergesFields(t *testing.T) {
	repo := newFakeGameRepository()
	controller := newTestController(repo, &fakeImageRepository{})
	alice := testUser()

	created, err := controller.CreateGame(context.Background(), alice, &models.GameCreateRequest{
		Name:                "Celeste",
		PlatformDescription: "PC",
		Genre:               strPtr("Platformer"),
	})
	require.NoError(t, err)

	updated, err := controller.UpdateGame(context.Background(), alice, created.ID, &models.GameUpdateRequest{
		Genre: models.Some("Precision Platformer"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Celeste", updated.Name)
	require.NotNil(t, updated.Genre)
	assert.Equal(t, "Precision Platformer", *updated.Genre)

	stored, err := repo.GetByID(context.Background(), alice.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Celeste", stored.Name)
	assert.Equal(t, "Precision Platformer", *stored.Genre)
}

func TestUpdateGameForeignOwnerReportsNotFound(t *testing.T) {
	repo := newFakeGameRepository()
	controller := newTestController(repo, &fakeImageRepository{})

	alice := testUser()
	bob := testUser()
	game := seedGame(t, repo, bob, "Hades")

	_, err := controller.UpdateGame(context.Background(), alice, game.ID, &models.GameUpdateRequest{
		Genre: models.Some("Roguelike"),
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	stored, err := repo.GetByID(context.Background(), bob.ID, game.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Genre)
}

func TestDeleteGameIsIdempotent(t *testing.T) {
	repo := newFakeGameRepository()
	controller := newTestController(repo, &fakeImageRepository{})
	alice := testUser()
	game := seedGame(t, repo, alice, "Celeste")

	require.NoError(t, controller.DeleteGame(context.Background(), alice, game.ID))

	games, err := controller.GetGames(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, games)

	// Second delete of the same id is a no-op success.
	require.NoError(t, controller.DeleteGame(context.Background(), alice, game.ID))

	games, err = controller.GetGames(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestDeleteGameMissingIDSucceeds(t *testing.T) {
	controller := newTestController(newFakeGameRepository(), &fakeImageRepository{})

	assert.NoError(t, controller.DeleteGame(context.Background(), testUser(), uuid.New()))
}

func TestDeleteGameForeignOwnerLeavesEntry(t *testing.T) {
	repo := newFakeGameRepository()
	controller := newTestController(repo, &fakeImageRepository{})

	alice := testUser()
	bob := testUser()
	game := seedGame(t, repo, bob, "Hades")

	require.NoError(t, controller.DeleteGame(context.Background(), alice, game.ID))

	stored, err := repo.GetByID(context.Background(), bob.ID, game.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, stored.UserID)
}

func TestDeleteGameRemovesStoredImage(t *testing.T) {
	repo := newFakeGameRepository()
	images := &fakeImageRepository{}
	controller := newTestController(repo, images)
	alice := testUser()

	key := uuid.NewString()
	game := &models.Game{UserID: alice.ID, Name: "Celeste", PlatformDescription: "PC", Image: &key}
	require.NoError(t, repo.Create(context.Background(), game))

	require.NoError(t, controller.DeleteGame(context.Background(), alice, game.ID))
	assert.Contains(t, images.deleted, key)
}

func strPtr(s string) *string {
	return &s
}
