// Package coordinator applies collection mutations optimistically: creates
// appear in the visible collection before the server confirms them, and are
// reconciled with server truth or rolled back when the round-trip resolves.
package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"questlog/internal/models"
	"questlog/pkg/logger"

	"github.com/google/uuid"
)

// TEMP_ID_PREFIX marks locally synthesized identifiers. Server ids are
// uuids, so the prefix guarantees a temporary id can never collide with a
// real one.
const TEMP_ID_PREFIX = "pending-"

var (
	// ErrPendingCreateFailed is returned for edits against an entry whose
	// originating create was rolled back.
	ErrPendingCreateFailed = errors.New("cannot edit: original create failed")

	// ErrDeleteInFlight rejects a delete while another is still in flight.
	ErrDeleteInFlight = errors.New("a delete is already in progress, please wait")
)

// Game is the client-side view of a collection entry. ID is a string so
// temporary and server-assigned identifiers share one field.
type Game struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	PlatformDescription string           `json:"platformDescription"`
	Genre               *string          `json:"genre,omitempty"`
	ReleaseDate         *string          `json:"releaseDate,omitempty"`
	PlayerCount         *int             `json:"playerCount,omitempty"`
	Publisher           *string          `json:"publisher,omitempty"`
	Image               *string          `json:"image,omitempty"`
	SelectedPlatform    *models.Platform `json:"selectedPlatform,omitempty"`
	IsWishlisted        bool             `json:"isWishlisted"`
	SourceCatalogID     *int64           `json:"sourceCatalogId,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
}

// Pending reports whether the entry is still awaiting server confirmation.
func (g *Game) Pending() bool {
	return IsTemporaryID(g.ID)
}

func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, TEMP_ID_PREFIX)
}

// Store is the authoritative collection the coordinator reconciles against.
type Store interface {
	List(ctx context.Context) ([]Game, error)
	Create(ctx context.Context, request models.GameCreateRequest) (*Game, error)
	Update(ctx context.Context, id string, request models.GameUpdateRequest) (*Game, error)
	Delete(ctx context.Context, id string) error
}

// Notifier receives short human-readable failure notifications for display.
type Notifier interface {
	Notify(message string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

// pendingCreate is the awaitable handle for one in-flight create. result and
// err are set before done is closed and never written afterward.
type pendingCreate struct {
	done   chan struct{}
	result *Game
	err    error
}

// Coordinator keeps a locally visible copy of one owner's collection and
// guarantees it never permanently diverges from the store.
type Coordinator struct {
	store    Store
	notifier Notifier
	log      logger.Logger

	mu             sync.Mutex
	visible        []Game
	pending        map[string]*pendingCreate
	deleteInFlight bool

	// generation increments on every local mutation; a refresh response
	// fetched under an older generation is stale and discarded.
	generation uint64
}

func New(store Store, notifier Notifier) *Coordinator {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Coordinator{
		store:    store,
		notifier: notifier,
		log:      logger.New("coordinator"),
		pending:  make(map[string]*pendingCreate),
	}
}

// Load replaces the visible collection with the store's current state.
func (c *Coordinator) Load(ctx context.Context) error {
	log := c.log.Function("Load")

	games, err := c.store.List(ctx)
	if err != nil {
		return log.Err("failed to load collection", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = games
	c.generation++

	return nil
}

// Games returns a copy of the visible collection, including entries still
// pending confirmation.
func (c *Coordinator) Games() []Game {
	c.mu.Lock()
	defer c.mu.Unlock()

	games := make([]Game, len(c.visible))
	copy(games, c.visible)
	return games
}

// Create inserts a speculative entry immediately and returns it without
// waiting for the store. The returned entry carries a temporary id; once the
// store confirms, the visible entry is replaced by the authoritative record.
// On failure the speculative entry is removed and the notifier is told.
func (c *Coordinator) Create(ctx context.Context, request models.GameCreateRequest) (Game, error) {
	log := c.log.Function("Create")

	if err := request.Validate(); err != nil {
		return Game{}, err
	}

	tempID := TEMP_ID_PREFIX + uuid.NewString()
	speculative := speculativeGame(tempID, request)

	handle := &pendingCreate{done: make(chan struct{})}

	c.mu.Lock()
	c.visible = append(c.visible, speculative)
	c.pending[tempID] = handle
	c.generation++
	c.mu.Unlock()

	// The dispatch must outlive the caller's request context.
	dispatchCtx := context.WithoutCancel(ctx)
	go c.dispatchCreate(dispatchCtx, tempID, request, handle, log)

	return speculative, nil
}

func (c *Coordinator) dispatchCreate(
	ctx context.Context,
	tempID string,
	request models.GameCreateRequest,
	handle *pendingCreate,
	log logger.Logger,
) {
	confirmed, err := c.store.Create(ctx, request)

	c.mu.Lock()
	if err != nil {
		c.removeVisible(tempID)
		c.generation++
		handle.err = err
		c.mu.Unlock()

		close(handle.done)
		log.Warn("create failed, rolled back", "tempID", tempID, "error", err)
		c.notifier.Notify("Failed to add " + request.Name)
		return
	}

	// The entry may have been removed while the create was in flight; a
	// stale response must not resurrect it.
	if c.replaceVisible(tempID, *confirmed) {
		c.generation++
	}
	handle.result = confirmed
	c.mu.Unlock()

	close(handle.done)

	// Reconcile any drift in the background; a failed refresh does not fail
	// the mutation.
	if err := c.refresh(ctx); err != nil {
		log.Warn("post-create refresh failed", "error", err)
	}
}

// Update applies a partial edit. An edit against a still-pending entry waits
// for its create to resolve and then targets the authoritative id; if the
// create was rolled back the edit fails with ErrPendingCreateFailed.
func (c *Coordinator) Update(
	ctx context.Context,
	id string,
	request models.GameUpdateRequest,
) (*Game, error) {
	log := c.log.Function("Update")

	targetID, err := c.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := c.store.Update(ctx, targetID, request)
	if err != nil {
		c.notifier.Notify("Failed to update entry")
		return nil, log.Err("update failed", err, "id", targetID)
	}

	c.mu.Lock()
	if c.replaceVisible(targetID, *updated) {
		c.generation++
	}
	c.mu.Unlock()

	return updated, nil
}

// Delete removes an entry. It is not optimistic: the store is called first
// and the visible state only changes afterward. On failure the pre-delete
// snapshot is restored exactly. At most one delete may be in flight.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	log := c.log.Function("Delete")

	targetID, err := c.resolveID(ctx, id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.deleteInFlight {
		c.mu.Unlock()
		return ErrDeleteInFlight
	}
	c.deleteInFlight = true
	snapshot := make([]Game, len(c.visible))
	copy(snapshot, c.visible)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.deleteInFlight = false
		c.mu.Unlock()
	}()

	if err := c.store.Delete(ctx, targetID); err != nil {
		c.mu.Lock()
		c.visible = snapshot
		c.generation++
		c.mu.Unlock()

		c.notifier.Notify("Failed to delete entry")
		return log.Err("delete failed, state restored", err, "id", targetID)
	}

	c.mu.Lock()
	c.removeVisible(targetID)
	c.generation++
	c.mu.Unlock()

	if err := c.refresh(ctx); err != nil {
		log.Warn("post-delete refresh failed", "error", err)
	}

	return nil
}

// resolveID maps a temporary id to its authoritative one, waiting for the
// in-flight create when necessary. Real ids pass through untouched.
func (c *Coordinator) resolveID(ctx context.Context, id string) (string, error) {
	if !IsTemporaryID(id) {
		return id, nil
	}

	c.mu.Lock()
	handle, ok := c.pending[id]
	c.mu.Unlock()

	if !ok {
		return "", ErrPendingCreateFailed
	}

	select {
	case <-handle.done:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if handle.err != nil {
		return "", ErrPendingCreateFailed
	}

	// A successfully resolved handle is spent: the caller gets the
	// authoritative id and uses it from here on, so the registry entry can
	// go. Rolled-back ids stay registered so later edits still fail with
	// ErrPendingCreateFailed instead of an unknown-id lookup.
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()

	return handle.result.ID, nil
}

// refresh replaces the visible collection with the store's state, preserving
// entries still pending confirmation. A response raced by a local mutation is
// discarded.
func (c *Coordinator) refresh(ctx context.Context) error {
	c.mu.Lock()
	before := c.generation
	c.mu.Unlock()

	games, err := c.store.List(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != before {
		return nil
	}

	for _, game := range c.visible {
		if game.Pending() {
			games = append(games, game)
		}
	}
	c.visible = games

	return nil
}

// removeVisible deletes the entry with the given id. Callers hold c.mu.
func (c *Coordinator) removeVisible(id string) bool {
	for i, game := range c.visible {
		if game.ID == id {
			c.visible = append(c.visible[:i], c.visible[i+1:]...)
			return true
		}
	}
	return false
}

// replaceVisible swaps the entry with the given id in place, reporting
// whether it was still present. Callers hold c.mu.
func (c *Coordinator) replaceVisible(id string, replacement Game) bool {
	for i, game := range c.visible {
		if game.ID == id {
			c.visible[i] = replacement
			return true
		}
	}
	return false
}

func speculativeGame(tempID string, request models.GameCreateRequest) Game {
	return Game{
		ID:                  tempID,
		Name:                request.Name,
		PlatformDescription: request.PlatformDescription,
		Genre:               request.Genre,
		ReleaseDate:         request.ReleaseDate,
		PlayerCount:         request.PlayerCount,
		Publisher:           request.Publisher,
		Image:               request.Image,
		SelectedPlatform:    request.SelectedPlatform,
		IsWishlisted:        request.IsWishlisted,
		SourceCatalogID:     request.SourceCatalogID,
		CreatedAt:           time.Now(),
	}
}
