package models

import (
	"fmt"
	"strings"

	"questlog/internal/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Platform identifies the single owned platform a game entry was added for.
// A title owned on N platforms is stored as N separate entries.
type Platform struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Game struct {
	BaseUUIDModel
	UserID              uuid.UUID                      `gorm:"type:uuid;not null;index:idx_games_user_id"  json:"-"`
	Name                string                         `gorm:"type:text;not null"                          json:"name"`
	PlatformDescription string                         `gorm:"type:text;not null"                          json:"platformDescription"`
	Genre               *string                        `gorm:"type:text"                                   json:"genre,omitempty"`
	ReleaseDate         *string                        `gorm:"type:text"                                   json:"releaseDate,omitempty"`
	PlayerCount         *int                           `gorm:"type:int"                                    json:"playerCount,omitempty"`
	Publisher           *string                        `gorm:"type:text"                                   json:"publisher,omitempty"`
	Image               *string                        `gorm:"type:text"                                   json:"image,omitempty"`
	SelectedPlatform    *datatypes.JSONType[Platform]  `gorm:"type:jsonb"                                  json:"selectedPlatform,omitempty"`
	IsWishlisted        bool                           `gorm:"type:bool;default:false;index"               json:"isWishlisted"`
	SourceCatalogID     *int64                         `gorm:"type:bigint"                                 json:"sourceCatalogId,omitempty"`
}

// HasStoredImage reports whether the entry's image is a private storage key
// rather than an externally hosted URL. Stored images are deleted best-effort
// when the entry is deleted; external URLs never are.
func (g *Game) HasStoredImage() bool {
	return g.Image != nil && *g.Image != "" && !isExternalImage(*g.Image)
}

// ImageURL resolves the image field to a displayable URL. External URLs pass
// through verbatim; bare storage keys resolve through the image endpoint.
// Consumers must not render the raw image field without this branching.
func (g *Game) ImageURL(publicBaseURL string) *string {
	if g.Image == nil || *g.Image == "" {
		return nil
	}
	if isExternalImage(*g.Image) {
		return g.Image
	}
	resolved := fmt.Sprintf("%s/api/images/%s", strings.TrimRight(publicBaseURL, "/"), *g.Image)
	return &resolved
}

func isExternalImage(image string) bool {
	return strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://")
}

// GameCreateRequest carries owner-supplied fields for a new entry. The owner
// id always comes from the authenticated caller, never from the payload.
type GameCreateRequest struct {
	Name                string    `json:"name"`
	PlatformDescription string    `json:"platformDescription"`
	Genre               *string   `json:"genre,omitempty"`
	ReleaseDate         *string   `json:"releaseDate,omitempty"`
	PlayerCount         *int      `json:"playerCount,omitempty"`
	Publisher           *string   `json:"publisher,omitempty"`
	Image               *string   `json:"image,omitempty"`
	SelectedPlatform    *Platform `json:"selectedPlatform,omitempty"`
	IsWishlisted        bool      `json:"isWishlisted"`
	SourceCatalogID     *int64    `json:"sourceCatalogId,omitempty"`
}

func (r GameCreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(r.PlatformDescription) == "" {
		return fmt.Errorf("%w: platformDescription is required", apperrors.ErrValidation)
	}
	return nil
}

// ToGame builds the full entry for the given owner. ID and CreatedAt are
// assigned by the store on insert.
func (r GameCreateRequest) ToGame(userID uuid.UUID) *Game {
	game := &Game{
		UserID:              userID,
		Name:                r.Name,
		PlatformDescription: r.PlatformDescription,
		Genre:               r.Genre,
		ReleaseDate:         r.ReleaseDate,
		PlayerCount:         r.PlayerCount,
		Publisher:           r.Publisher,
		Image:               r.Image,
		IsWishlisted:        r.IsWishlisted,
		SourceCatalogID:     r.SourceCatalogID,
	}
	if r.SelectedPlatform != nil {
		platform := datatypes.NewJSONType(*r.SelectedPlatform)
		game.SelectedPlatform = &platform
	}
	return game
}

// GameUpdateRequest is a merge-not-replace partial update. Absent fields are
// preserved, explicit null clears optional fields, and the required fields
// reject null. ID and owner are immutable by construction: neither appears
// here.
type GameUpdateRequest struct {
	Name                Optional[string]   `json:"name,omitzero"`
	PlatformDescription Optional[string]   `json:"platformDescription,omitzero"`
	Genre               Optional[string]   `json:"genre,omitzero"`
	ReleaseDate         Optional[string]   `json:"releaseDate,omitzero"`
	PlayerCount         Optional[int]      `json:"playerCount,omitzero"`
	Publisher           Optional[string]   `json:"publisher,omitzero"`
	Image               Optional[string]   `json:"image,omitzero"`
	SelectedPlatform    Optional[Platform] `json:"selectedPlatform,omitzero"`
	IsWishlisted        Optional[bool]     `json:"isWishlisted,omitzero"`
}

// Apply merges the provided fields over the existing entry in place.
func (r GameUpdateRequest) Apply(game *Game) error {
	if r.Name.Set {
		if !r.Name.Valid || strings.TrimSpace(r.Name.Value) == "" {
			return fmt.Errorf("%w: name cannot be cleared", apperrors.ErrValidation)
		}
		game.Name = r.Name.Value
	}
	if r.PlatformDescription.Set {
		if !r.PlatformDescription.Valid || strings.TrimSpace(r.PlatformDescription.Value) == "" {
			return fmt.Errorf("%w: platformDescription cannot be cleared", apperrors.ErrValidation)
		}
		game.PlatformDescription = r.PlatformDescription.Value
	}
	if r.Genre.Set {
		game.Genre = r.Genre.Ptr()
	}
	if r.ReleaseDate.Set {
		game.ReleaseDate = r.ReleaseDate.Ptr()
	}
	if r.PlayerCount.Set {
		game.PlayerCount = r.PlayerCount.Ptr()
	}
	if r.Publisher.Set {
		game.Publisher = r.Publisher.Ptr()
	}
	if r.Image.Set {
		game.Image = r.Image.Ptr()
	}
	if r.SelectedPlatform.Set {
		if r.SelectedPlatform.Valid {
			platform := datatypes.NewJSONType(r.SelectedPlatform.Value)
			game.SelectedPlatform = &platform
		} else {
			game.SelectedPlatform = nil
		}
	}
	if r.IsWishlisted.Set {
		if !r.IsWishlisted.Valid {
			return fmt.Errorf("%w: isWishlisted cannot be null", apperrors.ErrValidation)
		}
		game.IsWishlisted = r.IsWishlisted.Value
	}
	return nil
}
