package models

import (
	"time"

	"github.com/google/uuid"
)

// ShareScope selects which partition of an owner's collection a share exposes.
type ShareScope string

const (
	ShareScopeLibrary  ShareScope = "library"
	ShareScopeWishlist ShareScope = "wishlist"
)

func (s ShareScope) IsValid() bool {
	return s == ShareScopeLibrary || s == ShareScopeWishlist
}

// Share maps an unguessable token to a read-only projection of one owner's
// collection. The token is the only public lookup key; the owner id never
// leaves the server.
type Share struct {
	BaseUUIDModel
	Token       string     `gorm:"type:text;not null;uniqueIndex" json:"token"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"       json:"-"`
	DisplayName string     `gorm:"type:text;not null"             json:"displayName"`
	Scope       ShareScope `gorm:"type:varchar(20);not null"      json:"scope"`
	Active      bool       `gorm:"type:bool;default:true"         json:"active"`
}

// Includes reports whether a game entry falls inside the share's partition.
func (s *Share) Includes(game *Game) bool {
	return game.IsWishlisted == (s.Scope == ShareScopeWishlist)
}

type ShareCreateRequest struct {
	DisplayName string     `json:"displayName"`
	Scope       ShareScope `json:"scope"`
}

type ShareCreateResponse struct {
	Token       string     `json:"token"`
	URL         string     `json:"url"`
	DisplayName string     `json:"displayName"`
	Scope       ShareScope `json:"scope"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// PublicGame is the sanitized projection served to unauthenticated visitors.
// It never carries the owner id or the wishlist flag; the share's scope
// already encodes the partition.
type PublicGame struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Genre            *string   `json:"genre,omitempty"`
	ReleaseDate      *string   `json:"releaseDate,omitempty"`
	PlayerCount      *int      `json:"playerCount,omitempty"`
	Publisher        *string   `json:"publisher,omitempty"`
	Image            *string   `json:"image,omitempty"`
	SelectedPlatform *Platform `json:"selectedPlatform,omitempty"`
}

// ToPublic projects an entry down to the public-safe subset, resolving the
// image field to a displayable URL.
func (g *Game) ToPublic(publicBaseURL string) PublicGame {
	public := PublicGame{
		ID:          g.ID,
		Name:        g.Name,
		Genre:       g.Genre,
		ReleaseDate: g.ReleaseDate,
		PlayerCount: g.PlayerCount,
		Publisher:   g.Publisher,
		Image:       g.ImageURL(publicBaseURL),
	}
	if g.SelectedPlatform != nil {
		platform := g.SelectedPlatform.Data()
		public.SelectedPlatform = &platform
	}
	return public
}

// SharedCollection is the full response for resolving a share token.
type SharedCollection struct {
	DisplayName string       `json:"displayName"`
	Scope       ShareScope   `json:"scope"`
	CreatedAt   time.Time    `json:"createdAt"`
	Games       []PublicGame `json:"games"`
}
