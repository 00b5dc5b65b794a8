package models

import (
	"encoding/json"
	"testing"

	"questlog/internal/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func strPtr(s string) *string {
	return &s
}

func TestGameCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		request GameCreateRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			request: GameCreateRequest{Name: "Celeste", PlatformDescription: "PC"},
		},
		{
			name:    "missing name",
			request: GameCreateRequest{PlatformDescription: "PC"},
			wantErr: true,
		},
		{
			name:    "whitespace name",
			request: GameCreateRequest{Name: "   ", PlatformDescription: "PC"},
			wantErr: true,
		},
		{
			name:    "missing platform description",
			request: GameCreateRequest{Name: "Celeste"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGameCreateRequestToGameSetsOwner(t *testing.T) {
	userID := uuid.New()
	request := GameCreateRequest{
		Name:                "Celeste",
		PlatformDescription: "PC",
		SelectedPlatform:    &Platform{ID: 4, Name: "PC"},
	}

	game := request.ToGame(userID)

	assert.Equal(t, userID, game.UserID)
	assert.Equal(t, "Celeste", game.Name)
	require.NotNil(t, game.SelectedPlatform)
	assert.Equal(t, int64(4), game.SelectedPlatform.Data().ID)
}

func TestGameUpdateRequestMergePreservesAbsentFields(t *testing.T) {
	game := &Game{
		Name:                "Celeste",
		PlatformDescription: "PC",
		Genre:               strPtr("Platformer"),
		Publisher:           strPtr("Maddy Makes Games"),
	}

	var request GameUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"genre": "Precision Platformer"}`), &request))
	require.NoError(t, request.Apply(game))

	assert.Equal(t, "Celeste", game.Name)
	require.NotNil(t, game.Genre)
	assert.Equal(t, "Precision Platformer", *game.Genre)
	require.NotNil(t, game.Publisher)
	assert.Equal(t, "Maddy Makes Games", *game.Publisher)
}

func TestGameUpdateRequestNullClearsOptionalField(t *testing.T) {
	game := &Game{
		Name:                "Celeste",
		PlatformDescription: "PC",
		Genre:               strPtr("Platformer"),
	}

	var request GameUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"genre": null}`), &request))
	require.NoError(t, request.Apply(game))

	assert.Nil(t, game.Genre)
	assert.Equal(t, "Celeste", game.Name)
}

func TestGameUpdateRequestRequiredFieldsRejectClearing(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "null name", body: `{"name": null}`},
		{name: "empty name", body: `{"name": ""}`},
		{name: "null platform description", body: `{"platformDescription": null}`},
		{name: "null wishlist flag", body: `{"isWishlisted": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := &Game{Name: "Celeste", PlatformDescription: "PC"}

			var request GameUpdateRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &request))

			err := request.Apply(game)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Equal(t, "Celeste", game.Name)
			assert.Equal(t, "PC", game.PlatformDescription)
		})
	}
}

func TestGameUpdateRequestMarshalStaysPartial(t *testing.T) {
	request := GameUpdateRequest{Genre: Some("Roguelike")}

	payload, err := json.Marshal(request)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))
	assert.Equal(t, map[string]any{"genre": "Roguelike"}, fields)

	var decoded GameUpdateRequest
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.False(t, decoded.Name.Set)
	assert.False(t, decoded.IsWishlisted.Set)

	game := &Game{
		Name:                "Hades",
		PlatformDescription: "PC",
		Publisher:           strPtr("Supergiant Games"),
	}
	require.NoError(t, decoded.Apply(game))

	assert.Equal(t, "Hades", game.Name)
	assert.Equal(t, "PC", game.PlatformDescription)
	require.NotNil(t, game.Genre)
	assert.Equal(t, "Roguelike", *game.Genre)
	require.NotNil(t, game.Publisher)
	assert.Equal(t, "Supergiant Games", *game.Publisher)
}

func TestGameUpdateRequestMarshalKeepsExplicitNull(t *testing.T) {
	request := GameUpdateRequest{Genre: Null[string]()}

	payload, err := json.Marshal(request)
	require.NoError(t, err)
	assert.JSONEq(t, `{"genre": null}`, string(payload))

	var decoded GameUpdateRequest
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.True(t, decoded.Genre.Set)
	assert.False(t, decoded.Genre.Valid)
}

func TestGameUpdateRequestWishlistToggle(t *testing.T) {
	game := &Game{Name: "Celeste", PlatformDescription: "PC"}

	var request GameUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"isWishlisted": true}`), &request))
	require.NoError(t, request.Apply(game))

	assert.True(t, game.IsWishlisted)
}

func TestImageURLBranchesOnExternalURL(t *testing.T) {
	base := "https://questlog.example.com"

	external := &Game{Image: strPtr("https://cdn.example.com/cover.jpg")}
	resolved := external.ImageURL(base)
	require.NotNil(t, resolved)
	assert.Equal(t, "https://cdn.example.com/cover.jpg", *resolved)
	assert.False(t, external.HasStoredImage())

	stored := &Game{Image: strPtr("0198c7a2-5f3e-7000-8000-abcdef012345")}
	resolved = stored.ImageURL(base)
	require.NotNil(t, resolved)
	assert.Equal(t, "https://questlog.example.com/api/images/0198c7a2-5f3e-7000-8000-abcdef012345", *resolved)
	assert.True(t, stored.HasStoredImage())

	none := &Game{}
	assert.Nil(t, none.ImageURL(base))
	assert.False(t, none.HasStoredImage())
}

func TestToPublicOmitsPrivateFields(t *testing.T) {
	platform := datatypes.NewJSONType(Platform{ID: 4, Name: "PC"})
	game := &Game{
		UserID:              uuid.New(),
		Name:                "Celeste",
		PlatformDescription: "PC",
		Genre:               strPtr("Platformer"),
		IsWishlisted:        true,
		SelectedPlatform:    &platform,
	}
	game.ID = uuid.New()

	public := game.ToPublic("https://questlog.example.com")

	payload, err := json.Marshal(public)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))

	assert.NotContains(t, fields, "ownerId")
	assert.NotContains(t, fields, "userId")
	assert.NotContains(t, fields, "isWishlisted")
	assert.Equal(t, "Celeste", fields["name"])
	require.NotNil(t, public.SelectedPlatform)
	assert.Equal(t, "PC", public.SelectedPlatform.Name)
}

func TestShareIncludesPartitionsByScope(t *testing.T) {
	library := &Share{Scope: ShareScopeLibrary}
	wishlist := &Share{Scope: ShareScopeWishlist}

	owned := &Game{IsWishlisted: false}
	wished := &Game{IsWishlisted: true}

	assert.True(t, library.Includes(owned))
	assert.False(t, library.Includes(wished))
	assert.True(t, wishlist.Includes(wished))
	assert.False(t, wishlist.Includes(owned))
}
