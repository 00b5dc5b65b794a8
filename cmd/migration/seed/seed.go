package seed

import (
	"questlog/internal/models"
	"questlog/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T {
	return &v
}

// Seed loads a small development dataset: one user with a mixed
// library/wishlist collection.
func Seed(db *gorm.DB, log logger.Logger) error {
	log = log.Function("Seed")

	email := "dev@example.com"
	user := models.User{
		FirstName:       "Dev",
		LastName:        "User",
		Email:           &email,
		IsActive:        true,
		ProfileVerified: true,
		OIDCUserID:      "seed-dev-user",
	}
	if err := db.Create(&user).Error; err != nil {
		return log.Err("failed to seed user", err)
	}

	pcPlatform := datatypes.NewJSONType(models.Platform{ID: 4, Name: "PC"})
	switchPlatform := datatypes.NewJSONType(models.Platform{ID: 7, Name: "Nintendo Switch"})

	games := []models.Game{
		{
			UserID:              user.ID,
			Name:                "Celeste",
			PlatformDescription: "PC",
			Genre:               ptr("Platformer"),
			ReleaseDate:         ptr("2018-01-25"),
			Publisher:           ptr("Maddy Makes Games"),
			SelectedPlatform:    &pcPlatform,
		},
		{
			UserID:              user.ID,
			Name:                "Hades",
			PlatformDescription: "Nintendo Switch",
			Genre:               ptr("Roguelike"),
			ReleaseDate:         ptr("2020-09-17"),
			Publisher:           ptr("Supergiant Games"),
			SelectedPlatform:    &switchPlatform,
		},
		{
			UserID:              user.ID,
			Name:                "Hollow Knight: Silksong",
			PlatformDescription: "PC",
			Genre:               ptr("Metroidvania"),
			IsWishlisted:        true,
			SelectedPlatform:    &pcPlatform,
		},
	}

	for i := range games {
		if err := db.Create(&games[i]).Error; err != nil {
			return log.Err("failed to seed game", err, "name", games[i].Name)
		}
	}

	log.Info("Seed complete", "userID", user.ID, "games", len(games))
	return nil
}
