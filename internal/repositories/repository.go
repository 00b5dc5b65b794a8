package repositories

import (
	"questlog/internal/database"
)

// Repository aggregates all repositories for dependency injection.
type Repository struct {
	User  UserRepository
	Game  GameRepository
	Share ShareRepository
	Image ImageRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:  NewUserRepository(db),
		Game:  NewGameRepository(db),
		Share: NewShareRepository(db),
		Image: NewImageRepository(db),
	}
}
