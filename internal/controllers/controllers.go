package controllers

import (
	"questlog/config"
	"questlog/internal/events"
	"questlog/internal/repositories"
	"questlog/internal/services"

	authController "questlog/internal/controllers/auth"
	gameController "questlog/internal/controllers/games"
	shareController "questlog/internal/controllers/shares"
)

type Controllers struct {
	Auth  authController.AuthControllerInterface
	Game  gameController.GameControllerInterface
	Share shareController.ShareControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	config config.Config,
) Controllers {
	return Controllers{
		Auth:  authController.New(services, repos),
		Game:  gameController.New(repos, services, eventBus, config),
		Share: shareController.New(repos, eventBus, config),
	}
}
