package middleware

import (
	"questlog/config"
	"questlog/internal/controllers"
	"questlog/internal/database"
	"questlog/internal/events"
	"questlog/pkg/logger"
)

type Middleware struct {
	DB          database.DB
	Config      config.Config
	controllers controllers.Controllers
	log         logger.Logger
	eventBus    *events.EventBus
}

func New(
	db database.DB,
	eventBus *events.EventBus,
	config config.Config,
	controllers controllers.Controllers,
) Middleware {
	return Middleware{
		DB:          db,
		Config:      config,
		controllers: controllers,
		log:         logger.New("middleware"),
		eventBus:    eventBus,
	}
}
