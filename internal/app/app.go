package app

import (
	"context"

	"questlog/config"
	"questlog/internal/controllers"
	"questlog/internal/database"
	"questlog/internal/events"
	"questlog/internal/handlers/middleware"
	"questlog/internal/jobs"
	"questlog/internal/repositories"
	"questlog/internal/services"
	"questlog/pkg/logger"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	EventBus   *events.EventBus
	Config     config.Config

	Services     services.Service
	Repositories repositories.Repository
	Controllers  controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events)

	repos := repositories.New(db)

	service, err := services.New(db, config, repos)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	controllers := controllers.New(service, repos, eventBus, config)

	middleware := middleware.New(db, eventBus, config, controllers)

	if config.SchedulerEnabled {
		imageCleanupJob := jobs.NewImageCleanupJob(repos.Image, services.Daily)
		if err := service.Scheduler.AddJob(imageCleanupJob); err != nil {
			return &App{}, log.Err("failed to register image cleanup job", err)
		}
		log.Info("Registered image cleanup job with scheduler")
	}

	app := &App{
		Database:     db,
		Config:       config,
		Middleware:   middleware,
		EventBus:     eventBus,
		Services:     service,
		Repositories: repos,
		Controllers:  controllers,
	}

	app.subscribeCacheInvalidation()

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

// subscribeCacheInvalidation keeps local game caches coherent across
// instances: any collection mutation published by a peer clears the affected
// owner's cached list.
func (a *App) subscribeCacheInvalidation() {
	a.EventBus.Subscribe(events.COLLECTION_CHANNEL, func(event events.Event) error {
		switch event.Type {
		case events.GAME_CREATED, events.GAME_UPDATED, events.GAME_DELETED, events.CACHE_INVALIDATION:
		default:
			return nil
		}

		if event.UserID == nil {
			return nil
		}

		a.Repositories.Game.ClearUserGamesCache(context.Background(), *event.UserID)
		return nil
	})
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")

	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.EventBus,
		a.Services.Identity,
		a.Services.Catalog,
		a.Services.Image,
		a.Services.Scheduler,
		a.Controllers.Auth,
		a.Controllers.Game,
		a.Controllers.Share,
		a.Repositories.User,
		a.Repositories.Game,
		a.Repositories.Share,
		a.Repositories.Image,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
