package services

import (
	"questlog/config"
	"questlog/internal/database"
	"questlog/internal/repositories"
)

type Service struct {
	Identity  *IdentityService
	Catalog   *CatalogService
	Image     *ImageService
	Scheduler *SchedulerService
}

func New(db database.DB, config config.Config, repos repositories.Repository) (Service, error) {
	identityService, err := NewIdentityService(config)
	if err != nil {
		return Service{}, err
	}

	catalogService := NewCatalogService(config, db)
	imageService := NewImageService(repos.Image)
	schedulerService := NewSchedulerService()

	return Service{
		Identity:  identityService,
		Catalog:   catalogService,
		Image:     imageService,
		Scheduler: schedulerService,
	}, nil
}
