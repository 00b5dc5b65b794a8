package jobs

import (
	"context"
	"time"

	"questlog/internal/repositories"
	"questlog/internal/services"
	"questlog/pkg/logger"
)

// Blobs younger than this are kept even when unreferenced, so an upload is
// not reaped before its game entry lands.
const ORPHAN_IMAGE_MIN_AGE = 24 * time.Hour

// ImageCleanupJob removes stored cover images no game entry references.
type ImageCleanupJob struct {
	imageRepo repositories.ImageRepository
	log       logger.Logger
	schedule  services.Schedule
}

func NewImageCleanupJob(
	imageRepo repositories.ImageRepository,
	schedule services.Schedule,
) *ImageCleanupJob {
	return &ImageCleanupJob{
		imageRepo: imageRepo,
		log:       logger.New("imageCleanupJob"),
		schedule:  schedule,
	}
}

func (j *ImageCleanupJob) Name() string {
	return "OrphanedImageCleanup"
}

func (j *ImageCleanupJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	log.Info("Starting orphaned image cleanup")

	deleted, err := j.imageRepo.DeleteOrphaned(ctx, ORPHAN_IMAGE_MIN_AGE)
	if err != nil {
		return log.Err("orphaned image cleanup failed", err)
	}

	log.Info("Orphaned image cleanup completed", "deleted", deleted)
	return nil
}

func (j *ImageCleanupJob) Schedule() services.Schedule {
	return j.schedule
}
