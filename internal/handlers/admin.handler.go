package handlers

import (
	"questlog/internal/app"
	"questlog/internal/jobs"
	"questlog/internal/repositories"
	"questlog/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Handler
	imageRepo repositories.ImageRepository
}

func NewAdminHandler(app app.App, router fiber.Router) *AdminHandler {
	return &AdminHandler{
		imageRepo: app.Repositories.Image,
		Handler: Handler{
			log:        logger.New("handlers").File("admin_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AdminHandler) Register() {
	admin := h.router.Group("/admin", h.middleware.RequireAuth(), h.middleware.RequireAdmin())

	// Manual trigger for the scheduled cleanup, for operators who don't want
	// to wait for the daily run.
	admin.Post("/images/cleanup", h.cleanupImages)
}

func (h *AdminHandler) cleanupImages(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("admin_handler").Function("cleanupImages")

	deleted, err := h.imageRepo.DeleteOrphaned(c.UserContext(), jobs.ORPHAN_IMAGE_MIN_AGE)
	if err != nil {
		_ = log.Err("Manual image cleanup failed", err)
		return errorResponse(c, err, "Image cleanup failed")
	}

	return c.JSON(fiber.Map{
		"deleted": deleted,
	})
}
