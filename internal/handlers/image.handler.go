package handlers

import (
	"questlog/internal/app"
	"questlog/internal/handlers/middleware"
	"questlog/internal/services"
	"questlog/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type ImageHandler struct {
	Handler
	imageService *services.ImageService
}

func NewImageHandler(app app.App, router fiber.Router) *ImageHandler {
	return &ImageHandler{
		imageService: app.Services.Image,
		Handler: Handler{
			log:        logger.New("handlers").File("image_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ImageHandler) Register() {
	images := h.router.Group("/images")

	// Retrieval is public: shared collection views render covers without a
	// session, and the key is itself unguessable.
	images.Get("/:key", h.getImage)

	images.Post("", h.middleware.RequireAuth(), h.uploadImage)
	images.Delete("/:key", h.middleware.RequireAuth(), h.deleteImage)
}

func (h *ImageHandler) getImage(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("image_handler").Function("getImage")

	image, err := h.imageService.Retrieve(c.UserContext(), c.Params("key"))
	if err != nil {
		if statusFromError(err) == fiber.StatusInternalServerError {
			_ = log.Err("Failed to retrieve image", err)
		}
		return errorResponse(c, err, "Failed to retrieve image")
	}

	c.Set(fiber.HeaderContentType, image.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(image.Data)
}

func (h *ImageHandler) uploadImage(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("image_handler").Function("uploadImage")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	key, err := h.imageService.Store(c.UserContext(), user.ID, c.Get(fiber.HeaderContentType), c.Body())
	if err != nil {
		if statusFromError(err) == fiber.StatusInternalServerError {
			_ = log.Err("Failed to store image", err, "userID", user.ID)
		}
		return errorResponse(c, err, "Failed to store image")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"key": key,
	})
}

func (h *ImageHandler) deleteImage(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("image_handler").Function("deleteImage")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	key := c.Params("key")

	// Only the uploader may delete a blob; a foreign key reads as missing.
	image, err := h.imageService.Retrieve(c.UserContext(), key)
	if err == nil && image.UserID != user.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	}

	if err := h.imageService.Delete(c.UserContext(), key); err != nil {
		_ = log.Err("Failed to delete image", err, "userID", user.ID)
		return errorResponse(c, err, "Failed to delete image")
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
