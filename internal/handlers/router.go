package handlers

import (
	"errors"

	"questlog/internal/apperrors"
	"questlog/internal/app"
	"questlog/internal/handlers/middleware"
	"questlog/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) error {
	api := router.Group("/api")

	HealthHandler(api, app.Config)
	NewAuthHandler(*app, api).Register()
	NewUserHandler(*app, api).Register()
	NewGameHandler(*app, api).Register()
	NewShareHandler(*app, api).Register()
	NewCatalogHandler(*app, api).Register()
	NewImageHandler(*app, api).Register()
	NewAdminHandler(*app, api).Register()

	return nil
}

// statusFromError maps the error taxonomy to HTTP status categories. Anything
// outside the taxonomy is an unexpected failure.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// errorResponse sends the mapped status with a short human-readable message.
// Validation messages are user-actionable and pass through; everything else
// gets the supplied generic message so raw upstream errors never leak.
func errorResponse(c *fiber.Ctx, err error, generic string) error {
	status := statusFromError(err)

	message := generic
	switch status {
	case fiber.StatusBadRequest:
		message = err.Error()
	case fiber.StatusNotFound:
		message = "Not found"
	case fiber.StatusUnauthorized:
		message = "Authentication required"
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
