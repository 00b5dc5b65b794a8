package handlers

import (
	"questlog/internal/app"
	"questlog/internal/handlers/middleware"
	"questlog/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	return &AuthHandler{
		Handler: Handler{
			log:        logger.New("handlers").File("auth_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")

	// RequireAuth already validated the token and upserted the user row, so
	// the session endpoint only has to echo the resulting profile.
	auth.Post("/session", h.middleware.RequireAuth(), h.createSession)
}

func (h *AuthHandler) createSession(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	return c.JSON(fiber.Map{
		"user": user.ToProfile(),
	})
}
