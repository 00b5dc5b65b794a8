package handlers

import (
	"questlog/internal/app"
	"questlog/internal/handlers/middleware"
	"questlog/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	return &UserHandler{
		Handler: Handler{
			log:        logger.New("handlers").File("user_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/users")

	protected := users.Group("/", h.middleware.RequireAuth())
	protected.Get("/me", h.getCurrentUser)
}

// getCurrentUser returns information about the currently authenticated user
func (h *UserHandler) getCurrentUser(c *fiber.Ctx) error {
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
