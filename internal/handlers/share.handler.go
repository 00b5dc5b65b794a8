package handlers

import (
	"questlog/internal/app"
	shareController "questlog/internal/controllers/shares"
	"questlog/internal/handlers/middleware"
	"questlog/internal/models"
	"questlog/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type ShareHandler struct {
	Handler
	shareController shareController.ShareControllerInterface
}

func NewShareHandler(app app.App, router fiber.Router) *ShareHandler {
	return &ShareHandler{
		shareController: app.Controllers.Share,
		Handler: Handler{
			log:        logger.New("handlers").File("share_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ShareHandler) Register() {
	shares := h.router.Group("/shares")

	shares.Get("", h.middleware.RequireAuth(), h.getShares)
	shares.Post("", h.middleware.RequireAuth(), h.createShare)
	shares.Delete("/:token", h.middleware.RequireAuth(), h.revokeShare)

	// Public resolution: the token is the only credential.
	shares.Get("/:token", h.resolveShare)
}

func (h *ShareHandler) getShares(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("share_handler").Function("getShares")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	shares, err := h.shareController.GetShares(c.UserContext(), user)
	if err != nil {
		_ = log.Err("Failed to retrieve shares", err, "userID", user.ID)
		return errorResponse(c, err, "Failed to retrieve shares")
	}

	return c.JSON(shares)
}

func (h *ShareHandler) createShare(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("share_handler").Function("createShare")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req models.ShareCreateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	share, err := h.shareController.CreateShare(c.UserContext(), user, &req)
	if err != nil {
		if statusFromError(err) == fiber.StatusInternalServerError {
			_ = log.Err("Failed to create share", err, "userID", user.ID)
		}
		return errorResponse(c, err, "Failed to create share")
	}

	return c.Status(fiber.StatusCreated).JSON(share)
}

func (h *ShareHandler) revokeShare(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("share_handler").Function("revokeShare")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	if err := h.shareController.RevokeShare(c.UserContext(), user, c.Params("token")); err != nil {
		if statusFromError(err) == fiber.StatusInternalServerError {
			_ = log.Err("Failed to revoke share", err, "userID", user.ID)
		}
		return errorResponse(c, err, "Failed to revoke share")
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

func (h *ShareHandler) resolveShare(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("share_handler").Function("resolveShare")

	collection, err := h.shareController.ResolveShare(c.UserContext(), c.Params("token"))
	if err != nil {
		if statusFromError(err) == fiber.StatusInternalServerError {
			_ = log.Err("Failed to resolve share", err)
		}
		return errorResponse(c, err, "Failed to resolve share")
	}

	return c.JSON(collection)
}
