package handlers

import (
	"questlog/internal/app"
	gameController "questlog/internal/controllers/games"
	"questlog/internal/handlers/middleware"
	"questlog/internal/models"
	"questlog/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type GameHandler struct {
	Handler
	gameController gameController.GameControllerInterface
}

func NewGameHandler(app app.App, router fiber.Router) *GameHandler {
	return &GameHandler{
		gameController: app.Controllers.Game,
		Handler: Handler{
			log:        logger.New("handlers").File("game_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *GameHandler) Register() {
	games := h.router.Group("/games", h.middleware.RequireAuth())

	games.Get("", h.getGames)
	games.Post("", h.createGame)
	games.Get("/:id", h.getGame)
	games.Patch("/:id", h.updateGame)
	games.Delete("/:id", h.deleteGame)
}

func (h *GameHandler) getGames(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("game_handler").Function("getGames")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	games, err := h.gameController.GetGames(c.UserContext(), user)
	if err != nil {
		_ = log.Err("Failed to retrieve games", err, "userID", user.ID)
		return errorResponse(c, err, "Failed to retrieve games")
	}

	return c.JSON(games)
}

func (h *GameHandler) getGame(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("game_handler").Function("getGame")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	gameID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	}

	game, err := h.gameController.GetGame(c.UserContext(), user, gameID)
	if err != nil {
		if statusFromError(err) == fiber.StatusInternalServerError {
			_ = log.Err("Failed to retrieve game", err, "userID", user.ID, "gameID", gameID)
		}
		return errorResponse(c, err, "Failed to retrieve game")
	}

	return c.JSON(game)
}

func (h *GameHandler) createGame(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("game_handler").Function("createGame")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req models.GameCreateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	game, err := h.gameController.CreateGame(c.UserContext(), user, &req)
	if err != nil {
		if statusFromError(err) == fiber.StatusInternalServerError {
			_ = log.Err("Failed to create game", err, "userID", user.ID)
		}
		return errorResponse(c, err, "Failed to create game")
	}

	return c.Status(fiber.StatusCreated).JSON(game)
}

func (h *GameHandler) updateGame(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("game_handler").Function("updateGame")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	gameID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	}

	var req models.GameUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err, "gameID", gameID)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	game, err := h.gameController.UpdateGame(c.UserContext(), user, gameID, &req)
	if err != nil {
		if statusFromError(err) == fiber.StatusInternalServerError {
			_ = log.Err("Failed to update game", err, "userID", user.ID, "gameID", gameID)
		}
		return errorResponse(c, err, "Failed to update game")
	}

	return c.JSON(game)
}

func (h *GameHandler) deleteGame(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("game_handler").Function("deleteGame")

	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	// Deleting an unparseable id behaves like deleting a missing one.
	gameID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNoContent).Send(nil)
	}

	if err := h.gameController.DeleteGame(c.UserContext(), user, gameID); err != nil {
		_ = log.Err("Failed to delete game", err, "userID", user.ID, "gameID", gameID)
		return errorResponse(c, err, "Failed to delete game")
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
