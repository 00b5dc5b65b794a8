package handlers

import (
	"strconv"

	"questlog/internal/app"
	"questlog/internal/handlers/middleware"
	"questlog/internal/services"
	"questlog/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Handler
	catalogService *services.CatalogService
}

func NewCatalogHandler(app app.App, router fiber.Router) *CatalogHandler {
	return &CatalogHandler{
		catalogService: app.Services.Catalog,
		Handler: Handler{
			log:        logger.New("handlers").File("catalog_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CatalogHandler) Register() {
	catalog := h.router.Group("/catalog", h.middleware.RequireAuth())

	catalog.Get("/search", h.search)
	catalog.Get("/games/:id", h.getGame)
}

func (h *CatalogHandler) search(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("catalog_handler").Function("search")

	if middleware.GetUser(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	query := c.Query("q")
	page, _ := strconv.Atoi(c.Query("page", "1"))

	results, err := h.catalogService.Search(c.UserContext(), query, page)
	if err != nil {
		if statusFromError(err) == fiber.StatusInternalServerError {
			_ = log.Err("Catalog search failed", err, "query", query)
		}
		return errorResponse(c, err, "Catalog search failed")
	}

	return c.JSON(results)
}

func (h *CatalogHandler) getGame(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("catalog_handler").Function("getGame")

	if middleware.GetUser(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	catalogID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	}

	game, err := h.catalogService.GetGame(c.UserContext(), catalogID)
	if err != nil {
		if statusFromError(err) == fiber.StatusInternalServerError {
			_ = log.Err("Catalog lookup failed", err, "catalogID", catalogID)
		}
		return errorResponse(c, err, "Catalog lookup failed")
	}

	return c.JSON(game)
}
