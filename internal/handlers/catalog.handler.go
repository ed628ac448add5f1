package handlers

import (
	"errors"

	"resona/internal/app"
	catalogController "resona/internal/controllers/catalog"
	"resona/internal/handlers/middleware"
	"resona/internal/models"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Handler
	catalogController catalogController.CatalogControllerInterface
	sessionService    *services.SessionService
}

func NewCatalogHandler(app app.App, router fiber.Router) *CatalogHandler {
	log := logger.New("handlers").File("catalog_handler")
	return &CatalogHandler{
		catalogController: app.Controllers.Catalog,
		sessionService:    app.Services.Session,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CatalogHandler) Register() {
	catalog := h.router.Group("/catalog", h.middleware.RequireSession(h.sessionService))
	catalog.Get("/top-artists", h.getTopArtists)
	catalog.Get("/top-tracks", h.getTopTracks)
}

func (h *CatalogHandler) getTopArtists(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	timeRange := models.TimeRange(c.Query("time_range", string(models.TimeRangeMedium)))

	artists, err := h.catalogController.TopArtists(
		c.UserContext(),
		middleware.GetAccessToken(c),
		timeRange,
	)
	if err != nil {
		return h.catalogError(c, err, "Failed to get top artists")
	}

	return c.JSON(fiber.Map{
		"artists": artists,
	})
}

func (h *CatalogHandler) getTopTracks(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	timeRange := models.TimeRange(c.Query("time_range", string(models.TimeRangeMedium)))

	tracks, err := h.catalogController.TopTracks(
		c.UserContext(),
		middleware.GetAccessToken(c),
		timeRange,
	)
	if err != nil {
		return h.catalogError(c, err, "Failed to get top tracks")
	}

	return c.JSON(fiber.Map{
		"tracks": tracks,
	})
}

func (h *CatalogHandler) catalogError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, catalogController.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "time_range must be one of short_term, medium_term, long_term",
		})
	case errors.Is(err, services.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Spotify credential rejected",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
		})
	}
}
