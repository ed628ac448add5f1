package handlers

import (
	"errors"

	"resona/internal/app"
	discoveryController "resona/internal/controllers/discovery"
	"resona/internal/handlers/middleware"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type DiscoveryHandler struct {
	Handler
	discoveryController discoveryController.DiscoveryControllerInterface
	sessionService      *services.SessionService
}

func NewDiscoveryHandler(app app.App, router fiber.Router) *DiscoveryHandler {
	log := logger.New("handlers").File("discovery_handler")
	return &DiscoveryHandler{
		discoveryController: app.Controllers.Discovery,
		sessionService:      app.Services.Session,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *DiscoveryHandler) Register() {
	discovery := h.router.Group("/discovery", h.middleware.RequireSession(h.sessionService))
	discovery.Get("/genre-recommendation", h.getGenreRecommendation)
}

func (h *DiscoveryHandler) getGenreRecommendation(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	recommendation, err := h.discoveryController.RecommendGenre(
		c.UserContext(),
		user,
		middleware.GetAccessToken(c),
	)
	if err != nil {
		switch {
		case errors.Is(err, discoveryController.ErrNoData):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Not enough listening data to build a recommendation",
			})
		case errors.Is(err, services.ErrInvalidToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Spotify credential rejected",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to build recommendation",
			})
		}
	}

	return c.JSON(recommendation)
}
