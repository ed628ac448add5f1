package handlers

import (
	"errors"

	"resona/internal/app"
	statsController "resona/internal/controllers/stats"
	"resona/internal/handlers/middleware"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	Handler
	statsController statsController.StatsControllerInterface
	sessionService  *services.SessionService
}

func NewStatsHandler(app app.App, router fiber.Router) *StatsHandler {
	log := logger.New("handlers").File("stats_handler")
	return &StatsHandler{
		statsController: app.Controllers.Stats,
		sessionService:  app.Services.Session,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *StatsHandler) Register() {
	stats := h.router.Group("/stats", h.middleware.RequireSession(h.sessionService))
	stats.Get("/listening-minutes", h.getListeningMinutes)
	stats.Get("/top-genres", h.getTopGenres)
}

func (h *StatsHandler) getListeningMinutes(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	listening, err := h.statsController.ListeningTime(c.UserContext(), user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get listening time",
		})
	}

	return c.JSON(listening)
}

func (h *StatsHandler) getTopGenres(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	genres, err := h.statsController.TopGenres(c.UserContext(), user, middleware.GetAccessToken(c))
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Spotify credential rejected",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get top genres",
		})
	}

	return c.JSON(fiber.Map{
		"genres": genres,
	})
}
