package handlers

import (
	"errors"

	"resona/internal/app"
	ingestionController "resona/internal/controllers/ingestion"
	"resona/internal/handlers/middleware"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type HistoryHandler struct {
	Handler
	ingestionController ingestionController.IngestionControllerInterface
	sessionService      *services.SessionService
}

func NewHistoryHandler(app app.App, router fiber.Router) *HistoryHandler {
	log := logger.New("handlers").File("history_handler")
	return &HistoryHandler{
		ingestionController: app.Controllers.Ingestion,
		sessionService:      app.Services.Session,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *HistoryHandler) Register() {
	history := h.router.Group("/history", h.middleware.RequireSession(h.sessionService))
	history.Get("/recently-played", h.getRecentlyPlayed)
}

// getRecentlyPlayed is pull-on-read: the request first syncs the upstream
// recently-played window into the store, then serves the freshest ten rows.
func (h *HistoryHandler) getRecentlyPlayed(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	result, err := h.ingestionController.IngestRecentPlays(
		c.UserContext(),
		user,
		middleware.GetAccessToken(c),
	)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Spotify credential rejected",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to sync recently played",
		})
	}

	return c.JSON(result)
}
