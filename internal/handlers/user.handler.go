package handlers

import (
	"errors"

	"resona/internal/app"
	userController "resona/internal/controllers/users"
	"resona/internal/handlers/middleware"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
	userController userController.UserControllerInterface
	sessionService *services.SessionService
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	log := logger.New("handlers").File("user_handler")
	return &UserHandler{
		userController: app.Controllers.User,
		sessionService: app.Services.Session,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/users", h.middleware.RequireSession(h.sessionService))
	users.Get("/me", h.getProfile)
	users.Delete("/me/data", h.deleteMyData)
}

func (h *UserHandler) getProfile(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	profile, err := h.userController.GetProfile(c.UserContext(), user.ID)
	if err != nil {
		if errors.Is(err, userController.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get profile",
		})
	}

	return c.JSON(fiber.Map{
		"user": profile,
	})
}

func (h *UserHandler) deleteMyData(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	if err := h.userController.DeleteMyData(c.UserContext(), user, middleware.GetSessionID(c)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete user data",
		})
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
