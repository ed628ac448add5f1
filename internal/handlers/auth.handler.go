package handlers

import (
	"errors"

	"resona/internal/app"
	authController "resona/internal/controllers/auth"
	"resona/internal/handlers/middleware"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	authController authController.AuthControllerInterface
	sessionService *services.SessionService
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	log := logger.New("handlers").File("auth_handler")
	return &AuthHandler{
		authController: app.Controllers.Auth,
		sessionService: app.Services.Session,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")

	// Public endpoints
	auth.Get("/login-url", h.getLoginURL)
	auth.Get("/callback", h.handleCallback)

	// Protected endpoints
	protected := auth.Group("/", h.middleware.RequireSession(h.sessionService))
	protected.Post("/logout", h.logout)
}

// getLoginURL builds the Spotify consent URL for the OAuth code flow
func (h *AuthHandler) getLoginURL(c *fiber.Ctx) error {
	state := c.Query("state", "default-state")

	url, err := h.authController.LoginURL(state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid state parameter",
		})
	}

	return c.JSON(fiber.Map{
		"url": url,
	})
}

// handleCallback finishes the OAuth code flow and mints a session token
func (h *AuthHandler) handleCallback(c *fiber.Ctx) error {
	log := h.log.Function("handleCallback")

	if upstreamErr := c.Query("error"); upstreamErr != "" {
		log.Info("authorization denied by user", "error", upstreamErr)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization denied",
		})
	}

	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Authorization code is required",
		})
	}

	user, token, err := h.authController.CompleteLogin(c.UserContext(), code)
	if err != nil {
		if errors.Is(err, authController.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization code rejected",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to complete login",
		})
	}

	c.Set("X-Auth-Token", token)
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user.ToProfile(),
	})
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	if err := h.authController.Logout(c.UserContext(), sessionID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log out",
		})
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
