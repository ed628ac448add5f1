package middleware

import (
	"context"
	"strings"

	"resona/internal/models"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

// AuthContextKey is used to store auth info in context
type AuthContextKey string

const (
	UserKey      AuthContextKey = "user"
	UserKeyFiber string         = "User" // Fiber context key (string)

	SessionIDKeyFiber   string = "SessionID"
	AccessTokenKeyFiber string = "AccessToken"
)

// RequireSession validates the bearer session token, resolves the session
// (refreshing the Spotify credential when needed), and loads the user row.
func (m *Middleware) RequireSession(sessionService *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").TraceFromContext(c.Context()).Function("RequireSession")

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			log.Info("invalid authorization header format")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		token := tokenParts[1]
		if token == "" {
			log.Info("empty token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token required",
			})
		}

		session, err := sessionService.Get(c.UserContext(), token)
		if err != nil {
			log.Info("session validation failed", "error", err.Error())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid session",
			})
		}

		user, err := m.userRepo.GetByID(c.UserContext(), session.UserID)
		if err != nil {
			log.Info("user not found for session", "userID", session.UserID, "error", err.Error())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		c.Locals(UserKeyFiber, user)
		c.Locals(SessionIDKeyFiber, session.ID)
		c.Locals(AccessTokenKeyFiber, session.Token.AccessToken)

		// Add to Go context for services (preserve trace ID from TraceID middleware)
		ctx := context.WithValue(c.UserContext(), UserKey, user)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// GetUser extracts user from Fiber context
func GetUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals(UserKeyFiber).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetSessionID extracts the session ID from Fiber context
func GetSessionID(c *fiber.Ctx) string {
	sessionID, ok := c.Locals(SessionIDKeyFiber).(string)
	if !ok {
		return ""
	}
	return sessionID
}

// GetAccessToken extracts the Spotify access token from Fiber context
func GetAccessToken(c *fiber.Ctx) string {
	token, ok := c.Locals(AccessTokenKeyFiber).(string)
	if !ok {
		return ""
	}
	return token
}
