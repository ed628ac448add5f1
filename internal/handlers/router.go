package handlers

import (
	"resona/internal/app"
	"resona/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	api := router.Group("/api")
	api.Use(app.Middleware.TraceID())

	HealthHandler(api, app.Config)
	NewAuthHandler(*app, api).Register()
	NewUserHandler(*app, api).Register()
	NewHistoryHandler(*app, api).Register()
	NewStatsHandler(*app, api).Register()
	NewCatalogHandler(*app, api).Register()
	NewDiscoveryHandler(*app, api).Register()

	return nil
}
