package app

import (
	"resona/config"
	"resona/internal/controllers"
	"resona/internal/database"
	"resona/internal/handlers/middleware"
	"resona/internal/repositories"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Config      config.Config
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	repos := repositories.New(db)
	services := services.New(db, config)
	middleware := middleware.New(db, config, repos)
	controllers := controllers.New(services, repos, config, db)

	app := &App{
		Database:    db,
		Middleware:  middleware,
		Config:      config,
		Services:    services,
		Repos:       repos,
		Controllers: controllers,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")

	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Services.Spotify,
		a.Services.Session,
		a.Services.Transaction,
		a.Repos.User,
		a.Repos.PlayEvent,
		a.Repos.SyncRun,
		a.Controllers.Auth,
		a.Controllers.Catalog,
		a.Controllers.Ingestion,
		a.Controllers.Stats,
		a.Controllers.Discovery,
		a.Controllers.User,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
