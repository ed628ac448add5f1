package controllers

import (
	"resona/config"
	"resona/internal/database"
	"resona/internal/repositories"
	"resona/internal/services"

	authController "resona/internal/controllers/auth"
	catalogController "resona/internal/controllers/catalog"
	discoveryController "resona/internal/controllers/discovery"
	ingestionController "resona/internal/controllers/ingestion"
	statsController "resona/internal/controllers/stats"
	userController "resona/internal/controllers/users"
)

type Controllers struct {
	Auth      authController.AuthControllerInterface
	Catalog   catalogController.CatalogControllerInterface
	Ingestion ingestionController.IngestionControllerInterface
	Stats     statsController.StatsControllerInterface
	Discovery discoveryController.DiscoveryControllerInterface
	User      userController.UserControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Auth:      authController.New(services, repos, config, db),
		Catalog:   catalogController.New(repos, services, config, db),
		Ingestion: ingestionController.New(repos, services, config, db),
		Stats:     statsController.New(repos, services, config, db),
		Discovery: discoveryController.New(repos, services, config, db),
		User:      userController.New(repos, services, config, db),
	}
}
