package catalogController

import (
	"context"
	"errors"

	"resona/config"
	"resona/internal/database"
	. "resona/internal/models"
	"resona/internal/repositories"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const defaultTopLimit = 20

// ErrValidation signals a request parameter outside its enumerated set,
// rejected before any upstream call.
var ErrValidation = errors.New("validation failed")

type topItemSource interface {
	GetTopArtists(ctx context.Context, accessToken string, limit int, timeRange TimeRange) ([]services.SpotifyArtist, error)
	GetTopTracks(ctx context.Context, accessToken string, limit int, timeRange TimeRange) ([]services.SpotifyTrack, error)
}

// CatalogController serves the passthrough "top" reads. These are live
// upstream views; nothing is stored.
type CatalogController struct {
	spotify topItemSource
	db      database.DB
	Config  config.Config
	log     logger.Logger
}

type CatalogControllerInterface interface {
	TopArtists(ctx context.Context, accessToken string, timeRange TimeRange) ([]services.SpotifyArtist, error)
	TopTracks(ctx context.Context, accessToken string, timeRange TimeRange) ([]services.SpotifyTrack, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) CatalogControllerInterface {
	return &CatalogController{
		spotify: services.Spotify,
		db:      db,
		Config:  config,
		log:     logger.New("catalogController"),
	}
}

func (cc *CatalogController) TopArtists(
	ctx context.Context,
	accessToken string,
	timeRange TimeRange,
) ([]services.SpotifyArtist, error) {
	if !timeRange.Valid() {
		return nil, ErrValidation
	}

	return cc.spotify.GetTopArtists(ctx, accessToken, defaultTopLimit, timeRange)
}

func (cc *CatalogController) TopTracks(
	ctx context.Context,
	accessToken string,
	timeRange TimeRange,
) ([]services.SpotifyTrack, error) {
	if !timeRange.Valid() {
		return nil, ErrValidation
	}

	return cc.spotify.GetTopTracks(ctx, accessToken, defaultTopLimit, timeRange)
}
