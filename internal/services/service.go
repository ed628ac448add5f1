package services

import (
	"resona/config"
	"resona/internal/database"
)

type Service struct {
	Spotify     *SpotifyService
	Session     *SessionService
	Transaction *TransactionService
}

func New(db database.DB, config config.Config) Service {
	spotifyService := NewSpotifyService(config)
	sessionService := NewSessionService(db, spotifyService, config)
	transactionService := NewTransactionService(db)

	return Service{
		Spotify:     spotifyService,
		Session:     sessionService,
		Transaction: transactionService,
	}
}
