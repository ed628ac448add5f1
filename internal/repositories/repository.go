package repositories

import (
	"resona/internal/database"
)

type Repository struct {
	User      UserRepository
	PlayEvent PlayEventRepository
	SyncRun   SyncRunRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:      NewUserRepository(db),
		PlayEvent: NewPlayEventRepository(db),
		SyncRun:   NewSyncRunRepository(db),
	}
}
