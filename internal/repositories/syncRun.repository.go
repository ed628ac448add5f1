package repositories

import (
	"context"

	"resona/internal/database"
	. "resona/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SyncRunRepository interface {
	Create(ctx context.Context, tx *gorm.DB, run *SyncRun) error
	DeleteAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type syncRunRepository struct {
	db  database.DB
	log logger.Logger
}

func NewSyncRunRepository(db database.DB) SyncRunRepository {
	return &syncRunRepository{
		db:  db,
		log: logger.New("syncRunRepository"),
	}
}

func (r *syncRunRepository) Create(ctx context.Context, tx *gorm.DB, run *SyncRun) error {
	log := r.log.Function("Create")

	if err := gorm.G[SyncRun](tx).Create(ctx, run); err != nil {
		return log.Err("failed to create sync run", err, "userID", run.UserID)
	}

	return nil
}

func (r *syncRunRepository) DeleteAllForUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) error {
	log := r.log.Function("DeleteAllForUser")

	if _, err := gorm.G[SyncRun](tx).
		Where("user_id = ?", userID).
		Delete(ctx); err != nil {
		return log.Err("failed to delete sync runs", err, "userID", userID)
	}

	return nil
}
