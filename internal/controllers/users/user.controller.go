package userController

import (
	"context"
	"errors"

	"resona/config"
	"resona/internal/database"
	. "resona/internal/models"
	"resona/internal/repositories"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user not found")

type sessionDestroyer interface {
	Destroy(ctx context.Context, sessionID string) error
}

type transactor interface {
	Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error
}

type UserController struct {
	userRepo      repositories.UserRepository
	playEventRepo repositories.PlayEventRepository
	syncRunRepo   repositories.SyncRunRepository
	sessions      sessionDestroyer
	transaction   transactor
	db            database.DB
	Config        config.Config
	log           logger.Logger
}

type UserControllerInterface interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error)
	DeleteMyData(ctx context.Context, user *User, sessionID string) error
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) UserControllerInterface {
	return &UserController{
		userRepo:      repos.User,
		playEventRepo: repos.PlayEvent,
		syncRunRepo:   repos.SyncRun,
		sessions:      services.Session,
		transaction:   services.Transaction,
		db:            db,
		Config:        config,
		log:           logger.New("userController"),
	}
}

// GetProfile serves the stored profile fields synced at login.
func (uc *UserController) GetProfile(
	ctx context.Context,
	userID uuid.UUID,
) (*UserProfile, error) {
	log := uc.log.TraceFromContext(ctx).Function("GetProfile")

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get user", err, "userID", userID)
	}

	profile := user.ToProfile()
	return &profile, nil
}

// DeleteMyData erases the user's play events, sync runs, and user row in a
// single transaction, then clears their caches and destroys the session.
// Nothing is removed if any step inside the transaction fails.
func (uc *UserController) DeleteMyData(
	ctx context.Context,
	user *User,
	sessionID string,
) error {
	log := uc.log.TraceFromContext(ctx).Function("DeleteMyData")

	err := uc.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := uc.playEventRepo.DeleteAllForUser(ctx, tx, user.ID); err != nil {
			return err
		}

		if err := uc.syncRunRepo.DeleteAllForUser(ctx, tx, user.ID); err != nil {
			return err
		}

		return uc.userRepo.Delete(ctx, tx, user)
	})
	if err != nil {
		return log.Err("failed to erase user data", err, "userID", user.ID)
	}

	if err := uc.userRepo.ClearUserCache(ctx, user); err != nil {
		log.Warn("failed to clear user cache after erasure", "userID", user.ID, "error", err)
	}

	if err := uc.sessions.Destroy(ctx, sessionID); err != nil {
		log.Warn("failed to destroy session after erasure", "userID", user.ID, "error", err)
	}

	log.Info("user data erased", "userID", user.ID)
	return nil
}
