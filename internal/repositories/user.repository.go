package repositories

import (
	"context"
	"errors"
	"time"

	"resona/internal/database"
	. "resona/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	USER_CACHE_EXPIRY            = 7 * 24 * time.Hour
	USER_CACHE_PREFIX            = "user:"
	SPOTIFY_MAPPING_CACHE_PREFIX = "spotify:"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetBySpotifyID(ctx context.Context, spotifyUserID string) (*User, error)
	FindOrCreateSpotifyUser(ctx context.Context, profile SpotifyProfile) (*User, error)
	Delete(ctx context.Context, tx *gorm.DB, user *User) error
	ClearUserCache(ctx context.Context, user *User) error
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if found := r.getCacheByID(ctx, id.String(), &user); found {
		return &user, nil
	}

	if err := r.db.SQLWithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get user by id", err, "id", id)
	}

	if err := r.addUserToCache(ctx, &user); err != nil {
		log.Warn("failed to add user to cache", "userID", id, "error", err)
	}

	return &user, nil
}

func (r *userRepository) GetBySpotifyID(ctx context.Context, spotifyUserID string) (*User, error) {
	log := r.log.Function("GetBySpotifyID")

	// Try the Spotify ID -> UUID mapping first; the user itself lives under
	// the primary cache key
	var userUUID string
	mappingKey := SPOTIFY_MAPPING_CACHE_PREFIX + spotifyUserID
	found, err := database.NewCacheBuilder(r.db.Cache.User, mappingKey).
		WithContext(ctx).
		Get(&userUUID)
	if err == nil && found {
		var cachedUser User
		if ok := r.getCacheByID(ctx, userUUID, &cachedUser); ok {
			return &cachedUser, nil
		}
	}

	var user User
	if err := r.db.SQLWithContext(ctx).First(&user, "spotify_user_id = ?", spotifyUserID).Error; err != nil {
		return nil, log.Err("failed to get user by Spotify ID", err, "spotifyUserID", spotifyUserID)
	}

	if err := r.addUserToCache(ctx, &user); err != nil {
		log.Warn("failed to add user to cache", "userID", user.ID, "error", err)
	}

	if err := database.NewCacheBuilder(r.db.Cache.User, mappingKey).
		WithStruct(user.ID.String()).
		WithTTL(USER_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		log.Warn("failed to cache Spotify mapping", "spotifyUserID", spotifyUserID, "error", err)
	}

	return &user, nil
}

// FindOrCreateSpotifyUser upserts the user row from the upstream profile.
// Existing rows are updated with a column map holding only the fields that
// actually differ; an unchanged profile performs no UPDATE beyond the login
// timestamp.
func (r *userRepository) FindOrCreateSpotifyUser(
	ctx context.Context,
	profile SpotifyProfile,
) (*User, error) {
	log := r.log.Function("FindOrCreateSpotifyUser")

	existing, err := r.GetBySpotifyID(ctx, profile.ID)
	if err == nil {
		updates := existing.ProfileChanges(profile)
		now := time.Now()
		updates["last_login_at"] = now

		if err := r.db.SQLWithContext(ctx).
			Model(existing).
			Updates(updates).Error; err != nil {
			return nil, log.Err("failed to sync user profile", err, "userID", existing.ID)
		}

		if err := r.ClearUserCache(ctx, existing); err != nil {
			log.Warn("failed to clear user cache after sync", "userID", existing.ID, "error", err)
		}

		return existing, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("lookup by Spotify ID failed, attempting create", "spotifyUserID", profile.ID, "error", err)
	}

	now := time.Now()
	user := &User{
		SpotifyUserID: profile.ID,
		DisplayName:   profile.DisplayName,
		AvatarURL:     profile.AvatarURL,
		Product:       profile.Product,
		LastLoginAt:   &now,
	}

	if err := r.db.SQLWithContext(ctx).Create(user).Error; err != nil {
		return nil, log.Err("failed to create user", err, "spotifyUserID", profile.ID)
	}

	if err := r.addUserToCache(ctx, user); err != nil {
		log.Warn("failed to add user to cache", "userID", user.ID, "error", err)
	}

	log.Info("user created from Spotify profile", "userID", user.ID, "spotifyUserID", profile.ID)
	return user, nil
}

// Delete removes the user row as part of a data-erasure transaction. The
// caller owns the transaction; play events must be deleted in the same one.
func (r *userRepository) Delete(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Delete")

	if _, err := gorm.G[User](tx).
		Where("id = ?", user.ID).
		Delete(ctx); err != nil {
		return log.Err("failed to delete user", err, "userID", user.ID)
	}

	return nil
}

func (r *userRepository) ClearUserCache(ctx context.Context, user *User) error {
	log := r.log.Function("ClearUserCache")

	userCacheKey := USER_CACHE_PREFIX + user.ID.String()
	if err := database.NewCacheBuilder(r.db.Cache.User, userCacheKey).WithContext(ctx).Delete(); err != nil {
		log.Warn("failed to clear user cache", "userID", user.ID, "error", err)
	}

	if user.SpotifyUserID != "" {
		mappingKey := SPOTIFY_MAPPING_CACHE_PREFIX + user.SpotifyUserID
		if err := database.NewCacheBuilder(r.db.Cache.User, mappingKey).WithContext(ctx).Delete(); err != nil {
			log.Warn(
				"failed to clear Spotify mapping cache",
				"spotifyUserID", user.SpotifyUserID,
				"error", err,
			)
		}
	}

	return nil
}

func (r *userRepository) getCacheByID(ctx context.Context, userID string, user *User) bool {
	cacheKey := USER_CACHE_PREFIX + userID
	found, err := database.NewCacheBuilder(r.db.Cache.User, cacheKey).WithContext(ctx).Get(user)
	if err != nil {
		r.log.Warn("failed to get user from cache", "userID", userID, "error", err)
		return false
	}

	return found
}

func (r *userRepository) addUserToCache(ctx context.Context, user *User) error {
	cacheKey := USER_CACHE_PREFIX + user.ID.String()
	return database.NewCacheBuilder(r.db.Cache.User, cacheKey).
		WithStruct(user).
		WithTTL(USER_CACHE_EXPIRY).
		WithContext(ctx).
		Set()
}
