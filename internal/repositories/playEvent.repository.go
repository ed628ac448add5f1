package repositories

import (
	"context"
	"errors"
	"time"

	"resona/internal/database"
	. "resona/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	RECENT_PLAYS_CACHE_PREFIX = "recent_plays"
	RECENT_PLAYS_CACHE_EXPIRY = 24 * time.Hour

	uniqueViolationCode = "23505"
)

// ErrDuplicatePlayEvent marks an insert that collided with the
// (user_id, played_at) uniqueness constraint. Ingestion treats it as
// "already ingested", not as a batch failure.
var ErrDuplicatePlayEvent = errors.New("play event already exists")

type PlayEventRepository interface {
	ExistsAt(ctx context.Context, tx *gorm.DB, userID uuid.UUID, playedAt time.Time) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, event *PlayEvent) error
	GetRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*PlayEvent, error)
	CacheRecent(ctx context.Context, userID uuid.UUID, events []*PlayEvent)
	DistinctArtists(ctx context.Context, userID uuid.UUID) ([]string, error)
	SumDurationSeconds(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteAllForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	ClearRecentCache(ctx context.Context, userID uuid.UUID)
}

type playEventRepository struct {
	db    database.DB
	cache database.CacheClient
	log   logger.Logger
}

func NewPlayEventRepository(db database.DB) PlayEventRepository {
	return &playEventRepository{
		db:    db,
		cache: db.Cache.User,
		log:   logger.New("playEventRepository"),
	}
}

func (r *playEventRepository) ExistsAt(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	playedAt time.Time,
) (bool, error) {
	log := r.log.Function("ExistsAt")

	_, err := gorm.G[PlayEvent](tx).
		Where("user_id = ? AND played_at = ?", userID, playedAt).
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, log.Err("failed to check play event existence", err, "userID", userID)
	}

	return true, nil
}

func (r *playEventRepository) Create(ctx context.Context, tx *gorm.DB, event *PlayEvent) error {
	log := r.log.Function("Create")

	err := gorm.G[PlayEvent](tx).Create(ctx, event)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePlayEvent
		}
		return log.Err(
			"failed to create play event",
			err,
			"userID", event.UserID,
			"playedAt", event.PlayedAt,
		)
	}

	r.ClearRecentCache(ctx, event.UserID)

	return nil
}

func (r *playEventRepository) GetRecent(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	limit int,
) ([]*PlayEvent, error) {
	log := r.log.Function("GetRecent")

	var cached []*PlayEvent
	found, err := database.NewCacheBuilder(r.cache, userID.String()).
		WithContext(ctx).
		WithHash(RECENT_PLAYS_CACHE_PREFIX).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get recent plays from cache", "userID", userID, "error", err)
	}

	if found {
		return cached, nil
	}

	events, err := gorm.G[*PlayEvent](tx).
		Where(PlayEvent{UserID: userID}).
		Order("played_at DESC").
		Limit(limit).
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get recent plays", err, "userID", userID)
	}

	return events, nil
}

// CacheRecent stores a recent-plays view. Callers reading inside an open
// transaction must wait until it commits before caching, so a rollback never
// leaves phantom rows cached.
func (r *playEventRepository) CacheRecent(
	ctx context.Context,
	userID uuid.UUID,
	events []*PlayEvent,
) {
	log := r.log.Function("CacheRecent")

	if err := database.NewCacheBuilder(r.cache, userID.String()).
		WithContext(ctx).
		WithHash(RECENT_PLAYS_CACHE_PREFIX).
		WithStruct(events).
		WithTTL(RECENT_PLAYS_CACHE_EXPIRY).
		Set(); err != nil {
		log.Warn("failed to set recent plays in cache", "userID", userID, "error", err)
	}
}

func (r *playEventRepository) DistinctArtists(
	ctx context.Context,
	userID uuid.UUID,
) ([]string, error) {
	log := r.log.Function("DistinctArtists")

	var artists []string
	if err := r.db.SQLWithContext(ctx).
		Model(&PlayEvent{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("artist", &artists).Error; err != nil {
		return nil, log.Err("failed to get distinct artists", err, "userID", userID)
	}

	return artists, nil
}

func (r *playEventRepository) SumDurationSeconds(
	ctx context.Context,
	userID uuid.UUID,
) (int64, error) {
	log := r.log.Function("SumDurationSeconds")

	var total int64
	if err := r.db.SQLWithContext(ctx).
		Model(&PlayEvent{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(duration_seconds), 0)").
		Scan(&total).Error; err != nil {
		return 0, log.Err("failed to sum play durations", err, "userID", userID)
	}

	return total, nil
}

func (r *playEventRepository) DeleteAllForUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) error {
	log := r.log.Function("DeleteAllForUser")

	if _, err := gorm.G[PlayEvent](tx).
		Where("user_id = ?", userID).
		Delete(ctx); err != nil {
		return log.Err("failed to delete play events", err, "userID", userID)
	}

	r.ClearRecentCache(ctx, userID)

	return nil
}

func (r *playEventRepository) ClearRecentCache(ctx context.Context, userID uuid.UUID) {
	err := database.NewCacheBuilder(r.cache, userID.String()).
		WithContext(ctx).
		WithHash(RECENT_PLAYS_CACHE_PREFIX).
		Delete()
	if err != nil {
		r.log.Warn("failed to clear recent plays cache", "userID", userID, "error", err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
