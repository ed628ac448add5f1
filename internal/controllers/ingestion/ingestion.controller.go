package ingestionController

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"resona/config"
	"resona/internal/database"
	. "resona/internal/models"
	"resona/internal/repositories"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	fetchLimit  = 50
	recentLimit = 10
)

// recentlyPlayedSource is the slice of the Spotify adapter ingestion needs.
type recentlyPlayedSource interface {
	GetRecentlyPlayed(ctx context.Context, accessToken string, limit int) ([]services.SpotifyPlayItem, error)
}

type transactor interface {
	Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error
}

type IngestionController struct {
	playEventRepo repositories.PlayEventRepository
	syncRunRepo   repositories.SyncRunRepository
	spotify       recentlyPlayedSource
	transaction   transactor
	db            database.DB
	Config        config.Config
	log           logger.Logger
}

type IngestionControllerInterface interface {
	IngestRecentPlays(ctx context.Context, user *User, accessToken string) (*IngestResult, error)
}

// IngestResult reports what a sync run did and the freshest slice of history
// as it now exists in the store.
type IngestResult struct {
	Fetched    int           `json:"fetched"`
	Inserted   int           `json:"inserted"`
	Duplicates int           `json:"duplicates"`
	Skipped    int           `json:"skipped"`
	Recent     []RecentTrack `json:"recent"`
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) IngestionControllerInterface {
	return &IngestionController{
		playEventRepo: repos.PlayEvent,
		syncRunRepo:   repos.SyncRun,
		spotify:       services.Spotify,
		transaction:   services.Transaction,
		db:            db,
		Config:        config,
		log:           logger.New("ingestionController"),
	}
}

// IngestRecentPlays pulls the user's recently played window from Spotify and
// merges it into the play history. Timestamps are truncated to whole seconds
// before insert so that the same playback reported with differing
// sub-second precision lands on one row. The whole batch commits or rolls
// back as a unit; an event already present is counted as a duplicate, never
// an error.
func (ic *IngestionController) IngestRecentPlays(
	ctx context.Context,
	user *User,
	accessToken string,
) (*IngestResult, error) {
	log := ic.log.TraceFromContext(ctx).Function("IngestRecentPlays")

	items, err := ic.spotify.GetRecentlyPlayed(ctx, accessToken, fetchLimit)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{Fetched: len(items)}

	events := make([]*PlayEvent, 0, len(items))
	for _, item := range items {
		playedAt, err := time.Parse(time.RFC3339, item.PlayedAt)
		if err != nil {
			log.Warn(
				"skipping item with malformed timestamp",
				"userID", user.ID,
				"playedAt", item.PlayedAt,
			)
			result.Skipped++
			continue
		}

		artist := ""
		if len(item.Track.Artists) > 0 {
			artist = item.Track.Artists[0].Name
		}

		events = append(events, &PlayEvent{
			UserID:          user.ID,
			Track:           item.Track.Name,
			Artist:          artist,
			DurationSeconds: int(item.Track.DurationMS / 1000),
			PlayedAt:        playedAt.Truncate(time.Second).UTC(),
		})
	}

	var recent []*PlayEvent
	err = ic.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		for _, event := range events {
			exists, err := ic.playEventRepo.ExistsAt(ctx, tx, user.ID, event.PlayedAt)
			if err != nil {
				return err
			}
			if exists {
				result.Duplicates++
				continue
			}

			if err := ic.playEventRepo.Create(ctx, tx, event); err != nil {
				if errors.Is(err, repositories.ErrDuplicatePlayEvent) {
					result.Duplicates++
					continue
				}
				return err
			}
			result.Inserted++
		}

		if err := ic.syncRunRepo.Create(ctx, tx, ic.buildSyncRun(user, result)); err != nil {
			return err
		}

		recent, err = ic.playEventRepo.GetRecent(ctx, tx, user.ID, recentLimit)
		return err
	})
	if err != nil {
		return nil, log.Err("failed to ingest recent plays", err, "userID", user.ID)
	}

	// Cache only after commit; a rolled-back batch must not leave its rows
	// in the recent-plays view
	ic.playEventRepo.CacheRecent(ctx, user.ID, recent)

	result.Recent = make([]RecentTrack, 0, len(recent))
	for _, event := range recent {
		result.Recent = append(result.Recent, RecentTrack{
			Track:  event.Track,
			Artist: event.Artist,
		})
	}

	log.Info(
		"sync run complete",
		"userID", user.ID,
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped,
	)

	return result, nil
}

func (ic *IngestionController) buildSyncRun(user *User, result *IngestResult) *SyncRun {
	detail, err := json.Marshal(map[string]any{
		"fetchLimit": fetchLimit,
	})
	if err != nil {
		detail = []byte("{}")
	}

	return &SyncRun{
		UserID:     user.ID,
		Fetched:    result.Fetched,
		Inserted:   result.Inserted,
		Duplicates: result.Duplicates,
		Skipped:    result.Skipped,
		Detail:     datatypes.JSON(detail),
	}
}
