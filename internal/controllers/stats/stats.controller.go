package statsController

import (
	"context"
	"sort"

	"resona/config"
	"resona/internal/database"
	. "resona/internal/models"
	"resona/internal/repositories"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	topArtistSample = 50
	topGenreLimit   = 10
)

// topArtistSource is the slice of the Spotify adapter genre aggregation needs.
type topArtistSource interface {
	GetTopArtists(ctx context.Context, accessToken string, limit int, timeRange TimeRange) ([]services.SpotifyArtist, error)
}

type durationSource interface {
	SumDurationSeconds(ctx context.Context, userID uuid.UUID) (int64, error)
}

type StatsController struct {
	playEventRepo durationSource
	spotify       topArtistSource
	db            database.DB
	Config        config.Config
	log           logger.Logger
}

type StatsControllerInterface interface {
	ListeningTime(ctx context.Context, user *User) (*ListeningTime, error)
	TopGenres(ctx context.Context, user *User, accessToken string) ([]GenreCount, error)
}

// ListeningTime is the user's total stored play time in the units the
// frontend renders.
type ListeningTime struct {
	TotalSeconds int64           `json:"totalSeconds"`
	TotalMinutes float64         `json:"totalMinutes"`
	TotalHours   decimal.Decimal `json:"totalHours"`
}

type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) StatsControllerInterface {
	return &StatsController{
		playEventRepo: repos.PlayEvent,
		spotify:       services.Spotify,
		db:            db,
		Config:        config,
		log:           logger.New("statsController"),
	}
}

// ListeningTime sums the duration of every stored play event. A user with no
// history gets zeros, not an error.
func (sc *StatsController) ListeningTime(
	ctx context.Context,
	user *User,
) (*ListeningTime, error) {
	log := sc.log.TraceFromContext(ctx).Function("ListeningTime")

	totalSeconds, err := sc.playEventRepo.SumDurationSeconds(ctx, user.ID)
	if err != nil {
		return nil, log.Err("failed to sum listening time", err, "userID", user.ID)
	}

	return &ListeningTime{
		TotalSeconds: totalSeconds,
		TotalMinutes: float64(totalSeconds) / 60,
		TotalHours: decimal.NewFromInt(totalSeconds).
			Div(decimal.NewFromInt(3600)).
			Round(2),
	}, nil
}

// TopGenres builds the user's genre profile from their medium-term top
// artists: every genre tag is counted once per artist carrying it, and the
// ten most frequent tags are returned. Ties keep the order in which a genre
// first appeared in the ranked artist list, so the profile is stable across
// calls.
func (sc *StatsController) TopGenres(
	ctx context.Context,
	user *User,
	accessToken string,
) ([]GenreCount, error) {
	log := sc.log.TraceFromContext(ctx).Function("TopGenres")

	artists, err := sc.spotify.GetTopArtists(ctx, accessToken, topArtistSample, TimeRangeMedium)
	if err != nil {
		return nil, err
	}

	counts := CountGenres(artists)
	if len(counts) > topGenreLimit {
		counts = counts[:topGenreLimit]
	}

	log.Debug("genre profile built", "userID", user.ID, "genres", len(counts))
	return counts, nil
}

// CountGenres tallies genre tags across an artist list, ordered by count
// descending with first-appearance order breaking ties.
func CountGenres(artists []services.SpotifyArtist) []GenreCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for _, artist := range artists {
		for _, genre := range artist.Genres {
			if _, ok := counts[genre]; !ok {
				firstSeen[genre] = len(firstSeen)
			}
			counts[genre]++
		}
	}

	result := make([]GenreCount, 0, len(counts))
	for genre, count := range counts {
		result = append(result, GenreCount{Genre: genre, Count: count})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return firstSeen[result[i].Genre] < firstSeen[result[j].Genre]
	})

	return result
}
