package discoveryController

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"resona/config"
	"resona/internal/controllers/stats"
	"resona/internal/database"
	. "resona/internal/models"
	"resona/internal/repositories"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

const (
	topArtistSample  = 50
	mainstreamSize   = 5
	candidateCeiling = 10
	searchLimit      = 10

	placeholderImageURL = "https://placehold.co/300x300?text=No+Image"
)

// ErrNoData signals that the catalog and stored history hold nothing the
// engine can recommend from. All exhausted-data outcomes collapse into it,
// distinguishable only by the logged message.
var ErrNoData = errors.New("no data available for recommendation")

// artistCatalog is the slice of the Spotify adapter the recommendation
// engine needs.
type artistCatalog interface {
	GetTopArtists(ctx context.Context, accessToken string, limit int, timeRange TimeRange) ([]services.SpotifyArtist, error)
	SearchArtistsByGenre(ctx context.Context, accessToken string, genre string, limit int) ([]services.SpotifyArtist, error)
}

type historyArtistSource interface {
	DistinctArtists(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type DiscoveryController struct {
	playEventRepo historyArtistSource
	spotify       artistCatalog
	db            database.DB
	Config        config.Config
	log           logger.Logger
}

type DiscoveryControllerInterface interface {
	RecommendGenre(ctx context.Context, user *User, accessToken string) (*Recommendation, error)
}

// Recommendation pairs an under-exposed genre with an artist in it the user
// does not already know. Degraded is set when stored history could not
// contribute to the known-artist exclusion.
type Recommendation struct {
	Genre    string `json:"genre"`
	Artist   string `json:"artist"`
	ImageURL string `json:"imageUrl"`
	BasedOn  string `json:"basedOn"`
	Degraded bool   `json:"degraded,omitempty"`
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) DiscoveryControllerInterface {
	return &DiscoveryController{
		playEventRepo: repos.PlayEvent,
		spotify:       services.Spotify,
		db:            db,
		Config:        config,
		log:           logger.New("discoveryController"),
	}
}

// RecommendGenre surfaces one genre the user listens to but is under-exposed
// to, and one artist in that genre outside their known-artist set. The
// selection is deterministic for fixed upstream data: genre ranking uses
// count descending with first-appearance order breaking ties.
func (dc *DiscoveryController) RecommendGenre(
	ctx context.Context,
	user *User,
	accessToken string,
) (*Recommendation, error) {
	log := dc.log.TraceFromContext(ctx).Function("RecommendGenre")

	topArtists, err := dc.spotify.GetTopArtists(ctx, accessToken, topArtistSample, TimeRangeMedium)
	if err != nil {
		return nil, err
	}
	if len(topArtists) == 0 {
		log.Info("no top artists for user", "userID", user.ID)
		return nil, ErrNoData
	}

	genres := statsController.CountGenres(topArtists)
	if len(genres) == 0 {
		log.Info("top artists carry no genre tags", "userID", user.ID)
		return nil, ErrNoData
	}

	known, degraded := dc.knownArtists(ctx, log, user, topArtists)

	genre, found := pickFringeGenre(genres)
	if !found {
		log.Info("no fringe genre candidates", "userID", user.ID, "genres", len(genres))
		return nil, ErrNoData
	}

	results, err := dc.spotify.SearchArtistsByGenre(ctx, accessToken, genre, searchLimit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		log.Info("genre search returned no artists", "userID", user.ID, "genre", genre)
		return nil, ErrNoData
	}

	chosen := pickUnknownArtist(results, known)

	imageURL := placeholderImageURL
	if len(chosen.Images) > 0 && chosen.Images[0].URL != "" {
		imageURL = chosen.Images[0].URL
	}

	recommendation := &Recommendation{
		Genre:    capitalize(genre),
		Artist:   chosen.Name,
		ImageURL: imageURL,
		BasedOn:  basedOnLabel(topArtists, genres, genre),
		Degraded: degraded,
	}

	log.Info(
		"recommendation built",
		"userID", user.ID,
		"genre", recommendation.Genre,
		"artist", recommendation.Artist,
		"degraded", degraded,
	)

	return recommendation, nil
}

// knownArtists unions the top-50 artist names with distinct artist names
// from stored history, lower-cased. A failed history lookup degrades to the
// top-artist contribution alone rather than failing the recommendation; the
// degraded flag tells the caller the exclusion guarantee is weakened.
func (dc *DiscoveryController) knownArtists(
	ctx context.Context,
	log logger.Logger,
	user *User,
	topArtists []services.SpotifyArtist,
) (map[string]struct{}, bool) {
	known := make(map[string]struct{}, len(topArtists))
	for _, artist := range topArtists {
		known[strings.ToLower(artist.Name)] = struct{}{}
	}

	stored, err := dc.playEventRepo.DistinctArtists(ctx, user.ID)
	if err != nil {
		log.Warn(
			"history lookup failed, known-artist exclusion degraded",
			"userID", user.ID,
			"error", err,
		)
		return known, true
	}

	for _, name := range stored {
		if name != "" {
			known[strings.ToLower(name)] = struct{}{}
		}
	}

	return known, false
}

// pickFringeGenre evaluates candidate-generation strategies in order until
// one yields a non-empty set, then returns that set's highest-count genre.
// The input must already be sorted by count descending, first-seen order on
// ties.
func pickFringeGenre(genres []statsController.GenreCount) (string, bool) {
	strategies := []func([]statsController.GenreCount) []statsController.GenreCount{
		// Everything outside the mainstream five
		func(g []statsController.GenreCount) []statsController.GenreCount {
			if len(g) <= mainstreamSize {
				return nil
			}
			return g[mainstreamSize:]
		},
		// Narrow profiles: top ten minus the mainstream five
		func(g []statsController.GenreCount) []statsController.GenreCount {
			capped := g
			if len(capped) > candidateCeiling {
				capped = capped[:candidateCeiling]
			}
			if len(capped) <= mainstreamSize {
				return nil
			}
			return capped[mainstreamSize:]
		},
	}

	for _, strategy := range strategies {
		if candidates := strategy(genres); len(candidates) > 0 {
			return candidates[0].Genre, true
		}
	}

	return "", false
}

// pickUnknownArtist scans the search results in returned order for the first
// artist outside the known set, falling back to the highest-relevance result
// when every candidate is already known.
func pickUnknownArtist(
	results []services.SpotifyArtist,
	known map[string]struct{},
) services.SpotifyArtist {
	for _, artist := range results {
		if _, ok := known[strings.ToLower(artist.Name)]; !ok {
			return artist
		}
	}

	return results[0]
}

// basedOnLabel prefers the display name of the first top artist explicitly
// tagged with the recommended genre, defaulting to the user's most common
// genre as a label.
func basedOnLabel(
	topArtists []services.SpotifyArtist,
	genres []statsController.GenreCount,
	recommended string,
) string {
	for _, artist := range topArtists {
		for _, tag := range artist.Genres {
			if tag == recommended {
				return artist.Name
			}
		}
	}

	return capitalize(genres[0].Genre)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
