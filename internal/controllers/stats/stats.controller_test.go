package statsController

import (
	"context"
	"errors"
	"fmt"
	"testing"

	. "resona/internal/models"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArtistSource struct {
	artists []services.SpotifyArtist
	err     error
}

func (f *fakeArtistSource) GetTopArtists(
	_ context.Context,
	_ string,
	_ int,
	_ TimeRange,
) ([]services.SpotifyArtist, error) {
	return f.artists, f.err
}

type fakeDurationSource struct {
	total int64
	err   error
}

func (f *fakeDurationSource) SumDurationSeconds(_ context.Context, _ uuid.UUID) (int64, error) {
	return f.total, f.err
}

func artistWithGenres(name string, genres ...string) services.SpotifyArtist {
	return services.SpotifyArtist{Name: name, Genres: genres}
}

func TestCountGenres(t *testing.T) {
	testCases := []struct {
		name     string
		artists  []services.SpotifyArtist
		expected []GenreCount
	}{
		{
			name:     "empty artist list",
			artists:  nil,
			expected: []GenreCount{},
		},
		{
			name: "artists without genre tags",
			artists: []services.SpotifyArtist{
				artistWithGenres("A"),
				artistWithGenres("B"),
			},
			expected: []GenreCount{},
		},
		{
			name: "counts ordered descending",
			artists: []services.SpotifyArtist{
				artistWithGenres("A", "rock", "pop"),
				artistWithGenres("B", "pop"),
				artistWithGenres("C", "pop", "jazz"),
			},
			expected: []GenreCount{
				{Genre: "pop", Count: 3},
				{Genre: "rock", Count: 1},
				{Genre: "jazz", Count: 1},
			},
		},
		{
			name: "ties keep first appearance order",
			artists: []services.SpotifyArtist{
				artistWithGenres("A", "ambient", "dub"),
				artistWithGenres("B", "dub", "ambient"),
			},
			expected: []GenreCount{
				{Genre: "ambient", Count: 2},
				{Genre: "dub", Count: 2},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := CountGenres(tc.artists)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestTopGenres_CapsAtTen(t *testing.T) {
	artists := make([]services.SpotifyArtist, 0, 15)
	for i := range 15 {
		// Each artist carries a unique genre plus a shared one to spread counts
		artists = append(artists, artistWithGenres(
			fmt.Sprintf("artist-%d", i),
			fmt.Sprintf("genre-%d", i),
		))
	}

	sc := &StatsController{
		spotify: &fakeArtistSource{artists: artists},
		log:     logger.New("statsController"),
	}

	genres, err := sc.TopGenres(context.Background(), &User{}, "token")
	require.NoError(t, err)
	assert.Len(t, genres, 10)
}

func TestTopGenres_EmptyProfile(t *testing.T) {
	sc := &StatsController{
		spotify: &fakeArtistSource{},
		log:     logger.New("statsController"),
	}

	genres, err := sc.TopGenres(context.Background(), &User{}, "token")
	require.NoError(t, err)
	assert.Empty(t, genres)
}

func TestTopGenres_UpstreamError(t *testing.T) {
	sc := &StatsController{
		spotify: &fakeArtistSource{err: services.ErrUpstreamUnavailable},
		log:     logger.New("statsController"),
	}

	_, err := sc.TopGenres(context.Background(), &User{}, "token")
	assert.ErrorIs(t, err, services.ErrUpstreamUnavailable)
}

func TestListeningTime(t *testing.T) {
	testCases := []struct {
		name            string
		totalSeconds    int64
		expectedMinutes float64
		expectedHours   string
	}{
		{
			name:            "zero events",
			totalSeconds:    0,
			expectedMinutes: 0,
			expectedHours:   "0",
		},
		{
			name:            "fractional minutes are not rounded",
			totalSeconds:    185,
			expectedMinutes: 185.0 / 60.0,
			expectedHours:   "0.05",
		},
		{
			name:            "hours round to two decimals",
			totalSeconds:    9000,
			expectedMinutes: 150,
			expectedHours:   "2.5",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sc := &StatsController{
				playEventRepo: &fakeDurationSource{total: tc.totalSeconds},
				log:           logger.New("statsController"),
			}

			listening, err := sc.ListeningTime(context.Background(), &User{})
			require.NoError(t, err)
			assert.Equal(t, tc.totalSeconds, listening.TotalSeconds)
			assert.InDelta(t, tc.expectedMinutes, listening.TotalMinutes, 1e-9)
			assert.Equal(t, tc.expectedHours, listening.TotalHours.String())
		})
	}
}

func TestListeningTime_StorageError(t *testing.T) {
	sc := &StatsController{
		playEventRepo: &fakeDurationSource{err: errors.New("connection reset")},
		log:           logger.New("statsController"),
	}

	_, err := sc.ListeningTime(context.Background(), &User{})
	assert.Error(t, err)
}
