package catalogController

import (
	"context"
	"testing"

	. "resona/internal/models"
	"resona/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTopSource struct {
	artists []services.SpotifyArtist
	tracks  []services.SpotifyTrack
	calls   int
}

func (f *fakeTopSource) GetTopArtists(
	_ context.Context,
	_ string,
	_ int,
	_ TimeRange,
) ([]services.SpotifyArtist, error) {
	f.calls++
	return f.artists, nil
}

func (f *fakeTopSource) GetTopTracks(
	_ context.Context,
	_ string,
	_ int,
	_ TimeRange,
) ([]services.SpotifyTrack, error) {
	f.calls++
	return f.tracks, nil
}

func TestTopArtists_RejectsInvalidTimeRangeBeforeUpstreamCall(t *testing.T) {
	source := &fakeTopSource{}
	cc := &CatalogController{spotify: source, log: logger.New("catalogController")}

	_, err := cc.TopArtists(context.Background(), "token", TimeRange("weekly"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, source.calls, "invalid time_range must be rejected before any upstream call")
}

func TestTopTracks_RejectsInvalidTimeRangeBeforeUpstreamCall(t *testing.T) {
	source := &fakeTopSource{}
	cc := &CatalogController{spotify: source, log: logger.New("catalogController")}

	_, err := cc.TopTracks(context.Background(), "token", TimeRange(""))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, source.calls)
}

func TestTopArtists_PassesThroughUpstreamResult(t *testing.T) {
	source := &fakeTopSource{
		artists: []services.SpotifyArtist{{Name: "Boards of Canada"}},
	}
	cc := &CatalogController{spotify: source, log: logger.New("catalogController")}

	for _, timeRange := range []TimeRange{TimeRangeShort, TimeRangeMedium, TimeRangeLong} {
		artists, err := cc.TopArtists(context.Background(), "token", timeRange)
		require.NoError(t, err)
		require.Len(t, artists, 1)
		assert.Equal(t, "Boards of Canada", artists[0].Name)
	}
}
