package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestSpotifyService(serverURL string) *SpotifyService {
	return &SpotifyService{
		client:      &http.Client{Timeout: time.Second},
		limiter:     rate.NewLimiter(rate.Inf, 1),
		accountsURL: serverURL,
		apiURL:      serverURL,
		clientID:    "client-id",
		secret:      "client-secret",
		redirectURI: "https://app.example.com/callback",
		log:         logger.New("SpotifyService"),
	}
}

func TestAuthorizationURL(t *testing.T) {
	s := newTestSpotifyService("https://accounts.spotify.com")

	raw := s.AuthorizationURL("state-123")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "state-123", query.Get("state"))
	assert.Equal(t, "https://app.example.com/callback", query.Get("redirect_uri"))
	assert.Contains(t, query.Get("scope"), "user-read-recently-played")
	assert.Contains(t, query.Get("scope"), "user-top-read")
}

func TestRefresh_KeepsOldRefreshTokenWhenNotRotated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-access","expires_in":3600}`))
	}))
	defer server.Close()

	s := newTestSpotifyService(server.URL)

	bundle, err := s.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", bundle.AccessToken)
	assert.Equal(t, "old-refresh", bundle.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), bundle.ExpiresAt, time.Minute)
}

func TestExchangeCode_RejectedCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	s := newTestSpotifyService(server.URL)

	_, err := s.ExchangeCode(context.Background(), "bad-code")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGet_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		expected   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrInvalidToken},
		{"forbidden", http.StatusForbidden, ErrInvalidToken},
		{"rate limited", http.StatusTooManyRequests, ErrUpstreamUnavailable},
		{"server error", http.StatusInternalServerError, ErrUpstreamUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tc.statusCode)
				}),
			)
			defer server.Close()

			s := newTestSpotifyService(server.URL)

			_, err := s.GetCurrentProfile(context.Background(), "token")
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestGet_EmptyTokenRejectedWithoutRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer server.Close()

	s := newTestSpotifyService(server.URL)

	_, err := s.GetCurrentProfile(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, called)
}

func TestGetRecentlyPlayed_ClampsLimit(t *testing.T) {
	var gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	s := newTestSpotifyService(server.URL)

	testCases := []struct {
		requested int
		expected  string
	}{
		{0, "50"},
		{-3, "50"},
		{120, "50"},
		{25, "25"},
	}

	for _, tc := range testCases {
		_, err := s.GetRecentlyPlayed(context.Background(), "token", tc.requested)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, gotLimit)
	}
}

func TestSearchArtistsByGenre_QuotesGenreQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"artists":{"items":[{"name":"Sunn O)))"}]}}`))
	}))
	defer server.Close()

	s := newTestSpotifyService(server.URL)

	artists, err := s.SearchArtistsByGenre(context.Background(), "token", "drone", 10)
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Equal(t, `genre:"drone"`, gotQuery)
}
