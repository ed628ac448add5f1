package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"resona/config"
	"resona/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"golang.org/x/time/rate"
)

const (
	spotifyAccountsURL = "https://accounts.spotify.com"
	spotifyAPIURL      = "https://api.spotify.com/v1"
	spotifyOAuthScope  = "user-read-recently-played user-top-read"
)

var (
	// ErrInvalidToken signals a rejected or expired bearer credential
	ErrInvalidToken = errors.New("invalid token")
	// ErrUpstreamUnavailable signals a transport, rate-limit, or server failure upstream
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// SpotifyService wraps the Spotify Web API. It holds no per-user state;
// every call takes the bearer token for the requesting session.
type SpotifyService struct {
	client      *http.Client
	limiter     *rate.Limiter
	accountsURL string
	apiURL      string
	clientID    string
	secret      string
	redirectURI string
	log         logger.Logger
}

type TokenBundle struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type SpotifyImage struct {
	URL string `json:"url"`
}

type SpotifyArtist struct {
	Name   string         `json:"name"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
}

type SpotifyTrack struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Images []SpotifyImage `json:"images"`
	} `json:"album"`
	DurationMS int64 `json:"duration_ms"`
}

type SpotifyPlayItem struct {
	Track    SpotifyTrack `json:"track"`
	PlayedAt string       `json:"played_at"`
}

type spotifyProfileResponse struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Images      []SpotifyImage `json:"images"`
	Product     string         `json:"product"`
}

type spotifyTopArtistsResponse struct {
	Items []SpotifyArtist `json:"items"`
}

type spotifyTopTracksResponse struct {
	Items []SpotifyTrack `json:"items"`
}

type spotifyRecentlyPlayedResponse struct {
	Items []SpotifyPlayItem `json:"items"`
}

type spotifySearchResponse struct {
	Artists struct {
		Items []SpotifyArtist `json:"items"`
	} `json:"artists"`
}

type spotifyTokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

func NewSpotifyService(config config.Config) *SpotifyService {
	return &SpotifyService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		// Spotify allows bursts but throttles sustained traffic; stay under it
		limiter:     rate.NewLimiter(rate.Limit(10), 20),
		accountsURL: spotifyAccountsURL,
		apiURL:      spotifyAPIURL,
		clientID:    config.SpotifyClientID,
		secret:      config.SpotifyClientSecret,
		redirectURI: config.SpotifyRedirectURI,
		log:         logger.New("SpotifyService"),
	}
}

// AuthorizationURL builds the user-consent URL for the OAuth code flow.
func (s *SpotifyService) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("response_type", "code")
	params.Set("redirect_uri", s.redirectURI)
	params.Set("scope", spotifyOAuthScope)
	params.Set("state", state)
	params.Set("show_dialog", "true")

	return s.accountsURL + "/authorize?" + params.Encode()
}

// ExchangeCode trades an authorization code for a token bundle.
func (s *SpotifyService) ExchangeCode(ctx context.Context, code string) (*TokenBundle, error) {
	log := s.log.TraceFromContext(ctx).Function("ExchangeCode")

	if code == "" {
		return nil, log.ErrMsg("authorization code is required")
	}

	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", s.redirectURI)

	return s.requestToken(ctx, log, data)
}

// Refresh trades a refresh token for a fresh access token. Spotify only
// returns a new refresh token when it rotates one; the old value is kept
// otherwise.
func (s *SpotifyService) Refresh(ctx context.Context, refreshToken string) (*TokenBundle, error) {
	log := s.log.TraceFromContext(ctx).Function("Refresh")

	if refreshToken == "" {
		return nil, log.ErrMsg("refresh token is required")
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	bundle, err := s.requestToken(ctx, log, data)
	if err != nil {
		return nil, err
	}

	if bundle.RefreshToken == "" {
		bundle.RefreshToken = refreshToken
	}

	return bundle, nil
}

func (s *SpotifyService) requestToken(
	ctx context.Context,
	log logger.Logger,
	data url.Values,
) (*TokenBundle, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.accountsURL+"/api/token",
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return nil, log.Err("failed to create token request", err)
	}

	req.SetBasicAuth(s.clientID, s.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Warn("token request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		log.Warn("token request rejected", "statusCode", resp.StatusCode)
		return nil, ErrInvalidToken
	}

	if resp.StatusCode != http.StatusOK {
		_ = log.Error("token endpoint error", "statusCode", resp.StatusCode)
		return nil, fmt.Errorf("%w: token endpoint status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var tokenResp spotifyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, log.Err("failed to decode token response", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, log.ErrMsg("token response missing access token")
	}

	return &TokenBundle{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}, nil
}

// GetCurrentProfile fetches the authenticated user's profile.
func (s *SpotifyService) GetCurrentProfile(
	ctx context.Context,
	accessToken string,
) (*models.SpotifyProfile, error) {
	log := s.log.TraceFromContext(ctx).Function("GetCurrentProfile")

	var profile spotifyProfileResponse
	if err := s.get(ctx, log, accessToken, "/me", nil, &profile); err != nil {
		return nil, err
	}

	if profile.ID == "" {
		return nil, log.ErrMsg("profile response missing user id")
	}

	avatarURL := ""
	if len(profile.Images) > 0 {
		avatarURL = profile.Images[0].URL
	}

	return &models.SpotifyProfile{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		AvatarURL:   avatarURL,
		Product:     profile.Product,
	}, nil
}

// GetTopArtists fetches the user's top artists for the given window.
func (s *SpotifyService) GetTopArtists(
	ctx context.Context,
	accessToken string,
	limit int,
	timeRange models.TimeRange,
) ([]SpotifyArtist, error) {
	log := s.log.TraceFromContext(ctx).Function("GetTopArtists")

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("time_range", string(timeRange))

	var result spotifyTopArtistsResponse
	if err := s.get(ctx, log, accessToken, "/me/top/artists", params, &result); err != nil {
		return nil, err
	}

	return result.Items, nil
}

// GetTopTracks fetches the user's top tracks for the given window.
func (s *SpotifyService) GetTopTracks(
	ctx context.Context,
	accessToken string,
	limit int,
	timeRange models.TimeRange,
) ([]SpotifyTrack, error) {
	log := s.log.TraceFromContext(ctx).Function("GetTopTracks")

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("time_range", string(timeRange))

	var result spotifyTopTracksResponse
	if err := s.get(ctx, log, accessToken, "/me/top/tracks", params, &result); err != nil {
		return nil, err
	}

	return result.Items, nil
}

// GetRecentlyPlayed fetches up to limit recently played items. The upstream
// caps the window at 50.
func (s *SpotifyService) GetRecentlyPlayed(
	ctx context.Context,
	accessToken string,
	limit int,
) ([]SpotifyPlayItem, error) {
	log := s.log.TraceFromContext(ctx).Function("GetRecentlyPlayed")

	if limit <= 0 || limit > 50 {
		limit = 50
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var result spotifyRecentlyPlayedResponse
	if err := s.get(ctx, log, accessToken, "/me/player/recently-played", params, &result); err != nil {
		return nil, err
	}

	return result.Items, nil
}

// SearchArtistsByGenre runs an exact quoted genre-field search.
func (s *SpotifyService) SearchArtistsByGenre(
	ctx context.Context,
	accessToken string,
	genre string,
	limit int,
) ([]SpotifyArtist, error) {
	log := s.log.TraceFromContext(ctx).Function("SearchArtistsByGenre")

	params := url.Values{}
	params.Set("q", fmt.Sprintf("genre:%q", genre))
	params.Set("type", "artist")
	params.Set("limit", strconv.Itoa(limit))

	var result spotifySearchResponse
	if err := s.get(ctx, log, accessToken, "/search", params, &result); err != nil {
		return nil, err
	}

	return result.Artists.Items, nil
}

func (s *SpotifyService) get(
	ctx context.Context,
	log logger.Logger,
	accessToken, path string,
	params url.Values,
	result any,
) error {
	if accessToken == "" {
		return ErrInvalidToken
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	endpoint := s.apiURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return log.Err("failed to create request", err, "path", path)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	log.Debug("Making request to Spotify API", "path", path)
	resp, err := s.client.Do(req)
	if err != nil {
		log.Warn("request failed", "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		log.Warn("Spotify rejected bearer token", "path", path, "statusCode", resp.StatusCode)
		return ErrInvalidToken
	case resp.StatusCode == http.StatusTooManyRequests:
		_ = log.Error("Spotify rate limit hit", "path", path)
		return fmt.Errorf("%w: rate limited", ErrUpstreamUnavailable)
	case resp.StatusCode != http.StatusOK:
		_ = log.Error("Spotify API error", "path", path, "statusCode", resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return log.Err("failed to decode response", err, "path", path)
	}

	return nil
}
