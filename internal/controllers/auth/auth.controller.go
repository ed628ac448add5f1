package authController

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
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = services.ErrUnauthorized
)

// tokenExchanger is the slice of the Spotify adapter the login flow needs.
type tokenExchanger interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*services.TokenBundle, error)
	GetCurrentProfile(ctx context.Context, accessToken string) (*SpotifyProfile, error)
}

type sessionManager interface {
	Create(ctx context.Context, userID uuid.UUID, token services.TokenBundle) (string, error)
	Destroy(ctx context.Context, sessionID string) error
}

type AuthController struct {
	userRepo repositories.UserRepository
	spotify  tokenExchanger
	sessions sessionManager
	db       database.DB
	Config   config.Config
	log      logger.Logger
}

type AuthControllerInterface interface {
	LoginURL(state string) (string, error)
	CompleteLogin(ctx context.Context, code string) (*User, string, error)
	Logout(ctx context.Context, sessionID string) error
}

func New(
	services services.Service,
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) AuthControllerInterface {
	return &AuthController{
		userRepo: repos.User,
		spotify:  services.Spotify,
		sessions: services.Session,
		db:       db,
		Config:   config,
		log:      logger.New("authController"),
	}
}

// LoginURL builds the Spotify consent URL carrying the caller's state value.
func (ac *AuthController) LoginURL(state string) (string, error) {
	if state == "" {
		return "", ErrValidation
	}

	return ac.spotify.AuthorizationURL(state), nil
}

// CompleteLogin finishes the OAuth code flow: exchanges the code, syncs the
// user row from the upstream profile, and mints a session. Returns the user
// and the signed session token.
func (ac *AuthController) CompleteLogin(
	ctx context.Context,
	code string,
) (*User, string, error) {
	log := ac.log.TraceFromContext(ctx).Function("CompleteLogin")

	if code == "" {
		return nil, "", ErrValidation
	}

	bundle, err := ac.spotify.ExchangeCode(ctx, code)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			log.Warn("authorization code rejected")
			return nil, "", ErrUnauthorized
		}
		return nil, "", log.Err("failed to exchange authorization code", err)
	}

	profile, err := ac.spotify.GetCurrentProfile(ctx, bundle.AccessToken)
	if err != nil {
		return nil, "", log.Err("failed to fetch user profile", err)
	}

	user, err := ac.userRepo.FindOrCreateSpotifyUser(ctx, *profile)
	if err != nil {
		return nil, "", log.Err("failed to sync user", err)
	}

	token, err := ac.sessions.Create(ctx, user.ID, *bundle)
	if err != nil {
		return nil, "", log.Err("failed to create session", err, "userID", user.ID)
	}

	log.Info("login completed", "userID", user.ID)
	return user, token, nil
}

func (ac *AuthController) Logout(ctx context.Context, sessionID string) error {
	log := ac.log.TraceFromContext(ctx).Function("Logout")

	if err := ac.sessions.Destroy(ctx, sessionID); err != nil {
		return log.Err("failed to destroy session", err, "sessionID", sessionID)
	}

	return nil
}
