package services

import (
	"context"
	"errors"
	"time"

	"resona/config"
	"resona/internal/database"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionCachePrefix = "session"

// ErrUnauthorized signals a missing, invalid, or expired session credential
var ErrUnauthorized = errors.New("unauthorized")

// Session binds an authenticated user to their Spotify token bundle. The
// client only ever holds the signed JWT; the bundle lives server-side in the
// session cache.
type Session struct {
	ID        string      `json:"id"`
	UserID    uuid.UUID   `json:"userId"`
	Token     TokenBundle `json:"token"`
	CreatedAt time.Time   `json:"createdAt"`
}

// SessionService mints and resolves signed session tokens, refreshing the
// Spotify credential transparently when it is about to expire.
type SessionService struct {
	cache   database.CacheClient
	spotify *SpotifyService
	secret  []byte
	ttl     time.Duration
	log     logger.Logger
}

func NewSessionService(
	db database.DB,
	spotify *SpotifyService,
	config config.Config,
) *SessionService {
	return &SessionService{
		cache:   db.Cache.Session,
		spotify: spotify,
		secret:  []byte(config.SessionSecret),
		ttl:     time.Duration(config.SessionTTLHours) * time.Hour,
		log:     logger.New("SessionService"),
	}
}

// Create stores a new session and returns the signed token for the client.
func (ss *SessionService) Create(
	ctx context.Context,
	userID uuid.UUID,
	token TokenBundle,
) (string, error) {
	log := ss.log.TraceFromContext(ctx).Function("Create")

	session := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}

	if err := ss.store(ctx, &session); err != nil {
		return "", log.Err("failed to store session", err, "userID", userID)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   session.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ss.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ss.secret)
	if err != nil {
		return "", log.Err("failed to sign session token", err, "userID", userID)
	}

	log.Info("session created", "userID", userID, "sessionID", session.ID)
	return signed, nil
}

// Get resolves a signed token to its session. An access token within a
// minute of expiry is refreshed through the catalog adapter and the session
// re-stored, so callers always receive a usable bearer credential.
func (ss *SessionService) Get(ctx context.Context, signedToken string) (*Session, error) {
	log := ss.log.TraceFromContext(ctx).Function("Get")

	sessionID, err := ss.parseToken(signedToken)
	if err != nil {
		log.Info("session token rejected", "error", err.Error())
		return nil, ErrUnauthorized
	}

	var session Session
	found, err := database.NewCacheBuilder(ss.cache, sessionID).
		WithHash(sessionCachePrefix).
		WithContext(ctx).
		Get(&session)
	if err != nil {
		return nil, log.Err("failed to load session", err, "sessionID", sessionID)
	}

	if !found {
		log.Info("session not found", "sessionID", sessionID)
		return nil, ErrUnauthorized
	}

	if time.Until(session.Token.ExpiresAt) < time.Minute {
		bundle, err := ss.spotify.Refresh(ctx, session.Token.RefreshToken)
		if err != nil {
			log.Warn("failed to refresh access token", "sessionID", sessionID, "error", err)
			return nil, ErrUnauthorized
		}

		session.Token = *bundle
		if err := ss.store(ctx, &session); err != nil {
			log.Warn("failed to persist refreshed session", "sessionID", sessionID, "error", err)
		}
	}

	return &session, nil
}

// Destroy removes a session from the cache (logout, data erasure).
func (ss *SessionService) Destroy(ctx context.Context, sessionID string) error {
	log := ss.log.TraceFromContext(ctx).Function("Destroy")

	if err := database.NewCacheBuilder(ss.cache, sessionID).
		WithHash(sessionCachePrefix).
		WithContext(ctx).
		Delete(); err != nil {
		return log.Err("failed to destroy session", err, "sessionID", sessionID)
	}

	log.Info("session destroyed", "sessionID", sessionID)
	return nil
}

func (ss *SessionService) store(ctx context.Context, session *Session) error {
	return database.NewCacheBuilder(ss.cache, session.ID).
		WithHash(sessionCachePrefix).
		WithStruct(session).
		WithTTL(ss.ttl).
		WithContext(ctx).
		Set()
}

func (ss *SessionService) parseToken(signedToken string) (string, error) {
	if signedToken == "" {
		return "", errors.New("token is required")
	}

	token, err := jwt.ParseWithClaims(
		signedToken,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return ss.secret, nil
		},
	)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid claims")
	}

	return claims.Subject, nil
}
