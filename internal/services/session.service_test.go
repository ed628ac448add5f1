package services

import (
	"testing"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(secret string) *SessionService {
	return &SessionService{
		secret: []byte(secret),
		ttl:    time.Hour,
		log:    logger.New("SessionService"),
	}
}

func signTestToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParseToken_RoundTrip(t *testing.T) {
	ss := newTestSessionService("test-secret")

	now := time.Now()
	signed := signTestToken(t, "test-secret", jwt.RegisteredClaims{
		Subject:   "session-abc",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})

	sessionID, err := ss.parseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "session-abc", sessionID)
}

func TestParseToken_Rejections(t *testing.T) {
	ss := newTestSessionService("test-secret")
	now := time.Now()

	testCases := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "garbage token",
			token: "not.a.jwt",
		},
		{
			name: "wrong secret",
			token: signTestToken(t, "other-secret", jwt.RegisteredClaims{
				Subject:   "session-abc",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
		},
		{
			name: "expired token",
			token: signTestToken(t, "test-secret", jwt.RegisteredClaims{
				Subject:   "session-abc",
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			}),
		},
		{
			name: "missing subject",
			token: signTestToken(t, "test-secret", jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ss.parseToken(tc.token)
			assert.Error(t, err)
		})
	}
}

func TestParseToken_RejectsUnsignedToken(t *testing.T) {
	ss := newTestSessionService("test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "session-abc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ss.parseToken(unsigned)
	assert.Error(t, err)
}
