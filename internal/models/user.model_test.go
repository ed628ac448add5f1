package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileChanges(t *testing.T) {
	existing := User{
		SpotifyUserID: "spotify-123",
		DisplayName:   "Old Name",
		AvatarURL:     "https://img/old.jpg",
		Product:       "free",
	}

	testCases := []struct {
		name     string
		profile  SpotifyProfile
		expected map[string]any
	}{
		{
			name: "unchanged profile yields no updates",
			profile: SpotifyProfile{
				ID:          "spotify-123",
				DisplayName: "Old Name",
				AvatarURL:   "https://img/old.jpg",
				Product:     "free",
			},
			expected: map[string]any{},
		},
		{
			name: "only changed fields are included",
			profile: SpotifyProfile{
				ID:          "spotify-123",
				DisplayName: "New Name",
				AvatarURL:   "https://img/old.jpg",
				Product:     "premium",
			},
			expected: map[string]any{
				"display_name": "New Name",
				"product":      "premium",
			},
		},
		{
			name: "avatar removal is a change",
			profile: SpotifyProfile{
				ID:          "spotify-123",
				DisplayName: "Old Name",
				AvatarURL:   "",
				Product:     "free",
			},
			expected: map[string]any{
				"avatar_url": "",
			},
		},
		{
			name: "empty display name and product do not clobber stored values",
			profile: SpotifyProfile{
				ID:        "spotify-123",
				AvatarURL: "https://img/old.jpg",
			},
			expected: map[string]any{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, existing.ProfileChanges(tc.profile))
		})
	}
}

func TestToProfile(t *testing.T) {
	user := User{
		SpotifyUserID: "spotify-123",
		DisplayName:   "Listener",
		AvatarURL:     "https://img/a.jpg",
		Product:       "premium",
	}

	profile := user.ToProfile()
	assert.Equal(t, "spotify-123", profile.ID)
	assert.Equal(t, "Listener", profile.DisplayName)
	assert.Equal(t, "https://img/a.jpg", profile.AvatarURL)
	assert.Equal(t, "premium", profile.Product)
	assert.Nil(t, profile.LastLoginAt)
}
