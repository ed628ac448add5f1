package models

import (
	"time"
)

type User struct {
	BaseUUIDModel
	// Upstream identity; opaque Spotify user id
	SpotifyUserID string     `gorm:"column:spotify_user_id;type:text;uniqueIndex;not null" json:"-"`
	DisplayName   string     `gorm:"type:text"                                            json:"displayName"`
	AvatarURL     string     `gorm:"type:text"                                            json:"avatarUrl"`
	Product       string     `gorm:"type:text"                                            json:"product"`
	LastLoginAt   *time.Time `gorm:"type:timestamp"                                       json:"lastLoginAt,omitempty"`
}

// SpotifyProfile is the upstream profile projection used for syncing the User row
type SpotifyProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	Product     string `json:"product"`
}

// UserProfile represents public user profile information
type UserProfile struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	AvatarURL   string     `json:"avatarUrl"`
	Product     string     `json:"product"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// ToProfile converts a User to a UserProfile (public information only)
func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:          u.SpotifyUserID,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Product:     u.Product,
		LastLoginAt: u.LastLoginAt,
	}
}

// ProfileChanges returns a column update map holding only the fields that
// differ from the upstream profile. An empty map means no write is needed.
func (u *User) ProfileChanges(profile SpotifyProfile) map[string]any {
	updates := make(map[string]any)

	if profile.DisplayName != "" && profile.DisplayName != u.DisplayName {
		updates["display_name"] = profile.DisplayName
	}

	if profile.AvatarURL != u.AvatarURL {
		updates["avatar_url"] = profile.AvatarURL
	}

	if profile.Product != "" && profile.Product != u.Product {
		updates["product"] = profile.Product
	}

	return updates
}
