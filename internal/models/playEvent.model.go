package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayEvent is one stored listen. The (user_id, played_at) pair is the dedup
// key: the upstream API returns overlapping windows on repeated polls, so the
// second-truncated timestamp identifies an event, not a surrogate id. The
// composite unique index makes concurrent duplicate inserts fail safely.
type PlayEvent struct {
	BaseUUIDModel
	UserID          uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_play_events_user_played_at" json:"userId"`
	User            User      `gorm:"foreignKey:UserID"                                                   json:"-"`
	Track           string    `gorm:"type:text;not null"                                                  json:"track"`
	Artist          string    `gorm:"type:text;not null"                                                  json:"artist"`
	DurationSeconds int       `gorm:"not null"                                                            json:"durationSeconds"`
	PlayedAt        time.Time `gorm:"not null;uniqueIndex:idx_play_events_user_played_at"                 json:"playedAt"`
}

// RecentTrack is the capped recent-history projection served to clients.
type RecentTrack struct {
	Track  string `json:"track"`
	Artist string `json:"artist"`
}
