package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SyncRun records one ingestion pass over the upstream recently-played
// window. Duplicates counts events already present in the store, Skipped
// counts upstream rows dropped for malformed timestamps.
type SyncRun struct {
	BaseUUIDModel
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	User       User           `gorm:"foreignKey:UserID"        json:"-"`
	Fetched    int            `gorm:"not null"                 json:"fetched"`
	Inserted   int            `gorm:"not null"                 json:"inserted"`
	Duplicates int            `gorm:"not null"                 json:"duplicates"`
	Skipped    int            `gorm:"not null"                 json:"skipped"`
	Detail     datatypes.JSON `gorm:"type:jsonb"               json:"detail,omitempty"`
}
