package models

import (
	"time"
)

// ServerConfig stores server-wide state as key-value pairs
type ServerConfig struct {
	Key       string    `gorm:"primarykey;not null" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	ServerConfigKeyServerID = "server_id"
	// ServerConfigKeyBackfillCursor holds the last template ID processed by an
	// interrupted fit backfill, so the next run resumes after it.
	ServerConfigKeyBackfillCursor = "backfill_fit_cursor"
)
