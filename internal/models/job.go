package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeBackfillFit fills in poem_templates.max_friend_required.
	JobTypeBackfillFit JobType = "backfill_fit"
)

// JobStatus represents the state of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job represents a background task
type Job struct {
	ID          uuid.UUID              `gorm:"type:text;primary_key" json:"id"`
	Type        JobType                `gorm:"not null" json:"type"`
	Status      JobStatus              `gorm:"not null;default:'pending'" json:"status"`
	RequestedBy *uuid.UUID             `gorm:"type:text;index" json:"requested_by,omitempty"`
	Logs        string                 `gorm:"type:text" json:"logs"`
	Error       string                 `gorm:"type:text" json:"error,omitempty"`
	Metadata    map[string]interface{} `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	StartedAt   *time.Time             `json:"started_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	DeletedAt   gorm.DeletedAt         `gorm:"index" json:"-"`
}

// BeforeCreate hook to generate UUID
func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// IntMetadata reads an integer option from Metadata, accepting the float64
// values produced by a JSON round trip.
func (j *Job) IntMetadata(key string, def int) int {
	switch v := j.Metadata[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// BoolMetadata reads a boolean option from Metadata.
func (j *Job) BoolMetadata(key string) bool {
	v, _ := j.Metadata[key].(bool)
	return v
}
