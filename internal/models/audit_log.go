package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records who changed which template or account, and when.
type AuditLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uuid.UUID `gorm:"type:text;index" json:"user_id"`
	Action      string    `gorm:"not null;index" json:"action"` // e.g. "create_template"
	Resource    string    `gorm:"not null" json:"resource"`     // e.g. "template:<uuid>"
	DetailsJSON string    `gorm:"type:text" json:"details_json"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}
