package models

import (
	"time"

	"github.com/bakchoddost/bakchoddost/internal/poem"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Template is a stored poem with {{userName}} / {{friendNameN}} placeholders.
//
// MaxFriendRequired caches poem.MaxFriendIndex(Text). It is NULL only for rows
// written before the column existed; the backfill job fills those in.
type Template struct {
	ID                uuid.UUID  `gorm:"type:text;primary_key" json:"id"`
	Text              string     `gorm:"type:text;not null" json:"text"`
	Instructions      string     `gorm:"type:text" json:"instructions,omitempty"`
	OwnerID           *uuid.UUID `gorm:"type:text;index" json:"owner_id,omitempty"`
	UsageCount        int64      `gorm:"not null;default:0;index" json:"usage_count"`
	MaxFriendRequired *int       `gorm:"index" json:"max_friend_required"`
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName keeps the table name used by earlier deployments.
func (Template) TableName() string {
	return "poem_templates"
}

// BeforeCreate hook to generate UUID and derive the friend requirement.
func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.MaxFriendRequired == nil {
		t.SetText(t.Text)
	}
	return nil
}

// SetText replaces the text and recomputes MaxFriendRequired with it.
func (t *Template) SetText(text string) {
	n := poem.MaxFriendIndex(text)
	t.Text = text
	t.MaxFriendRequired = &n
}

// Candidate returns the view of t used by the selector.
func (t *Template) Candidate() *poem.Candidate {
	return &poem.Candidate{ID: t.ID, Text: t.Text}
}
