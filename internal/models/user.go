package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an author of poem templates. A user signs up either with an email
// and password or with a phone number and a one-time code, so every login
// identifier is optional.
type User struct {
	ID           uuid.UUID      `gorm:"type:text;primary_key" json:"id"`
	Email        *string        `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone        *string        `gorm:"uniqueIndex" json:"phone,omitempty"`
	Username     *string        `gorm:"uniqueIndex" json:"username,omitempty"`
	Name         string         `json:"name,omitempty"`
	PasswordHash string         `json:"-"`
	OTPCode      string         `json:"-"`
	OTPExpiresAt *time.Time     `json:"-"`
	OTPSentAt    *time.Time     `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName returns the best available human-readable identifier.
func (u *User) DisplayName() string {
	switch {
	case u.Username != nil && *u.Username != "":
		return *u.Username
	case u.Email != nil && *u.Email != "":
		return *u.Email
	case u.Phone != nil && *u.Phone != "":
		return *u.Phone
	}
	return u.ID.String()
}
