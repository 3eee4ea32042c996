package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogAction records an audit log entry
func LogAction(db *gorm.DB, userID uuid.UUID, action, resource string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	log := models.AuditLog{
		UserID:      userID,
		Action:      action,
		Resource:    resource,
		DetailsJSON: string(detailsJSON),
		Timestamp:   time.Now(),
	}

	return db.Create(&log).Error
}

// TemplateResource formats the resource column for a template.
func TemplateResource(id uuid.UUID) string {
	return fmt.Sprintf("template:%s", id)
}

// UserResource formats the resource column for a user.
func UserResource(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// Audit actions constants
const (
	ActionCreateUser     = "create_user"
	ActionUpdateProfile  = "update_profile"
	ActionMakeAdmin      = "make_admin"
	ActionCreateTemplate = "create_template"
	ActionUpdateTemplate = "update_template"
	ActionDeleteTemplate = "delete_template"
	ActionStartBackfill  = "start_backfill"
	ActionLogin          = "login"
	ActionOTPConfirmed   = "otp_confirmed"
)
