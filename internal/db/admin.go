package db

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/rbac"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateDefaultAdmin creates a default admin user if ADMIN_EMAIL and ADMIN_PASSWORD are set
// and no users exist in the database. The RBAC enforcer must be initialized.
func CreateDefaultAdmin(db *gorm.DB) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	password := os.Getenv("ADMIN_PASSWORD")
	username := os.Getenv("ADMIN_USERNAME")

	if email == "" || password == "" {
		slog.Info("No ADMIN_EMAIL or ADMIN_PASSWORD set, skipping default admin creation")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		slog.Info("Users already exist, skipping default admin creation")
		return nil
	}

	_, err := CreateAdmin(db, email, password, username)
	return err
}

// CreateAdmin inserts a password user and grants it the admin role.
func CreateAdmin(db *gorm.DB, email, password, username string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        &email,
		PasswordHash: string(hashedPassword),
	}
	if username != "" {
		u := strings.ToLower(username)
		user.Username = &u
	}

	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}
	if err := rbac.MakeAdmin(user.ID); err != nil {
		return nil, fmt.Errorf("failed to grant admin role: %w", err)
	}

	slog.Info("Admin user created", "email", email, "user_id", user.ID)
	return &user, nil
}
