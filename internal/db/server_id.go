package db

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrConfigNotSet is returned by GetConfigValue for a missing key.
var ErrConfigNotSet = errors.New("server config key not set")

// GetConfigValue reads a server-wide key.
func GetConfigValue(db *gorm.DB, key string) (string, error) {
	var row models.ServerConfig
	err := db.Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrConfigNotSet
	}
	if err != nil {
		return "", fmt.Errorf("failed to query server config: %w", err)
	}
	return row.Value, nil
}

// SetConfigValue upserts a server-wide key.
func SetConfigValue(db *gorm.DB, key, value string) error {
	row := models.ServerConfig{Key: key, Value: value}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to store server config %q: %w", key, err)
	}
	return nil
}

// DeleteConfigValue removes a key; a missing key is not an error.
func DeleteConfigValue(db *gorm.DB, key string) error {
	return db.Where("key = ?", key).Delete(&models.ServerConfig{}).Error
}

// GetOrCreateServerID retrieves the server ID, generating and storing one on
// first start. Call after migrations.
func GetOrCreateServerID(db *gorm.DB) (string, error) {
	id, err := GetConfigValue(db, models.ServerConfigKeyServerID)
	if err == nil {
		slog.Info("Found existing server ID", "server_id", id)
		return id, nil
	}
	if !errors.Is(err, ErrConfigNotSet) {
		return "", err
	}

	id = uuid.New().String()
	if err := db.Create(&models.ServerConfig{Key: models.ServerConfigKeyServerID, Value: id}).Error; err != nil {
		return "", fmt.Errorf("failed to create server ID: %w", err)
	}
	slog.Info("Generated new server ID", "server_id", id)
	return id, nil
}

// GetServerID retrieves the server ID.
// Returns an error if the server ID has not been initialized.
func GetServerID(db *gorm.DB) (string, error) {
	id, err := GetConfigValue(db, models.ServerConfigKeyServerID)
	if errors.Is(err, ErrConfigNotSet) {
		return "", fmt.Errorf("server ID not initialized")
	}
	return id, err
}
