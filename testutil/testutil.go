package testutil

import (
	"fmt"
	"testing"
	"time"

	"push_API/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// in-memory SQLite 的每條連線是獨立資料庫，固定只用一條
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database connection: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Device{},
		&models.NotificationLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB cleans up test database
func CleanupTestDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

// CreateTestDevice creates a test device in the database
func CreateTestDevice(t *testing.T, db *gorm.DB, userID, token string) *models.Device {
	now := time.Now()
	device := &models.Device{
		UserID:         userID,
		ExpoPushToken:  token,
		Platform:       "ios",
		AppVersion:     "1.1.0",
		DeviceName:     "Test Device",
		DeviceModel:    "iPhone13,2",
		RegisteredAt:   now,
		LastActive:     now,
		TokenUpdatedAt: now,
	}

	if err := db.Create(device).Error; err != nil {
		t.Fatalf("Failed to create test device: %v", err)
	}

	return device
}
