package database

import (
	"fmt"
	"time"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	return db, nil
}

// Migrate creates or updates the bookings and notifications tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Booking{}, &models.Notification{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// Farmer history reads by farmer and date.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_farmer_date
		ON bookings (farmer_id, booking_date DESC)
	`).Error; err != nil {
		return fmt.Errorf("create farmer index: %w", err)
	}
	return nil
}
