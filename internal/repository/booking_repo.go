package repository

import (
	"context"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, tx *gorm.DB, id string) (*models.Booking, error)
	FindAll(ctx context.Context, limit int) ([]models.Booking, error)
	FindByFarmer(ctx context.Context, farmerID string) ([]models.Booking, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, status models.BookingStatus) (int64, error)
	UpdateStatusIf(ctx context.Context, tx *gorm.DB, id string, from, to models.BookingStatus) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) (int64, error)
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, tx *gorm.DB, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindAll lists every booking in store order. A non-positive limit returns all rows.
func (r *bookingRepository) FindAll(ctx context.Context, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByFarmer(ctx context.Context, farmerID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("booking_date DESC, created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountByStatus(ctx context.Context, tx *gorm.DB, status models.BookingStatus) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// UpdateStatusIf sets the status only while the row still holds from.
// The returned row count is zero when another writer got there first.
func (r *bookingRepository) UpdateStatusIf(ctx context.Context, tx *gorm.DB, id string, from, to models.BookingStatus) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (r *bookingRepository) Delete(ctx context.Context, tx *gorm.DB, id string) (int64, error) {
	result := tx.WithContext(ctx).Delete(&models.Booking{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
