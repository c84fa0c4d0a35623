package repository

import (
	"context"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, n *models.Notification) error
	FindByUser(ctx context.Context, userID string) ([]models.Notification, error)
	Count(ctx context.Context) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create inserts within tx so the caller can pair it with the booking write.
func (r *notificationRepository) Create(ctx context.Context, tx *gorm.DB, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return tx.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var out []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Count(&count).Error
	return count, err
}
