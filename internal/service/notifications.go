package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/slot-service/pkg/auth"
)

func statusNotification(b *models.Booking, status models.BookingStatus) *models.Notification {
	n := &models.Notification{UserID: b.FarmerID}
	switch status {
	case models.StatusAccepted:
		n.Icon = models.IconAccepted
		n.Title = "Booking Accepted!"
		n.Description = fmt.Sprintf("Your booking for %s of %s has been accepted.", b.Amount(), b.CropType)
	default:
		n.Icon = models.IconRejected
		n.Title = "Booking Rejected"
		n.Description = fmt.Sprintf("Your booking for %s of %s has been rejected.", b.Amount(), b.CropType)
	}
	return n
}

func removalNotification(b *models.Booking) *models.Notification {
	return &models.Notification{
		UserID: b.FarmerID,
		Icon:   models.IconRemoved,
		Title:  "Booking Removed",
		Description: fmt.Sprintf("Your booking for %s of %s at %s on %s has been removed by the warehouse.",
			b.Amount(), b.CropType, b.Warehouse, b.BookingDate.Format(time.DateOnly)),
	}
}

type NotificationService interface {
	ListForPrincipal(ctx context.Context, p auth.Principal) ([]models.Notification, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListForPrincipal(ctx context.Context, p auth.Principal) ([]models.Notification, error) {
	out, err := s.repo.FindByUser(ctx, p.ID)
	if err != nil {
		return nil, storeError(err)
	}
	return out, nil
}
