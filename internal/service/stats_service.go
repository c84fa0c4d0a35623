package service

import (
	"context"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/slot-service/pkg/auth"
)

type Stats struct {
	TotalBookings      int64
	ByStatus           map[models.BookingStatus]int64
	TotalNotifications int64
}

type StatsService interface {
	Stats(ctx context.Context, p auth.Principal) (*Stats, error)
}

type statsService struct {
	bookingRepo repository.BookingRepository
	notifRepo   repository.NotificationRepository
}

func NewStatsService(bookingRepo repository.BookingRepository, notifRepo repository.NotificationRepository) StatsService {
	return &statsService{bookingRepo: bookingRepo, notifRepo: notifRepo}
}

func (s *statsService) Stats(ctx context.Context, p auth.Principal) (*Stats, error) {
	if p.Role != auth.RoleAdmin {
		return nil, ErrForbidden
	}

	total, err := s.bookingRepo.CountAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	byStatus := make(map[models.BookingStatus]int64, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		n, err := s.bookingRepo.CountByStatus(ctx, s.bookingRepo.GetDB(), st)
		if err != nil {
			return nil, storeError(err)
		}
		byStatus[st] = n
	}
	notifs, err := s.notifRepo.Count(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	return &Stats{TotalBookings: total, ByStatus: byStatus, TotalNotifications: notifs}, nil
}
