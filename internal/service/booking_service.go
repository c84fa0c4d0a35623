package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/live"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/slot-service/pkg/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PanelPageSize is the number of rows the warehouse panel shows collapsed.
const PanelPageSize = 4

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrNotPending           = errors.New("booking is no longer upcoming")
	ErrConfirmationRequired = errors.New("deletion must be confirmed")
	ErrForbidden            = errors.New("operation not permitted for this role")
	ErrStoreUnavailable     = errors.New("booking store unavailable, please retry")
)

// ValidationError carries one message per rejected form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+" "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ChangePublisher receives every committed booking change.
type ChangePublisher interface {
	Publish(ctx context.Context, change models.BookingChange) error
}

// Watcher opens live subscriptions on the bookings collection.
type Watcher interface {
	Subscribe(ctx context.Context, q live.Query, load live.Loader) (<-chan live.Snapshot, error)
}

type BookingPage struct {
	Bookings []models.Booking
	Total    int64
	HasMore  bool
}

type BookingService interface {
	SubmitBooking(ctx context.Context, p auth.Principal, req dto.CreateBookingRequest) (*models.Booking, error)
	AcceptBooking(ctx context.Context, p auth.Principal, id string) (*models.Booking, error)
	RejectBooking(ctx context.Context, p auth.Principal, id string) (*models.Booking, error)
	RequestDeletion(ctx context.Context, p auth.Principal, id string) (*Confirmation, error)
	DismissDeletion(ctx context.Context, p auth.Principal, id, token string) error
	ConfirmDeletion(ctx context.Context, p auth.Principal, id, token string) error
	ListBookings(ctx context.Context, p auth.Principal, expanded bool) (*BookingPage, error)
	FarmerHistory(ctx context.Context, p auth.Principal) ([]models.Booking, error)
	WatchAll(ctx context.Context, p auth.Principal) (<-chan live.Snapshot, error)
	WatchFarmer(ctx context.Context, p auth.Principal) (<-chan live.Snapshot, error)
}

type Option func(*bookingService)

// WithDeleteConfirmTTL sets how long a delete dialog stays open.
func WithDeleteConfirmTTL(ttl time.Duration) Option {
	return func(s *bookingService) { s.confirmTTL = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(s *bookingService) { s.now = now }
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	notifRepo   repository.NotificationRepository
	publisher   ChangePublisher
	watcher     Watcher
	logger      *zap.Logger

	confirmTTL time.Duration
	now        func() time.Time
	pending    *confirmations
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	notifRepo repository.NotificationRepository,
	publisher ChangePublisher,
	watcher Watcher,
	logger *zap.Logger,
	opts ...Option,
) BookingService {
	s := &bookingService{
		bookingRepo: bookingRepo,
		notifRepo:   notifRepo,
		publisher:   publisher,
		watcher:     watcher,
		logger:      logger,
		confirmTTL:  2 * time.Minute,
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.pending = newConfirmations(s.confirmTTL, s.now)
	return s
}

func (s *bookingService) SubmitBooking(ctx context.Context, p auth.Principal, req dto.CreateBookingRequest) (*models.Booking, error) {
	if p.Role != auth.RoleFarmer {
		return nil, ErrForbidden
	}
	if fields := dto.Validate(&req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	date, err := req.Date()
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"bookingDate": "must be a valid date (YYYY-MM-DD)"}}
	}

	booking := &models.Booking{
		FarmerID:     p.ID,
		FarmerName:   p.Name,
		FarmerAvatar: p.Avatar,
		Warehouse:    strings.TrimSpace(req.Warehouse),
		CropType:     strings.TrimSpace(req.CropType),
		Quantity:     req.Quantity,
		Unit:         models.Unit(req.Unit),
		BookingDate:  date,
		Status:       models.StatusUpcoming,
	}
	if err := s.bookingRepo.Create(ctx, s.bookingRepo.GetDB(), booking); err != nil {
		s.logger.Error("insert booking failed", zap.String("farmer_id", p.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.logger.Info("booking submitted",
		zap.String("booking_id", booking.ID),
		zap.String("farmer_id", booking.FarmerID),
		zap.String("warehouse", booking.Warehouse))
	s.publish(ctx, models.ChangeAdded, *booking)
	return booking, nil
}

func (s *bookingService) AcceptBooking(ctx context.Context, p auth.Principal, id string) (*models.Booking, error) {
	return s.transition(ctx, p, id, models.StatusAccepted)
}

func (s *bookingService) RejectBooking(ctx context.Context, p auth.Principal, id string) (*models.Booking, error) {
	return s.transition(ctx, p, id, models.StatusRejected)
}

// transition moves an Upcoming booking to next and records the farmer's
// notification in the same transaction.
func (s *bookingService) transition(ctx context.Context, p auth.Principal, id string, next models.BookingStatus) (*models.Booking, error) {
	if !isOperator(p) {
		return nil, ErrForbidden
	}

	var result *models.Booking
	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByID(ctx, tx, id)
		if err != nil {
			return storeError(err)
		}
		if !booking.CanTransition(next) {
			return ErrNotPending
		}

		// Conditional on the status read above; zero rows means a concurrent
		// operator already decided this booking.
		n, err := s.bookingRepo.UpdateStatusIf(ctx, tx, id, models.StatusUpcoming, next)
		if err != nil {
			return storeError(err)
		}
		if n == 0 {
			return ErrNotPending
		}

		if err := s.notifRepo.Create(ctx, tx, statusNotification(booking, next)); err != nil {
			return storeError(err)
		}

		updated, err := s.bookingRepo.FindByID(ctx, tx, id)
		if err != nil {
			return storeError(err)
		}
		result = updated
		return nil
	})
	if err != nil {
		s.logFailure("status change failed", id, p, err)
		return nil, storeError(err)
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", id),
		zap.String("status", string(next)),
		zap.String("operator_id", p.ID))
	s.publish(ctx, models.ChangeModified, *result)
	return result, nil
}

func (s *bookingService) RequestDeletion(ctx context.Context, p auth.Principal, id string) (*Confirmation, error) {
	if !isOperator(p) {
		return nil, ErrForbidden
	}
	if _, err := s.bookingRepo.FindByID(ctx, s.bookingRepo.GetDB(), id); err != nil {
		return nil, storeError(err)
	}
	c := s.pending.open(id, p.ID)
	return &c, nil
}

func (s *bookingService) DismissDeletion(ctx context.Context, p auth.Principal, id, token string) error {
	if !isOperator(p) {
		return ErrForbidden
	}
	s.pending.close(id, token)
	return nil
}

// ConfirmDeletion removes the booking permanently and notifies its farmer.
// Without a live token from RequestDeletion nothing is written.
func (s *bookingService) ConfirmDeletion(ctx context.Context, p auth.Principal, id, token string) error {
	if !isOperator(p) {
		return ErrForbidden
	}
	if token == "" || !s.pending.valid(id, p.ID, token) {
		return ErrConfirmationRequired
	}

	var removed *models.Booking
	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByID(ctx, tx, id)
		if err != nil {
			return storeError(err)
		}
		n, err := s.bookingRepo.Delete(ctx, tx, id)
		if err != nil {
			return storeError(err)
		}
		if n == 0 {
			return ErrBookingNotFound
		}
		if err := s.notifRepo.Create(ctx, tx, removalNotification(booking)); err != nil {
			return storeError(err)
		}
		removed = booking
		return nil
	})
	if err != nil {
		s.logFailure("delete failed", id, p, err)
		return storeError(err)
	}

	s.pending.close(id, "")
	s.logger.Info("booking deleted", zap.String("booking_id", id), zap.String("operator_id", p.ID))
	s.publish(ctx, models.ChangeRemoved, *removed)
	return nil
}

func (s *bookingService) ListBookings(ctx context.Context, p auth.Principal, expanded bool) (*BookingPage, error) {
	if !isOperator(p) {
		return nil, ErrForbidden
	}
	limit := PanelPageSize
	if expanded {
		limit = 0
	}
	bookings, err := s.bookingRepo.FindAll(ctx, limit)
	if err != nil {
		return nil, storeError(err)
	}
	total, err := s.bookingRepo.CountAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return &BookingPage{
		Bookings: bookings,
		Total:    total,
		HasMore:  int64(len(bookings)) < total,
	}, nil
}

func (s *bookingService) FarmerHistory(ctx context.Context, p auth.Principal) ([]models.Booking, error) {
	if p.Role != auth.RoleFarmer {
		return nil, ErrForbidden
	}
	bookings, err := s.bookingRepo.FindByFarmer(ctx, p.ID)
	if err != nil {
		return nil, storeError(err)
	}
	return bookings, nil
}

func (s *bookingService) WatchAll(ctx context.Context, p auth.Principal) (<-chan live.Snapshot, error) {
	if !isOperator(p) {
		return nil, ErrForbidden
	}
	return s.watch(ctx, live.Query{}, func(ctx context.Context) ([]models.Booking, error) {
		return s.bookingRepo.FindAll(ctx, 0)
	})
}

func (s *bookingService) WatchFarmer(ctx context.Context, p auth.Principal) (<-chan live.Snapshot, error) {
	if p.Role != auth.RoleFarmer {
		return nil, ErrForbidden
	}
	return s.watch(ctx, live.Query{FarmerID: p.ID, ByDateDesc: true}, func(ctx context.Context) ([]models.Booking, error) {
		return s.bookingRepo.FindByFarmer(ctx, p.ID)
	})
}

func (s *bookingService) watch(ctx context.Context, q live.Query, load live.Loader) (<-chan live.Snapshot, error) {
	ch, err := s.watcher.Subscribe(ctx, q, load)
	if err != nil {
		s.logger.Warn("subscription failed", zap.String("farmer_filter", q.FarmerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return ch, nil
}

// publish is best-effort: the write is already committed.
func (s *bookingService) publish(ctx context.Context, t models.ChangeType, b models.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, models.BookingChange{Type: t, Booking: b}); err != nil {
		s.logger.Warn("publish booking change failed",
			zap.String("booking_id", b.ID),
			zap.String("change", string(t)),
			zap.Error(err))
	}
}

func (s *bookingService) logFailure(msg, id string, p auth.Principal, err error) {
	if errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrNotPending) {
		s.logger.Info(msg, zap.String("booking_id", id), zap.String("operator_id", p.ID), zap.Error(err))
		return
	}
	s.logger.Error(msg, zap.String("booking_id", id), zap.String("operator_id", p.ID), zap.Error(err))
}

func isOperator(p auth.Principal) bool {
	return p.Role == auth.RoleWarehouseManager || p.Role == auth.RoleAdmin
}

// storeError maps gorm errors onto service errors and leaves service errors untouched.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrBookingNotFound):
		return ErrBookingNotFound
	case errors.Is(err, ErrNotPending), errors.Is(err, ErrStoreUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
