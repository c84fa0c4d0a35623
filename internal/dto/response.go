package dto

import (
	"time"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/live"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
)

type BookingResponse struct {
	ID           string               `json:"id"`
	FarmerID     string               `json:"farmerId"`
	FarmerName   string               `json:"farmerName"`
	FarmerAvatar string               `json:"farmerAvatar,omitempty"`
	Warehouse    string               `json:"warehouse"`
	CropType     string               `json:"cropType"`
	Quantity     float64              `json:"quantity"`
	Unit         models.Unit          `json:"unit"`
	BookingDate  string               `json:"bookingDate"`
	Status       models.BookingStatus `json:"status"`
	CreatedAt    time.Time            `json:"createdAt"`
}

type CreateBookingResponse struct {
	Message string          `json:"message"`
	Booking BookingResponse `json:"booking"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int64             `json:"total"`
	HasMore  bool              `json:"hasMore"`
}

type DeletionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type NotificationResponse struct {
	ID          string                  `json:"id"`
	Icon        models.NotificationIcon `json:"icon"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Timestamp   time.Time               `json:"timestamp"`
	Read        bool                    `json:"read"`
}

type SnapshotEvent struct {
	Initial  bool              `json:"initial"`
	Bookings []BookingResponse `json:"bookings"`
	Changes  []ChangeResponse  `json:"changes"`
}

type ChangeResponse struct {
	Type    models.ChangeType `json:"type"`
	Booking BookingResponse   `json:"booking"`
}

type StatsResponse struct {
	TotalBookings      int64                          `json:"totalBookings"`
	ByStatus           map[models.BookingStatus]int64 `json:"byStatus"`
	TotalNotifications int64                          `json:"totalNotifications"`
}

type ErrorResponse struct {
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		FarmerID:     b.FarmerID,
		FarmerName:   b.FarmerName,
		FarmerAvatar: b.FarmerAvatar,
		Warehouse:    b.Warehouse,
		CropType:     b.CropType,
		Quantity:     b.Quantity,
		Unit:         b.Unit,
		BookingDate:  b.BookingDate.Format(time.DateOnly),
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
	}
}

func ToBookingResponses(bs []models.Booking) []BookingResponse {
	resp := make([]BookingResponse, len(bs))
	for i := range bs {
		resp[i] = ToBookingResponse(&bs[i])
	}
	return resp
}

func ToNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Icon:        n.Icon,
		Title:       n.Title,
		Description: n.Description,
		Timestamp:   n.Timestamp,
		Read:        n.Read,
	}
}

func ToSnapshotEvent(s live.Snapshot) SnapshotEvent {
	changes := make([]ChangeResponse, len(s.Changes))
	for i, c := range s.Changes {
		changes[i] = ChangeResponse{Type: c.Type, Booking: ToBookingResponse(&c.Booking)}
	}
	return SnapshotEvent{
		Initial:  s.Initial,
		Bookings: ToBookingResponses(s.Bookings),
		Changes:  changes,
	}
}
