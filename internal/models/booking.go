package models

import (
	"strconv"
	"time"
)

type BookingStatus string

const (
	StatusUpcoming  BookingStatus = "Upcoming"
	StatusAccepted  BookingStatus = "Accepted"
	StatusRejected  BookingStatus = "Rejected"
	StatusCompleted BookingStatus = "Completed"
	StatusCancelled BookingStatus = "Cancelled"
)

// AllStatuses lists every status in display order.
var AllStatuses = []BookingStatus{
	StatusUpcoming,
	StatusAccepted,
	StatusRejected,
	StatusCompleted,
	StatusCancelled,
}

type Unit string

const (
	UnitQuintal Unit = "quintal"
	UnitTon     Unit = "ton"
	UnitKg      Unit = "kg"
)

// Booking is a farmer's warehouse slot reservation.
type Booking struct {
	ID           string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FarmerID     string        `gorm:"not null;index;<-:create" json:"farmerId"`
	FarmerName   string        `json:"farmerName"`
	FarmerAvatar string        `json:"farmerAvatar"`
	Warehouse    string        `gorm:"not null" json:"warehouse"`
	CropType     string        `gorm:"not null" json:"cropType"`
	Quantity     float64       `gorm:"not null" json:"quantity"`
	Unit         Unit          `gorm:"type:varchar(16);not null" json:"unit"`
	BookingDate  time.Time     `gorm:"not null;index" json:"bookingDate"`
	Status       BookingStatus `gorm:"type:varchar(20);not null;default:'Upcoming';index" json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// CanTransition reports whether the warehouse may move the booking to next.
// Only Upcoming bookings can be accepted or rejected.
func (b *Booking) CanTransition(next BookingStatus) bool {
	if b.Status != StatusUpcoming {
		return false
	}
	return next == StatusAccepted || next == StatusRejected
}

// Amount renders quantity and unit without trailing zeros, e.g. "10 quintal".
func (b *Booking) Amount() string {
	return strconv.FormatFloat(b.Quantity, 'f', -1, 64) + " " + string(b.Unit)
}
