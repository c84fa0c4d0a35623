package live

import (
	"fmt"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
)

type phase int

const (
	awaitingFirstSnapshot phase = iota
	steadyState
)

// Toast is a "new booking" notice shown on the warehouse panel.
type Toast struct {
	BookingID   string `json:"bookingId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ToastTracker decides which snapshots announce new bookings. The first
// snapshot is the initial load and never toasts, however many rows it holds.
// The phase is tracked explicitly; record counts are never consulted, since a
// later snapshot may shrink through concurrent deletes.
type ToastTracker struct {
	phase phase
}

func (t *ToastTracker) Observe(s Snapshot) []Toast {
	if t.phase == awaitingFirstSnapshot {
		t.phase = steadyState
		return nil
	}

	var toasts []Toast
	for _, c := range s.Changes {
		if c.Type != models.ChangeAdded {
			continue
		}
		b := c.Booking
		toasts = append(toasts, Toast{
			BookingID: b.ID,
			Title:     "New Booking Received!",
			Description: fmt.Sprintf("%s booked a slot for %s of %s on %s.",
				displayName(b), b.Amount(), b.CropType, b.BookingDate.Format("2006-01-02")),
		})
	}
	return toasts
}

func displayName(b models.Booking) string {
	if b.FarmerName != "" {
		return b.FarmerName
	}
	return "A farmer"
}
