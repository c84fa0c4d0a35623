package models

type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// BookingChange describes one committed mutation of the bookings collection.
// Removed changes carry the last known state of the booking.
type BookingChange struct {
	Type    ChangeType `json:"type"`
	Booking Booking    `json:"booking"`
}

// RoutingKey is the change-bus routing key for the change.
func (c BookingChange) RoutingKey() string {
	return "slot." + string(c.Type)
}
