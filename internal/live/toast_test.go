package live

import (
	"testing"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastTracker_InitialSnapshotNeverToasts(t *testing.T) {
	var tr ToastTracker
	initial := Snapshot{
		Bookings: []models.Booking{booking("a", "f1", 1), booking("b", "f1", 2), booking("c", "f2", 3)},
		// Even if a store reports the initial rows as additions.
		Changes: []models.BookingChange{
			{Type: models.ChangeAdded, Booking: booking("a", "f1", 1)},
			{Type: models.ChangeAdded, Booking: booking("b", "f1", 2)},
		},
		Initial: true,
	}

	assert.Empty(t, tr.Observe(initial))
}

func TestToastTracker_ToastsEveryLaterAddition(t *testing.T) {
	var tr ToastTracker
	tr.Observe(Snapshot{Initial: true})

	toasts := tr.Observe(Snapshot{Changes: []models.BookingChange{
		{Type: models.ChangeAdded, Booking: booking("x", "f1", 0)},
		{Type: models.ChangeModified, Booking: booking("a", "f1", 1)},
		{Type: models.ChangeAdded, Booking: booking("y", "f2", 0)},
	}})

	require.Len(t, toasts, 2)
	assert.Equal(t, "x", toasts[0].BookingID)
	assert.Equal(t, "New Booking Received!", toasts[0].Title)
	assert.Equal(t, "Farmer f1 booked a slot for 10 quintal of Tomatoes on 2024-09-01.", toasts[0].Description)
	assert.Equal(t, "y", toasts[1].BookingID)
}

func TestToastTracker_ShrinkingSnapshotStillToastsAdditions(t *testing.T) {
	var tr ToastTracker
	tr.Observe(Snapshot{Bookings: []models.Booking{booking("a", "f1", 1), booking("b", "f1", 2)}, Initial: true})

	// Two deletes and one add land together: the collection shrinks, but a booking was added.
	toasts := tr.Observe(Snapshot{
		Bookings: []models.Booking{booking("c", "f1", 3)},
		Changes: []models.BookingChange{
			{Type: models.ChangeRemoved, Booking: booking("a", "f1", 1)},
			{Type: models.ChangeRemoved, Booking: booking("b", "f1", 2)},
			{Type: models.ChangeAdded, Booking: booking("c", "f1", 3)},
		},
	})

	require.Len(t, toasts, 1)
	assert.Equal(t, "c", toasts[0].BookingID)
}

func TestToastTracker_EmptyInitialThenAdd(t *testing.T) {
	var tr ToastTracker
	assert.Empty(t, tr.Observe(Snapshot{Initial: true}))

	b := booking("a", "", 0)
	b.FarmerName = ""
	toasts := tr.Observe(Snapshot{Changes: []models.BookingChange{{Type: models.ChangeAdded, Booking: b}}})
	require.Len(t, toasts, 1)
	assert.Contains(t, toasts[0].Description, "A farmer booked")
}
