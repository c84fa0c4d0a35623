package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() CreateBookingRequest {
	return CreateBookingRequest{
		Warehouse:   "Nashik Cold Storage",
		CropType:    "Tomatoes",
		Quantity:    10,
		Unit:        "quintal",
		BookingDate: "2024-09-01",
	}
}

func TestValidate_Valid(t *testing.T) {
	req := validRequest()
	assert.Nil(t, Validate(&req))
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateBookingRequest)
		field  string
		msg    string
	}{
		{"empty warehouse", func(r *CreateBookingRequest) { r.Warehouse = "" }, "warehouse", "is required"},
		{"blank crop", func(r *CreateBookingRequest) { r.CropType = "   " }, "cropType", "is required"},
		{"zero quantity", func(r *CreateBookingRequest) { r.Quantity = 0 }, "quantity", "must be greater than 0"},
		{"negative quantity", func(r *CreateBookingRequest) { r.Quantity = -3 }, "quantity", "must be greater than 0"},
		{"missing unit", func(r *CreateBookingRequest) { r.Unit = "" }, "unit", "is required"},
		{"unknown unit", func(r *CreateBookingRequest) { r.Unit = "crate" }, "unit", "must be one of: quintal ton kg"},
		{"bad date", func(r *CreateBookingRequest) { r.BookingDate = "01/09/2024" }, "bookingDate", "must be a valid date (YYYY-MM-DD)"},
		{"impossible date", func(r *CreateBookingRequest) { r.BookingDate = "2024-02-31" }, "bookingDate", "must be a valid date (YYYY-MM-DD)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			errs := Validate(&req)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.msg, errs[tt.field])
		})
	}
}

func TestParseCalendarDate(t *testing.T) {
	d, err := ParseCalendarDate("2024-09-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseCalendarDate("2024-09-01T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseCalendarDate("tomorrow")
	assert.Error(t, err)
}
