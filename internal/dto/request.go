package dto

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type CreateBookingRequest struct {
	Warehouse   string  `json:"warehouse" validate:"required,notblank"`
	CropType    string  `json:"cropType" validate:"required,notblank"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	Unit        string  `json:"unit" validate:"required,oneof=quintal ton kg"`
	BookingDate string  `json:"bookingDate" validate:"required,calendardate"`
}

// Date returns the booking date truncated to a UTC calendar day.
func (r *CreateBookingRequest) Date() (time.Time, error) {
	return ParseCalendarDate(r.BookingDate)
}

type PredictSpoilageRequest struct {
	CropType               string  `json:"cropType" validate:"required,notblank"`
	Temperature            float64 `json:"temperature" validate:"gte=-50,lte=70"`
	Humidity               float64 `json:"humidity" validate:"gte=0,lte=100"`
	StorageDays            int     `json:"storageDays" validate:"gte=0"`
	HistoricalSpoilageRate float64 `json:"historicalSpoilageRate" validate:"gte=0,lte=100"`
}

// ParseCalendarDate accepts "2006-01-02" or an RFC3339 timestamp.
func ParseCalendarDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
		_, err := ParseCalendarDate(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks v against its struct tags and returns one message per
// failing field, keyed by JSON name. A nil map means v is valid.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "calendardate":
		return "must be a valid date (YYYY-MM-DD)"
	default:
		return "is invalid"
	}
}
