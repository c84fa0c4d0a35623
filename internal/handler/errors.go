package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/middleware"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/service"
	"github.com/Eursukkul/booking-microservice/slot-service/pkg/auth"
	"github.com/labstack/echo/v4"
)

// serviceError maps service errors onto HTTP errors for middleware.ErrorHandler.
func serviceError(err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Message: "validation failed",
			Errors:  verr.Fields,
		})
	case errors.Is(err, service.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotPending):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrConfirmationRequired):
		return echo.NewHTTPError(http.StatusPreconditionRequired, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, dto.ErrorResponse{
			Message:   service.ErrStoreUnavailable.Error(),
			Retryable: true,
		})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// bindError turns a JSON value of the wrong type into a per-field 422.
// Anything else is a malformed body.
func bindError(err error) error {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Message: "validation failed",
			Errors:  map[string]string{ute.Field: typeMessage(ute.Type)},
		})
	}
	return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
}

func typeMessage(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be a whole number"
	case reflect.String:
		return "must be a string"
	default:
		return "is invalid"
	}
}

func principal(c echo.Context) (auth.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return auth.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return p, nil
}
