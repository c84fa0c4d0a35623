package handler

import (
	"net/http"
	"strconv"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type BookingHandler struct {
	svc    service.BookingService
	logger *zap.Logger
}

func NewBookingHandler(svc service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

func (h *BookingHandler) RegisterRoutes(g *echo.Group) {
	slots := g.Group("/slots")
	slots.POST("", h.CreateBooking)
	slots.GET("", h.ListBookings)
	slots.GET("/stream", h.StreamAll)
	slots.POST("/:id/accept", h.AcceptBooking)
	slots.POST("/:id/reject", h.RejectBooking)
	slots.POST("/:id/deletion", h.RequestDeletion)
	slots.DELETE("/:id/deletion", h.DismissDeletion)
	slots.DELETE("/:id", h.DeleteBooking)

	me := g.Group("/farmers/me/slots")
	me.GET("", h.FarmerHistory)
	me.GET("/stream", h.StreamFarmer)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	booking, err := h.svc.SubmitBooking(c.Request().Context(), p, req)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, dto.CreateBookingResponse{
		Message: "Slot booked successfully",
		Booking: dto.ToBookingResponse(booking),
	})
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	expanded := false
	if s := c.QueryParam("expanded"); s != "" {
		expanded, err = strconv.ParseBool(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "expanded must be a boolean")
		}
	}

	page, err := h.svc.ListBookings(c.Request().Context(), p, expanded)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, dto.BookingListResponse{
		Bookings: dto.ToBookingResponses(page.Bookings),
		Total:    page.Total,
		HasMore:  page.HasMore,
	})
}

func (h *BookingHandler) AcceptBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	booking, err := h.svc.AcceptBooking(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) RejectBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	booking, err := h.svc.RejectBooking(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// RequestDeletion opens the confirmation dialog. Nothing is deleted yet.
func (h *BookingHandler) RequestDeletion(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	conf, err := h.svc.RequestDeletion(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, dto.DeletionResponse{Token: conf.Token, ExpiresAt: conf.ExpiresAt})
}

func (h *BookingHandler) DismissDeletion(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	if err := h.svc.DismissDeletion(c.Request().Context(), p, c.Param("id"), c.QueryParam("token")); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	if err := h.svc.ConfirmDeletion(c.Request().Context(), p, c.Param("id"), c.QueryParam("token")); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHandler) FarmerHistory(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	bookings, err := h.svc.FarmerHistory(c.Request().Context(), p)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponses(bookings))
}
