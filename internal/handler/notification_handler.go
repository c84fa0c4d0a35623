package handler

import (
	"net/http"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/service"
	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/notifications", h.ListNotifications)
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	notifs, err := h.svc.ListForPrincipal(c.Request().Context(), p)
	if err != nil {
		return serviceError(err)
	}

	resp := make([]dto.NotificationResponse, len(notifs))
	for i := range notifs {
		resp[i] = dto.ToNotificationResponse(&notifs[i])
	}
	return c.JSON(http.StatusOK, resp)
}
