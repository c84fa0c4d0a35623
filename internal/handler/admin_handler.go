package handler

import (
	"net/http"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/service"
	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	svc service.StatsService
}

func NewAdminHandler(svc service.StatsService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/admin/stats", h.Stats)
}

func (h *AdminHandler) Stats(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	stats, err := h.svc.Stats(c.Request().Context(), p)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.StatsResponse{
		TotalBookings:      stats.TotalBookings,
		ByStatus:           stats.ByStatus,
		TotalNotifications: stats.TotalNotifications,
	})
}
