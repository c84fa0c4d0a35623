package handler

import (
	"net/http"
	"strings"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/weather"
	"github.com/Eursukkul/booking-microservice/slot-service/pkg/ai"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InsightHandler serves the warehouse weather widget and spoilage prediction.
// Neither touches the booking workflow.
type InsightHandler struct {
	weather   *weather.Generator
	predictor ai.Predictor
	logger    *zap.Logger
}

func NewInsightHandler(w *weather.Generator, p ai.Predictor, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{weather: w, predictor: p, logger: logger}
}

func (h *InsightHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/warehouses/:id/weather", h.Weather)
	g.POST("/spoilage/predict", h.PredictSpoilage)
}

func (h *InsightHandler) Weather(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid warehouse id")
	}
	return c.JSON(http.StatusOK, h.weather.Current(id))
}

func (h *InsightHandler) PredictSpoilage(c echo.Context) error {
	var req dto.PredictSpoilageRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	if fields := dto.Validate(&req); fields != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Message: "validation failed",
			Errors:  fields,
		})
	}

	pred, err := h.predictor.PredictSpoilage(c.Request().Context(), ai.SpoilageInput{
		CropType:               strings.TrimSpace(req.CropType),
		Temperature:            req.Temperature,
		Humidity:               req.Humidity,
		StorageDays:            req.StorageDays,
		HistoricalSpoilageRate: req.HistoricalSpoilageRate,
	})
	if err != nil {
		h.logger.Error("spoilage prediction failed", zap.String("crop", req.CropType), zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, dto.ErrorResponse{
			Message:   "prediction service unavailable",
			Retryable: true,
		})
	}
	return c.JSON(http.StatusOK, pred)
}
