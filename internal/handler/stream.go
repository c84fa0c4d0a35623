package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/live"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HeartbeatInterval keeps idle SSE connections open through proxies.
var HeartbeatInterval = 25 * time.Second

type watchFunc func(ctx context.Context) (<-chan live.Snapshot, error)

// StreamAll is the warehouse panel's live feed. Additions after the first
// snapshot are also sent as toast events.
func (h *BookingHandler) StreamAll(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return h.stream(c, true, func(ctx context.Context) (<-chan live.Snapshot, error) {
		return h.svc.WatchAll(ctx, p)
	})
}

func (h *BookingHandler) StreamFarmer(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return h.stream(c, false, func(ctx context.Context) (<-chan live.Snapshot, error) {
		return h.svc.WatchFarmer(ctx, p)
	})
}

func (h *BookingHandler) stream(c echo.Context, toasts bool, watch watchFunc) error {
	ctx := c.Request().Context()
	snaps, err := watch(ctx)
	if errors.Is(err, service.ErrForbidden) {
		return serviceError(err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	if err != nil {
		// The client keeps its last snapshot; it may reconnect on its own.
		h.logger.Warn("live feed unavailable", zap.String("path", c.Path()), zap.Error(err))
		return writeEvent(res, "error", dto.ErrorResponse{Message: "live updates unavailable", Retryable: true})
	}

	var tracker live.ToastTracker
	heartbeat := time.NewTicker(HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case snap, ok := <-snaps:
			if !ok {
				return nil
			}
			if err := writeEvent(res, "snapshot", dto.ToSnapshotEvent(snap)); err != nil {
				h.logger.Debug("sse client gone", zap.Error(err))
				return nil
			}
			if !toasts {
				continue
			}
			for _, t := range tracker.Observe(snap) {
				if err := writeEvent(res, "toast", t); err != nil {
					return nil
				}
			}
		}
	}
}

func writeEvent(res *echo.Response, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
