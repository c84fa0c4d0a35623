// Package app wires configuration, storage, the change bus and the HTTP API
// into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/Eursukkul/booking-microservice/slot-service/config"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/consumer"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/handler"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/live"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/middleware"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/service"
	"github.com/Eursukkul/booking-microservice/slot-service/internal/weather"
	"github.com/Eursukkul/booking-microservice/slot-service/pkg/ai"
	"github.com/Eursukkul/booking-microservice/slot-service/pkg/auth"
	"github.com/Eursukkul/booking-microservice/slot-service/pkg/database"
	"github.com/Eursukkul/booking-microservice/slot-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const serviceName = "slot-service"

type App struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	hub    *live.Hub
	echo   *echo.Echo

	closing      atomic.Bool
	publisher    *rabbitmq.Publisher
	mqConsumer   *rabbitmq.Consumer
	consumerDone <-chan struct{}
}

// OpenDB connects to the configured driver.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return database.NewSQLiteDB(cfg.SQLitePath)
	}
	return database.NewPostgresDB(cfg.DSN())
}

// New builds the server. When RabbitURL is set, changes travel through the
// slots exchange; otherwise they go straight into the in-process hub.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger, db: db, hub: live.NewHub(logger.Named("live"), 0)}

	var changes service.ChangePublisher = a.hub
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.SlotExchange, logger.Named("rabbitmq"))
		if err != nil {
			return nil, err
		}
		a.publisher = pub

		cons, err := rabbitmq.NewConsumer(cfg.RabbitURL, cfg.SlotExchange, replicaQueue(), consumer.BindingKey, logger.Named("rabbitmq"))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.mqConsumer = cons

		msgs, err := cons.Consume(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.consumerDone = consumer.NewSlotConsumer(a.hub, logger.Named("consumer")).Start(ctx, msgs)
		cp := consumer.NewChangePublisher(pub, a.hub, logger.Named("changes"))
		go a.failoverWhenConsumerStops(ctx, cp)
		changes = cp
	}

	predictor, err := newPredictor(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	bookingRepo := repository.NewBookingRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	bookingSvc := service.NewBookingService(bookingRepo, notifRepo, changes, a.hub, logger.Named("booking"),
		service.WithDeleteConfirmTTL(cfg.DeleteConfirmTTL))
	notifSvc := service.NewNotificationService(notifRepo)
	statsSvc := service.NewStatsService(bookingRepo, notifRepo)

	a.echo = newEcho(logger)
	a.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": serviceName})
	})

	api := a.echo.Group("/api/v1", a.authMiddleware())
	handler.NewBookingHandler(bookingSvc, logger.Named("handler")).RegisterRoutes(api)
	handler.NewNotificationHandler(notifSvc).RegisterRoutes(api)
	handler.NewAdminHandler(statsSvc).RegisterRoutes(api)
	handler.NewInsightHandler(weather.NewGenerator(time.Now().UnixNano(), nil), predictor, logger.Named("insight")).RegisterRoutes(api)

	return a, nil
}

type failoverer interface {
	Failover()
}

// failoverWhenConsumerStops switches to in-process delivery if the delivery
// channel closes while the app is still running. No replica would otherwise
// feed this one's subscribers.
func (a *App) failoverWhenConsumerStops(ctx context.Context, f failoverer) {
	<-a.consumerDone
	if a.closing.Load() || ctx.Err() != nil {
		return
	}
	f.Failover()
}

func newEcho(logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	return e
}

func (a *App) authMiddleware() echo.MiddlewareFunc {
	if a.cfg.DevAuth() {
		a.logger.Warn("AUTH_MODE=dev: identity is taken from query parameters")
		return middleware.DevAuthenticate()
	}
	return middleware.Authenticate(auth.NewSigner(a.cfg.JWTSecret))
}

func newPredictor(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ai.Predictor, error) {
	if cfg.GenAIAPIKey == "" {
		logger.Info("GENAI_API_KEY not set, using heuristic spoilage predictor")
		return ai.NewMock(), nil
	}
	p, err := ai.NewGenAI(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func replicaQueue() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = fmt.Sprintf("pid-%d", os.Getpid())
	}
	return serviceName + "." + host
}

// Handler exposes the HTTP API, mainly for tests.
func (a *App) Handler() http.Handler { return a.echo }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	// Request contexts derive from gctx so open live feeds end on shutdown.
	a.echo.Server.BaseContext = func(net.Listener) context.Context { return gctx }

	g.Go(func() error {
		a.logger.Info("slot service starting", zap.String("port", a.cfg.ServerPort), zap.String("db", a.cfg.DBDriver))
		if err := a.echo.Start(":" + a.cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutting down")
		if err := a.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (a *App) Close() {
	a.closing.Store(true)
	if a.mqConsumer != nil {
		a.mqConsumer.Close()
		if a.consumerDone != nil {
			<-a.consumerDone
		}
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
}
