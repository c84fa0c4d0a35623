package consumer

import (
	"context"
	"encoding/json"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// BindingKey matches every slot change routing key.
const BindingKey = "slot.*"

// Sink receives decoded changes; the live hub in production.
type Sink interface {
	Publish(ctx context.Context, change models.BookingChange) error
}

type SlotConsumer struct {
	sink   Sink
	logger *zap.Logger
}

func NewSlotConsumer(sink Sink, logger *zap.Logger) *SlotConsumer {
	return &SlotConsumer{sink: sink, logger: logger}
}

// Start forwards deliveries to the sink until msgs closes. The returned
// channel closes once the loop has exited.
func (sc *SlotConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			sc.handleMessage(ctx, msg)
		}
		sc.logger.Info("delivery channel closed, stopping slot consumer")
	}()
	return done
}

func (sc *SlotConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var change models.BookingChange
	if err := json.Unmarshal(msg.Body, &change); err != nil || change.Booking.ID == "" {
		sc.logger.Warn("dropping malformed slot change",
			zap.String("routing_key", msg.RoutingKey),
			zap.Error(err))
		msg.Nack(false, false)
		return
	}

	if err := sc.sink.Publish(ctx, change); err != nil {
		sc.logger.Error("forward slot change failed",
			zap.String("booking_id", change.Booking.ID),
			zap.Error(err))
		msg.Nack(false, true) // requeue
		return
	}

	sc.logger.Debug("slot change received",
		zap.String("booking_id", change.Booking.ID),
		zap.String("change", string(change.Type)))
	msg.Ack(false)
}
