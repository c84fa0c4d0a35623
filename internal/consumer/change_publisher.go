package consumer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
	"go.uber.org/zap"
)

// MessagePublisher is satisfied by *rabbitmq.Publisher.
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// LocalSink is this replica's live hub.
type LocalSink interface {
	Sink
	Resync()
}

// ChangePublisher sends committed slot changes onto the change bus. Every
// replica, this one included, reads them back through SlotConsumer.
//
// When the bus rejects a change it is handed to the local sink instead, so
// this replica's feeds still see the write. After Failover every change goes
// straight to the local sink.
type ChangePublisher struct {
	pub    MessagePublisher
	local  LocalSink
	direct atomic.Bool
	logger *zap.Logger
}

func NewChangePublisher(pub MessagePublisher, local LocalSink, logger *zap.Logger) *ChangePublisher {
	return &ChangePublisher{pub: pub, local: local, logger: logger}
}

func (p *ChangePublisher) Publish(ctx context.Context, change models.BookingChange) error {
	if p.direct.Load() {
		return p.local.Publish(ctx, change)
	}
	if err := p.pub.Publish(ctx, change.RoutingKey(), change); err != nil {
		if lerr := p.local.Publish(ctx, change); lerr != nil {
			return errors.Join(fmt.Errorf("change bus: %w", err), lerr)
		}
		return fmt.Errorf("change bus, delivered locally only: %w", err)
	}
	return nil
}

// Failover stops routing changes through the bus. Local subscribers reload
// because changes may have been missed while the bus was unreachable.
func (p *ChangePublisher) Failover() {
	if !p.direct.CompareAndSwap(false, true) {
		return
	}
	p.logger.Error("change bus consumer stopped, publishing changes to this replica only")
	p.local.Resync()
}

// Direct reports whether Failover has happened.
func (p *ChangePublisher) Direct() bool { return p.direct.Load() }
