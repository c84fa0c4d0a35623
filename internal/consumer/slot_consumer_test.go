package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- fakes ---

type fakeAck struct {
	mu      sync.Mutex
	acked   int
	nacked  int
	requeue bool
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked++
	return nil
}

func (a *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type mockSink struct {
	publishFn func(ctx context.Context, change models.BookingChange) error
}

func (m *mockSink) Publish(ctx context.Context, change models.BookingChange) error {
	return m.publishFn(ctx, change)
}

type fakeLocal struct {
	mu      sync.Mutex
	changes []models.BookingChange
	resyncs int
}

func (l *fakeLocal) Publish(_ context.Context, change models.BookingChange) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, change)
	return nil
}

func (l *fakeLocal) Resync() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resyncs++
}

func (l *fakeLocal) received() []models.BookingChange {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.changes
}

type mockMessagePublisher struct {
	publishFn func(ctx context.Context, routingKey string, payload any) error
}

func (m *mockMessagePublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	return m.publishFn(ctx, routingKey, payload)
}

func delivery(t *testing.T, ack *fakeAck, change models.BookingChange) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(change)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body, RoutingKey: change.RoutingKey()}
}

// --- tests ---

func TestHandleMessage_ForwardsAndAcks(t *testing.T) {
	var got models.BookingChange
	sc := NewSlotConsumer(&mockSink{publishFn: func(_ context.Context, c models.BookingChange) error {
		got = c
		return nil
	}}, zap.NewNop())
	ack := &fakeAck{}
	change := models.BookingChange{
		Type:    models.ChangeModified,
		Booking: models.Booking{ID: "b1", FarmerID: "f1", Status: models.StatusAccepted},
	}

	sc.handleMessage(context.Background(), delivery(t, ack, change))

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, models.ChangeModified, got.Type)
	assert.Equal(t, "b1", got.Booking.ID)
	assert.Equal(t, models.StatusAccepted, got.Booking.Status)
}

func TestHandleMessage_MalformedDropped(t *testing.T) {
	sc := NewSlotConsumer(&mockSink{publishFn: func(context.Context, models.BookingChange) error {
		t.Fatal("sink must not be called")
		return nil
	}}, zap.NewNop())

	for _, body := range []string{"not json", `{"type":"added","booking":{}}`} {
		ack := &fakeAck{}
		sc.handleMessage(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte(body)})
		assert.Equal(t, 1, ack.nacked)
		assert.False(t, ack.requeue)
	}
}

func TestHandleMessage_SinkErrorRequeues(t *testing.T) {
	sc := NewSlotConsumer(&mockSink{publishFn: func(context.Context, models.BookingChange) error {
		return errors.New("closed")
	}}, zap.NewNop())
	ack := &fakeAck{}

	sc.handleMessage(context.Background(), delivery(t, ack, models.BookingChange{Type: models.ChangeAdded, Booking: models.Booking{ID: "b1"}}))

	assert.Equal(t, 1, ack.nacked)
	assert.True(t, ack.requeue)
}

func TestStart_StopsWhenDeliveriesClose(t *testing.T) {
	received := make(chan string, 2)
	sc := NewSlotConsumer(&mockSink{publishFn: func(_ context.Context, c models.BookingChange) error {
		received <- c.Booking.ID
		return nil
	}}, zap.NewNop())
	msgs := make(chan amqp.Delivery, 2)
	ack := &fakeAck{}
	msgs <- delivery(t, ack, models.BookingChange{Type: models.ChangeAdded, Booking: models.Booking{ID: "b1"}})
	msgs <- delivery(t, ack, models.BookingChange{Type: models.ChangeRemoved, Booking: models.Booking{ID: "b2"}})
	close(msgs)

	done := sc.Start(context.Background(), msgs)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
	assert.Equal(t, "b1", <-received)
	assert.Equal(t, "b2", <-received)
	assert.Equal(t, 2, ack.acked)
}

func TestChangePublisher_UsesRoutingKey(t *testing.T) {
	var key string
	var payload any
	local := &fakeLocal{}
	p := NewChangePublisher(&mockMessagePublisher{publishFn: func(_ context.Context, k string, v any) error {
		key, payload = k, v
		return nil
	}}, local, zap.NewNop())
	change := models.BookingChange{Type: models.ChangeRemoved, Booking: models.Booking{ID: "b1"}}

	require.NoError(t, p.Publish(context.Background(), change))

	assert.Equal(t, "slot.removed", key)
	assert.Equal(t, change, payload)
	assert.Empty(t, local.received(), "bus delivery reaches the hub through the consumer")
}

func TestChangePublisher_BusFailureDeliversLocally(t *testing.T) {
	local := &fakeLocal{}
	p := NewChangePublisher(&mockMessagePublisher{publishFn: func(context.Context, string, any) error {
		return errors.New("channel closed")
	}}, local, zap.NewNop())
	change := models.BookingChange{Type: models.ChangeAdded, Booking: models.Booking{ID: "b1"}}

	err := p.Publish(context.Background(), change)

	assert.ErrorContains(t, err, "channel closed")
	assert.Equal(t, []models.BookingChange{change}, local.received())
	assert.False(t, p.Direct())
}

func TestChangePublisher_FailoverBypassesBus(t *testing.T) {
	local := &fakeLocal{}
	busCalls := 0
	p := NewChangePublisher(&mockMessagePublisher{publishFn: func(context.Context, string, any) error {
		busCalls++
		return nil
	}}, local, zap.NewNop())

	p.Failover()
	p.Failover()
	change := models.BookingChange{Type: models.ChangeModified, Booking: models.Booking{ID: "b1"}}
	require.NoError(t, p.Publish(context.Background(), change))

	assert.True(t, p.Direct())
	assert.Zero(t, busCalls)
	assert.Equal(t, []models.BookingChange{change}, local.received())
	assert.Equal(t, 1, local.resyncs)
}
