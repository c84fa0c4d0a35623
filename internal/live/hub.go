package live

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Eursukkul/booking-microservice/slot-service/internal/models"
	"go.uber.org/zap"
)

// Query selects and orders the bookings a subscriber sees.
type Query struct {
	// FarmerID limits the feed to one farmer. Empty means every booking.
	FarmerID string
	// ByDateDesc orders by booking date, newest first. Otherwise store order.
	ByDateDesc bool
}

func (q Query) Matches(b *models.Booking) bool {
	return q.FarmerID == "" || b.FarmerID == q.FarmerID
}

func (q Query) sort(bookings []models.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if q.ByDateDesc {
			if !a.BookingDate.Equal(b.BookingDate) {
				return a.BookingDate.After(b.BookingDate)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Loader reads the current state of the collection for a query.
type Loader func(ctx context.Context) ([]models.Booking, error)

// Snapshot is the full ordered result for a subscriber plus the changes
// applied since the previous snapshot. The first snapshot has no changes.
type Snapshot struct {
	Bookings []models.Booking
	Changes  []models.BookingChange
	Initial  bool
}

// ResyncRetryDelay spaces out reloads while the store keeps failing.
var ResyncRetryDelay = time.Second

// Hub fans committed booking changes out to live subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
	buffer int
	logger *zap.Logger
}

func NewHub(logger *zap.Logger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		subs:   make(map[uint64]*subscriber),
		buffer: buffer,
		logger: logger,
	}
}

// Publish hands a committed change to every subscriber. It never blocks:
// a subscriber whose buffer is full is resynchronised from the store instead.
func (h *Hub) Publish(_ context.Context, change models.BookingChange) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		select {
		case s.in <- change:
		default:
			s.markStale()
		}
	}
	return nil
}

// Resync makes every subscriber reload from the store. Use it when changes
// may have been committed without reaching Publish.
func (h *Hub) Resync() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		s.markStale()
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Subscribe registers a subscription, loads its first snapshot and returns
// a channel of snapshots. The channel closes when ctx ends.
func (h *Hub) Subscribe(ctx context.Context, q Query, load Loader) (<-chan Snapshot, error) {
	s := &subscriber{
		query: q,
		load:  load,
		in:    make(chan models.BookingChange, h.buffer),
		stale: make(chan struct{}, 1),
		out:   make(chan Snapshot),
		state: make(map[string]models.Booking),
	}

	// Register before loading so no change committed during the load is lost.
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = s
	h.mu.Unlock()

	initial, err := load(ctx)
	if err != nil {
		h.remove(id)
		return nil, fmt.Errorf("load initial snapshot: %w", err)
	}
	for _, b := range initial {
		if q.Matches(&b) {
			s.state[b.ID] = b
		}
	}

	go func() {
		defer close(s.out)
		defer h.remove(id)
		s.run(ctx, h.logger)
	}()
	return s.out, nil
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

type subscriber struct {
	query Query
	load  Loader
	in    chan models.BookingChange
	stale chan struct{}
	out   chan Snapshot
	state map[string]models.Booking
}

func (s *subscriber) markStale() {
	select {
	case s.stale <- struct{}{}:
	default:
	}
}

func (s *subscriber) run(ctx context.Context, logger *zap.Logger) {
	if !s.emit(ctx, Snapshot{Bookings: s.ordered(), Initial: true}) {
		return
	}
	for {
		var changes []models.BookingChange
		select {
		case <-ctx.Done():
			return
		case <-s.stale:
			// Changes queued before the reload starts are covered by it.
			// Anything arriving during the reload is replayed on top.
			s.drain()
			fresh, err := s.load(ctx)
			if err != nil {
				logger.Warn("live resync failed, keeping last snapshot", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(ResyncRetryDelay):
				}
				s.markStale()
				continue
			}
			changes = s.replace(fresh)
			changes = s.applyQueued(changes)
		case c := <-s.in:
			changes = s.apply(nil, c)
			changes = s.applyQueued(changes)
		}
		if len(changes) == 0 {
			continue
		}
		if !s.emit(ctx, Snapshot{Bookings: s.ordered(), Changes: changes}) {
			return
		}
	}
}

func (s *subscriber) emit(ctx context.Context, snap Snapshot) bool {
	select {
	case s.out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

// applyQueued batches changes that are already waiting into one snapshot.
func (s *subscriber) applyQueued(changes []models.BookingChange) []models.BookingChange {
	for {
		select {
		case c := <-s.in:
			changes = s.apply(changes, c)
		default:
			return changes
		}
	}
}

func (s *subscriber) drain() {
	for {
		select {
		case <-s.in:
		default:
			return
		}
	}
}

// apply folds c into the subscriber state and appends the change as the
// subscriber perceives it. An add for a known id is a modification; a
// modification of an unknown id is an add; a removal of an unknown id is ignored.
func (s *subscriber) apply(changes []models.BookingChange, c models.BookingChange) []models.BookingChange {
	b := c.Booking
	_, known := s.state[b.ID]

	if c.Type == models.ChangeRemoved || !s.query.Matches(&b) {
		if !known {
			return changes
		}
		delete(s.state, b.ID)
		return append(changes, models.BookingChange{Type: models.ChangeRemoved, Booking: b})
	}

	s.state[b.ID] = b
	if known {
		return append(changes, models.BookingChange{Type: models.ChangeModified, Booking: b})
	}
	return append(changes, models.BookingChange{Type: models.ChangeAdded, Booking: b})
}

// replace swaps the state for a fresh load and returns the difference.
func (s *subscriber) replace(fresh []models.Booking) []models.BookingChange {
	next := make(map[string]models.Booking, len(fresh))
	for _, b := range fresh {
		if s.query.Matches(&b) {
			next[b.ID] = b
		}
	}

	var changes []models.BookingChange
	for id, old := range s.state {
		if _, ok := next[id]; !ok {
			changes = append(changes, models.BookingChange{Type: models.ChangeRemoved, Booking: old})
		}
	}
	for id, b := range next {
		old, ok := s.state[id]
		switch {
		case !ok:
			changes = append(changes, models.BookingChange{Type: models.ChangeAdded, Booking: b})
		case old.Status != b.Status || !old.UpdatedAt.Equal(b.UpdatedAt):
			changes = append(changes, models.BookingChange{Type: models.ChangeModified, Booking: b})
		}
	}
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Booking.ID < changes[j].Booking.ID
	})

	s.state = next
	return changes
}

func (s *subscriber) ordered() []models.Booking {
	out := make([]models.Booking, 0, len(s.state))
	for _, b := range s.state {
		out = append(out, b)
	}
	s.query.sort(out)
	return out
}
