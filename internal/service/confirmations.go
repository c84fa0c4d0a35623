package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Confirmation is an open delete dialog. The booking is removed only when
// the same operator presents the token before it expires.
type Confirmation struct {
	Token     string
	BookingID string
	ExpiresAt time.Time
}

type pendingDeletion struct {
	bookingID string
	actorID   string
	expiresAt time.Time
}

type confirmations struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	pending map[string]pendingDeletion
}

func newConfirmations(ttl time.Duration, now func() time.Time) *confirmations {
	return &confirmations{
		ttl:     ttl,
		now:     now,
		pending: make(map[string]pendingDeletion),
	}
}

func (c *confirmations) open(bookingID, actorID string) Confirmation {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for tok, p := range c.pending {
		if !now.Before(p.expiresAt) {
			delete(c.pending, tok)
		}
	}

	tok := uuid.NewString()
	exp := now.Add(c.ttl)
	c.pending[tok] = pendingDeletion{bookingID: bookingID, actorID: actorID, expiresAt: exp}
	return Confirmation{Token: tok, BookingID: bookingID, ExpiresAt: exp}
}

func (c *confirmations) valid(bookingID, actorID, token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pending[token]
	if !ok {
		return false
	}
	if !c.now().Before(p.expiresAt) {
		delete(c.pending, token)
		return false
	}
	return p.bookingID == bookingID && p.actorID == actorID
}

// close drops one token, or every pending token for the booking when token is empty.
func (c *confirmations) close(bookingID, token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != "" {
		p, ok := c.pending[token]
		if !ok || p.bookingID != bookingID {
			return false
		}
		delete(c.pending, token)
		return true
	}

	found := false
	for tok, p := range c.pending {
		if p.bookingID == bookingID {
			delete(c.pending, tok)
			found = true
		}
	}
	return found
}
