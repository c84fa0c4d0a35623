package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfirmations(t *testing.T) {
	now := time.Date(2024, 8, 20, 9, 0, 0, 0, time.UTC)
	c := newConfirmations(time.Minute, func() time.Time { return now })

	first := c.open("b1", "wm-1")
	second := c.open("b1", "wm-1")
	assert.NotEqual(t, first.Token, second.Token)
	assert.True(t, c.valid("b1", "wm-1", first.Token))
	assert.False(t, c.valid("b2", "wm-1", first.Token))
	assert.False(t, c.valid("b1", "wm-2", first.Token))

	assert.False(t, c.close("b2", first.Token), "token belongs to another booking")
	assert.True(t, c.close("b1", first.Token))
	assert.False(t, c.valid("b1", "wm-1", first.Token))

	assert.True(t, c.close("b1", ""))
	assert.False(t, c.valid("b1", "wm-1", second.Token))
	assert.False(t, c.close("b1", ""))
}

func TestConfirmations_Expiry(t *testing.T) {
	now := time.Date(2024, 8, 20, 9, 0, 0, 0, time.UTC)
	c := newConfirmations(time.Minute, func() time.Time { return now })

	stale := c.open("b1", "wm-1")
	now = now.Add(time.Minute)
	assert.False(t, c.valid("b1", "wm-1", stale.Token))

	now = now.Add(time.Minute)
	c.open("b2", "wm-1")
	assert.Len(t, c.pending, 1, "expired dialogs are swept on open")
}
