package memory

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// Confirmations is an in-memory core.ConfirmationStore.
type Confirmations struct {
	mu      sync.Mutex
	pending map[string]core.PendingDelete
	now     func() time.Time
}

// NewConfirmations returns an empty store. now defaults to time.Now.
func NewConfirmations(now func() time.Time) *Confirmations {
	if now == nil {
		now = time.Now
	}
	return &Confirmations{pending: make(map[string]core.PendingDelete), now: now}
}

// Put keeps p until ttl has passed or it is taken.
func (c *Confirmations) Put(_ context.Context, p core.PendingDelete, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for token, old := range c.pending {
		if !now.Before(old.ExpiresAt) {
			delete(c.pending, token)
		}
	}
	p.ExpiresAt = now.Add(ttl)
	c.pending[p.Token] = p
	return nil
}

// Take removes and returns the pending delete for token.
func (c *Confirmations) Take(_ context.Context, token string) (core.PendingDelete, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pending[token]
	if !ok {
		return core.PendingDelete{}, core.ErrTokenInvalid
	}
	delete(c.pending, token)
	if !c.now().Before(p.ExpiresAt) {
		return core.PendingDelete{}, core.ErrTokenInvalid
	}
	return p, nil
}
