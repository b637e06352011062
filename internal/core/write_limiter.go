package core

// write_limiter.go bounds the number of mutations in flight.
//
// Creates, updates, deletes and permission saves each hold one slot while
// they run. When every slot is taken a new write waits up to maxWait and then
// fails with ErrTooManyWrites. At shutdown WaitForDrain blocks until the
// writes already accepted have finished.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyWrites is returned when all write slots stay occupied for the
// whole wait. Clients should retry after a short delay.
var ErrTooManyWrites = errors.New("too many concurrent writes")

// DefaultMaxConcurrentWrites is the default limit for parallel writes.
const DefaultMaxConcurrentWrites = 8

// DefaultWriteWait is how long a write waits for a slot before rejecting.
const DefaultWriteWait = 10 * time.Second

// WriteLimiter is a semaphore over mutations.
type WriteLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// NewWriteLimiter allows at most maxConcurrent simultaneous writes.
func NewWriteLimiter(maxConcurrent int, maxWait time.Duration) *WriteLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentWrites
	}
	if maxWait <= 0 {
		maxWait = DefaultWriteWait
	}

	return &WriteLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait.
// The caller must Release the slot when the write completes.
func (l *WriteLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// The caller's own cancellation wins over our wait timeout.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyWrites
	}
}

// Release returns a slot taken by Acquire.
func (l *WriteLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.slots
}

// Do runs fn while holding a slot.
func (l *WriteLimiter) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn(ctx)
}

// ActiveCount returns the number of writes in flight.
func (l *WriteLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the slot count.
func (l *WriteLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// Available returns the number of free slots.
func (l *WriteLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no write is in flight or ctx is done.
func (l *WriteLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WriteLimiterStatus is a snapshot of the limiter for the health endpoint.
type WriteLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the current limiter state.
func (l *WriteLimiter) Status() WriteLimiterStatus {
	return WriteLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
