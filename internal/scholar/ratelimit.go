// Package scholar wraps the external literature APIs: Semantic Scholar,
// CrossRef, and arXiv. All clients share a request rate limiter so a
// burst of tool calls cannot trip the public API quotas.
package scholar

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces requests at a fixed rate. All scholar clients built
// from one Config share a single Limiter.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewLimiter creates a limiter allowing perSecond requests per second.
// A non-positive rate disables limiting.
func NewLimiter(perSecond float64) *Limiter {
	if perSecond <= 0 {
		return &Limiter{}
	}
	return &Limiter{interval: time.Duration(float64(time.Second) / perSecond)}
}

// Wait blocks until the next request slot is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.interval == 0 {
		return ctx.Err()
	}

	l.mu.Lock()
	now := time.Now()
	wait := l.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	l.next = now.Add(wait + l.interval)
	l.mu.Unlock()

	if wait == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
