package throttle

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces successive grants at least interval apart. Waiting callers are
// served in arrival order.
type Limiter struct {
	interval time.Duration
	// turn is a single-slot queue; blocked senders on a channel are woken FIFO.
	turn chan struct{}

	mu   sync.Mutex
	last time.Time
}

func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		turn:     make(chan struct{}, 1),
	}
}

// Interval returns the minimum spacing between grants.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Acquire blocks until at least the limiter interval has passed since the previous
// grant and returns the grant time. It returns ctx.Err() if the context ends first,
// in which case no grant is recorded.
func (l *Limiter) Acquire(ctx context.Context) (time.Time, error) {
	select {
	case l.turn <- struct{}{}:
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	}
	defer func() { <-l.turn }()

	l.mu.Lock()
	last := l.last
	l.mu.Unlock()

	if !last.IsZero() {
		if wait := last.Add(l.interval).Sub(time.Now()); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return time.Time{}, ctx.Err()
			}
		}
	}

	granted := time.Now()
	// A timer may fire a hair early relative to a different clock reading.
	if !last.IsZero() && granted.Sub(last) < l.interval {
		time.Sleep(l.interval - granted.Sub(last))
		granted = time.Now()
	}

	l.mu.Lock()
	l.last = granted
	l.mu.Unlock()

	return granted, nil
}
