package throttle

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of concurrently held leases.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int64
}

func NewGate(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: int64(capacity),
	}
}

func (g *Gate) Capacity() int {
	return int(g.capacity)
}

// Acquire blocks until a slot is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) (*Lease, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return &Lease{gate: g}, nil
}

// Lease holds one slot of a Gate until released.
type Lease struct {
	gate *Gate
	once sync.Once
}

// Release returns the slot. Calling it more than once has no further effect.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.gate.sem.Release(1)
	})
}
