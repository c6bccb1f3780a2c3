// Package wakeup implements a counting signal used to wake a background task
// when there is pending work.
package wakeup

import (
	"context"
	"sync"
)

// Signal counts released units of work. Releasing never blocks, acquiring blocks
// until at least one unit is pending and takes all of them.
type Signal struct {
	mu      sync.Mutex
	pending int
	ready   chan struct{}
}

// New returns a new signal without pending units.
func New() *Signal {
	return &Signal{ready: make(chan struct{}, 1)}
}

// Release adds one pending unit.
func (s *Signal) Release() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Acquire waits until at least one unit is pending, drains all the pending units
// and returns how many were drained.
func (s *Signal) Acquire(ctx context.Context) (int, error) {
	for {
		if n := s.drain(); n > 0 {
			return n, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-s.ready:
		}
	}
}

// TryAcquire drains the pending units without blocking.
func (s *Signal) TryAcquire() int {
	return s.drain()
}

// Pending returns the number of units waiting to be acquired.
func (s *Signal) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Signal) drain() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.pending
	s.pending = 0
	return n
}
