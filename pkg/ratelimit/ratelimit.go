package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Clock is the time source used by the Limiter
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Waiter is implemented by anything that spaces out outbound calls
type Waiter interface {
	Wait(ctx context.Context) error
}

var _ Waiter = (*Limiter)(nil)

// Limiter enforces a minimum spacing between consecutive completions of Wait.
// A single instance is meant to be shared by every caller of the same upstream.
type Limiter struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	last     time.Time
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock overrides the time source
func WithClock(c Clock) Option {
	return func(l *Limiter) {
		l.clock = c
	}
}

// New creates a Limiter allowing callsPerSecond calls. Values <= 0 disable spacing.
func New(callsPerSecond float64, opts ...Option) *Limiter {
	l := &Limiter{
		clock: realClock{},
	}
	if callsPerSecond > 0 {
		l.interval = time.Duration(float64(time.Second) / callsPerSecond)
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Interval is the minimum gap between two completions of Wait
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Wait blocks until at least Interval has passed since the previous call returned.
// Callers are serialized; arrival order is not guaranteed. The only error is ctx's.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		elapsed := l.clock.Now().Sub(l.last)
		if remaining := l.interval - elapsed; remaining > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.clock.After(remaining):
			}
		}
	}

	l.last = l.clock.Now()
	return nil
}
