package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances instantly when waited on
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestNew(t *testing.T) {
	assert.Equal(t, time.Second, New(1).Interval())
	assert.Equal(t, 500*time.Millisecond, New(2).Interval())
	assert.Equal(t, time.Duration(0), New(0).Interval())
}

func TestLimiter_Wait(t *testing.T) {
	t.Run("first call does not wait", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1000, 0)}
		l := New(1, WithClock(clock))

		require.NoError(t, l.Wait(context.Background()))
		assert.Equal(t, time.Unix(1000, 0), clock.Now())
	})

	t.Run("consecutive calls are spaced", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1000, 0)}
		l := New(2, WithClock(clock))

		var completions []time.Time
		for range 10 {
			require.NoError(t, l.Wait(context.Background()))
			completions = append(completions, clock.Now())
		}

		for i := 1; i < len(completions); i++ {
			assert.GreaterOrEqual(t, completions[i].Sub(completions[i-1]), 500*time.Millisecond)
		}
		assert.GreaterOrEqual(t, completions[9].Sub(completions[0]), 4500*time.Millisecond)
	})

	t.Run("elapsed time counts toward the interval", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1000, 0)}
		l := New(1, WithClock(clock))

		require.NoError(t, l.Wait(context.Background()))
		clock.Advance(2 * time.Second)
		require.NoError(t, l.Wait(context.Background()))

		assert.Equal(t, time.Unix(1002, 0), clock.Now())
	})

	t.Run("cancelled context", func(t *testing.T) {
		l := New(0.001)
		require.NoError(t, l.Wait(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := l.Wait(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLimiter_WaitConcurrent(t *testing.T) {
	start := time.Unix(1000, 0)
	clock := &fakeClock{now: start}
	l := New(4, WithClock(clock))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Wait(context.Background()))
		}()
	}
	wg.Wait()

	// the fake clock only moves while a caller sleeps, so serialized callers add up to 19 full intervals
	assert.Equal(t, 19*250*time.Millisecond, clock.Now().Sub(start))
}

func TestLimiter_WaitRealClock(t *testing.T) {
	if testing.Short() {
		t.Skip("spends several seconds in real time")
	}

	l := New(2)
	start := time.Now()
	for range 10 {
		require.NoError(t, l.Wait(context.Background()))
	}

	assert.GreaterOrEqual(t, time.Since(start), 4500*time.Millisecond)
}
