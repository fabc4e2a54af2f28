package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycle_Observe(t *testing.T) {
	ctx := context.Background()
	l := NewLifecycle()

	got := l.Observe(ctx, []Record{{Filename: "a.mkv", State: StateDownloading}, {Filename: "b.mkv", State: StateDownloaded}})
	assert.Empty(t, got)

	got = l.Observe(ctx, []Record{{Filename: "a.mkv", State: StateDownloading}, {Filename: "b.mkv", State: StateDownloaded}})
	assert.Empty(t, got)

	got = l.Observe(ctx, []Record{{Filename: "a.mkv", State: StateDownloaded}, {Filename: "b.mkv", State: StateDownloaded}})
	assert.Equal(t, []Transition{{Filename: "a.mkv", From: StateDownloading, To: StateDownloaded}}, got)
	assert.True(t, got[0].Completed())

	state, ok := l.State("a.mkv")
	assert.True(t, ok)
	assert.Equal(t, StateDownloaded, state)
}

func TestLifecycle_InvalidTransitionRestarts(t *testing.T) {
	ctx := context.Background()
	l := NewLifecycle()

	l.Observe(ctx, []Record{{Filename: "a.mkv", State: StateDownloaded}})
	got := l.Observe(ctx, []Record{{Filename: "a.mkv", State: StateDownloading}})
	assert.Equal(t, []Transition{{Filename: "a.mkv", From: StateDownloaded, To: StateDownloading}}, got)
	assert.False(t, got[0].Completed())

	state, _ := l.State("a.mkv")
	assert.Equal(t, StateDownloading, state)
}

func TestLifecycle_ForgetsMissingFiles(t *testing.T) {
	ctx := context.Background()
	l := NewLifecycle()

	l.Observe(ctx, []Record{{Filename: "a.mkv", State: StateDownloading}})
	l.Observe(ctx, nil)

	_, ok := l.State("a.mkv")
	assert.False(t, ok)
}

func TestLifecycle_Removed(t *testing.T) {
	ctx := context.Background()
	l := NewLifecycle()

	l.Observe(ctx, []Record{{Filename: "a.mkv", State: StateDownloaded}})
	got := l.Observe(ctx, []Record{{Filename: "a.mkv", State: StateRemoved}})
	assert.Equal(t, []Transition{{Filename: "a.mkv", From: StateDownloaded, To: StateRemoved}}, got)
}
