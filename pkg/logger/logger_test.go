package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	logger1 := Get()
	require.NotNil(t, logger1)

	logger2 := Get()
	assert.Same(t, logger1, logger2)
}

func TestFromCtx(t *testing.T) {
	t.Run("default logger without context value", func(t *testing.T) {
		assert.Same(t, Get(), FromCtx(context.Background()))
	})

	t.Run("attached logger", func(t *testing.T) {
		custom := Get().With("custom", "value")
		ctx := WithCtx(context.Background(), custom)
		assert.Same(t, custom, FromCtx(ctx))
	})

	t.Run("extra fields derive a new logger", func(t *testing.T) {
		ctx := WithCtx(context.Background(), Get())
		derived := FromCtx(ctx, "job", "feed")
		assert.NotSame(t, Get(), derived)
	})
}

func TestWithSameLogger(t *testing.T) {
	ctx := WithCtx(context.Background(), Get())
	assert.Same(t, ctx, WithCtx(ctx, Get()))
}
