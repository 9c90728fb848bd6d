package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter(t *testing.T) {
	// 10 tokens per second, burst of 2
	l := NewLimiter(10, 2)

	assert.True(t, l.Allow(1), "first token")
	assert.True(t, l.Allow(1), "second token (burst)")
	assert.False(t, l.Allow(1), "burst exhausted")

	time.Sleep(150 * time.Millisecond)
	assert.True(t, l.Allow(1), "token refilled after wait")
}

func TestLimiter_Wait(t *testing.T) {
	l := NewLimiter(100, 1)
	l.Allow(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, l.Wait(ctx, 1))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestNewPerSecondLimiter(t *testing.T) {
	assert.Nil(t, NewPerSecondLimiter(0))
	assert.Nil(t, NewPerSecondLimiter(-3))

	l := NewPerSecondLimiter(0.5)
	require.NotNil(t, l)
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))

	l = NewPerSecondLimiter(3)
	assert.True(t, l.Allow(3))
}

func TestNilLimiter(t *testing.T) {
	var l *Limiter
	assert.True(t, l.Allow(100))
	require.NoError(t, l.Wait(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Wait(ctx, 1), context.Canceled)
}
