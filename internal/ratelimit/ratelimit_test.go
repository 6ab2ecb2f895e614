package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitEnforcesBudget(t *testing.T) {
	l := New(0)
	l.SetLimit("api", 2)

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "api"))
	require.NoError(t, l.Wait(ctx, "api"))

	err := l.Wait(ctx, "api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget")
}

func TestWaitUnlimitedByDefault(t *testing.T) {
	l := New(0)
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		require.NoError(t, l.Wait(ctx, "api"))
	}
	assert.Equal(t, 50, l.Stats()["api"])
}

func TestWaitSpacesCalls(t *testing.T) {
	l := New(30 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "api"))
	require.NoError(t, l.Wait(ctx, "api"))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 25*time.Millisecond)
}

func TestWaitTargetsAreIndependent(t *testing.T) {
	l := New(0)
	l.SetLimit("a", 1)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "a"))
	require.Error(t, l.Wait(ctx, "a"))
	require.NoError(t, l.Wait(ctx, "b"))
}

func TestWaitCancelledContext(t *testing.T) {
	l := New(time.Minute)
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "api"))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, l.Wait(cctx, "api"), context.Canceled)
}

func TestForBindsTarget(t *testing.T) {
	l := New(0)
	l.SetLimit("claude", 1)

	tl := l.For("claude")
	require.NoError(t, tl.Wait(context.Background()))
	require.Error(t, tl.Wait(context.Background()))
	// The rejected call is not charged against the budget.
	assert.Equal(t, 1, l.Stats()["claude"])
}
