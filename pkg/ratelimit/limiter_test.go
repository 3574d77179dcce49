package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedIntervalWaits(t *testing.T) {
	pacer := NewFixedInterval(20 * time.Millisecond)

	start := time.Now()
	require.NoError(t, pacer.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, pacer.Interval())
}

func TestFixedIntervalCancellable(t *testing.T) {
	pacer := NewFixedInterval(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := pacer.Wait(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNopNeverWaits(t *testing.T) {
	start := time.Now()
	require.NoError(t, Nop{}.Wait(context.Background()))
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}
