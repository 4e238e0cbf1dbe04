package pacing_test

import (
	"context"
	"testing"
	"time"

	"github.com/arnavsurve/keepalive/pkg/pacing"
	"github.com/stretchr/testify/assert"
)

func TestBetween(t *testing.T) {
	for range 100 {
		d := pacing.Between(time.Second, 2*time.Second)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 2*time.Second)
	}

	assert.Equal(t, time.Second, pacing.Between(time.Second, time.Second))
	assert.Equal(t, time.Second, pacing.Between(time.Second, 0))
}

func TestSystemClock_SleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pacing.SystemClock().Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicy_ZeroIsImmediate(t *testing.T) {
	start := time.Now()
	err := pacing.Policy{}.Pause(context.Background(), pacing.SystemClock())
	assert.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
