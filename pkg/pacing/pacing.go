// Package pacing holds the clock and the human-like delay policy used
// between browser interactions.
package pacing

import (
	"context"
	"math/rand/v2"
	"time"
)

// Clock is the time source for every poll loop and pause.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Policy describes the randomized delays inserted around interactions so
// the session does not click at machine speed.
type Policy struct {
	// Before an interaction (typing, clicking).
	MinPause time.Duration `yaml:"min_pause"`
	MaxPause time.Duration `yaml:"max_pause"`
	// After a click that may trigger verification or navigation.
	MinSettle time.Duration `yaml:"min_settle"`
	MaxSettle time.Duration `yaml:"max_settle"`
}

// DefaultPolicy mirrors the delays the dashboards tolerate.
func DefaultPolicy() Policy {
	return Policy{
		MinPause:  500 * time.Millisecond,
		MaxPause:  1200 * time.Millisecond,
		MinSettle: 3 * time.Second,
		MaxSettle: 6 * time.Second,
	}
}

// Pause sleeps for a random duration in [MinPause, MaxPause].
func (p Policy) Pause(ctx context.Context, clock Clock) error {
	return clock.Sleep(ctx, Between(p.MinPause, p.MaxPause))
}

// Settle sleeps for a random duration in [MinSettle, MaxSettle].
func (p Policy) Settle(ctx context.Context, clock Clock) error {
	return clock.Sleep(ctx, Between(p.MinSettle, p.MaxSettle))
}

// Between returns a uniformly random duration in [lo, hi]. If hi <= lo, lo
// is returned.
func Between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo+1)
}
