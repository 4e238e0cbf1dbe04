package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/arnavsurve/keepalive/pkg/pacing"
	"github.com/arnavsurve/keepalive/pkg/types"
)

const defaultPollInterval = 250 * time.Millisecond

// Waiter implements the explicit wait-for-condition primitives on top of
// a Clock, so nothing in the engine relies on bare sleeps.
type Waiter struct {
	Clock    pacing.Clock
	Interval time.Duration
}

func (w Waiter) clock() pacing.Clock {
	if w.Clock == nil {
		return pacing.SystemClock()
	}
	return w.Clock
}

func (w Waiter) interval() time.Duration {
	if w.Interval <= 0 {
		return defaultPollInterval
	}
	return w.Interval
}

// Visible waits for el to become visible.
func (w Waiter) Visible(el Element, timeout time.Duration) error {
	return el.WaitFor(StateVisible, timeout)
}

// Attached waits for el to be present in the DOM.
func (w Waiter) Attached(el Element, timeout time.Duration) error {
	return el.WaitFor(StateAttached, timeout)
}

// Enabled polls until el reports enabled.
func (w Waiter) Enabled(ctx context.Context, el Element, timeout time.Duration) error {
	return w.poll(ctx, timeout, fmt.Sprintf("%s to become enabled", el), func() (bool, error) {
		return el.IsEnabled()
	})
}

// Ready waits for attached, then visible, then (optionally) enabled, all
// within a single timeout budget.
func (w Waiter) Ready(ctx context.Context, el Element, timeout time.Duration, requireEnabled bool) error {
	clock := w.clock()
	deadline := clock.Now().Add(timeout)
	remaining := func() time.Duration {
		if d := deadline.Sub(clock.Now()); d > 0 {
			return d
		}
		return time.Millisecond
	}

	if err := w.Attached(el, remaining()); err != nil {
		return err
	}
	if err := w.Visible(el, remaining()); err != nil {
		return err
	}
	if !requireEnabled {
		return nil
	}
	return w.Enabled(ctx, el, remaining())
}

// URL polls the page URL until match accepts it.
func (w Waiter) URL(ctx context.Context, page Page, timeout time.Duration, what string, match func(url string) bool) error {
	return w.poll(ctx, timeout, what, func() (bool, error) {
		return match(page.URL()), nil
	})
}

func (w Waiter) poll(ctx context.Context, timeout time.Duration, what string, cond func() (bool, error)) error {
	clock := w.clock()
	deadline := clock.Now().Add(timeout)
	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !clock.Now().Before(deadline) {
			return fmt.Errorf("%w: waiting %s for %s", types.ErrActionTimeout, timeout, what)
		}
		if err := clock.Sleep(ctx, w.interval()); err != nil {
			return err
		}
	}
}
