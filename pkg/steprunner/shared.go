package steprunner

import (
	"context"
	"fmt"
	"time"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/pacing"
)

// ClockOrSystem returns the context's clock, or the system clock.
func (ec ExecutionContext) ClockOrSystem() pacing.Clock {
	if ec.Clock == nil {
		return pacing.SystemClock()
	}
	return ec.Clock
}

// Waiter returns a browser.Waiter on the context's clock.
func (ec ExecutionContext) Waiter() browser.Waiter {
	return browser.Waiter{Clock: ec.ClockOrSystem()}
}

// Navigate loads url with the site's load state and navigation timeout,
// then clears any challenge.
func Navigate(ctx context.Context, ec ExecutionContext, url string) error {
	ec.Logger.Info().Str("url", url).Msg("Navigating")
	err := ec.Page.Goto(url, browser.GotoOptions{
		WaitUntil: ec.Site.WaitUntil,
		Timeout:   ec.Site.NavigationTimeout,
	})
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return ResolveChallenge(ctx, ec)
}

// EnsurePage navigates to url unless the page is already there.
func EnsurePage(ctx context.Context, ec ExecutionContext, url string) error {
	if url == "" || core.SameURL(ec.Page.URL(), url) {
		return nil
	}
	return Navigate(ctx, ec, url)
}

// ResolveChallenge runs the challenge handler with the site's budget.
func ResolveChallenge(ctx context.Context, ec ExecutionContext) error {
	if ec.Challenge == nil {
		return nil
	}
	return ec.Challenge.Resolve(ctx, ec.Page, ec.Site.ChallengeTimeout)
}

// Resolve finds the first matching candidate of specs, polling up to
// timeout. The error wraps types.ErrElementNotFound when nothing matched.
func Resolve(ctx context.Context, ec ExecutionContext, specs []core.MatcherSpec, timeout time.Duration) (browser.Element, error) {
	candidates, err := core.Matchers(specs)
	if err != nil {
		return nil, err
	}
	el, m, err := browser.Resolve(ctx, ec.Page, candidates, browser.ResolveOptions{
		Timeout: timeout,
		Clock:   ec.ClockOrSystem(),
	})
	if err != nil {
		return nil, err
	}
	ec.Logger.Debug().Str("matcher", m.String()).Msg("Resolved element")
	return el, nil
}
