// Package challenge detects and clears interstitial bot challenges
// (Cloudflare Turnstile) before and after interactions.
package challenge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/pacing"
	"github.com/arnavsurve/keepalive/pkg/types"
)

// Markers are the selectors whose presence means a challenge is showing.
var Markers = []string{
	`iframe[src*="challenges.cloudflare"]`,
	".cf-challenge",
	".cf-turnstile",
}

const (
	// TokenField receives the Turnstile token once the widget is satisfied.
	TokenField = `[name="cf-turnstile-response"]`

	frameHost = "challenges.cloudflare"
	checkbox  = `input[type="checkbox"]`

	DefaultPollInterval = 2 * time.Second
)

// Handler waits out a challenge, clicking its checkbox when one appears.
type Handler struct {
	Clock        pacing.Clock
	Pacing       pacing.Policy
	PollInterval time.Duration
	Logger       types.Logger
}

// NewHandler returns a Handler with the default poll interval.
func NewHandler(logger types.Logger, clock pacing.Clock, policy pacing.Policy) *Handler {
	return &Handler{
		Clock:        clock,
		Pacing:       policy,
		PollInterval: DefaultPollInterval,
		Logger:       logger,
	}
}

// Present reports whether any challenge marker is on the page.
func (h *Handler) Present(page browser.Page) bool {
	for _, sel := range Markers {
		n, err := page.Locator(sel).Count()
		if err != nil {
			h.Logger.Debug().Err(err).Str("selector", sel).Msg("Challenge marker query failed")
			continue
		}
		if n > 0 {
			return true
		}
	}
	return false
}

// Resolve returns nil at once when no challenge is present. Otherwise it
// polls until the challenge clears or maxWait elapses, in which case the
// error wraps types.ErrChallengeTimeout. Resolve never navigates.
func (h *Handler) Resolve(ctx context.Context, page browser.Page, maxWait time.Duration) error {
	if !h.Present(page) {
		return nil
	}

	clock := h.clock()
	start := clock.Now()
	deadline := start.Add(maxWait)
	h.Logger.Info().Str("url", page.URL()).Msg("Challenge detected, waiting for it to clear")

	armed := true
	for {
		if h.resolved(page) {
			h.Logger.Info().Dur("waited", clock.Now().Sub(start)).Msg("Challenge cleared")
			return nil
		}

		box := h.checkbox(page)
		switch {
		case box == nil:
			armed = true
		case armed:
			armed = false
			if err := h.click(ctx, box); err != nil {
				return err
			}
			continue
		}

		if !clock.Now().Before(deadline) {
			return fmt.Errorf("%w: still present after %s", types.ErrChallengeTimeout, maxWait)
		}
		if err := clock.Sleep(ctx, h.interval()); err != nil {
			return err
		}
	}
}

func (h *Handler) click(ctx context.Context, box browser.Element) error {
	clock := h.clock()
	if err := h.Pacing.Pause(ctx, clock); err != nil {
		return err
	}
	h.Logger.Info().Msg("Clicking challenge checkbox")
	if err := box.Click(browser.ClickOptions{Force: true, Timeout: 5 * time.Second}); err != nil {
		h.Logger.Warn().Err(err).Msg("Challenge checkbox click failed")
	}
	return h.Pacing.Settle(ctx, clock)
}

func (h *Handler) resolved(page browser.Page) bool {
	token := page.Locator(TokenField).First()
	if n, err := token.Count(); err == nil && n > 0 {
		if v, err := token.InputValue(time.Second); err == nil && v != "" {
			return true
		}
	}
	return !h.Present(page)
}

// checkbox returns the visible checkbox inside a challenge frame, if any.
func (h *Handler) checkbox(page browser.Page) browser.Element {
	for _, f := range page.Frames() {
		if !strings.Contains(f.URL(), frameHost) {
			continue
		}
		box := f.Locator(checkbox).First()
		if ok, err := box.IsVisible(); err == nil && ok {
			return box
		}
	}
	return nil
}

func (h *Handler) clock() pacing.Clock {
	if h.Clock == nil {
		return pacing.SystemClock()
	}
	return h.Clock
}

func (h *Handler) interval() time.Duration {
	if h.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return h.PollInterval
}
