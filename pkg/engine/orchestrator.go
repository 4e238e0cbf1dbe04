package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/challenge"
	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/pacing"
	"github.com/arnavsurve/keepalive/pkg/session"
	"github.com/arnavsurve/keepalive/pkg/types"
	"github.com/cenkalti/backoff/v4"
)

const (
	ShotRenewError   = "renew_error.png"
	ShotRenewTimeout = "renew_timeout.png"

	defaultActionTimeout = 30 * time.Second
)

// Orchestrator owns one run: validate, launch, authenticate, act, tear down.
type Orchestrator struct {
	Config   core.Config
	Launcher browser.Launcher
	Logger   types.Logger
	// Clock and Timer are replaced in tests; nil means real time.
	Clock pacing.Clock
	Timer backoff.Timer
}

func NewOrchestrator(cfg core.Config, launcher browser.Launcher, logger types.Logger) *Orchestrator {
	return &Orchestrator{
		Config:   cfg,
		Launcher: launcher,
		Logger:   logger,
		Clock:    pacing.SystemClock(),
	}
}

// Run executes the renewal. Configuration problems are reported before any
// browser is launched; once launched, the browser is closed on every path.
// Panics are recovered into errors wrapping types.ErrUnclassified.
func (o *Orchestrator) Run(ctx context.Context) (err error) {
	site := o.Config.Site()
	logger := o.Logger.With().Str("site", site.Name).Logger()
	clock := o.Clock
	if clock == nil {
		clock = pacing.SystemClock()
	}
	policy := site.PacingPolicy()
	shots := &browser.Recorder{Dir: o.Config.ScreenshotDir(), Logger: logger}

	scoped := func(phase string) types.Logger {
		return logger.With().Str("phase", phase).Logger()
	}
	handler := challenge.NewHandler(scoped("challenge"), clock, policy)
	establisher := &session.Establisher{
		Site:      site,
		Challenge: handler,
		Clock:     clock,
		Pacing:    policy,
		Shots:     shots,
		Logger:    scoped("auth"),
	}
	sequencer := &Sequencer{
		Site:      site,
		Challenge: handler,
		Clock:     clock,
		Pacing:    policy,
		Shots:     shots,
		Logger:    scoped("actions"),
		Timer:     o.Timer,
	}

	if err := o.Validate(); err != nil {
		logger.Error().Err(err).Msg("Configuration is invalid")
		return err
	}

	logger.Info().
		Str("target", site.TargetURL).
		Interface("headless", o.Config.Headless()).
		Msg("Starting renewal")

	sess, err := o.Launcher.Launch(ctx, browser.LaunchOptions{
		Headless:       o.Config.Headless(),
		Channel:        o.Config.Channel(),
		Fingerprint:    site.Fingerprint,
		DefaultTimeout: defaultActionTimeout,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Error().Err(err).Msg("Could not launch browser")
		return fmt.Errorf("%w: launching browser: %v", types.ErrUnclassified, err)
	}
	page := sess.Page()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", types.ErrUnclassified, r)
		}
		var stepErr *types.StepError
		switch types.Category(err) {
		case "unclassified":
			shots.Capture(page, ShotRenewError)
		case "challenge_timeout":
			// Steps capture their own screenshot.
			if !errors.As(err, &stepErr) {
				shots.Capture(page, ShotRenewTimeout)
			}
		}
		logger.Info().Msg("Closing browser")
		if cerr := sess.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Error while closing browser")
		}
	}()

	if err := establisher.Establish(ctx, page, o.Config.Credentials()); err != nil {
		logger.Error().Err(err).Msg("Authentication failed")
		return err
	}
	if err := sequencer.RunActions(ctx, page, site.Steps); err != nil {
		logger.Error().Err(err).Str("category", types.Category(err)).Msg("Renewal failed")
		return err
	}

	logger.Info().Msg("Renewal completed")
	return nil
}

// Validate checks the site, the credentials and every step without
// launching a browser.
func (o *Orchestrator) Validate() error {
	if err := o.Config.Validate(); err != nil {
		return err
	}
	site := o.Config.Site()
	seq := &Sequencer{Site: site, Logger: o.Logger}
	return seq.Validate(site.Steps)
}

// ExitCode maps a run result to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
