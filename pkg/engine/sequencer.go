// Package engine runs a renewal: it authenticates a browser session and
// executes the site's ordered steps with bounded retries.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/pacing"
	"github.com/arnavsurve/keepalive/pkg/steprunner"
	"github.com/arnavsurve/keepalive/pkg/types"
	"github.com/cenkalti/backoff/v4"

	// Ensure all runner implementations are initialized
	_ "github.com/arnavsurve/keepalive/pkg/steprunner/runners"
)

const (
	ShotSuccess      = "renew_success.png"
	ShotVerifyFailed = "verify_failed.png"

	verifyStepID = "verify"
)

// Sequencer executes a site's steps in order on an authenticated page.
type Sequencer struct {
	Site      core.Site
	Challenge steprunner.ChallengeResolver
	Clock     pacing.Clock
	Pacing    pacing.Policy
	Shots     *browser.Recorder
	Logger    types.Logger
	// Timer drives retry backoff. Nil uses a real timer.
	Timer backoff.Timer
}

func (s *Sequencer) execCtx(page browser.Page) steprunner.ExecutionContext {
	return steprunner.ExecutionContext{
		Site:      s.Site,
		Page:      page,
		Logger:    s.Logger,
		Clock:     s.Clock,
		Pacing:    s.Pacing,
		Challenge: s.Challenge,
	}
}

// Validate checks every step against its runner without touching a page.
func (s *Sequencer) Validate(steps []core.StepSpec) error {
	for _, step := range steps {
		ec := s.execCtx(nil)
		ec.Step = step
		runner, err := steprunner.GetRunner(ec)
		if err != nil {
			return fmt.Errorf("%w: getting runner for step %q: %v", types.ErrConfiguration, step.ID, err)
		}
		if err := runner.Validate(); err != nil {
			return fmt.Errorf("%w: validating step %q: %v", types.ErrConfiguration, step.ID, err)
		}
	}
	return nil
}

// RunActions brings the page to the site target, runs steps in order and
// then the optional verification. The first failing step aborts the run
// with a *types.StepError.
func (s *Sequencer) RunActions(ctx context.Context, page browser.Page, steps []core.StepSpec) error {
	ec := s.execCtx(page)
	open := steprunner.Navigate
	if core.SameURL(page.URL(), s.Site.TargetURL) {
		open = func(ctx context.Context, ec steprunner.ExecutionContext, _ string) error {
			return steprunner.ResolveChallenge(ctx, ec)
		}
	}
	if err := open(ctx, ec, s.Site.TargetURL); err != nil {
		return fmt.Errorf("opening target page: %w", err)
	}

	for i, step := range steps {
		s.Logger.Info().Msgf("Step %d/%d: %s (uses=%s)", i+1, len(steps), step.ID, step.Uses)
		if err := s.runStep(ctx, page, step.WithDefaults()); err != nil {
			return err
		}
	}

	if len(s.Site.Verify) > 0 {
		if err := s.verify(ctx, page); err != nil {
			return err
		}
	}
	if s.Site.SuccessScreenshot {
		s.Shots.Capture(page, ShotSuccess)
	}
	return nil
}

func (s *Sequencer) runStep(ctx context.Context, page browser.Page, step core.StepSpec) error {
	logger := s.Logger.With().
		Str("step_id", step.ID).
		Str("step_uses", step.Uses).
		Logger()

	ec := s.execCtx(page)
	ec.Step = step
	ec.Logger = logger

	runner, err := steprunner.GetRunner(ec)
	if err != nil {
		return &types.StepError{StepID: step.ID, Err: fmt.Errorf("%w: %v", types.ErrConfiguration, err)}
	}
	if err := runner.Validate(); err != nil {
		return &types.StepError{StepID: step.ID, Err: fmt.Errorf("%w: %v", types.ErrConfiguration, err)}
	}

	if err := runner.Prepare(ctx); err != nil {
		if errors.Is(err, types.ErrElementNotFound) {
			logger.Error().Err(err).Msg("No selector candidate matched")
			s.Shots.Capture(page, step.ID+"_not_found.png")
		}
		return &types.StepError{StepID: step.ID, Err: err}
	}

	attempts := 0
	operation := func() error {
		attempts++
		logger.Info().Int("attempt", attempts).Int("max_attempts", step.Attempts).Msg("Running step")
		err := runner.Attempt(ctx)
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			return backoff.Permanent(ctx.Err())
		case !types.IsRetryable(err):
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		logger.Warn().
			Err(err).
			Int("attempt", attempts).
			Dur("backoff", next).
			Msg("Step attempt failed, retrying")
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(retryPolicy(step), uint64(step.Attempts-1)), ctx)
	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, s.Timer); err != nil {
		logger.Error().Err(err).Int("attempts", attempts).Str("category", types.Category(err)).Msg("Step failed")
		s.Shots.Capture(page, step.ID+"_failed.png")
		return &types.StepError{StepID: step.ID, Attempts: attempts, Err: err}
	}

	logger.Info().Int("attempts", attempts).Msg("Step completed")
	return nil
}

// retryPolicy is a constant backoff with jitter.
func retryPolicy(step core.StepSpec) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = step.Backoff
	b.MaxInterval = step.Backoff
	b.Multiplier = 1
	b.RandomizationFactor = step.Jitter
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// verify waits for the site's success marker after the last step.
func (s *Sequencer) verify(ctx context.Context, page browser.Page) error {
	ec := s.execCtx(page)
	ec.Logger = s.Logger.With().Str("step_id", verifyStepID).Logger()

	el, err := steprunner.Resolve(ctx, ec, s.Site.Verify, core.DefaultResolveTimeout)
	if err == nil {
		err = ec.Waiter().Visible(el, core.DefaultStepTimeout)
	}
	if err != nil {
		ec.Logger.Error().Err(err).Msg("Renewal could not be verified")
		s.Shots.Capture(page, ShotVerifyFailed)
		return &types.StepError{StepID: verifyStepID, Err: err}
	}
	ec.Logger.Info().Msg("Renewal verified")
	return nil
}
