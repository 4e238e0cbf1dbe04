package runners

import (
	"context"
	"fmt"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/steprunner"
	"github.com/arnavsurve/keepalive/pkg/types"
)

// ClickRunner resolves the step's element once, then on every attempt
// waits for it, clicks, clears any challenge and waits for the await
// element of the next page.
type ClickRunner struct {
	StepCtx steprunner.ExecutionContext
	target  browser.Element
}

func init() {
	steprunner.RegisterRunnerFactory(core.UsesClick, func(ctx steprunner.ExecutionContext) (steprunner.StepRunner, error) {
		return &ClickRunner{
			StepCtx: ctx,
		}, nil
	})
}

func (cr *ClickRunner) Validate() error {
	step := cr.StepCtx.Step

	if len(step.Match) == 0 {
		return fmt.Errorf("click step %q must define 'match'", step.ID)
	}
	if step.URL != "" {
		return fmt.Errorf("click step %q must not define 'url'", step.ID)
	}
	return nil
}

func (cr *ClickRunner) Prepare(ctx context.Context) error {
	ec := cr.StepCtx
	el, err := steprunner.Resolve(ctx, ec, ec.Step.Match, ec.Step.ResolveTimeout)
	if err != nil {
		return err
	}
	cr.target = el
	return nil
}

func (cr *ClickRunner) Attempt(ctx context.Context) error {
	ec := cr.StepCtx
	step := ec.Step
	clock := ec.ClockOrSystem()

	if cr.target == nil {
		return fmt.Errorf("click step %q attempted before its element was resolved", step.ID)
	}
	if err := steprunner.EnsurePage(ctx, ec, step.Page); err != nil {
		return err
	}
	if err := ec.Waiter().Ready(ctx, cr.target, step.Timeout, step.RequireEnabled); err != nil {
		return err
	}
	if err := cr.target.ScrollIntoView(step.Timeout); err != nil {
		return err
	}
	if err := ec.Pacing.Pause(ctx, clock); err != nil {
		return err
	}

	ec.Logger.Info().Str("element", cr.target.String()).Msg("Clicking")
	if err := cr.target.Click(browser.ClickOptions{Timeout: step.Timeout}); err != nil {
		return err
	}

	if err := steprunner.ResolveChallenge(ctx, ec); err != nil {
		return fmt.Errorf("after click: %w", err)
	}

	if len(step.Await) > 0 {
		if err := cr.await(ctx); err != nil {
			return err
		}
	}
	return ec.Pacing.Settle(ctx, clock)
}

// await waits for the element that marks the next page. Not finding it is
// a timeout, not a selector mismatch: the click may simply not have landed.
func (cr *ClickRunner) await(ctx context.Context) error {
	ec := cr.StepCtx
	step := ec.Step
	clock := ec.ClockOrSystem()
	start := clock.Now()

	el, err := steprunner.Resolve(ctx, ec, step.Await, step.AwaitTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: awaiting next page: %v", types.ErrActionTimeout, err)
	}

	remaining := step.AwaitTimeout - clock.Now().Sub(start)
	if err := ec.Waiter().Ready(ctx, el, remaining, true); err != nil {
		return fmt.Errorf("awaiting next page: %w", err)
	}
	ec.Logger.Info().Str("element", el.String()).Msg("Next page ready")
	return nil
}
