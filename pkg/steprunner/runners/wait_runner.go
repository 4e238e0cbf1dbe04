package runners

import (
	"context"
	"fmt"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/steprunner"
)

// WaitRunner waits for an element to become attached, visible and,
// optionally, enabled.
type WaitRunner struct {
	StepCtx steprunner.ExecutionContext
	target  browser.Element
}

func init() {
	steprunner.RegisterRunnerFactory(core.UsesWait, func(ctx steprunner.ExecutionContext) (steprunner.StepRunner, error) {
		return &WaitRunner{
			StepCtx: ctx,
		}, nil
	})
}

func (wr *WaitRunner) Validate() error {
	step := wr.StepCtx.Step

	if len(step.Match) == 0 {
		return fmt.Errorf("wait step %q must define 'match'", step.ID)
	}
	if len(step.Await) > 0 {
		return fmt.Errorf("wait step %q must not define 'await'", step.ID)
	}
	return nil
}

func (wr *WaitRunner) Prepare(ctx context.Context) error {
	ec := wr.StepCtx
	el, err := steprunner.Resolve(ctx, ec, ec.Step.Match, ec.Step.ResolveTimeout)
	if err != nil {
		return err
	}
	wr.target = el
	return nil
}

func (wr *WaitRunner) Attempt(ctx context.Context) error {
	ec := wr.StepCtx
	if err := steprunner.EnsurePage(ctx, ec, ec.Step.Page); err != nil {
		return err
	}
	return ec.Waiter().Ready(ctx, wr.target, ec.Step.Timeout, ec.Step.RequireEnabled)
}
