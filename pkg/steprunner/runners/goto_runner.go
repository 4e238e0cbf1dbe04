package runners

import (
	"context"
	"fmt"
	"net/url"

	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/steprunner"
)

// GotoRunner navigates to a fixed URL.
type GotoRunner struct {
	StepCtx steprunner.ExecutionContext
}

func init() {
	steprunner.RegisterRunnerFactory(core.UsesGoto, func(ctx steprunner.ExecutionContext) (steprunner.StepRunner, error) {
		return &GotoRunner{
			StepCtx: ctx,
		}, nil
	})
}

func (gr *GotoRunner) Validate() error {
	step := gr.StepCtx.Step

	if step.URL == "" {
		return fmt.Errorf("goto step %q must define 'url'", step.ID)
	}
	if u, err := url.Parse(step.URL); err != nil || u.Host == "" {
		return fmt.Errorf("goto step %q: 'url' must be absolute", step.ID)
	}
	if len(step.Match) > 0 {
		return fmt.Errorf("goto step %q must not define 'match'", step.ID)
	}
	return nil
}

func (gr *GotoRunner) Prepare(context.Context) error {
	return nil
}

func (gr *GotoRunner) Attempt(ctx context.Context) error {
	return steprunner.Navigate(ctx, gr.StepCtx, gr.StepCtx.Step.URL)
}
