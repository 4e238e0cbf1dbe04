package steprunner

import (
	"context"
	"time"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/pacing"
	"github.com/arnavsurve/keepalive/pkg/types"
)

// ChallengeResolver clears an interstitial challenge if one is showing.
type ChallengeResolver interface {
	Resolve(ctx context.Context, page browser.Page, maxWait time.Duration) error
}

// ExecutionContext is what a runner gets to execute one step.
type ExecutionContext struct {
	Step      core.StepSpec
	Site      core.Site
	Page      browser.Page
	Logger    types.Logger
	Clock     pacing.Clock
	Pacing    pacing.Policy
	Challenge ChallengeResolver
}

// StepRunner executes one kind of step. Prepare runs once and its errors
// are final; Attempt runs once per try and is retried by the sequencer
// when it fails with a retryable error.
type StepRunner interface {
	Validate() error
	Prepare(ctx context.Context) error
	Attempt(ctx context.Context) error
}
