package engine_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/browser/browsertest"
	"github.com/arnavsurve/keepalive/pkg/challenge"
	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/engine"
	"github.com/arnavsurve/keepalive/pkg/log"
	"github.com/arnavsurve/keepalive/pkg/pacing"
	"github.com/arnavsurve/keepalive/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const target = "https://dash.example.com/service/85242/manage"

func testSite() core.Site {
	return core.Site{
		Name:             "example",
		EnvPrefix:        "EXAMPLE",
		TargetURL:        target,
		CookieName:       "remember_web_",
		ChallengeTimeout: 10 * time.Second,
		Steps: []core.StepSpec{
			{ID: "renew", Uses: core.UsesClick, Match: []core.MatcherSpec{{Text: "Renew", Tag: "button"}}},
			{ID: "create_invoice", Uses: core.UsesClick, Match: []core.MatcherSpec{{Text: "Create Invoice", Tag: "button"}}},
			{ID: "pay", Uses: core.UsesClick, Match: []core.MatcherSpec{{Text: "Pay", Tag: "button"}}, RequireEnabled: true},
		},
	}.WithDefaults()
}

type harness struct {
	page  *browsertest.Page
	clock *browsertest.Clock
	timer *browsertest.Timer
	dir   string
	seq   *engine.Sequencer
}

func newHarness(t *testing.T, site core.Site) *harness {
	t.Helper()
	h := &harness{
		page:  browsertest.NewPage(),
		clock: browsertest.NewClock(),
		timer: &browsertest.Timer{},
		dir:   t.TempDir(),
	}
	logger := log.Nop()
	h.seq = &engine.Sequencer{
		Site:      site,
		Challenge: challenge.NewHandler(logger, h.clock, pacing.Policy{}),
		Clock:     h.clock,
		Pacing:    pacing.Policy{},
		Shots:     &browser.Recorder{Dir: h.dir, Logger: logger},
		Logger:    logger,
		Timer:     h.timer,
	}
	return h
}

func (h *harness) button(text string) *browsertest.Element {
	return h.page.Add(`button:has-text("`+text+`")`, browsertest.NewElement(text))
}

func (h *harness) shot(name string) string {
	return filepath.Join(h.dir, name)
}

func TestRunActions_ClicksInOrder(t *testing.T) {
	site := testSite()
	h := newHarness(t, site)
	var order []string
	for _, text := range []string{"Renew", "Create Invoice", "Pay"} {
		b := h.button(text)
		b.OnClick = func() { order = append(order, text) }
	}

	err := h.seq.RunActions(context.Background(), h.page, site.Steps)

	require.NoError(t, err)
	assert.Equal(t, []string{"Renew", "Create Invoice", "Pay"}, order)
	assert.Equal(t, []string{target}, h.page.Visits)
	assert.Empty(t, h.timer.Waits)
	assert.Empty(t, h.page.Screenshots)
}

func TestRunActions_SkipsNavigationWhenOnTarget(t *testing.T) {
	site := testSite()
	h := newHarness(t, site)
	h.page.CurrentURL = target + "/"
	h.button("Renew")
	h.button("Create Invoice")
	h.button("Pay")

	require.NoError(t, h.seq.RunActions(context.Background(), h.page, site.Steps))
	assert.Empty(t, h.page.Visits)
}

func TestRunActions_NotFoundIsNotRetried(t *testing.T) {
	site := testSite()
	h := newHarness(t, site)
	renew := h.button("Renew")

	err := h.seq.RunActions(context.Background(), h.page, site.Steps)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrElementNotFound)
	var stepErr *types.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "create_invoice", stepErr.StepID)
	assert.Zero(t, stepErr.Attempts)
	assert.Equal(t, 1, renew.Clicks)
	assert.Empty(t, h.timer.Waits)
	assert.Equal(t, []string{h.shot("create_invoice_not_found.png")}, h.page.Screenshots)
}

func TestRunActions_NeverVisibleExhaustsAttempts(t *testing.T) {
	site := testSite()
	site.Steps = site.Steps[:1]
	h := newHarness(t, site)
	renew := h.page.Add(`button:has-text("Renew")`, &browsertest.Element{Name: "Renew", N: 1})

	err := h.seq.RunActions(context.Background(), h.page, site.Steps)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrActionTimeout)
	var stepErr *types.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "renew", stepErr.StepID)
	assert.Equal(t, core.DefaultAttempts, stepErr.Attempts)
	assert.Zero(t, renew.Clicks)
	assert.Equal(t, []string{h.shot("renew_failed.png")}, h.page.Screenshots)

	require.Len(t, h.timer.Waits, core.DefaultAttempts-1)
	for _, wait := range h.timer.Waits {
		assert.InDelta(t, float64(core.DefaultBackoff), float64(wait), float64(core.DefaultBackoff)*core.DefaultJitter+1)
	}
}

func TestRunActions_ChallengeFailureIsRetried(t *testing.T) {
	site := testSite()
	site.Steps = site.Steps[:1]
	h := newHarness(t, site)
	marker := h.page.Add(".cf-turnstile", &browsertest.Element{Name: "turnstile"})
	renew := h.button("Renew")
	renew.OnClick = func() {
		// The first click triggers a challenge that never clears.
		if renew.Clicks == 1 {
			marker.N = 1
		} else {
			marker.N = 0
		}
	}

	err := h.seq.RunActions(context.Background(), h.page, site.Steps)

	require.NoError(t, err)
	assert.Equal(t, 2, renew.Clicks)
	assert.Len(t, h.timer.Waits, 1)
}

func TestRunActions_ChallengeNeverClears(t *testing.T) {
	site := testSite()
	site.Steps = site.Steps[:1]
	site.Steps[0].Attempts = 2
	h := newHarness(t, site)
	marker := h.page.Add(".cf-turnstile", &browsertest.Element{Name: "turnstile"})
	renew := h.button("Renew")
	renew.OnClick = func() { marker.N = 1 }

	err := h.seq.RunActions(context.Background(), h.page, site.Steps)

	assert.ErrorIs(t, err, types.ErrChallengeTimeout)
	assert.Equal(t, 2, renew.Clicks)
}

func TestRunActions_TerminalErrorStopsRetries(t *testing.T) {
	site := testSite()
	site.Steps = site.Steps[:1]
	h := newHarness(t, site)
	renew := h.button("Renew")
	renew.ClickErr = errors.New("target page, context or browser has been closed")

	err := h.seq.RunActions(context.Background(), h.page, site.Steps)

	require.Error(t, err)
	var stepErr *types.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 1, stepErr.Attempts)
	assert.Equal(t, "unclassified", types.Category(err))
	assert.Empty(t, h.timer.Waits)
}

func TestRunActions_CreateInvoiceAwaitsPayPage(t *testing.T) {
	site := testSite()
	site.Steps[1].Await = []core.MatcherSpec{{Text: "Pay", Tag: "button"}}
	site.Steps[1].AwaitTimeout = time.Minute
	h := newHarness(t, site)
	h.button("Renew")
	create := h.button("Create Invoice")
	create.OnClick = func() {
		h.page.CurrentURL = "https://dash.example.com/invoice/1"
		delete(h.page.Elements, `button:has-text("Create Invoice")`)
		h.clock.OnSleep = func(time.Duration) {
			if _, ok := h.page.Elements[`button:has-text("Pay")`]; !ok {
				h.button("Pay")
			}
		}
	}

	require.NoError(t, h.seq.RunActions(context.Background(), h.page, site.Steps))
	assert.Equal(t, 1, create.Clicks)
	assert.Equal(t, 1, h.page.Elements[`button:has-text("Pay")`].Clicks)
}

func TestRunActions_VerifyAndSuccessScreenshot(t *testing.T) {
	site := testSite()
	site.Steps = site.Steps[:1]
	site.Verify = []core.MatcherSpec{{CSS: ".alert-success"}}
	site.SuccessScreenshot = true
	h := newHarness(t, site)
	renew := h.button("Renew")
	renew.OnClick = func() { h.page.Add(".alert-success", browsertest.NewElement("ok")) }

	require.NoError(t, h.seq.RunActions(context.Background(), h.page, site.Steps))
	assert.Equal(t, []string{h.shot(engine.ShotSuccess)}, h.page.Screenshots)
}

func TestRunActions_VerifyFails(t *testing.T) {
	site := testSite()
	site.Steps = site.Steps[:1]
	site.Verify = []core.MatcherSpec{{CSS: ".alert-success"}}
	site.SuccessScreenshot = true
	h := newHarness(t, site)
	h.button("Renew")

	err := h.seq.RunActions(context.Background(), h.page, site.Steps)

	var stepErr *types.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "verify", stepErr.StepID)
	assert.Equal(t, []string{h.shot(engine.ShotVerifyFailed)}, h.page.Screenshots)
}

func TestSequencer_Validate(t *testing.T) {
	h := newHarness(t, testSite())

	assert.NoError(t, h.seq.Validate(testSite().Steps))

	err := h.seq.Validate([]core.StepSpec{{ID: "x", Uses: "shell"}})
	assert.ErrorIs(t, err, types.ErrConfiguration)

	err = h.seq.Validate([]core.StepSpec{{ID: "x", Uses: "click"}})
	assert.ErrorIs(t, err, types.ErrConfiguration)
	assert.Contains(t, err.Error(), "must define 'match'")
}
