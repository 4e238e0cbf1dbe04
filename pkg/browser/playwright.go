package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavsurve/keepalive/pkg/types"
	"github.com/playwright-community/playwright-go"
)

// PlaywrightLauncher starts Chromium through playwright-go. The driver and
// browser must already be installed (see `keepalive install`).
type PlaywrightLauncher struct {
	Logger types.Logger
}

// Install downloads the playwright driver and Chromium.
func Install() error {
	return playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
}

func (l *PlaywrightLauncher) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fp := opts.Fingerprint.WithDefaults()

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}
	s := &pwSession{pw: pw}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     fp.LaunchArgs(),
	}
	if opts.Channel != "" {
		launch.Channel = playwright.String(opts.Channel)
	}
	if l.Logger != nil {
		l.Logger.Info().
			Str("channel", opts.Channel).
			Interface("headless", opts.Headless).
			Msg("Launching browser")
	}
	s.browser, err = pw.Chromium.Launch(launch)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	s.context, err = s.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(fp.UserAgent),
		Locale:    playwright.String(fp.Locale),
		Viewport: &playwright.Size{
			Width:  fp.Viewport.Width,
			Height: fp.Viewport.Height,
		},
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}

	if err := s.context.AddInitScript(playwright.Script{Content: playwright.String(fp.InitScript())}); err != nil {
		s.Close()
		return nil, fmt.Errorf("installing init script: %w", err)
	}

	page, err := s.context.NewPage()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating page: %w", err)
	}
	if opts.DefaultTimeout > 0 {
		page.SetDefaultTimeout(float64(opts.DefaultTimeout.Milliseconds()))
		page.SetDefaultNavigationTimeout(float64(opts.DefaultTimeout.Milliseconds()))
	}
	s.page = &pwPage{page: page}

	return s, nil
}

type pwSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    *pwPage
}

func (s *pwSession) Page() Page {
	return s.page
}

// Close tears down page, context, browser and driver, in that order.
func (s *pwSession) Close() error {
	var errs []error
	if s.page != nil {
		errs = append(errs, s.page.page.Close())
	}
	if s.context != nil {
		errs = append(errs, s.context.Close())
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	return errors.Join(errs...)
}

type pwPage struct {
	page playwright.Page
}

func (p *pwPage) Goto(url string, opts GotoOptions) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: waitUntil(opts.WaitUntil),
		Timeout:   millis(opts.Timeout),
	})
	return translate(err)
}

func (p *pwPage) URL() string {
	return p.page.URL()
}

func (p *pwPage) Locator(selector string) Element {
	return &pwElement{loc: p.page.Locator(selector), desc: selector}
}

func (p *pwPage) Frames() []Frame {
	frames := p.page.Frames()
	out := make([]Frame, 0, len(frames))
	for _, f := range frames {
		out = append(out, &pwFrame{frame: f})
	}
	return out
}

func (p *pwPage) AddCookies(cookies ...Cookie) error {
	optional := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		oc := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			HttpOnly: playwright.Bool(c.HTTPOnly),
			Secure:   playwright.Bool(c.Secure),
		}
		if !c.Expires.IsZero() {
			oc.Expires = playwright.Float(float64(c.Expires.Unix()))
		}
		switch c.SameSite {
		case "Strict":
			oc.SameSite = playwright.SameSiteAttributeStrict
		case "None":
			oc.SameSite = playwright.SameSiteAttributeNone
		case "Lax":
			oc.SameSite = playwright.SameSiteAttributeLax
		}
		optional = append(optional, oc)
	}
	return translate(p.page.Context().AddCookies(optional))
}

func (p *pwPage) ClearCookies() error {
	return translate(p.page.Context().ClearCookies())
}

func (p *pwPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return translate(err)
}

type pwFrame struct {
	frame playwright.Frame
}

func (f *pwFrame) URL() string {
	return f.frame.URL()
}

func (f *pwFrame) Locator(selector string) Element {
	return &pwElement{loc: f.frame.Locator(selector), desc: "frame " + selector}
}

type pwElement struct {
	loc  playwright.Locator
	desc string
}

func (e *pwElement) Count() (int, error) {
	n, err := e.loc.Count()
	return n, translate(err)
}

func (e *pwElement) First() Element {
	return &pwElement{loc: e.loc.First(), desc: e.desc}
}

func (e *pwElement) Locator(selector string) Element {
	return &pwElement{loc: e.loc.Locator(selector), desc: e.desc + " >> " + selector}
}

func (e *pwElement) IsVisible() (bool, error) {
	ok, err := e.loc.IsVisible()
	return ok, translate(err)
}

func (e *pwElement) IsEnabled() (bool, error) {
	ok, err := e.loc.IsEnabled()
	return ok, translate(err)
}

func (e *pwElement) InputValue(timeout time.Duration) (string, error) {
	v, err := e.loc.InputValue(playwright.LocatorInputValueOptions{Timeout: millis(timeout)})
	return v, translate(err)
}

func (e *pwElement) WaitFor(state State, timeout time.Duration) error {
	return translate(e.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   selectorState(state),
		Timeout: millis(timeout),
	}))
}

func (e *pwElement) ScrollIntoView(timeout time.Duration) error {
	return translate(e.loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
		Timeout: millis(timeout),
	}))
}

func (e *pwElement) Click(opts ClickOptions) error {
	return translate(e.loc.Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(opts.Force),
		Timeout: millis(opts.Timeout),
	}))
}

func (e *pwElement) Fill(value string, timeout time.Duration) error {
	return translate(e.loc.Fill(value, playwright.LocatorFillOptions{Timeout: millis(timeout)}))
}

func (e *pwElement) String() string {
	return e.desc
}

// translate maps driver timeouts onto the engine's taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", types.ErrActionTimeout, err)
	}
	return err
}

func millis(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func waitUntil(s LoadState) *playwright.WaitUntilState {
	switch s {
	case LoadStateDOMContentLoaded:
		return playwright.WaitUntilStateDomcontentloaded
	case LoadStateNetworkIdle:
		return playwright.WaitUntilStateNetworkidle
	default:
		return playwright.WaitUntilStateLoad
	}
}

func selectorState(s State) *playwright.WaitForSelectorState {
	switch s {
	case StateAttached:
		return playwright.WaitForSelectorStateAttached
	case StateDetached:
		return playwright.WaitForSelectorStateDetached
	case StateHidden:
		return playwright.WaitForSelectorStateHidden
	default:
		return playwright.WaitForSelectorStateVisible
	}
}
