// Package session turns a fresh page into an authenticated one, trying the
// stored cookie first and falling back to the email/password form.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/pacing"
	"github.com/arnavsurve/keepalive/pkg/steprunner"
	"github.com/arnavsurve/keepalive/pkg/types"
)

// Screenshot names written on login failures.
const (
	ShotCookieError = "cookie_login_error.png"
	ShotLoginError  = "login_error.png"
	ShotLoginFailed = "login_failed.png"
)

var errStillOnLogin = errors.New("still on login page")

type Establisher struct {
	Site      core.Site
	Challenge steprunner.ChallengeResolver
	Clock     pacing.Clock
	Pacing    pacing.Policy
	Shots     *browser.Recorder
	Logger    types.Logger
}

// Establish authenticates page. On success the page is logged in (for the
// cookie path it is already on the target URL). When neither path works
// the error wraps types.ErrAuthentication.
func (e *Establisher) Establish(ctx context.Context, page browser.Page, creds core.Credentials) error {
	if creds.HasCookie() {
		if e.cookieLogin(ctx, page, *creds.Cookie) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	} else {
		e.Logger.Info().Msg("No session cookie configured, skipping cookie login")
	}

	if !creds.HasPassword() {
		return fmt.Errorf("%w: no working cookie and no email/password to fall back on", types.ErrAuthentication)
	}

	if err := e.passwordLogin(ctx, page, creds); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: password login: %v", types.ErrAuthentication, err)
	}
	return nil
}

func (e *Establisher) execCtx(page browser.Page) steprunner.ExecutionContext {
	return steprunner.ExecutionContext{
		Site:      e.Site,
		Page:      page,
		Logger:    e.Logger,
		Clock:     e.Clock,
		Pacing:    e.Pacing,
		Challenge: e.Challenge,
	}
}

// cookieLogin reports whether the cookie produced a logged-in target page.
// Every failure clears cookies so the password path starts clean.
func (e *Establisher) cookieLogin(ctx context.Context, page browser.Page, cookie core.Cookie) bool {
	ec := e.execCtx(page)
	logger := e.Logger.With().Str("method", "cookie").Logger()
	logger.Info().Str("cookie_name", cookie.Name).Msg("Trying cookie login")

	if err := page.AddCookies(e.Site.BrowserCookie(cookie, ec.ClockOrSystem().Now())); err != nil {
		logger.Warn().Err(err).Msg("Could not inject session cookie")
		e.clearCookies(page)
		return false
	}

	if err := steprunner.Navigate(ctx, ec, e.Site.TargetURL); err != nil {
		logger.Warn().Err(err).Msg("Cookie login failed")
		e.Shots.Capture(page, ShotCookieError)
		e.clearCookies(page)
		return false
	}

	if e.Site.IsLoginPage(page.URL()) {
		logger.Warn().Msg("Cookie rejected, redirected to login page")
		e.clearCookies(page)
		return false
	}

	logger.Info().Msg("Cookie login succeeded")
	return true
}

func (e *Establisher) clearCookies(page browser.Page) {
	if err := page.ClearCookies(); err != nil {
		e.Logger.Warn().Err(err).Msg("Could not clear cookies")
	}
}

func (e *Establisher) passwordLogin(ctx context.Context, page browser.Page, creds core.Credentials) error {
	err := e.submitLoginForm(ctx, page, creds)
	switch {
	case err == nil:
		e.Logger.Info().Str("url", page.URL()).Msg("Password login succeeded")
		return nil
	case errors.Is(err, errStillOnLogin):
		e.Logger.Error().Msg("Login failed: still on login page")
		e.Shots.Capture(page, ShotLoginFailed)
	default:
		e.Logger.Error().Err(err).Msg("Login failed")
		e.Shots.Capture(page, ShotLoginError)
	}
	return err
}

func (e *Establisher) submitLoginForm(ctx context.Context, page browser.Page, creds core.Credentials) error {
	ec := e.execCtx(page)
	login := e.Site.Login
	clock := ec.ClockOrSystem()
	waiter := ec.Waiter()

	e.Logger.Info().Str("method", "password").Msg("Trying password login")
	if err := steprunner.Navigate(ctx, ec, e.Site.LoginURL()); err != nil {
		return err
	}

	if err := e.fill(ctx, ec, "email", login.Email, creds.Email); err != nil {
		return err
	}
	if err := e.fill(ctx, ec, "password", login.Password, creds.Password); err != nil {
		return err
	}
	if err := ec.Pacing.Pause(ctx, clock); err != nil {
		return err
	}
	if err := steprunner.ResolveChallenge(ctx, ec); err != nil {
		return err
	}

	submit, err := steprunner.Resolve(ctx, ec, login.Submit, login.FieldTimeout)
	if err != nil {
		return fmt.Errorf("submit button: %w", err)
	}
	if err := waiter.Visible(submit, login.FieldTimeout); err != nil {
		return fmt.Errorf("submit button: %w", err)
	}
	if err := submit.ScrollIntoView(login.FieldTimeout); err != nil {
		return err
	}
	e.Logger.Info().Msg("Submitting login form")
	if err := submit.Click(browser.ClickOptions{Timeout: login.FieldTimeout}); err != nil {
		return fmt.Errorf("clicking submit: %w", err)
	}

	left := func(url string) bool { return !e.Site.IsLoginPage(url) }
	if err := waiter.URL(ctx, page, login.RedirectTimeout, "redirect away from the login page", left); err != nil {
		if errors.Is(err, types.ErrActionTimeout) {
			return errStillOnLogin
		}
		return err
	}
	if err := steprunner.ResolveChallenge(ctx, ec); err != nil {
		return err
	}
	if e.Site.IsLoginPage(page.URL()) {
		return errStillOnLogin
	}
	return nil
}

// fill never logs value.
func (e *Establisher) fill(ctx context.Context, ec steprunner.ExecutionContext, field string, specs []core.MatcherSpec, value string) error {
	timeout := e.Site.Login.FieldTimeout
	el, err := steprunner.Resolve(ctx, ec, specs, timeout)
	if err != nil {
		return fmt.Errorf("%s field: %w", field, err)
	}
	if err := ec.Waiter().Visible(el, timeout); err != nil {
		return fmt.Errorf("%s field: %w", field, err)
	}
	e.Logger.Info().Str("field", field).Msg("Filling login field")
	return el.Fill(value, timeout)
}
