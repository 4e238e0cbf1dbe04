// Package browser is the capability layer between the renewal engine and
// the browser driver. Everything above this package talks to Page, Frame
// and Element; the playwright-go implementation lives in playwright.go.
package browser

import (
	"context"
	"time"
)

// State is an element lifecycle state that can be waited for.
type State string

const (
	StateAttached State = "attached"
	StateDetached State = "detached"
	StateVisible  State = "visible"
	StateHidden   State = "hidden"
)

// LoadState is the navigation milestone Goto waits for.
type LoadState string

const (
	LoadStateLoad             LoadState = "load"
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
)

// GotoOptions control a single navigation.
type GotoOptions struct {
	WaitUntil LoadState
	Timeout   time.Duration
}

// ClickOptions control a single click.
type ClickOptions struct {
	Force   bool
	Timeout time.Duration
}

// Cookie is a cookie injected into the browser context.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  time.Time
	HTTPOnly bool
	Secure   bool
	SameSite string
}

// Element is a lazily evaluated handle on zero or more DOM nodes.
// Implementations re-query the DOM on every call.
type Element interface {
	Count() (int, error)
	First() Element
	// Locator narrows the element with a selector evaluated relative to it.
	Locator(selector string) Element
	IsVisible() (bool, error)
	IsEnabled() (bool, error)
	InputValue(timeout time.Duration) (string, error)
	// WaitFor blocks until the element reaches state. A timeout is reported
	// as an error wrapping types.ErrActionTimeout.
	WaitFor(state State, timeout time.Duration) error
	ScrollIntoView(timeout time.Duration) error
	Click(opts ClickOptions) error
	Fill(value string, timeout time.Duration) error
	String() string
}

// Frame is a child browsing context, such as a challenge iframe.
type Frame interface {
	URL() string
	Locator(selector string) Element
}

// Page is the single tab a run drives.
type Page interface {
	Goto(url string, opts GotoOptions) error
	URL() string
	Locator(selector string) Element
	Frames() []Frame
	AddCookies(cookies ...Cookie) error
	ClearCookies() error
	Screenshot(path string) error
}

// Session owns the browser process behind a Page.
type Session interface {
	Page() Page
	Close() error
}

// LaunchOptions configure a browser session.
type LaunchOptions struct {
	Headless       bool
	Channel        string
	Fingerprint    Fingerprint
	DefaultTimeout time.Duration
}

// Launcher starts browser sessions.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Session, error)
}
