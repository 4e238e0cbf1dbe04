// Package browsertest provides in-memory fakes of the browser capability
// interfaces and a manual clock, so engine code can be tested without a
// real browser or real time.
package browsertest

import (
	"context"
	"fmt"
	"time"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/types"
)

// Element is a fake DOM handle. The zero value (with a Name) is an absent
// element: count 0, not visible.
type Element struct {
	Name    string
	N       int
	Visible bool
	Enabled bool
	Value   string

	// Optional dynamic state; when set they override Visible / Enabled.
	VisibleFunc func() bool
	EnabledFunc func() bool

	ClickErr error
	OnClick  func()
	OnFill   func(value string)
	// Children answer Locator calls made relative to this element.
	Children map[string]*Element

	Clicks  int
	Forced  int
	Scrolls int
	Fills   []string
}

// NewElement returns a present, visible and enabled element.
func NewElement(name string) *Element {
	return &Element{Name: name, N: 1, Visible: true, Enabled: true}
}

func (e *Element) Count() (int, error) {
	return e.N, nil
}

func (e *Element) First() browser.Element {
	return e
}

func (e *Element) Locator(selector string) browser.Element {
	if child, ok := e.Children[selector]; ok {
		return child
	}
	return &Element{Name: e.Name + " >> " + selector}
}

func (e *Element) IsVisible() (bool, error) {
	if e.N == 0 {
		return false, nil
	}
	if e.VisibleFunc != nil {
		return e.VisibleFunc(), nil
	}
	return e.Visible, nil
}

func (e *Element) IsEnabled() (bool, error) {
	if e.EnabledFunc != nil {
		return e.EnabledFunc(), nil
	}
	return e.Enabled, nil
}

func (e *Element) InputValue(time.Duration) (string, error) {
	return e.Value, nil
}

// WaitFor checks the state once and reports a timeout if it does not hold.
func (e *Element) WaitFor(state browser.State, timeout time.Duration) error {
	visible, _ := e.IsVisible()
	var ok bool
	switch state {
	case browser.StateAttached:
		ok = e.N > 0
	case browser.StateDetached:
		ok = e.N == 0
	case browser.StateHidden:
		ok = !visible
	default:
		ok = visible
	}
	if !ok {
		return fmt.Errorf("%w: %s not %s within %s", types.ErrActionTimeout, e.Name, state, timeout)
	}
	return nil
}

func (e *Element) ScrollIntoView(time.Duration) error {
	e.Scrolls++
	return nil
}

func (e *Element) Click(opts browser.ClickOptions) error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.Clicks++
	if opts.Force {
		e.Forced++
	}
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *Element) Fill(value string, _ time.Duration) error {
	e.Fills = append(e.Fills, value)
	e.Value = value
	if e.OnFill != nil {
		e.OnFill(value)
	}
	return nil
}

func (e *Element) String() string {
	return e.Name
}

// Frame is a fake child frame.
type Frame struct {
	FrameURL string
	Elements map[string]*Element
}

func (f *Frame) URL() string {
	return f.FrameURL
}

func (f *Frame) Locator(selector string) browser.Element {
	if el, ok := f.Elements[selector]; ok {
		return el
	}
	return &Element{Name: selector}
}

// Page is a fake tab. Elements are looked up by exact selector string.
type Page struct {
	CurrentURL string
	Elements   map[string]*Element
	FrameList  []*Frame

	// Redirects maps a requested URL to the URL the page lands on.
	Redirects map[string]string
	// OnGoto runs after the URL is updated; a non-nil error fails Goto.
	OnGoto func(p *Page, url string) error

	Visits       []string
	Cookies      []browser.Cookie
	CookieClears int
	Screenshots  []string
}

// NewPage returns an empty page at about:blank.
func NewPage() *Page {
	return &Page{CurrentURL: "about:blank", Elements: map[string]*Element{}}
}

// Add registers el under selector and returns it.
func (p *Page) Add(selector string, el *Element) *Element {
	if p.Elements == nil {
		p.Elements = map[string]*Element{}
	}
	p.Elements[selector] = el
	return el
}

func (p *Page) Goto(url string, _ browser.GotoOptions) error {
	p.Visits = append(p.Visits, url)
	p.CurrentURL = url
	if to, ok := p.Redirects[url]; ok {
		p.CurrentURL = to
	}
	if p.OnGoto != nil {
		return p.OnGoto(p, url)
	}
	return nil
}

func (p *Page) URL() string {
	return p.CurrentURL
}

func (p *Page) Locator(selector string) browser.Element {
	if el, ok := p.Elements[selector]; ok {
		return el
	}
	return &Element{Name: selector}
}

func (p *Page) Frames() []browser.Frame {
	out := make([]browser.Frame, len(p.FrameList))
	for i, f := range p.FrameList {
		out[i] = f
	}
	return out
}

func (p *Page) AddCookies(cookies ...browser.Cookie) error {
	p.Cookies = append(p.Cookies, cookies...)
	return nil
}

func (p *Page) ClearCookies() error {
	p.Cookies = nil
	p.CookieClears++
	return nil
}

func (p *Page) Screenshot(path string) error {
	p.Screenshots = append(p.Screenshots, path)
	return nil
}

// Clock is a manual clock: Sleep advances Now instantly.
type Clock struct {
	T      time.Time
	Slept  []time.Duration
	// OnSleep runs after every Sleep, with the total time elapsed so far.
	OnSleep func(elapsed time.Duration)
	start   time.Time
}

// NewClock returns a clock starting at a fixed instant.
func NewClock() *Clock {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Clock{T: t, start: t}
}

func (c *Clock) Now() time.Time {
	return c.T
}

func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Slept = append(c.Slept, d)
	c.T = c.T.Add(d)
	if c.OnSleep != nil {
		c.OnSleep(c.T.Sub(c.start))
	}
	return nil
}

// Elapsed is the total simulated time slept.
func (c *Clock) Elapsed() time.Duration {
	return c.T.Sub(c.start)
}

// Session wraps a fake Page.
type Session struct {
	P      *Page
	Closed int
}

func (s *Session) Page() browser.Page {
	return s.P
}

func (s *Session) Close() error {
	s.Closed++
	return nil
}

// Launcher hands out a Session around Page and records every call.
type Launcher struct {
	Page     *Page
	Err      error
	Launches []browser.LaunchOptions
	Sessions []*Session
}

func (l *Launcher) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Session, error) {
	l.Launches = append(l.Launches, opts)
	if l.Err != nil {
		return nil, l.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page := l.Page
	if page == nil {
		page = NewPage()
	}
	s := &Session{P: page}
	l.Sessions = append(l.Sessions, s)
	return s, nil
}

// Timer is a backoff timer that fires immediately.
type Timer struct {
	c     chan time.Time
	Waits []time.Duration
}

func (t *Timer) Start(d time.Duration) {
	t.Waits = append(t.Waits, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Time{}
}

func (t *Timer) Stop() {}

func (t *Timer) C() <-chan time.Time {
	return t.c
}
