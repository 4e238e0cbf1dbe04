package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/pacing"
)

// Step kinds understood by the engine.
const (
	UsesClick = "click"
	UsesGoto  = "goto"
	UsesWait  = "wait"
)

const (
	DefaultStepTimeout       = 30 * time.Second
	DefaultResolveTimeout    = 10 * time.Second
	DefaultAttempts          = 5
	DefaultBackoff           = 3 * time.Second
	DefaultJitter            = 0.2
	DefaultNavigationTimeout = 60 * time.Second
	DefaultChallengeTimeout  = 120 * time.Second
	DefaultFieldTimeout      = 15 * time.Second
	DefaultRedirectTimeout   = 45 * time.Second
)

// MatcherSpec is one selector candidate. Exactly one of CSS or Text is set;
// Tag narrows Text, and Ancestor makes the nearest enclosing element of
// that tag the resolved element.
type MatcherSpec struct {
	CSS      string `yaml:"css,omitempty"`
	Text     string `yaml:"text,omitempty"`
	Tag      string `yaml:"tag,omitempty"`
	Ancestor string `yaml:"ancestor,omitempty"`
}

// Matcher builds the browser matcher for this candidate.
func (m MatcherSpec) Matcher() (browser.Matcher, error) {
	var base browser.Matcher
	switch {
	case m.CSS != "" && m.Text != "":
		return nil, fmt.Errorf("matcher sets both css %q and text %q", m.CSS, m.Text)
	case m.CSS != "":
		if m.Tag != "" {
			return nil, fmt.Errorf("matcher css %q: tag only applies to text matchers", m.CSS)
		}
		base = browser.CSS(m.CSS)
	case m.Text != "":
		base = browser.Text{Tag: m.Tag, Text: m.Text}
	default:
		return nil, fmt.Errorf("matcher needs css or text")
	}
	if m.Ancestor != "" {
		return browser.Within{Inner: base, Ancestor: m.Ancestor}, nil
	}
	return base, nil
}

// Matchers builds candidates in order.
func Matchers(specs []MatcherSpec) ([]browser.Matcher, error) {
	out := make([]browser.Matcher, 0, len(specs))
	for i, s := range specs {
		m, err := s.Matcher()
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// StepSpec declares one UI interaction of the renewal sequence.
type StepSpec struct {
	ID   string `yaml:"id"`
	Uses string `yaml:"uses"`

	Match []MatcherSpec `yaml:"match,omitempty"`
	// URL is the destination of a goto step.
	URL string `yaml:"url,omitempty"`
	// Page, when set, is the URL the step expects to run on; the page is
	// navigated there before each attempt if it has drifted.
	Page           string `yaml:"page,omitempty"`
	RequireEnabled bool   `yaml:"require_enabled,omitempty"`

	Timeout        time.Duration `yaml:"timeout,omitempty"`
	ResolveTimeout time.Duration `yaml:"resolve_timeout,omitempty"`
	Attempts       int           `yaml:"attempts,omitempty"`
	Backoff        time.Duration `yaml:"backoff,omitempty"`
	Jitter         float64       `yaml:"jitter,omitempty"`

	// Await is an element unique to the page the click leads to.
	Await        []MatcherSpec `yaml:"await,omitempty"`
	AwaitTimeout time.Duration `yaml:"await_timeout,omitempty"`
}

// WithDefaults fills zero values.
func (s StepSpec) WithDefaults() StepSpec {
	if s.Timeout <= 0 {
		s.Timeout = DefaultStepTimeout
	}
	if s.ResolveTimeout <= 0 {
		s.ResolveTimeout = DefaultResolveTimeout
	}
	if s.Attempts <= 0 {
		s.Attempts = DefaultAttempts
	}
	if s.Backoff <= 0 {
		s.Backoff = DefaultBackoff
	}
	if s.Jitter <= 0 {
		s.Jitter = DefaultJitter
	}
	if s.AwaitTimeout <= 0 {
		s.AwaitTimeout = s.Timeout
	}
	return s
}

// LoginSpec holds the password-login form selectors.
type LoginSpec struct {
	Email           []MatcherSpec `yaml:"email,omitempty"`
	Password        []MatcherSpec `yaml:"password,omitempty"`
	Submit          []MatcherSpec `yaml:"submit,omitempty"`
	FieldTimeout    time.Duration `yaml:"field_timeout,omitempty"`
	RedirectTimeout time.Duration `yaml:"redirect_timeout,omitempty"`
}

// Site is everything the engine needs to renew one dashboard.
type Site struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// EnvPrefix selects <PREFIX>_COOKIE, <PREFIX>_EMAIL, <PREFIX>_PASSWORD
	// and <PREFIX>_TARGET_URL.
	EnvPrefix string `yaml:"env_prefix"`

	BaseURL   string `yaml:"base_url,omitempty"`
	TargetURL string `yaml:"target_url"`
	LoginPath string `yaml:"login_path"`

	CookieName   string        `yaml:"cookie_name"`
	CookieDomain string        `yaml:"cookie_domain,omitempty"`
	CookieTTL    time.Duration `yaml:"cookie_ttl,omitempty"`

	WaitUntil         browser.LoadState `yaml:"wait_until,omitempty"`
	NavigationTimeout time.Duration     `yaml:"navigation_timeout,omitempty"`
	ChallengeTimeout  time.Duration     `yaml:"challenge_timeout,omitempty"`

	Headless    *bool               `yaml:"headless,omitempty"`
	Channel     string              `yaml:"channel,omitempty"`
	Fingerprint browser.Fingerprint `yaml:"fingerprint,omitempty"`
	Pacing      *pacing.Policy      `yaml:"pacing,omitempty"`

	Login LoginSpec  `yaml:"login"`
	Steps []StepSpec `yaml:"steps"`
	// Verify, when set, must become visible after the last step.
	Verify            []MatcherSpec `yaml:"verify,omitempty"`
	SuccessScreenshot bool          `yaml:"success_screenshot,omitempty"`
}

// WithDefaults fills zero values and derives BaseURL from TargetURL.
func (s Site) WithDefaults() Site {
	if s.BaseURL == "" {
		if u, err := url.Parse(s.TargetURL); err == nil && u.Host != "" {
			s.BaseURL = u.Scheme + "://" + u.Host
		}
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	if s.LoginPath == "" {
		s.LoginPath = "/auth/login"
	}
	if s.CookieDomain == "" {
		if u, err := url.Parse(s.BaseURL); err == nil {
			s.CookieDomain = u.Hostname()
		}
	}
	if s.CookieTTL <= 0 {
		s.CookieTTL = 30 * 24 * time.Hour
	}
	if s.WaitUntil == "" {
		s.WaitUntil = browser.LoadStateDOMContentLoaded
	}
	if s.NavigationTimeout <= 0 {
		s.NavigationTimeout = DefaultNavigationTimeout
	}
	if s.ChallengeTimeout <= 0 {
		s.ChallengeTimeout = DefaultChallengeTimeout
	}
	if s.Login.FieldTimeout <= 0 {
		s.Login.FieldTimeout = DefaultFieldTimeout
	}
	if s.Login.RedirectTimeout <= 0 {
		s.Login.RedirectTimeout = DefaultRedirectTimeout
	}
	if len(s.Login.Email) == 0 {
		s.Login.Email = []MatcherSpec{{CSS: `input[name="email"]`}, {CSS: `input[type="email"]`}}
	}
	if len(s.Login.Password) == 0 {
		s.Login.Password = []MatcherSpec{{CSS: `input[name="password"]`}, {CSS: `input[type="password"]`}}
	}
	if len(s.Login.Submit) == 0 {
		s.Login.Submit = []MatcherSpec{{CSS: `button[type="submit"]`}}
	}
	steps := make([]StepSpec, len(s.Steps))
	for i, st := range s.Steps {
		steps[i] = st.WithDefaults()
	}
	s.Steps = steps
	return s
}

// LoginURL is the absolute URL of the password login form.
func (s Site) LoginURL() string {
	return s.BaseURL + s.LoginPath
}

// IsLoginPage reports whether rawURL is the login form.
func (s Site) IsLoginPage(rawURL string) bool {
	return s.LoginPath != "" && strings.Contains(rawURL, s.LoginPath)
}

// PacingPolicy returns the site's pacing or the default one.
func (s Site) PacingPolicy() pacing.Policy {
	if s.Pacing != nil {
		return *s.Pacing
	}
	return pacing.DefaultPolicy()
}

// IsHeadless returns the site's headless preference, defaulting to true.
func (s Site) IsHeadless() bool {
	return s.Headless == nil || *s.Headless
}

// BrowserCookie builds the session cookie injected for c.
func (s Site) BrowserCookie(c Cookie, now time.Time) browser.Cookie {
	return browser.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   s.CookieDomain,
		Path:     "/",
		Expires:  now.Add(s.CookieTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	}
}

// SameURL compares two URLs ignoring a trailing slash.
func SameURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}
