package browser

import (
	"encoding/json"
	"fmt"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36"

// Viewport is the browser window size.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Fingerprint is the static set of launch flags and context settings that
// hide the default automation tells.
type Fingerprint struct {
	UserAgent string   `yaml:"user_agent,omitempty"`
	Locale    string   `yaml:"locale,omitempty"`
	Languages []string `yaml:"languages,omitempty"`
	Viewport  Viewport `yaml:"viewport,omitempty"`
	ExtraArgs []string `yaml:"extra_args,omitempty"`
}

// DefaultFingerprint returns a desktop Chrome on Windows profile.
func DefaultFingerprint() Fingerprint {
	return Fingerprint{
		UserAgent: defaultUserAgent,
		Locale:    "en-US",
		Languages: []string{"en-US", "en"},
		Viewport:  Viewport{Width: 1920, Height: 1080},
	}
}

// WithDefaults fills unset fields from DefaultFingerprint.
func (f Fingerprint) WithDefaults() Fingerprint {
	def := DefaultFingerprint()
	if f.UserAgent == "" {
		f.UserAgent = def.UserAgent
	}
	if f.Locale == "" {
		f.Locale = def.Locale
	}
	if len(f.Languages) == 0 {
		f.Languages = def.Languages
	}
	if f.Viewport.Width == 0 || f.Viewport.Height == 0 {
		f.Viewport = def.Viewport
	}
	return f
}

// LaunchArgs are the Chromium command line flags for this fingerprint.
func (f Fingerprint) LaunchArgs() []string {
	args := []string{
		"--disable-blink-features=AutomationControlled",
		"--disable-infobars",
		"--disable-dev-shm-usage",
		"--no-sandbox",
	}
	return append(args, f.ExtraArgs...)
}

// InitScript is evaluated in every document before page scripts run.
func (f Fingerprint) InitScript() string {
	langs, err := json.Marshal(f.Languages)
	if err != nil || len(f.Languages) == 0 {
		langs = []byte(`["en-US","en"]`)
	}
	return fmt.Sprintf(`
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
window.chrome = window.chrome || { runtime: {} };
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3] });
Object.defineProperty(navigator, 'languages', { get: () => %s });
`, langs)
}
