package core

import (
	"fmt"
	"slices"

	"github.com/arnavsurve/keepalive/pkg/types"
)

// Options are the process-level settings that are not part of a site.
type Options struct {
	// Headless overrides the site's preference when non-nil.
	Headless      *bool
	Channel       string
	ScreenshotDir string
}

// Config is the immutable input of one run. Build it with NewConfig; the
// accessors return copies.
type Config struct {
	site          Site
	creds         Credentials
	headless      bool
	channel       string
	screenshotDir string
}

// NewConfig applies site defaults and freezes the result.
func NewConfig(site Site, creds Credentials, opts Options) Config {
	site = site.WithDefaults()

	headless := site.IsHeadless()
	if opts.Headless != nil {
		headless = *opts.Headless
	}
	channel := site.Channel
	if opts.Channel != "" {
		channel = opts.Channel
	}
	dir := opts.ScreenshotDir
	if dir == "" {
		dir = "."
	}
	if creds.Cookie != nil {
		c := *creds.Cookie
		creds.Cookie = &c
	}
	return Config{
		site:          site,
		creds:         creds,
		headless:      headless,
		channel:       channel,
		screenshotDir: dir,
	}
}

// Site returns a copy of the site definition.
func (c Config) Site() Site {
	s := c.site
	s.Steps = slices.Clone(s.Steps)
	s.Verify = slices.Clone(s.Verify)
	return s
}

// Credentials returns a copy of the credentials.
func (c Config) Credentials() Credentials {
	creds := c.creds
	if creds.Cookie != nil {
		cookie := *creds.Cookie
		creds.Cookie = &cookie
	}
	return creds
}

func (c Config) Headless() bool {
	return c.headless
}

func (c Config) Channel() string {
	return c.channel
}

func (c Config) ScreenshotDir() string {
	return c.screenshotDir
}

// Validate checks the site structure and that a credential is usable. All
// failures wrap types.ErrConfiguration.
func (c Config) Validate() error {
	if err := ValidateSiteStructure(c.site); err != nil {
		return fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	return ValidateCredentials(c.site, c.creds)
}
