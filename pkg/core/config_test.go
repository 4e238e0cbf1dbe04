package core_test

import (
	"testing"
	"time"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preset(t *testing.T, name string) core.Site {
	t.Helper()
	site, ok := core.Presets()[name]
	require.True(t, ok)
	return site
}

func TestConfig_Validate(t *testing.T) {
	site := preset(t, "hidencloud")
	cookie := core.ParseCookie("abc", site.CookieName)

	tests := []struct {
		name    string
		creds   core.Credentials
		wantErr bool
	}{
		{"cookie only", core.Credentials{Cookie: &cookie}, false},
		{"email and password", core.Credentials{Email: "a@b.c", Password: "pw"}, false},
		{"email without password", core.Credentials{Email: "a@b.c"}, true},
		{"nothing", core.Credentials{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.NewConfig(site, tt.creds, core.Options{}).Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrConfiguration)
				assert.Contains(t, err.Error(), "HIDENCLOUD_COOKIE")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_InvalidSite(t *testing.T) {
	site := preset(t, "weirdhost")
	site.TargetURL = "not a url"

	err := core.NewConfig(site, core.Credentials{Email: "a", Password: "b"}, core.Options{}).Validate()
	assert.ErrorIs(t, err, types.ErrConfiguration)
	assert.Contains(t, err.Error(), "target_url")
}

func TestConfig_Options(t *testing.T) {
	site := preset(t, "weirdhost")
	creds := core.Credentials{Email: "a", Password: "b"}

	cfg := core.NewConfig(site, creds, core.Options{})
	assert.False(t, cfg.Headless())
	assert.Equal(t, "chrome", cfg.Channel())
	assert.Equal(t, ".", cfg.ScreenshotDir())

	headless := true
	cfg = core.NewConfig(site, creds, core.Options{Headless: &headless, Channel: "chromium", ScreenshotDir: "/tmp/shots"})
	assert.True(t, cfg.Headless())
	assert.Equal(t, "chromium", cfg.Channel())
	assert.Equal(t, "/tmp/shots", cfg.ScreenshotDir())
}

func TestConfig_IsImmutable(t *testing.T) {
	cookie := core.ParseCookie("name=value", "")
	cfg := core.NewConfig(preset(t, "hidencloud"), core.Credentials{Cookie: &cookie}, core.Options{})

	cookie.Value = "changed"
	site := cfg.Site()
	site.Steps[0].ID = "changed"
	cfg.Credentials().Cookie.Value = "changed again"

	assert.Equal(t, "value", cfg.Credentials().Cookie.Value)
	assert.Equal(t, "renew", cfg.Site().Steps[0].ID)
}

func TestConfig_AppliesDefaults(t *testing.T) {
	cfg := core.NewConfig(preset(t, "hidencloud"), core.Credentials{}, core.Options{})
	site := cfg.Site()

	assert.Equal(t, "https://dash.hidencloud.com/auth/login", site.LoginURL())
	assert.Equal(t, browser.LoadStateNetworkIdle, site.WaitUntil)
	assert.Equal(t, core.DefaultChallengeTimeout, site.ChallengeTimeout)
	for _, step := range site.Steps {
		assert.Equal(t, core.DefaultAttempts, step.Attempts)
		assert.Equal(t, core.DefaultResolveTimeout, step.ResolveTimeout)
		assert.Equal(t, core.DefaultBackoff, step.Backoff)
	}
	assert.Equal(t, 60*time.Second, site.Steps[1].AwaitTimeout)
	assert.Equal(t, core.DefaultStepTimeout, site.Steps[0].AwaitTimeout)
}
