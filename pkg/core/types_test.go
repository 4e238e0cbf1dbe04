package core_test

import (
	"testing"
	"time"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherSpec_Matcher(t *testing.T) {
	tests := []struct {
		name    string
		spec    core.MatcherSpec
		want    browser.Matcher
		wantErr string
	}{
		{"css", core.MatcherSpec{CSS: "#pay"}, browser.CSS("#pay"), ""},
		{"text", core.MatcherSpec{Text: "Pay", Tag: "button"}, browser.Text{Tag: "button", Text: "Pay"}, ""},
		{
			"ancestor",
			core.MatcherSpec{Text: "시간추가", Tag: "span", Ancestor: "button"},
			browser.Within{Inner: browser.Text{Tag: "span", Text: "시간추가"}, Ancestor: "button"},
			"",
		},
		{"empty", core.MatcherSpec{}, nil, "needs css or text"},
		{"both", core.MatcherSpec{CSS: "a", Text: "b"}, nil, "both css"},
		{"tag on css", core.MatcherSpec{CSS: "a", Tag: "button"}, nil, "tag only applies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.spec.Matcher()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSite_BrowserCookie(t *testing.T) {
	site := core.Presets()["weirdhost"].WithDefaults()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	c := site.BrowserCookie(core.ParseCookie("remember_web_x=v", site.CookieName), now)

	assert.Equal(t, browser.Cookie{
		Name:     "remember_web_x",
		Value:    "v",
		Domain:   "hub.weirdhost.xyz",
		Path:     "/",
		Expires:  now.Add(180 * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	}, c)
}

func TestSite_WithDefaultsDerivesURLs(t *testing.T) {
	site := core.Site{TargetURL: "https://panel.example.com/service/7/"}.WithDefaults()

	assert.Equal(t, "https://panel.example.com", site.BaseURL)
	assert.Equal(t, "panel.example.com", site.CookieDomain)
	assert.Equal(t, "https://panel.example.com/auth/login", site.LoginURL())
	assert.True(t, site.IsLoginPage("https://panel.example.com/auth/login?next=/"))
	assert.False(t, site.IsLoginPage("https://panel.example.com/service/7/"))
	assert.True(t, site.IsHeadless())
}

func TestSameURL(t *testing.T) {
	assert.True(t, core.SameURL("https://a.example/server/1/", "https://a.example/server/1"))
	assert.False(t, core.SameURL("https://a.example/server/1", "https://a.example/server/2"))
}

func TestPresets_AreValid(t *testing.T) {
	for name, site := range core.Presets() {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, core.ValidateSiteStructure(site.WithDefaults()))
		})
	}
}

func TestValidateSiteStructure(t *testing.T) {
	base := core.Site{
		Name:       "x",
		EnvPrefix:  "X",
		TargetURL:  "https://x.example/",
		CookieName: "sid",
		Steps:      []core.StepSpec{{ID: "a", Uses: core.UsesClick, Match: []core.MatcherSpec{{CSS: "#a"}}}},
	}
	require.NoError(t, core.ValidateSiteStructure(base))

	dup := base
	dup.Steps = []core.StepSpec{base.Steps[0], base.Steps[0]}
	assert.ErrorContains(t, core.ValidateSiteStructure(dup), "duplicate step id")

	noSteps := base
	noSteps.Steps = nil
	assert.ErrorContains(t, core.ValidateSiteStructure(noSteps), "no steps")

	badMatcher := base
	badMatcher.Steps = []core.StepSpec{{ID: "a", Uses: core.UsesClick, Match: []core.MatcherSpec{{}}}}
	assert.ErrorContains(t, core.ValidateSiteStructure(badMatcher), "needs css or text")

	noPrefix := base
	noPrefix.EnvPrefix = ""
	assert.ErrorContains(t, core.ValidateSiteStructure(noPrefix), "env_prefix")
}
