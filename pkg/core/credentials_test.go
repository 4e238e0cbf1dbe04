package core_test

import (
	"testing"

	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCookie(t *testing.T) {
	tests := []struct {
		raw       string
		wantName  string
		wantValue string
	}{
		{"remember_web_=abc123", "remember_web_", "abc123"},
		{"abc123", "remember_web_", "abc123"},
		{" session = a=b=c ", "session", "a=b=c"},
		{"=value", "", "value"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c := core.ParseCookie(tt.raw, "remember_web_")
			assert.Equal(t, tt.wantName, c.Name)
			assert.Equal(t, tt.wantValue, c.Value)
			assert.Equal(t, tt.raw, c.Raw)
		})
	}
}

func env(vars map[string]string) core.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadCredentials(t *testing.T) {
	site := core.Site{EnvPrefix: "WEIRD", CookieName: "remember_web_"}

	creds := core.LoadCredentials(site, env(map[string]string{
		"WEIRD_COOKIE":   "  tok3n ",
		"WEIRD_EMAIL":    "me@example.com",
		"WEIRD_PASSWORD": "",
	}))

	require.NotNil(t, creds.Cookie)
	assert.Equal(t, "remember_web_", creds.Cookie.Name)
	assert.Equal(t, "tok3n", creds.Cookie.Value)
	assert.True(t, creds.HasCookie())
	assert.False(t, creds.HasPassword())
	assert.True(t, creds.Usable())
}

func TestLoadCredentials_Empty(t *testing.T) {
	creds := core.LoadCredentials(core.Site{EnvPrefix: "HIDENCLOUD"}, env(nil))
	assert.Nil(t, creds.Cookie)
	assert.False(t, creds.Usable())
}

func TestCredentials_StringHidesValues(t *testing.T) {
	c := core.ParseCookie("name=s3cret", "")
	creds := core.Credentials{Cookie: &c, Email: "me@example.com", Password: "hunter2"}

	s := creds.String()
	assert.NotContains(t, s, "s3cret")
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, "me@example.com")
}

func TestApplyEnv_TargetURL(t *testing.T) {
	site := core.Site{EnvPrefix: "HIDENCLOUD", TargetURL: "https://a.example/service/1/manage"}

	got := core.ApplyEnv(site, env(map[string]string{"HIDENCLOUD_TARGET_URL": "https://a.example/service/2/manage"}))
	assert.Equal(t, "https://a.example/service/2/manage", got.TargetURL)

	unchanged := core.ApplyEnv(site, env(nil))
	assert.Equal(t, site.TargetURL, unchanged.TargetURL)
}
