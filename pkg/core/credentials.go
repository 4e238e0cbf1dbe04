package core

import (
	"fmt"
	"strings"
)

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Cookie is a parsed session cookie. Raw keeps the original input so it
// can be redacted from logs.
type Cookie struct {
	Name  string
	Value string
	Raw   string
}

// ParseCookie accepts "name=value" (split at the first '=', both parts
// trimmed) or a bare value, which is paired with defaultName.
func ParseCookie(raw, defaultName string) Cookie {
	name, value, found := strings.Cut(raw, "=")
	if !found {
		return Cookie{Name: defaultName, Value: raw, Raw: raw}
	}
	return Cookie{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value), Raw: raw}
}

// Credentials are read once at startup and never mutated.
type Credentials struct {
	Cookie   *Cookie
	Email    string
	Password string
}

// HasCookie reports whether the cookie path can be attempted.
func (c Credentials) HasCookie() bool {
	return c.Cookie != nil && c.Cookie.Value != ""
}

// HasPassword reports whether the password path can be attempted.
func (c Credentials) HasPassword() bool {
	return c.Email != "" && c.Password != ""
}

// Usable reports whether at least one login path is available.
func (c Credentials) Usable() bool {
	return c.HasCookie() || c.HasPassword()
}

// String never prints secret values.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{cookie:%t email:%t password:%t}", c.HasCookie(), c.Email != "", c.Password != "")
}

// EnvKeys names the variables read for a prefix.
type EnvKeys struct {
	Cookie, Email, Password, TargetURL string
}

// KeysFor returns the variable names for prefix, e.g. WEIRD_COOKIE.
func KeysFor(prefix string) EnvKeys {
	p := strings.ToUpper(strings.TrimSuffix(prefix, "_"))
	return EnvKeys{
		Cookie:    p + "_COOKIE",
		Email:     p + "_EMAIL",
		Password:  p + "_PASSWORD",
		TargetURL: p + "_TARGET_URL",
	}
}

// LoadCredentials reads the site's credential variables. Values are
// trimmed and empty values count as unset.
func LoadCredentials(site Site, lookup LookupFunc) Credentials {
	keys := KeysFor(site.EnvPrefix)
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	creds := Credentials{
		Email:    get(keys.Email),
		Password: get(keys.Password),
	}
	if raw := get(keys.Cookie); raw != "" {
		c := ParseCookie(raw, site.CookieName)
		creds.Cookie = &c
	}
	return creds
}

// ApplyEnv returns site with environment overrides applied.
func ApplyEnv(site Site, lookup LookupFunc) Site {
	if v, ok := lookup(KeysFor(site.EnvPrefix).TargetURL); ok && strings.TrimSpace(v) != "" {
		site.TargetURL = strings.TrimSpace(v)
	}
	return site
}
