package core

import (
	"sort"
	"time"

	"github.com/arnavsurve/keepalive/pkg/browser"
)

const weirdhostButton = "시간추가"

func hidencloud() Site {
	return Site{
		Name:        "hidencloud",
		Description: "HidenCloud free service renewal: renew, create invoice, pay",
		EnvPrefix:   "HIDENCLOUD",
		BaseURL:     "https://dash.hidencloud.com",
		TargetURL:   "https://dash.hidencloud.com/service/85242/manage",
		LoginPath:   "/auth/login",

		CookieName:   "remember_web_59ba36addc2b2f9401580f014c7f58ea4e30989d",
		CookieDomain: "dash.hidencloud.com",
		CookieTTL:    365 * 24 * time.Hour,

		WaitUntil: browser.LoadStateNetworkIdle,
		Headless:  boolPtr(true),

		Login: LoginSpec{
			Email:    []MatcherSpec{{CSS: `input[name="email"]`}},
			Password: []MatcherSpec{{CSS: `input[name="password"]`}},
			Submit:   []MatcherSpec{{CSS: `button[type="submit"]`}},
		},
		Steps: []StepSpec{
			{
				ID:    "renew",
				Uses:  UsesClick,
				Match: []MatcherSpec{{Text: "Renew", Tag: "button"}},
			},
			{
				ID:           "create_invoice",
				Uses:         UsesClick,
				Match:        []MatcherSpec{{Text: "Create Invoice", Tag: "button"}},
				Await:        []MatcherSpec{{Text: "Pay", Tag: "button"}},
				AwaitTimeout: 60 * time.Second,
			},
			{
				ID:             "pay",
				Uses:           UsesClick,
				Match:          []MatcherSpec{{Text: "Pay", Tag: "button"}},
				RequireEnabled: true,
			},
		},
		SuccessScreenshot: true,
	}
}

func weirdhost() Site {
	return Site{
		Name:        "weirdhost",
		Description: "WeirdHost server time extension (" + weirdhostButton + ")",
		EnvPrefix:   "WEIRD",
		BaseURL:     "https://hub.weirdhost.xyz",
		TargetURL:   "https://hub.weirdhost.xyz/server/6c087e9b/",
		LoginPath:   "/auth/login",

		CookieName:   "remember_web_",
		CookieDomain: "hub.weirdhost.xyz",
		CookieTTL:    180 * 24 * time.Hour,

		WaitUntil: browser.LoadStateDOMContentLoaded,
		Headless:  boolPtr(false),
		Channel:   "chrome",
		Fingerprint: browser.Fingerprint{
			Locale:    "ko-KR",
			Languages: []string{"ko-KR", "ko", "en"},
			Viewport:  browser.Viewport{Width: 1920, Height: 1080},
		},

		Login: LoginSpec{
			Email:    []MatcherSpec{{CSS: `input[name="email"]`}, {CSS: `input[type="email"]`}},
			Password: []MatcherSpec{{CSS: `input[name="password"]`}, {CSS: `input[type="password"]`}},
			Submit: []MatcherSpec{
				{CSS: `button[type="submit"]`},
				{Text: "Login", Tag: "button"},
				{Text: "로그인", Tag: "button"},
			},
		},
		Steps: []StepSpec{
			{
				ID:   "time_add",
				Uses: UsesClick,
				Match: []MatcherSpec{
					{Text: weirdhostButton, Tag: "button"},
					{Text: weirdhostButton, Tag: "span", Ancestor: "button"},
					{CSS: "button.Button__ButtonStyle-sc-1qu1gou-0"},
					{CSS: `button[class*="Button__ButtonStyle"]`},
					{CSS: `button:has(span:has-text("` + weirdhostButton + `"))`},
				},
				Timeout: 15 * time.Second,
			},
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}

// Presets returns fresh copies of the built-in sites, keyed by name.
func Presets() map[string]Site {
	return map[string]Site{
		"hidencloud": hidencloud(),
		"weirdhost":  weirdhost(),
	}
}

// SiteNames returns the keys of sites in sorted order.
func SiteNames(sites map[string]Site) []string {
	names := make([]string, 0, len(sites))
	for name := range sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
