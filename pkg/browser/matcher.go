package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arnavsurve/keepalive/pkg/pacing"
	"github.com/arnavsurve/keepalive/pkg/types"
)

// Matcher is one strategy for locating an element. Match returns a nil
// Element when nothing on the page satisfies it.
type Matcher interface {
	Match(page Page) (Element, error)
	String() string
}

// CSS matches a raw selector (CSS or any selector the driver understands).
type CSS string

func (c CSS) Match(page Page) (Element, error) {
	return firstPresent(page.Locator(string(c)))
}

func (c CSS) String() string {
	return "css=" + string(c)
}

// Text matches an element by its visible text, optionally restricted to a tag.
type Text struct {
	Tag  string
	Text string
}

func (t Text) selector() string {
	if t.Tag == "" {
		return "text=" + t.Text
	}
	return fmt.Sprintf("%s:has-text(%q)", t.Tag, t.Text)
}

func (t Text) Match(page Page) (Element, error) {
	return firstPresent(page.Locator(t.selector()))
}

func (t Text) String() string {
	return t.selector()
}

// Within resolves Inner and then walks up to the nearest Ancestor tag. The
// ancestor is the resolved element; a match without one does not count.
type Within struct {
	Inner    Matcher
	Ancestor string
}

func (w Within) Match(page Page) (Element, error) {
	inner, err := w.Inner.Match(page)
	if err != nil || inner == nil {
		return nil, err
	}
	return firstPresent(inner.Locator(fmt.Sprintf("xpath=ancestor::%s[1]", w.Ancestor)))
}

func (w Within) String() string {
	return fmt.Sprintf("%s (ancestor %s)", w.Inner, w.Ancestor)
}

func firstPresent(el Element) (Element, error) {
	first := el.First()
	n, err := first.Count()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return first, nil
}

// ResolveOptions bound the candidate search.
type ResolveOptions struct {
	// Timeout is how long to keep polling for late-rendering elements.
	// Zero means a single pass.
	Timeout  time.Duration
	Interval time.Duration
	Clock    pacing.Clock
}

// Resolve tries candidates in priority order and returns the first match
// together with the matcher that produced it. When nothing matches before
// the timeout it returns an error wrapping types.ErrElementNotFound.
func Resolve(ctx context.Context, page Page, candidates []Matcher, opts ResolveOptions) (Element, Matcher, error) {
	if len(candidates) == 0 {
		return nil, nil, fmt.Errorf("%w: no selector candidates", types.ErrElementNotFound)
	}
	clock := opts.Clock
	if clock == nil {
		clock = pacing.SystemClock()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	deadline := clock.Now().Add(opts.Timeout)

	var lastErr error
	for {
		for _, m := range candidates {
			el, err := m.Match(page)
			if err != nil {
				lastErr = err
				continue
			}
			if el != nil {
				return el, m, nil
			}
		}
		if !clock.Now().Before(deadline) {
			break
		}
		if err := clock.Sleep(ctx, interval); err != nil {
			return nil, nil, err
		}
	}

	names := make([]string, len(candidates))
	for i, m := range candidates {
		names[i] = m.String()
	}
	if lastErr != nil {
		return nil, nil, fmt.Errorf("%w: tried [%s] (last error: %v)", types.ErrElementNotFound, strings.Join(names, ", "), lastErr)
	}
	return nil, nil, fmt.Errorf("%w: tried [%s]", types.ErrElementNotFound, strings.Join(names, ", "))
}
