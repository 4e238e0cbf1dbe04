package core

import (
	"fmt"
	"net/url"

	"github.com/arnavsurve/keepalive/pkg/types"
)

// ValidateSiteStructure checks the fields every site needs regardless of
// step kind: identity, target, cookie name, unique step ids and well-formed
// matchers. Per-kind step checks live with the step runners.
func ValidateSiteStructure(site Site) error {
	if site.Name == "" {
		return fmt.Errorf("site is missing 'name'")
	}
	if site.EnvPrefix == "" {
		return fmt.Errorf("site %q is missing 'env_prefix'", site.Name)
	}
	if err := validateURL(site.TargetURL); err != nil {
		return fmt.Errorf("site %q has invalid 'target_url': %w", site.Name, err)
	}
	if site.CookieName == "" {
		return fmt.Errorf("site %q is missing 'cookie_name'", site.Name)
	}
	if len(site.Steps) == 0 {
		return fmt.Errorf("site %q has no steps", site.Name)
	}

	stepIDs := make(map[string]bool)
	for i, step := range site.Steps {
		if step.ID == "" {
			return fmt.Errorf("step %d is missing 'id'", i)
		}
		if stepIDs[step.ID] {
			return fmt.Errorf("duplicate step id: %q", step.ID)
		}
		stepIDs[step.ID] = true

		if step.Uses == "" {
			return fmt.Errorf("step %q is missing 'uses'", step.ID)
		}
		if _, err := Matchers(step.Match); err != nil {
			return fmt.Errorf("step %q match: %w", step.ID, err)
		}
		if _, err := Matchers(step.Await); err != nil {
			return fmt.Errorf("step %q await: %w", step.ID, err)
		}
		if step.Jitter < 0 || step.Jitter > 1 {
			return fmt.Errorf("step %q: jitter must be between 0 and 1", step.ID)
		}
	}

	for name, specs := range map[string][]MatcherSpec{
		"login.email":    site.Login.Email,
		"login.password": site.Login.Password,
		"login.submit":   site.Login.Submit,
		"verify":         site.Verify,
	} {
		if _, err := Matchers(specs); err != nil {
			return fmt.Errorf("site %q %s: %w", site.Name, name, err)
		}
	}
	return nil
}

// ValidateCredentials fails unless at least one login path is usable.
func ValidateCredentials(site Site, creds Credentials) error {
	if creds.Usable() {
		return nil
	}
	keys := KeysFor(site.EnvPrefix)
	return fmt.Errorf("%w: no usable credential for %q: set %s, or both %s and %s",
		types.ErrConfiguration, site.Name, keys.Cookie, keys.Email, keys.Password)
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) URL", raw)
	}
	return nil
}
