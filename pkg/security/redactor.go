package security

import (
	"sort"
	"strings"

	"github.com/arnavsurve/keepalive/pkg/core"
)

const mask = "********"

type Redactor struct {
	Secrets []string
}

// NewRedactor masks every non-empty secret.
func NewRedactor(secrets ...string) *Redactor {
	var values []string
	for _, s := range secrets {
		if s != "" {
			values = append(values, s)
		}
	}
	return &Redactor{Secrets: values}
}

// ForCredentials masks the cookie (raw and parsed value), email and password.
func ForCredentials(creds core.Credentials) *Redactor {
	secrets := []string{creds.Email, creds.Password}
	if creds.Cookie != nil {
		secrets = append(secrets, creds.Cookie.Raw, creds.Cookie.Value)
	}
	return NewRedactor(secrets...)
}

func (r *Redactor) Redact(s string) string {
	if r == nil || len(r.Secrets) == 0 {
		return s
	}

	// Longest first, so a secret containing another is masked whole.
	secrets := make([]string, len(r.Secrets))
	copy(secrets, r.Secrets)
	sort.Slice(secrets, func(i, j int) bool {
		return len(secrets[i]) > len(secrets[j])
	})

	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, mask)
	}
	return s
}
