package security_test

import (
	"testing"

	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/security"
	"github.com/stretchr/testify/assert"
)

func TestRedactor_Redact(t *testing.T) {
	tests := []struct {
		name    string
		secrets []string
		input   string
		want    string
	}{
		{
			name:    "exact match",
			secrets: []string{"supersecret"},
			input:   "The password is supersecret",
			want:    "The password is ********",
		},
		{
			name:    "multiple occurrences",
			secrets: []string{"abcdef"},
			input:   "cookie abcdef sent, cookie abcdef rejected",
			want:    "cookie ******** sent, cookie ******** rejected",
		},
		{
			name:    "multiple secrets",
			secrets: []string{"pass123", "me@example.com"},
			input:   "login me@example.com / pass123",
			want:    "login ******** / ********",
		},
		{
			name:    "empty secret is skipped",
			secrets: []string{"", "valid"},
			input:   "Empty: , Valid: valid",
			want:    "Empty: , Valid: ********",
		},
		{
			name:    "no secrets returns original string",
			secrets: nil,
			input:   "Original string",
			want:    "Original string",
		},
		{
			name:    "overlapping secrets",
			secrets: []string{"secret", "supersecret"},
			input:   "This contains supersecret and secret values",
			want:    "This contains ******** and ******** values",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := security.NewRedactor(tt.secrets...)
			assert.Equal(t, tt.want, r.Redact(tt.input))
		})
	}
}

func TestRedactor_NilIsPassthrough(t *testing.T) {
	var r *security.Redactor
	assert.Equal(t, "plain", r.Redact("plain"))
}

func TestForCredentials(t *testing.T) {
	cookie := core.ParseCookie("remember_web_abc=tok3n", "remember_web_")
	creds := core.Credentials{Cookie: &cookie, Email: "me@example.com", Password: "hunter2"}

	r := security.ForCredentials(creds)

	assert.ElementsMatch(t, []string{"me@example.com", "hunter2", "remember_web_abc=tok3n", "tok3n"}, r.Secrets)
	assert.Equal(t, "Cookie: ********", r.Redact("Cookie: remember_web_abc=tok3n"))
}

func TestForCredentials_EmptyFieldsSkipped(t *testing.T) {
	r := security.ForCredentials(core.Credentials{Password: "only"})
	assert.Equal(t, []string{"only"}, r.Secrets)
}
