package log_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/arnavsurve/keepalive/pkg/log"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestAdapter(t *testing.T) {
	out := &bytes.Buffer{}
	logger := log.NewZerologAdapter(zerolog.New(out))

	logger.Info().
		Str("site", "weirdhost").
		Int("attempt", 2).
		Dur("backoff", 3*time.Second).
		Msg("hello")

	assert.Contains(t, out.String(), `"site":"weirdhost"`)
	assert.Contains(t, out.String(), `"attempt":2`)
	assert.Contains(t, out.String(), `"backoff":"3s"`)
}

func TestAdapter_WithContext(t *testing.T) {
	out := &bytes.Buffer{}
	logger := log.NewZerologAdapter(zerolog.New(out)).With().
		Str("phase", "actions").
		Str("step_id", "renew").
		Logger()

	logger.Warn().Msg("retrying")

	assert.Contains(t, out.String(), `"phase":"actions"`)
	assert.Contains(t, out.String(), `"step_id":"renew"`)
	assert.Contains(t, out.String(), `"level":"warn"`)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		log.Nop().Error().Str("k", "v").Msg("discarded")
	})
}
