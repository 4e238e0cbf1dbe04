package sinks_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnavsurve/keepalive/pkg/log"
	"github.com/arnavsurve/keepalive/pkg/log/sinks"
	"github.com/arnavsurve/keepalive/pkg/types"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleSink_Labels(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name   string
		fields map[string]any
		msg    string
		want   string
	}{
		{"run", map[string]any{}, "Starting", "run: Starting"},
		{"phase", map[string]any{"site": "weirdhost", "phase": "auth"}, "Cookie path", "weirdhost/auth: Cookie path"},
		{"step wins", map[string]any{"site": "hidencloud", "phase": "actions", "step_id": "pay"}, "Clicked", "hidencloud/pay: Clicked"},
		{"error", map[string]any{"error": "boom"}, "Failed", "run: Failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			sink := sinks.NewConsoleSinkTo(out)
			err := sink.Write(&log.LogEvent{Level: types.InfoLevel, Message: tt.msg, Fields: tt.fields, Timestamp: time.Now()})
			require.NoError(t, err)
			assert.Contains(t, out.String(), "INFO")
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestFileSink_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.json")
	sink, err := sinks.NewFileSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Write(&log.LogEvent{
		Level:     types.WarnLevel,
		Message:   "retrying",
		Fields:    map[string]any{"step_id": "renew"},
		Timestamp: time.Now(),
	}))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "retrying", entry["message"])
	assert.Equal(t, "renew", entry["step_id"])
}
