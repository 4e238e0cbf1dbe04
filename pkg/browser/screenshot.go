package browser

import (
	"os"
	"path/filepath"

	"github.com/arnavsurve/keepalive/pkg/types"
)

// Recorder writes diagnostic screenshots. Failures are logged, never
// returned: a missing screenshot must not mask the error being diagnosed.
type Recorder struct {
	Dir    string
	Logger types.Logger
}

// Capture writes name (e.g. "login_error.png") into Dir and returns the
// path, or "" if nothing was written.
func (r *Recorder) Capture(page Page, name string) string {
	if r == nil || page == nil {
		return ""
	}
	dir := r.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		r.warn(err, dir)
		return ""
	}
	path := filepath.Join(dir, name)
	if err := page.Screenshot(path); err != nil {
		r.warn(err, path)
		return ""
	}
	if r.Logger != nil {
		r.Logger.Info().Str("path", path).Msg("Saved diagnostic screenshot")
	}
	return path
}

func (r *Recorder) warn(err error, path string) {
	if r.Logger != nil {
		r.Logger.Warn().Err(err).Str("path", path).Msg("Could not save screenshot")
	}
}
