package core

import "path/filepath"

// ResolvePath resolves p against baseDir. Absolute paths are returned as is.
func ResolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
