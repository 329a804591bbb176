package logs

import (
	"os"
	"path/filepath"
)

// CurrentLogName is the symlink the daemon points at its active run log.
const CurrentLogName = "cerebro.log"

// CurrentLogPath resolves the active daemon log inside logDir. When the
// pointer symlink is missing the symlink path itself is returned so callers
// can still poll for it.
func CurrentLogPath(logDir string) string {
	link := filepath.Join(logDir, CurrentLogName)
	if target, err := os.Readlink(link); err == nil {
		if !filepath.IsAbs(target) {
			return filepath.Join(logDir, target)
		}
		return target
	}
	return link
}
