package app

import (
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
)

// janitorInterval is how often the export directory is swept.
const janitorInterval = time.Hour

// sweepOnce deletes regular files in dir older than retention.
// Returns how many files were removed.
func sweepOnce(dir string, retention time.Duration, now time.Time) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= retention {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			log.WithError(err).WithField("path", path).Warn("janitor remove failed")
			continue
		}
		removed++
	}
	return removed
}

// runJanitor sweeps dir once immediately, then every janitorInterval until
// done is closed. The immediate sweep catches files that expired while the
// process was down.
func runJanitor(dir string, retention time.Duration, done <-chan struct{}) {
	if n := sweepOnce(dir, retention, time.Now()); n > 0 {
		log.WithField("removed", n).Info("janitor swept old export files")
	}

	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := sweepOnce(dir, retention, time.Now()); n > 0 {
				log.WithField("removed", n).Info("janitor swept old export files")
			}
		case <-done:
			return
		}
	}
}
