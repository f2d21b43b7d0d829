// Package sweeper deletes recordings older than the current local day.
package sweeper

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/voicerec/voicerec/pkg/logging"
	"github.com/voicerec/voicerec/pkg/metrics"
)

// InFlight answers whether a path is currently being written by an upload.
// The sweep never touches such a path, so an upload spanning local midnight
// cannot lose its file.
type InFlight interface {
	Contains(path string) bool
}

// Sweeper removes stale recordings from a save location. It has no
// synchronous caller: every failure is logged and swallowed.
type Sweeper struct {
	fs       afero.Fs
	inflight InFlight
	logger   *logging.Logger

	// now is swapped in tests to pin the cutoff.
	now func() time.Time
}

// New returns a sweeper over fs. inflight may be nil when no uploads share
// the directory.
func New(fs afero.Fs, inflight InFlight, logger *logging.Logger) *Sweeper {
	return &Sweeper{fs: fs, inflight: inflight, logger: logger, now: time.Now}
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Sweep deletes every regular file in dir whose modification time precedes
// local midnight of the current day. The cutoff is computed once on entry,
// so files written while the sweep runs are never eligible. A single file's
// failure never aborts the rest of the sweep.
func (s *Sweeper) Sweep(dir string) {
	cutoff := StartOfDay(s.now())

	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		s.logger.Error("unable to list save location", "dir", dir, "error", err)
		metrics.SweepErrorsTotal.Inc()
		return
	}

	for _, info := range entries {
		if !info.Mode().IsRegular() {
			continue
		}

		path := filepath.Join(dir, info.Name())

		if s.inflight != nil && s.inflight.Contains(path) {
			s.logger.Debug("skipping in-flight upload", "file", path)
			continue
		}

		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := s.fs.Remove(path); err != nil {
			// Already gone counts as deleted; somebody beat us to it.
			if os.IsNotExist(err) {
				continue
			}
			s.logger.Warn("failed to delete recording", "file", path, "error", err)
			metrics.SweepErrorsTotal.Inc()
			continue
		}

		s.logger.Info("deleted recording", "file", info.Name(), "size", humanize.Bytes(uint64(info.Size())))
		metrics.SweepDeletedTotal.Inc()
	}
}
