// Package backup relocates pre-existing user configuration out of the
// way before devup overwrites it. Moves go into a per-run directory
// named by timestamp plus a short random suffix, so two runs started in
// the same second cannot collide.
package backup

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/google/uuid"
)

// DefaultRetention is how long a backup directory is kept before the
// sweep removes it
const DefaultRetention = 7 * 24 * time.Hour

// expireMarker is written inside each backup directory and read by Sweep
const expireMarker = ".devup-expire"

// Record describes one relocated path
type Record struct {
	// Source is the original absolute path
	Source string

	// Dest is where the path now lives inside the backup directory
	Dest string
}

// Result describes a completed backup stage
type Result struct {
	// Dir is the per-run backup directory, empty when nothing existed
	// to back up (no directory is created in that case)
	Dir string

	Records []Record
}

// Options configure a backup stage
type Options struct {
	// Home is the directory the candidate paths are relative to
	Home string

	// Candidates is the ordered list of home-relative paths to protect.
	// Base names must be unique; catalog validation enforces this.
	Candidates []string

	// Root is the directory per-run backup directories are created under
	Root string

	// Retention is how long the backup is kept; zero means DefaultRetention
	Retention time.Duration

	// Scheduler registers the deferred deletion job; nil skips scheduling
	Scheduler Scheduler

	// Now is injectable for tests; nil means time.Now
	Now func() time.Time
}

// Stage moves every existing candidate into a fresh backup directory and
// registers its deferred deletion. When no candidate exists, no
// directory is created and an empty Result is returned.
func Stage(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("backup")

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	retention := opts.Retention
	if retention == 0 {
		retention = DefaultRetention
	}

	var existing []string
	for _, candidate := range opts.Candidates {
		source := filepath.Join(opts.Home, candidate)
		if _, err := os.Lstat(source); err == nil {
			existing = append(existing, source)
		}
	}

	if len(existing) == 0 {
		logger.Debug().Msg("No pre-existing configuration found, skipping backup")
		return &Result{}, nil
	}

	stamp := now().Format("20060102-150405")
	dir := filepath.Join(opts.Root, stamp+"-"+uuid.NewString()[:8])
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrBackupCreate, "failed to create backup directory %s", dir)
	}

	result := &Result{Dir: dir}
	for _, source := range existing {
		dest := filepath.Join(dir, filepath.Base(source))
		if err := os.Rename(source, dest); err != nil {
			return nil, errors.Wrapf(err, errors.ErrBackupMove, "failed to move %s to backup", source)
		}
		result.Records = append(result.Records, Record{Source: source, Dest: dest})
		logger.Info().Str("source", source).Str("dest", dest).Msg("Backed up")
	}

	expiry := now().Add(retention)
	if err := writeExpiry(dir, expiry); err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("Failed to write expiry marker")
	}

	if opts.Scheduler != nil {
		if err := opts.Scheduler.ScheduleRemoval(ctx, dir, expiry); err != nil {
			// Best-effort: the sweep on the next run cleans up regardless
			logger.Warn().
				Err(err).
				Str("dir", dir).
				Time("expiry", expiry).
				Msg("Could not schedule deferred deletion; backup will be swept on a later run")
		}
	}

	return result, nil
}

// Sweep deletes expired backup directories under root, the "mark for
// GC, sweep on next run" half of deferred deletion. Unreadable or
// unmarked entries are left alone.
func Sweep(root string, now time.Time) error {
	logger := logging.GetLogger("backup.sweep")

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrBackupSweep, "failed to read backup root %s", root)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		expiry, err := readExpiry(dir)
		if err != nil {
			continue
		}
		if now.After(expiry) {
			if err := os.RemoveAll(dir); err != nil {
				logger.Warn().Err(err).Str("dir", dir).Msg("Failed to remove expired backup")
				continue
			}
			logger.Info().Str("dir", dir).Msg("Removed expired backup")
		}
	}

	return nil
}

func writeExpiry(dir string, expiry time.Time) error {
	path := filepath.Join(dir, expireMarker)
	return os.WriteFile(path, []byte(expiry.Format(time.RFC3339)+"\n"), 0644)
}

func readExpiry(dir string) (time.Time, error) {
	data, err := os.ReadFile(filepath.Join(dir, expireMarker))
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, string(trimNewline(data)))
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
