// Package cleanup applies retention policies to managed directories.
package cleanup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/YSC-hain/Message-Aggregator/internal/config"
	"github.com/YSC-hain/Message-Aggregator/internal/logger"
)

// Cleaner deletes files past their retention policy. The newest KeepLatest
// files in a directory are always protected, regardless of age.
type Cleaner struct {
	policies map[string]config.RetentionPolicy
	log      *logger.Logger
}

// New creates a cleaner for the given directory -> policy mapping.
func New(policies map[string]config.RetentionPolicy) *Cleaner {
	return &Cleaner{
		policies: policies,
		log:      logger.Get(),
	}
}

// Run applies every configured policy. Per-directory failures are logged
// and do not stop the remaining directories.
func (c *Cleaner) Run(ctx context.Context) {
	for dir, policy := range c.policies {
		if ctx.Err() != nil {
			return
		}
		removed, err := c.Apply(dir, policy)
		if err != nil {
			c.log.Warn().Err(err).Str("dir", dir).Msg("cleanup: directory failed")
			continue
		}
		if removed > 0 {
			c.log.Info().Str("dir", dir).Int("removed", removed).Msg("cleanup: directory done")
		}
	}
}

// Apply removes files in dir older than the policy allows, keeping the
// newest KeepLatest files. Returns the number of files removed.
// MaxAgeDays <= 0 means files never expire, so nothing is ever removed.
func (c *Cleaner) Apply(dir string, policy config.RetentionPolicy) (int, error) {
	if policy.MaxAgeDays <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read dir: %w", err)
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}

	var files []fileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{
			path:    filepath.Join(dir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	// newest first, so the protected prefix is simply the first KeepLatest
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	cutoff := time.Now().AddDate(0, 0, -policy.MaxAgeDays)
	removed := 0

	for i, f := range files {
		if i < policy.KeepLatest {
			continue
		}
		if f.modTime.After(cutoff) {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			c.log.Warn().Err(err).Str("path", f.path).Msg("cleanup: remove failed")
			continue
		}
		removed++
	}

	return removed, nil
}
