// Package stager materializes the snapshot's git metadata into the hidden
// .git directory before a sync and strips it afterward. The hidden
// directory exists only during an active session; the rest of the time the
// synced directory holds plain files plus the compressed snapshot.
package stager

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/tidesync/pkg/archive"
	"github.com/arthur-debert/tidesync/pkg/errors"
	"github.com/arthur-debert/tidesync/pkg/logging"
	"github.com/arthur-debert/tidesync/pkg/paths"
)

// Stager manages the hidden metadata directory of one synced directory
type Stager struct {
	paths *paths.Paths
}

// New creates a Stager for the given directory
func New(p *paths.Paths) *Stager {
	return &Stager{paths: p}
}

// IsStaged reports whether the hidden metadata directory is present
func (s *Stager) IsStaged() bool {
	info, err := os.Stat(s.paths.GitDir())
	return err == nil && info.IsDir()
}

// Stage materializes the snapshot bytes into the hidden .git directory.
// If the directory already exists (an interrupted or failed earlier
// session) it is reused as-is, since it carries at least as much history
// as the snapshot.
func (s *Stager) Stage(data []byte) error {
	log := logging.GetLogger("stager")
	gitDir := s.paths.GitDir()

	if s.IsStaged() {
		log.Info().Str("gitDir", gitDir).Msg("Reusing metadata left by a previous session")
		return s.ensureExcludes()
	}

	manifest, err := archive.Unpack(data, gitDir)
	if err != nil {
		// A partially extracted .git must not survive a failed stage
		_ = os.RemoveAll(gitDir)
		if errors.IsCode(err, errors.ErrSnapshotCorrupt) {
			return err
		}
		return errors.Wrap(err, errors.ErrStageFailure, "materializing snapshot")
	}

	log.Debug().Str("gitDir", gitDir).Str("manifest", manifest.String()).Msg("Snapshot staged")
	return s.ensureExcludes()
}

// Unstage removes the hidden metadata directory, returning the synced
// directory to its plain-files-only shape. Cleanup is best-effort: a
// failure is logged but never fails the session.
func (s *Stager) Unstage() {
	log := logging.GetLogger("stager")
	gitDir := s.paths.GitDir()

	if err := os.RemoveAll(gitDir); err != nil {
		log.Warn().Err(err).Str("gitDir", gitDir).Msg("Failed to remove metadata directory")
		return
	}
	log.Debug().Str("gitDir", gitDir).Msg("Metadata directory removed")
}

// ensureExcludes keeps tidesync's own files out of the published history.
// The snapshot archive and lock stay on disk during the session; excluding
// them here means git never stages them.
func (s *Stager) ensureExcludes() error {
	entries := []string{
		paths.SnapshotFileName,
		paths.LockFileName,
		paths.ConfigFileName,
		paths.ScratchDirName + "/",
	}

	excludePath := filepath.Join(s.paths.GitDir(), "info", "exclude")
	if err := os.MkdirAll(filepath.Dir(excludePath), 0755); err != nil {
		return errors.Wrap(err, errors.ErrStageFailure, "creating info directory")
	}

	existing, err := os.ReadFile(excludePath)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrStageFailure, "reading exclude file")
	}

	var missing []string
	for _, entry := range entries {
		if !containsLine(string(existing), entry) {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	f, err := os.OpenFile(excludePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, errors.ErrStageFailure, "opening exclude file")
	}
	defer f.Close()

	for _, entry := range missing {
		if _, err := fmt.Fprintln(f, entry); err != nil {
			return errors.Wrap(err, errors.ErrStageFailure, "writing exclude file")
		}
	}
	return nil
}

func containsLine(content, line string) bool {
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}
