// Package paths provides centralized path handling for tidesync.
// All fixed file names that make up the on-disk contract of a synced
// directory live here.
package paths

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/tidesync/pkg/errors"
)

// Fixed names inside a synced directory
// IMPORTANT: These constants define tidesync's on-disk contract and are NOT
// user-configurable. The snapshot file name in particular must remain stable
// across versions so existing snapshots keep working.
const (
	// SnapshotFileName is the compressed archive of cached git metadata
	SnapshotFileName = ".git-sync-snapshot.tar.gz"

	// GitDirName is the hidden metadata directory materialized during a session
	GitDirName = ".git"

	// ScratchDirName is the disposable clone location used during bootstrap
	ScratchDirName = ".tidesync-clone"

	// LockFileName is the advisory session lock
	LockFileName = ".tidesync.lock"

	// ConfigFileName is the optional per-directory configuration file
	ConfigFileName = ".tidesync.toml"
)

// Paths resolves the fixed locations inside one synced working directory
type Paths struct {
	workDir string
}

// New creates a Paths rooted at workDir. An empty workDir means the
// current directory. The directory must exist.
func New(workDir string) (*Paths, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInvalidInput, "cannot determine working directory")
		}
		workDir = wd
	}

	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve %s", workDir)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "working directory %s", abs)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is not a directory", abs)
	}

	return &Paths{workDir: abs}, nil
}

// WorkDir returns the absolute synced directory root
func (p *Paths) WorkDir() string {
	return p.workDir
}

// SnapshotPath returns the absolute path of the snapshot archive
func (p *Paths) SnapshotPath() string {
	return filepath.Join(p.workDir, SnapshotFileName)
}

// GitDir returns the absolute path of the hidden metadata directory
func (p *Paths) GitDir() string {
	return filepath.Join(p.workDir, GitDirName)
}

// ScratchDir returns the absolute path of the bootstrap clone location
func (p *Paths) ScratchDir() string {
	return filepath.Join(p.workDir, ScratchDirName)
}

// LockPath returns the absolute path of the session lock file
func (p *Paths) LockPath() string {
	return filepath.Join(p.workDir, LockFileName)
}

// ConfigPath returns the absolute path of the optional config file
func (p *Paths) ConfigPath() string {
	return filepath.Join(p.workDir, ConfigFileName)
}
