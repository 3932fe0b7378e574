package commands

import (
	"github.com/arthur-debert/tidesync/pkg/archive"
	"github.com/arthur-debert/tidesync/pkg/lock"
	"github.com/arthur-debert/tidesync/pkg/snapshot"
	"github.com/arthur-debert/tidesync/pkg/stager"
)

// StatusResult describes the persisted state of a synced directory
type StatusResult struct {
	// WorkDir is the inspected directory
	WorkDir string

	// SnapshotExists reports whether a snapshot archive is present
	SnapshotExists bool

	// SnapshotSize is the archive size in bytes, when present
	SnapshotSize int64

	// Manifest is the decoded snapshot manifest, when readable
	Manifest *archive.Manifest

	// SnapshotCorrupt is set when an archive exists but cannot be decoded
	SnapshotCorrupt bool

	// Staged reports a materialized .git directory, i.e. an interrupted
	// or failed session awaiting manual resolution
	Staged bool

	// Locked reports a session lock file on disk
	Locked bool
}

// Status inspects a synced directory without touching anything
func Status(opts Options) (*StatusResult, error) {
	p, _, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	store := snapshot.NewStore(p.SnapshotPath())
	result := &StatusResult{
		WorkDir: p.WorkDir(),
		Staged:  stager.New(p).IsStaged(),
		Locked:  lock.IsHeld(p.LockPath()),
	}

	if store.Exists() {
		result.SnapshotExists = true
		if size, sizeErr := store.Size(); sizeErr == nil {
			result.SnapshotSize = size
		}
		if _, manifest, loadErr := store.Load(); loadErr == nil {
			result.Manifest = manifest
		} else {
			result.SnapshotCorrupt = true
		}
	}

	return result, nil
}
