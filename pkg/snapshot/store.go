// Package snapshot persists the compressed git metadata archive between
// sync sessions. Exactly one snapshot exists per synced directory, at a
// fixed path. Saves are atomic: a torn archive would silently break the
// next session's ability to merge.
package snapshot

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/tidesync/pkg/archive"
	"github.com/arthur-debert/tidesync/pkg/errors"
	"github.com/arthur-debert/tidesync/pkg/logging"
)

// Store reads and writes the snapshot archive at a fixed path
type Store struct {
	path string
}

// NewStore creates a Store for the archive at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the archive location
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a snapshot has been persisted
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && info.Mode().IsRegular()
}

// Size returns the archive size in bytes
func (s *Store) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrSnapshotNotFound, "no snapshot archive")
	}
	return info.Size(), nil
}

// Load reads and validates the snapshot, returning its raw bytes and
// manifest. Returns SNAPSHOT_NOT_FOUND when no archive exists and
// SNAPSHOT_CORRUPT when the container cannot be decoded.
func (s *Store) Load() ([]byte, *archive.Manifest, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrapf(err, errors.ErrSnapshotNotFound, "no snapshot at %s", s.path)
		}
		return nil, nil, errors.Wrapf(err, errors.ErrSnapshotCorrupt, "reading %s", s.path)
	}

	manifest, err := archive.Inspect(data)
	if err != nil {
		return nil, nil, err
	}

	log := logging.GetLogger("snapshot")
	log.Debug().
		Str("path", s.path).
		Int("bytes", len(data)).
		Str("manifest", manifest.String()).
		Msg("Snapshot loaded")
	return data, manifest, nil
}

// Save atomically replaces the snapshot with data. The bytes land in a
// temporary file which is fsynced and renamed over the archive, so a crash
// mid-save leaves either the old snapshot or the new one, never a torn file.
func (s *Store) Save(data []byte) error {
	log := logging.GetLogger("snapshot")

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return errors.Wrapf(err, errors.ErrSnapshotWrite, "creating temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrSnapshotWrite, "writing snapshot")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrSnapshotWrite, "syncing snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrSnapshotWrite, "closing snapshot")
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return errors.Wrap(err, errors.ErrSnapshotWrite, "setting snapshot permissions")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrapf(err, errors.ErrSnapshotWrite, "replacing %s", s.path)
	}
	fsyncDir(dir)

	log.Info().Str("path", s.path).Int("bytes", len(data)).Msg("Snapshot saved")
	return nil
}

// fsyncDir makes the rename durable; failures are ignored since some
// filesystems do not support syncing directories
func fsyncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}
