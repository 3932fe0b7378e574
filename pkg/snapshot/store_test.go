// Test Type: Unit Test
// Description: Tests for the snapshot package - archive persistence and atomicity

package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/tidesync/pkg/archive"
	"github.com/arthur-debert/tidesync/pkg/errors"
	"github.com/arthur-debert/tidesync/pkg/paths"
	"github.com/arthur-debert/tidesync/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packedSnapshot builds a valid snapshot container from a throwaway git dir
func packedSnapshot(t *testing.T) []byte {
	t.Helper()
	gitDir := filepath.Join(t.TempDir(), ".git")
	require.NoError(t, os.MkdirAll(filepath.Join(gitDir, "refs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/main\n"), 0644))

	data, err := archive.Pack(gitDir, archive.Manifest{
		CreatedAt: time.Now().UTC(),
		Branch:    "main",
	}, archive.Options{Level: "fast"})
	require.NoError(t, err)
	return data
}

func newStore(t *testing.T) (*snapshot.Store, string) {
	t.Helper()
	dir := t.TempDir()
	p, err := paths.New(dir)
	require.NoError(t, err)
	return snapshot.NewStore(p.SnapshotPath()), dir
}

func TestLoadNotFound(t *testing.T) {
	store, _ := newStore(t)

	assert.False(t, store.Exists())
	_, _, err := store.Load()
	assert.True(t, errors.IsCode(err, errors.ErrSnapshotNotFound))
}

func TestSaveThenLoad(t *testing.T) {
	store, _ := newStore(t)
	data := packedSnapshot(t)

	require.NoError(t, store.Save(data))
	assert.True(t, store.Exists())

	got, manifest, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "main", manifest.Branch)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)
}

func TestLoadCorrupt(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("not a snapshot"), 0644))

	_, _, err := store.Load()
	assert.True(t, errors.IsCode(err, errors.ErrSnapshotCorrupt))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, store.Save(packedSnapshot(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, paths.SnapshotFileName, entries[0].Name())
}

func TestSaveOverwrites(t *testing.T) {
	store, _ := newStore(t)

	first := packedSnapshot(t)
	second := packedSnapshot(t)
	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))

	got, _, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, second, got)
}
