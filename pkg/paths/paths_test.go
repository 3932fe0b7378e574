// Test Type: Unit Test
// Description: Tests for the paths package - fixed location resolution

package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/tidesync/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolvesFixedNames(t *testing.T) {
	dir := t.TempDir()

	p, err := paths.New(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, p.WorkDir())
	assert.Equal(t, filepath.Join(dir, ".git-sync-snapshot.tar.gz"), p.SnapshotPath())
	assert.Equal(t, filepath.Join(dir, ".git"), p.GitDir())
	assert.Equal(t, filepath.Join(dir, ".tidesync-clone"), p.ScratchDir())
	assert.Equal(t, filepath.Join(dir, ".tidesync.lock"), p.LockPath())
	assert.Equal(t, filepath.Join(dir, ".tidesync.toml"), p.ConfigPath())
}

func TestNewDefaultsToCwd(t *testing.T) {
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(orig) }()

	p, err := paths.New("")
	require.NoError(t, err)

	// Resolve symlinks: on macOS t.TempDir lives under /var -> /private/var
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(p.WorkDir())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewRejectsMissingDir(t *testing.T) {
	_, err := paths.New(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestNewRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := paths.New(file)
	assert.Error(t, err)
}
