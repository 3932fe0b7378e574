package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tidesync/pkg/archive"
	"github.com/arthur-debert/tidesync/pkg/paths"
)

// NewWorkTree creates a temp synced directory with the given plain files
// (path -> content, paths relative, slash-separated)
func NewWorkTree(t *testing.T, files map[string]string) *paths.Paths {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	p, err := paths.New(dir)
	require.NoError(t, err)
	return p
}

// FakeGitDir populates dir with files shaped like minimal git metadata
func FakeGitDir(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "refs", "heads"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "objects", "info"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HEAD"), []byte("ref: refs/heads/main\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config"), []byte("[core]\n\trepositoryformatversion = 0\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refs", "heads", "main"), []byte("0123456789abcdef\n"), 0644))
}

// SnapshotBytes builds a valid snapshot container holding fake git metadata
func SnapshotBytes(t *testing.T, branch string) []byte {
	t.Helper()
	gitDir := filepath.Join(t.TempDir(), ".git")
	FakeGitDir(t, gitDir)

	data, err := archive.Pack(gitDir, archive.Manifest{
		CreatedAt: time.Now().UTC(),
		Branch:    branch,
	}, archive.Options{Level: "fast"})
	require.NoError(t, err)
	return data
}
