// Test Type: Unit Test
// Description: Tests for the engine package - sync session state machine through a fake runner

package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/tidesync/pkg/bootstrap"
	"github.com/arthur-debert/tidesync/pkg/config"
	"github.com/arthur-debert/tidesync/pkg/engine"
	"github.com/arthur-debert/tidesync/pkg/errors"
	"github.com/arthur-debert/tidesync/pkg/git"
	"github.com/arthur-debert/tidesync/pkg/paths"
	"github.com/arthur-debert/tidesync/pkg/snapshot"
	"github.com/arthur-debert/tidesync/pkg/stager"
	"github.com/arthur-debert/tidesync/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	paths  *paths.Paths
	store  *snapshot.Store
	stager *stager.Stager
	fake   *testutil.FakeRunner
	engine *engine.Engine
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	p := testutil.NewWorkTree(t, files)
	store := snapshot.NewStore(p.SnapshotPath())
	st := stager.New(p)
	fake := testutil.NewFakeRunner()

	cfg := config.New()
	cfg.RemoteURL = "https://example.com/widgets.git"

	boot := bootstrap.New(p, store, fake, cfg)
	eng := engine.New(p, store, st, boot, fake, cfg)
	return &fixture{paths: p, store: store, stager: st, fake: fake, engine: eng}
}

func (f *fixture) seedSnapshot(t *testing.T) []byte {
	t.Helper()
	data := testutil.SnapshotBytes(t, "main")
	require.NoError(t, f.store.Save(data))
	return data
}

func snapshotBytesOnDisk(t *testing.T, f *fixture) []byte {
	t.Helper()
	data, err := os.ReadFile(f.paths.SnapshotPath())
	require.NoError(t, err)
	return data
}

func TestSyncWithLocalChanges(t *testing.T) {
	f := newFixture(t, map[string]string{"file.txt": "edited"})
	before := f.seedSnapshot(t)

	f.fake.
		Respond("status", git.Result{Stdout: " M file.txt\n"}).
		RespondQueue("rev-parse", git.Result{Stdout: "aaa\n"}, git.Result{Stdout: "bbb\n"})

	outcome, err := f.engine.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, engine.StateSuccess, outcome.State)
	assert.True(t, outcome.Committed)
	assert.True(t, outcome.SnapshotUpdated)
	assert.Equal(t, "aaa", outcome.HeadBefore)
	assert.Equal(t, "bbb", outcome.HeadAfter)

	// Metadata stripped, snapshot recaptured
	assert.False(t, f.stager.IsStaged())
	assert.NotEqual(t, before, snapshotBytesOnDisk(t, f))
	assert.Positive(t, outcome.SnapshotSize)

	subs := f.fake.Subcommands()
	assert.Equal(t, []string{"rev-parse", "status", "add", "commit", "pull", "push", "rev-parse", "gc"}, subs)
	assert.Zero(t, f.fake.CallCount("clone"))
}

func TestSyncBootstrapsWhenNoSnapshot(t *testing.T) {
	f := newFixture(t, map[string]string{"new.txt": "fresh"})

	f.fake.
		Respond("ls-remote", git.Result{Stdout: "abc\trefs/heads/main\n"}).
		OnRun("clone", func(dir string) {
			testutil.FakeGitDir(t, filepath.Join(dir, ".git"))
		}).
		Respond("status", git.Result{Stdout: "?? new.txt\n"}).
		RespondQueue("rev-parse", git.Result{Stdout: "c0\n"}, git.Result{Stdout: "c1\n"})

	outcome, err := f.engine.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, engine.StateSuccess, outcome.State)
	assert.Equal(t, 1, f.fake.CallCount("clone"))
	assert.True(t, f.store.Exists())
	assert.False(t, f.stager.IsStaged())
}

func TestSyncIdleRunIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	before := f.seedSnapshot(t)

	f.fake.
		Respond("status", git.Result{Stdout: ""}).
		Respond("rev-parse", git.Result{Stdout: "same\n"})

	outcome, err := f.engine.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, engine.StateSuccess, outcome.State)
	assert.False(t, outcome.Committed)
	assert.False(t, outcome.SnapshotUpdated)

	// Archive byte-identical, worktree metadata gone
	assert.Equal(t, before, snapshotBytesOnDisk(t, f))
	assert.False(t, f.stager.IsStaged())
	assert.Zero(t, f.fake.CallCount("commit"))
	assert.Zero(t, f.fake.CallCount("gc"))
}

func TestSyncConflictLeavesStateForManualResolution(t *testing.T) {
	f := newFixture(t, map[string]string{"file.txt": "mine"})
	before := f.seedSnapshot(t)

	f.fake.
		Respond("status", git.Result{Stdout: " M file.txt\n"}).
		Respond("rev-parse", git.Result{Stdout: "aaa\n"}).
		Respond("pull", git.Result{ExitCode: 1, Stderr: "CONFLICT (content): merge conflict in file.txt"})

	outcome, err := f.engine.Sync(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSyncConflict))
	assert.Equal(t, engine.StateCommitted, outcome.State)

	// Metadata stays materialized, snapshot untouched
	assert.True(t, f.stager.IsStaged())
	assert.Equal(t, before, snapshotBytesOnDisk(t, f))
	assert.Zero(t, f.fake.CallCount("push"))
}

func TestSyncPushRejected(t *testing.T) {
	f := newFixture(t, map[string]string{"file.txt": "mine"})
	before := f.seedSnapshot(t)

	f.fake.
		Respond("status", git.Result{Stdout: " M file.txt\n"}).
		Respond("rev-parse", git.Result{Stdout: "aaa\n"}).
		Respond("push", git.Result{ExitCode: 1, Stderr: "! [rejected] main -> main"})

	outcome, err := f.engine.Sync(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPushRejected))
	assert.Equal(t, engine.StateIntegrated, outcome.State)

	assert.True(t, f.stager.IsStaged())
	assert.Equal(t, before, snapshotBytesOnDisk(t, f))
}

func TestSyncCommitFailure(t *testing.T) {
	f := newFixture(t, map[string]string{"file.txt": "mine"})
	f.seedSnapshot(t)

	f.fake.
		Respond("status", git.Result{Stdout: " M file.txt\n"}).
		Respond("rev-parse", git.Result{Stdout: "aaa\n"}).
		Respond("commit", git.Result{ExitCode: 1, Stderr: "gpg failed to sign the data"})

	outcome, err := f.engine.Sync(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCommitFailure))
	assert.Equal(t, engine.StateStaged, outcome.State)
	assert.True(t, f.stager.IsStaged())
	assert.Zero(t, f.fake.CallCount("pull"))
}

func TestSyncCorruptSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, os.WriteFile(f.paths.SnapshotPath(), []byte("junk"), 0644))

	_, err := f.engine.Sync(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSnapshotCorrupt))
	assert.False(t, f.stager.IsStaged())
}

func TestSyncRunTwiceByteIdentical(t *testing.T) {
	f := newFixture(t, map[string]string{"file.txt": "edited"})
	f.seedSnapshot(t)

	// First run commits and recaptures
	f.fake.
		Respond("status", git.Result{Stdout: " M file.txt\n"}).
		RespondQueue("rev-parse", git.Result{Stdout: "aaa\n"}, git.Result{Stdout: "bbb\n"})
	_, err := f.engine.Sync(context.Background())
	require.NoError(t, err)
	afterFirst := snapshotBytesOnDisk(t, f)

	// Second run: clean tree, unchanged history
	f.fake.
		Respond("status", git.Result{Stdout: ""}).
		Respond("rev-parse", git.Result{Stdout: "bbb\n"})
	outcome, err := f.engine.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, engine.StateSuccess, outcome.State)
	assert.Equal(t, afterFirst, snapshotBytesOnDisk(t, f))
	assert.False(t, f.stager.IsStaged())
}

func TestSyncGCFailureDoesNotFailSession(t *testing.T) {
	f := newFixture(t, map[string]string{"file.txt": "edited"})
	f.seedSnapshot(t)

	f.fake.
		Respond("status", git.Result{Stdout: " M file.txt\n"}).
		RespondQueue("rev-parse", git.Result{Stdout: "aaa\n"}, git.Result{Stdout: "bbb\n"}).
		Respond("gc", git.Result{ExitCode: 1, Stderr: "gc is already running"})

	outcome, err := f.engine.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.StateSuccess, outcome.State)
	assert.True(t, outcome.SnapshotUpdated)
}
