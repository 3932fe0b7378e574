// Package engine runs the sync session state machine:
// Staged -> Committed -> Integrated -> Published -> Success.
//
// The engine never merges content itself. Its one job is to give git
// enough shared history (via the staged snapshot) to do the merge, then
// decide from git's exit status whether the snapshot may be recaptured.
// On any terminal failure after staging, the hidden metadata directory is
// deliberately left in place and the snapshot untouched, so the operator
// can resolve the situation with ordinary git commands.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/arthur-debert/tidesync/internal/version"
	"github.com/arthur-debert/tidesync/pkg/archive"
	"github.com/arthur-debert/tidesync/pkg/bootstrap"
	"github.com/arthur-debert/tidesync/pkg/config"
	"github.com/arthur-debert/tidesync/pkg/errors"
	"github.com/arthur-debert/tidesync/pkg/git"
	"github.com/arthur-debert/tidesync/pkg/logging"
	"github.com/arthur-debert/tidesync/pkg/paths"
	"github.com/arthur-debert/tidesync/pkg/snapshot"
	"github.com/arthur-debert/tidesync/pkg/stager"
)

// State identifies where a session ended up
type State string

// Session states
const (
	StateStaged     State = "staged"
	StateCommitted  State = "committed"
	StateIntegrated State = "integrated"
	StatePublished  State = "published"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Reporter receives user-facing progress lines. The engine calls it for
// each step; the CLI plugs in styled console output.
type Reporter interface {
	Step(message string)
}

type nopReporter struct{}

func (nopReporter) Step(string) {}

// Outcome summarizes a finished session
type Outcome struct {
	State           State
	Committed       bool
	HeadBefore      string
	HeadAfter       string
	SnapshotUpdated bool
	SnapshotSize    int64
}

// Engine executes sync sessions for one synced directory
type Engine struct {
	paths    *paths.Paths
	store    *snapshot.Store
	stager   *stager.Stager
	boot     *bootstrap.Bootstrapper
	cmds     *git.Commands
	cfg      config.Config
	reporter Reporter
}

// New wires an Engine from its collaborators
func New(p *paths.Paths, store *snapshot.Store, st *stager.Stager, boot *bootstrap.Bootstrapper, runner git.Runner, cfg config.Config) *Engine {
	return &Engine{
		paths:    p,
		store:    store,
		stager:   st,
		boot:     boot,
		cmds:     git.NewCommands(runner),
		cfg:      cfg,
		reporter: nopReporter{},
	}
}

// SetReporter replaces the progress reporter
func (e *Engine) SetReporter(r Reporter) {
	if r != nil {
		e.reporter = r
	}
}

// Sync runs one full session. The returned Outcome is valid whenever the
// session got past staging, even on error.
func (e *Engine) Sync(ctx context.Context) (*Outcome, error) {
	log := logging.GetLogger("engine")
	outcome := &Outcome{State: StateFailed}

	data, _, err := e.store.Load()
	if errors.IsCode(err, errors.ErrSnapshotNotFound) {
		e.reporter.Step("No snapshot found, creating initial clone...")
		if bootErr := e.boot.Run(ctx); bootErr != nil {
			return outcome, bootErr
		}
		data, _, err = e.store.Load()
	}
	if err != nil {
		return outcome, err
	}

	// Staged
	e.reporter.Step("Staging cached history...")
	if err := e.stager.Stage(data); err != nil {
		return outcome, err
	}
	outcome.State = StateStaged
	outcome.HeadBefore = e.headOrEmpty(ctx)

	// Committed
	committed, err := e.commitChanges(ctx)
	if err != nil {
		return outcome, err
	}
	outcome.State = StateCommitted
	outcome.Committed = committed

	// Integrated
	e.reporter.Step("Integrating remote history...")
	res, err := e.cmds.PullRebase(ctx, e.paths.WorkDir(), e.cfg.RemoteURL, e.cfg.Branch)
	if err != nil {
		return outcome, err
	}
	if !res.Success() {
		return outcome, errors.Newf(errors.ErrSyncConflict,
			"rebase onto %s/%s stopped; resolve conflicts in %s and finish with git",
			e.cfg.RemoteURL, e.cfg.Branch, e.paths.WorkDir()).
			WithDetail("stderr", res.Stderr)
	}
	outcome.State = StateIntegrated

	// Published
	e.reporter.Step("Publishing to remote...")
	res, err = e.cmds.Push(ctx, e.paths.WorkDir(), e.cfg.RemoteURL, e.cfg.Branch)
	if err != nil {
		return outcome, err
	}
	if !res.Success() {
		return outcome, errors.Newf(errors.ErrPushRejected,
			"push to %s/%s rejected", e.cfg.RemoteURL, e.cfg.Branch).
			WithDetail("stderr", res.Stderr)
	}
	outcome.State = StatePublished
	outcome.HeadAfter = e.headOrEmpty(ctx)

	// Success: recapture the snapshot only when history actually moved,
	// so an idle run leaves the archive byte-identical
	if outcome.HeadBefore == "" || outcome.HeadAfter != outcome.HeadBefore {
		if err := e.recapture(ctx, outcome); err != nil {
			return outcome, err
		}
	} else {
		log.Debug().Str("head", outcome.HeadAfter).Msg("History unchanged, keeping existing snapshot")
	}
	if size, sizeErr := e.store.Size(); sizeErr == nil {
		outcome.SnapshotSize = size
	}

	e.stager.Unstage()
	outcome.State = StateSuccess
	log.Info().
		Bool("committed", outcome.Committed).
		Bool("snapshotUpdated", outcome.SnapshotUpdated).
		Str("head", outcome.HeadAfter).
		Msg("Sync session finished")
	return outcome, nil
}

// commitChanges stages and commits local edits. A clean worktree is a
// successful no-op, not a failure.
func (e *Engine) commitChanges(ctx context.Context) (bool, error) {
	status, res, err := e.cmds.StatusPorcelain(ctx, e.paths.WorkDir())
	if err != nil {
		return false, err
	}
	if !res.Success() {
		return false, errors.New(errors.ErrCommitFailure, "git status failed").
			WithDetail("stderr", res.Stderr)
	}
	if strings.TrimSpace(status) == "" {
		e.reporter.Step("No local changes to commit")
		return false, nil
	}

	e.reporter.Step("Committing local changes...")
	if res, err = e.cmds.AddAll(ctx, e.paths.WorkDir()); err != nil {
		return false, err
	}
	if !res.Success() {
		return false, errors.New(errors.ErrCommitFailure, "staging changes failed").
			WithDetail("stderr", res.Stderr)
	}
	if res, err = e.cmds.Commit(ctx, e.paths.WorkDir(), e.cfg.Message); err != nil {
		return false, err
	}
	if !res.Success() {
		return false, errors.New(errors.ErrCommitFailure, "commit failed").
			WithDetail("stderr", res.Stderr)
	}
	return true, nil
}

// recapture packs the current metadata into a fresh snapshot
func (e *Engine) recapture(ctx context.Context, outcome *Outcome) error {
	log := logging.GetLogger("engine")

	if !e.cfg.NoGC {
		e.reporter.Step("Compacting metadata...")
		if res, err := e.cmds.GC(ctx, e.paths.WorkDir()); err != nil {
			return err
		} else if !res.Success() {
			// A failed repack only costs snapshot size; the publish
			// already succeeded
			log.Warn().Str("stderr", res.Stderr).Msg("git gc failed, snapshotting unpacked metadata")
		}
	}

	e.reporter.Step("Updating snapshot...")
	data, err := archive.Pack(e.paths.GitDir(), archive.Manifest{
		CreatedAt:   time.Now().UTC(),
		Branch:      e.cfg.Branch,
		ToolVersion: version.Version,
	}, archive.Options{Level: e.cfg.Compression, CopyLinks: e.cfg.CopyLinks})
	if err != nil {
		return err
	}
	if err := e.store.Save(data); err != nil {
		return err
	}
	outcome.SnapshotUpdated = true
	return nil
}

func (e *Engine) headOrEmpty(ctx context.Context) string {
	head, res, err := e.cmds.HeadCommit(ctx, e.paths.WorkDir())
	if err != nil || !res.Success() {
		return ""
	}
	return head
}
