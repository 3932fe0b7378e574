// Package bootstrap performs the one-time initial clone of the remote
// repository and seeds the first snapshot. It runs only when no snapshot
// exists for the synced directory.
package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/tidesync/internal/version"
	"github.com/arthur-debert/tidesync/pkg/archive"
	"github.com/arthur-debert/tidesync/pkg/config"
	"github.com/arthur-debert/tidesync/pkg/errors"
	"github.com/arthur-debert/tidesync/pkg/git"
	"github.com/arthur-debert/tidesync/pkg/logging"
	"github.com/arthur-debert/tidesync/pkg/paths"
	"github.com/arthur-debert/tidesync/pkg/snapshot"
)

// Bootstrapper seeds the first snapshot from a disposable clone
type Bootstrapper struct {
	paths *paths.Paths
	store *snapshot.Store
	cmds  *git.Commands
	cfg   config.Config
}

// New creates a Bootstrapper
func New(p *paths.Paths, store *snapshot.Store, runner git.Runner, cfg config.Config) *Bootstrapper {
	return &Bootstrapper{
		paths: p,
		store: store,
		cmds:  git.NewCommands(runner),
		cfg:   cfg,
	}
}

// Run clones the remote branch into a scratch directory, packs its
// metadata into the first snapshot and discards the clone. The working
// tree's files are never taken from the clone: the monorepo's existing
// files remain authoritative. Nothing is persisted on failure.
func (b *Bootstrapper) Run(ctx context.Context) error {
	log := logging.GetLogger("bootstrap")
	scratch := b.paths.ScratchDir()

	if err := ensureCleanDir(scratch); err != nil {
		return errors.Wrapf(err, errors.ErrBootstrapFailure, "preparing scratch directory %s", scratch)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Warn().Err(err).Str("scratch", scratch).Msg("Failed to remove scratch clone")
		}
	}()

	// An empty remote cannot seed a merge base; surface it as its own
	// case instead of writing a useless snapshot
	heads, err := b.cmds.LsRemoteHeads(ctx, scratch, b.cfg.RemoteURL)
	if err != nil {
		return err
	}
	if !heads.Success() {
		return errors.Newf(errors.ErrBootstrapFailure, "cannot reach remote %s", b.cfg.RemoteURL).
			WithDetail("stderr", heads.Stderr)
	}
	if strings.TrimSpace(heads.Stdout) == "" {
		return errors.Newf(errors.ErrEmptyRemote,
			"remote %s has no commits on any branch; push an initial commit first", b.cfg.RemoteURL)
	}

	res, err := b.cmds.Clone(ctx, scratch, b.cfg.RemoteURL, b.cfg.Branch)
	if err != nil {
		return err
	}
	if !res.Success() {
		return errors.Newf(errors.ErrBootstrapFailure, "cloning %s (branch %s)", b.cfg.RemoteURL, b.cfg.Branch).
			WithDetail("stderr", res.Stderr)
	}

	data, err := archive.Pack(filepath.Join(scratch, paths.GitDirName), archive.Manifest{
		CreatedAt:   time.Now().UTC(),
		Branch:      b.cfg.Branch,
		ToolVersion: version.Version,
	}, archive.Options{Level: b.cfg.Compression, CopyLinks: b.cfg.CopyLinks})
	if err != nil {
		return errors.Wrap(err, errors.ErrBootstrapFailure, "packing initial snapshot")
	}

	if err := b.store.Save(data); err != nil {
		return err
	}

	log.Info().Str("remote", b.cfg.RemoteURL).Str("branch", b.cfg.Branch).Msg("Initial snapshot created")
	return nil
}

// ensureCleanDir makes dir exist and be empty
func ensureCleanDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
