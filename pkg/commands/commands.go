// Package commands provides the high-level command implementations for
// tidesync. It coordinates between the CLI layer and the sync engine:
// resolving configuration, holding the session lock and wiring the
// engine's collaborators.
package commands

import (
	"github.com/arthur-debert/tidesync/pkg/config"
	"github.com/arthur-debert/tidesync/pkg/git"
	"github.com/arthur-debert/tidesync/pkg/lock"
	"github.com/arthur-debert/tidesync/pkg/paths"
)

// Options are shared by every command. Zero values mean "use the config
// file or default".
type Options struct {
	// WorkDir is the synced directory; empty means the current directory
	WorkDir string

	// Remote overrides the configured remote repository URL
	Remote string

	// Branch overrides the configured remote branch
	Branch string

	// Message overrides the configured commit message
	Message string

	// CopyLinks stores symlinks in the snapshot as links
	CopyLinks bool

	// Compression overrides the snapshot compression level
	Compression string

	// NoGC skips metadata compaction before re-snapshotting
	NoGC bool

	// Runner substitutes the git runner; nil uses the real git binary
	Runner git.Runner
}

// resolve builds paths and the effective config from options
func (o *Options) resolve() (*paths.Paths, config.Config, error) {
	p, err := paths.New(o.WorkDir)
	if err != nil {
		return nil, config.Config{}, err
	}

	cfg, err := config.Load(p.ConfigPath())
	if err != nil {
		return nil, config.Config{}, err
	}
	if o.Remote != "" {
		cfg.RemoteURL = o.Remote
	}
	if o.Branch != "" {
		cfg.Branch = o.Branch
	}
	if o.Message != "" {
		cfg.Message = o.Message
	}
	if o.Compression != "" {
		cfg.Compression = o.Compression
	}
	if o.CopyLinks {
		cfg.CopyLinks = true
	}
	if o.NoGC {
		cfg.NoGC = true
	}

	return p, cfg, nil
}

func (o *Options) runner() git.Runner {
	if o.Runner != nil {
		return o.Runner
	}
	return git.NewShellRunner()
}

// withLock runs fn while holding the session lock for p
func withLock(p *paths.Paths, fn func() error) error {
	l, err := lock.Acquire(p.LockPath())
	if err != nil {
		return err
	}
	defer l.Release()
	return fn()
}
