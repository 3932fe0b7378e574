package commands

import (
	"context"

	"github.com/arthur-debert/tidesync/pkg/bootstrap"
	"github.com/arthur-debert/tidesync/pkg/errors"
	"github.com/arthur-debert/tidesync/pkg/snapshot"
)

// Init seeds the initial snapshot from the remote without running a sync.
// It fails if a snapshot already exists.
func Init(ctx context.Context, opts Options) error {
	p, cfg, err := opts.resolve()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store := snapshot.NewStore(p.SnapshotPath())
	if store.Exists() {
		return errors.Newf(errors.ErrSnapshotExists,
			"snapshot already exists at %s; run sync instead", store.Path())
	}

	boot := bootstrap.New(p, store, opts.runner(), cfg)
	return withLock(p, func() error {
		return boot.Run(ctx)
	})
}
