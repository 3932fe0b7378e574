package commands

import (
	"context"

	"github.com/arthur-debert/tidesync/pkg/bootstrap"
	"github.com/arthur-debert/tidesync/pkg/engine"
	"github.com/arthur-debert/tidesync/pkg/logging"
	"github.com/arthur-debert/tidesync/pkg/snapshot"
	"github.com/arthur-debert/tidesync/pkg/stager"
)

// SyncOptions configure one sync session
type SyncOptions struct {
	Options

	// Reporter receives progress lines; nil discards them
	Reporter engine.Reporter
}

// Sync runs a full sync session: bootstrap if needed, stage, commit,
// integrate, publish, then conditionally recapture the snapshot
func Sync(ctx context.Context, opts SyncOptions) (*engine.Outcome, error) {
	log := logging.GetLogger("commands.sync")

	p, cfg, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runner := opts.runner()
	store := snapshot.NewStore(p.SnapshotPath())
	st := stager.New(p)
	boot := bootstrap.New(p, store, runner, cfg)
	eng := engine.New(p, store, st, boot, runner, cfg)
	if opts.Reporter != nil {
		eng.SetReporter(opts.Reporter)
	}

	var outcome *engine.Outcome
	err = withLock(p, func() error {
		var syncErr error
		outcome, syncErr = eng.Sync(ctx)
		return syncErr
	})
	if err != nil {
		log.Error().Err(err).Str("workDir", p.WorkDir()).Msg("Sync session failed")
		return outcome, err
	}
	return outcome, nil
}
