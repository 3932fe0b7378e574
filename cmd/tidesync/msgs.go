package tidesync

// Message constants
const (
	MsgRootShort = "Sync a monorepo subdirectory with a public git repository"
	MsgRootLong  = `tidesync keeps a subdirectory of a private monorepo bidirectionally
synchronized with an independent public repository, without nested
repositories or submodules.

Between runs, the remote project's git metadata is cached in a single
compressed snapshot file next to your sources. Each sync materializes
that history, lets git perform an ordinary three-way merge, publishes
the result, and folds the refreshed history back into the snapshot.`

	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagQuiet   = "Suppress progress output"
	MsgFlagDir     = "Synced directory (defaults to the current directory)"
)
