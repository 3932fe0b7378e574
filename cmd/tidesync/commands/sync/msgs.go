package sync

// Message constants
const (
	MsgShort = "Run one sync session against the remote repository"
	MsgLong  = `The 'sync' command runs a full session: it stages the cached history,
commits local changes, rebases them onto the remote branch, pushes, and
refreshes the snapshot.

On the first run (no snapshot yet) the remote is cloned once to seed the
snapshot; your existing files stay untouched and authoritative.

When the rebase hits conflicts or the push is rejected, the hidden .git
directory is left in place so you can resolve the situation with plain
git commands. The snapshot is never updated on failure.`

	MsgExample = `  # Sync with a remote
  tidesync sync --remote git@github.com:acme/widgets.git

  # Remote and options from .tidesync.toml in the synced directory
  tidesync sync

  # Custom branch and commit message
  tidesync sync --remote https://github.com/acme/widgets --branch release --message "Weekly drop"`

	MsgSuccess = "Sync completed successfully!"
)
