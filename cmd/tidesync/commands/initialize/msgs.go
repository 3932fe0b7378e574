package initialize

// Message constants
const (
	MsgShort = "Create the initial snapshot from the remote repository"
	MsgLong  = `The 'init' command performs the one-time bootstrap: it clones the remote
branch into a disposable location, captures its git metadata into the
snapshot archive, and discards the clone. Your existing files are never
modified.

Running sync in a directory without a snapshot does this automatically;
init exists to do it as an explicit, separate step.`

	MsgExample = `  # Seed the snapshot without syncing
  tidesync init --remote git@github.com:acme/widgets.git`

	MsgSuccess = "Initial snapshot created"
)
