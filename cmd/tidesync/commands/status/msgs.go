package status

// Message constants
const (
	MsgShort = "Show the sync state of a directory"
	MsgLong  = `The 'status' command inspects a synced directory without touching it:
whether a snapshot exists and when it was captured, whether a previous
session left its metadata directory behind (conflicts awaiting manual
resolution), and whether a session lock is held.`

	MsgExample = `  # Inspect the current directory
  tidesync status

  # Inspect another directory
  tidesync status -C path/to/synced/dir`
)
