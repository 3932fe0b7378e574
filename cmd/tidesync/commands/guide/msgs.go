package guide

// Message constants
const (
	MsgShort = "Read the user guide in the terminal"
	MsgLong  = `The 'guide' command renders the bundled user guide: how the snapshot
works, what a sync session does step by step, and how to recover from
conflicts.`
)
