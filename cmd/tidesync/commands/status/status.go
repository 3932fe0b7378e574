package status

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/tidesync/pkg/commands"
	"github.com/arthur-debert/tidesync/pkg/output"
)

// NewCommand creates the status command
func NewCommand(workDir *string, quiet *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			console := output.NewConsole(*quiet)

			result, err := commands.Status(commands.Options{WorkDir: *workDir})
			if err != nil {
				console.Failure(err)
				return err
			}

			render(console, result)
			return nil
		},
	}

	return cmd
}

func render(console *output.Console, result *commands.StatusResult) {
	console.Detail("Directory: %s", result.WorkDir)

	switch {
	case result.SnapshotCorrupt:
		console.Warning("Snapshot archive is present but unreadable; run 'tidesync init' after removing it")
	case result.SnapshotExists:
		console.Step("Snapshot present")
		console.SnapshotSize(result.SnapshotSize)
		if m := result.Manifest; m != nil {
			console.Detail("Branch: %s", m.Branch)
			console.Detail("Captured: %s", m.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		}
	default:
		console.Step("No snapshot; run 'tidesync init' or 'tidesync sync' to create one")
	}

	if result.Staged {
		console.Warning("A .git directory from a previous session is present; resolve it with git, then rerun sync")
	}
	if result.Locked {
		console.Warning("A session lock is held; another sync may be running")
	}
}
