package sync

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/tidesync/internal/version"
	"github.com/arthur-debert/tidesync/pkg/commands"
	"github.com/arthur-debert/tidesync/pkg/output"
)

// NewCommand creates the sync command
func NewCommand(workDir *string, quiet *bool) *cobra.Command {
	var (
		remote      string
		branch      string
		message     string
		copyLinks   bool
		compression string
		noGC        bool
	)

	cmd := &cobra.Command{
		Use:     "sync",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			console := output.NewConsole(*quiet)
			console.Banner(version.Version)

			outcome, err := commands.Sync(cmd.Context(), commands.SyncOptions{
				Options: commands.Options{
					WorkDir:     *workDir,
					Remote:      remote,
					Branch:      branch,
					Message:     message,
					CopyLinks:   copyLinks,
					Compression: compression,
					NoGC:        noGC,
				},
				Reporter: console,
			})
			if err != nil {
				console.Failure(err)
				return err
			}

			if outcome.SnapshotSize > 0 {
				console.SnapshotSize(outcome.SnapshotSize)
			}
			console.Success(MsgSuccess)
			return nil
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "Remote repository URL")
	cmd.Flags().StringVar(&branch, "branch", "", "Remote branch to sync with (default \"main\")")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message for local changes (default \"Sync changes\")")
	cmd.Flags().BoolVar(&copyLinks, "copy-links", false, "Store symlinks in the snapshot instead of following them")
	cmd.Flags().StringVar(&compression, "compression", "", "Snapshot compression level: fast, default or max")
	cmd.Flags().BoolVar(&noGC, "no-gc", false, "Skip metadata compaction before re-snapshotting")

	return cmd
}
