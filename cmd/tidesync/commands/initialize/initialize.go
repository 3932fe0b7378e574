package initialize

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/tidesync/internal/version"
	"github.com/arthur-debert/tidesync/pkg/commands"
	"github.com/arthur-debert/tidesync/pkg/output"
)

// NewCommand creates the init command
func NewCommand(workDir *string, quiet *bool) *cobra.Command {
	var (
		remote      string
		branch      string
		copyLinks   bool
		compression string
	)

	cmd := &cobra.Command{
		Use:     "init",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			console := output.NewConsole(*quiet)
			console.Banner(version.Version)
			console.Step("Creating initial snapshot...")

			err := commands.Init(cmd.Context(), commands.Options{
				WorkDir:     *workDir,
				Remote:      remote,
				Branch:      branch,
				CopyLinks:   copyLinks,
				Compression: compression,
			})
			if err != nil {
				console.Failure(err)
				return err
			}

			console.Success(MsgSuccess)
			return nil
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "Remote repository URL")
	cmd.Flags().StringVar(&branch, "branch", "", "Remote branch to snapshot (default \"main\")")
	cmd.Flags().BoolVar(&copyLinks, "copy-links", false, "Store symlinks in the snapshot instead of following them")
	cmd.Flags().StringVar(&compression, "compression", "", "Snapshot compression level: fast, default or max")

	return cmd
}
