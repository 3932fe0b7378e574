package tidesync

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/tidesync/cmd/tidesync/commands/guide"
	"github.com/arthur-debert/tidesync/cmd/tidesync/commands/initialize"
	"github.com/arthur-debert/tidesync/cmd/tidesync/commands/status"
	synccmd "github.com/arthur-debert/tidesync/cmd/tidesync/commands/sync"
	"github.com/arthur-debert/tidesync/internal/version"
	"github.com/arthur-debert/tidesync/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		quiet     bool
		workDir   string
	)

	rootCmd := &cobra.Command{
		Use:     "tidesync",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, MsgFlagQuiet)
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", "", MsgFlagDir)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.AddCommand(synccmd.NewCommand(&workDir, &quiet))
	rootCmd.AddCommand(initialize.NewCommand(&workDir, &quiet))
	rootCmd.AddCommand(status.NewCommand(&workDir, &quiet))
	rootCmd.AddCommand(guide.NewCommand())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version information",
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tidesync version %s\n", version.Version)
			fmt.Printf("  commit: %s\n", version.Commit)
			fmt.Printf("  built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion script",
		GroupID:   "misc",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
}
