package guide

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed guide.md
var guideText string

// NewCommand creates the guide command
func NewCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:     "guide",
		Short:   MsgShort,
		Long:    MsgLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(renderMarkdown(guideText, plain))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print raw markdown without terminal styling")

	return cmd
}

// renderMarkdown styles the guide for the terminal, falling back to the
// raw markdown when rendering is unavailable
func renderMarkdown(content string, plain bool) string {
	if plain {
		return content
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
