// Package output renders tidesync's user-facing console lines: the
// banner, per-step progress and the final verdict. Logging is separate;
// this is the product surface.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	units "github.com/docker/go-units"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

// Styles
var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	waveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// Console writes styled lines to stdout, falling back to plain text when
// the output is not a color-capable terminal
type Console struct {
	styled bool
	quiet  bool
}

// NewConsole detects terminal capabilities; NO_COLOR, pipes and dumb
// terminals all disable styling
func NewConsole(quiet bool) *Console {
	return &Console{styled: detectStyled(os.Stdout), quiet: quiet}
}

func detectStyled(out *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd()) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

func (c *Console) render(style lipgloss.Style, text string) string {
	if !c.styled {
		return text
	}
	return style.Render(text)
}

// Banner prints the tool name, version and a wave rule
func (c *Console) Banner(version string) {
	if c.quiet {
		return
	}
	fmt.Println(c.render(bannerStyle, fmt.Sprintf("~ tidesync %s", version)))
	fmt.Println(c.render(waveStyle, strings.Repeat("~", 48)))
}

// Step prints one progress line
func (c *Console) Step(message string) {
	if c.quiet {
		return
	}
	fmt.Println(c.render(stepStyle, message))
}

// Success prints the final success line
func (c *Console) Success(message string) {
	if c.quiet {
		return
	}
	if c.styled {
		pterm.Success.Println(message)
		return
	}
	fmt.Println(message)
}

// Failure prints the final error line to stderr
func (c *Console) Failure(err error) {
	if c.styled {
		pterm.Error.Println(err.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// Warning prints a non-fatal problem
func (c *Console) Warning(message string) {
	if c.quiet {
		return
	}
	if c.styled {
		pterm.Warning.Println(message)
		return
	}
	fmt.Fprintln(os.Stderr, message)
}

// SnapshotSize prints the archive size, since it can grow abnormally large
func (c *Console) SnapshotSize(bytes int64) {
	if c.quiet {
		return
	}
	fmt.Println(c.render(mutedStyle,
		fmt.Sprintf("Snapshot size: %s", units.HumanSize(float64(bytes)))))
}

// Detail prints a muted informational line
func (c *Console) Detail(format string, args ...interface{}) {
	if c.quiet {
		return
	}
	fmt.Println(c.render(mutedStyle, fmt.Sprintf(format, args...)))
}
