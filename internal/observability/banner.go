package observability

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ------------------------------------------------------------
// Utility
// ------------------------------------------------------------

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// ------------------------------------------------------------
// Banner
// ------------------------------------------------------------

var bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)

func PrintBanner(w io.Writer) {
	banner := `
   ___       __                _ __     __
  / _ |__ __/ /____  ___  ___ (_) /__  / /_
 / __ / // / __/ _ \/ _ \/ _ \/ / / _ \/ __/
/_/ |_\_,_/\__/\___/ .__/\___/_/_/\___/\__/
                  /_/
     >> PLAN . SIMULATE . EXECUTE . RECOVER <<
`

	width := termWidth()
	for _, l := range strings.Split(banner, "\n") {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Fprintln(w, strings.Repeat(" ", padding)+bannerStyle.Render(l))
	}
}

// ------------------------------------------------------------
// Sections
// ------------------------------------------------------------

// Section colors used by the console renderer.
const (
	ColorPlan       = "12"
	ColorSimulation = "11"
	ColorExecution  = "10"
	ColorFeedback   = "13"
	ColorMemory     = "14"
	ColorFollowUp   = "33"
	ColorError      = "9"
)

// Heading renders a bold section title in the given ANSI color.
func Heading(title, color string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(color)).
		Render("--- " + title + " ---")
}

// Label renders an audit label for the memory dump.
func Label(label string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorExecution)).Render(label)
}
