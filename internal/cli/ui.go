package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// statusOut receives status lines. Results go to stdout, so status output
// must not.
var statusOut io.Writer = os.Stderr

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue renders values such as paths.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarn    = lipgloss.NewStyle().Foreground(colorYellow)
	styleNote    = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// status prints one line prefixed with a styled icon.
func status(icon string, style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(statusOut, style.Render(icon)+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { status("✓", styleOK, format, args...) }
func printInfo(format string, args ...any)    { status("›", styleNote, format, args...) }

func printWarning(format string, args ...any) {
	status("!", styleWarn, "%s", styleWarn.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

const (
	labelCached = "cached"
	labelFresh  = "fresh"
)

// alignStats is the summary line printed after an alignment. Zero counts
// are left out.
type alignStats struct {
	sequences int
	columns   int
	nodes     int
	fallbacks int
	cached    bool
}

func printStats(s alignStats) {
	var parts []string
	add := func(n int, unit string) {
		if n > 0 {
			parts = append(parts, StyleDim.Render(fmt.Sprintf("%d %s", n, unit)))
		}
	}
	add(s.sequences, "sequences")
	add(s.columns, "columns")
	add(s.nodes, "nodes")
	add(s.fallbacks, "band fallbacks")

	if s.cached {
		parts = append(parts, styleOK.Render(labelCached))
	} else {
		parts = append(parts, styleNote.Render(labelFresh))
	}
	fmt.Fprintln(statusOut, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}
