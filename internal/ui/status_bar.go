// Package ui renders the status line above the canvas.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Style helpers — shared by every status variant
var (
	ScoreColor  = lipgloss.Color("252")
	HeaderColor = lipgloss.Color("245")
	HelpColor   = lipgloss.Color("214")
)

// RenderStatus renders the running status line: score and step counters on
// the left, the fired rule's raw header right-aligned. Both sides are
// truncated by display width, so wide glyphs account for two columns.
func RenderStatus(width int, score, steps int, header string) string {
	left := fmt.Sprintf("Score: %d Steps: %d", score, steps)
	left = truncate(left, width-1)

	avail := width - 1 - runewidth.StringWidth(left) - 1
	right := ""
	if avail > 0 {
		right = truncate(header, avail)
	}

	pad := width - 1 - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if pad < 1 {
		pad = 1
	}

	score_style := lipgloss.NewStyle().Foreground(ScoreColor)
	header_style := lipgloss.NewStyle().Foreground(HeaderColor)
	return score_style.Render(left) + strings.Repeat(" ", pad) + header_style.Render(right)
}

// RenderHelp renders the program's help string, shown while paused or
// before the first base tick.
func RenderHelp(width int, help string) string {
	return lipgloss.NewStyle().Foreground(HelpColor).Render(truncate(help, width-1))
}

// truncate cuts s to at most cols terminal columns.
func truncate(s string, cols int) string {
	if cols < 0 {
		cols = 0
	}
	return runewidth.Truncate(s, cols, "")
}
