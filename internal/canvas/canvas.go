// Package canvas provides the cell-based character display the derivation
// rewrites. The Grid implementation keeps an authoritative in-memory mirror
// of every painted glyph, so pattern matching never reads back from the
// terminal, and renders frames for the bubbletea view.
package canvas

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Canvas is the surface the derivation paints on. Row 0 is reserved for the
// status line and never written by rules.
type Canvas interface {
	Size() (rows, cols int)
	SetCell(r, c int, glyph rune, pair int)
	Glyph(r, c int) rune
	Clear()

	// RegisterPair registers a foreground/background combination and
	// returns its pair id (> 0). Pair returns 0 for unknown combinations,
	// which paints without attributes.
	RegisterPair(fore, back int) int
	Pair(fore, back int) int
}

type cell struct {
	glyph rune
	pair  int
}

// Grid is the in-memory Canvas implementation.
type Grid struct {
	rows, cols int
	cells      []cell

	pairs  map[[2]int]int
	styles []lipgloss.Style // indexed by pair id; id 0 has no style
}

// NewGrid returns a cleared grid of the given dimensions.
func NewGrid(rows, cols int) *Grid {
	g := &Grid{
		pairs:  make(map[[2]int]int),
		styles: []lipgloss.Style{lipgloss.NewStyle()},
	}
	g.Resize(rows, cols)
	return g
}

func (g *Grid) Size() (int, int) { return g.rows, g.cols }

// Resize reallocates the grid and clears it.
func (g *Grid) Resize(rows, cols int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	g.rows = rows
	g.cols = cols
	g.cells = make([]cell, rows*cols)
	g.Clear()
}

// Clear blanks every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = cell{glyph: ' '}
	}
}

func (g *Grid) SetCell(r, c int, glyph rune, pair int) {
	if r < 0 || r >= g.rows || c < 0 || c >= g.cols {
		return
	}
	if pair < 0 || pair >= len(g.styles) {
		pair = 0
	}
	g.cells[r*g.cols+c] = cell{glyph: glyph, pair: pair}
}

func (g *Grid) Glyph(r, c int) rune {
	if r < 0 || r >= g.rows || c < 0 || c >= g.cols {
		return ' '
	}
	return g.cells[r*g.cols+c].glyph
}

// RegisterPair registers fore/back (ANSI colors 0..7) and returns the pair
// id, allocating one on first use.
func (g *Grid) RegisterPair(fore, back int) int {
	key := [2]int{fore, back}
	if id, ok := g.pairs[key]; ok {
		return id
	}
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(strconv.Itoa(fore))).
		Background(lipgloss.Color(strconv.Itoa(back)))
	g.styles = append(g.styles, style)
	id := len(g.styles) - 1
	g.pairs[key] = id
	return id
}

// Pair returns the registered pair id for fore/back, or 0 if unknown.
func (g *Grid) Pair(fore, back int) int {
	return g.pairs[[2]int{fore, back}]
}

// Render returns the canvas body (rows 1..rows-1) as styled lines. Runs of
// cells sharing a pair are styled together to keep frames small.
func (g *Grid) Render() string {
	var sb strings.Builder
	for r := 1; r < g.rows; r++ {
		if r > 1 {
			sb.WriteString("\n")
		}
		g.renderRow(&sb, r)
	}
	return sb.String()
}

func (g *Grid) renderRow(sb *strings.Builder, r int) {
	var run strings.Builder
	run_pair := 0
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if run_pair > 0 {
			sb.WriteString(g.styles[run_pair].Render(run.String()))
		} else {
			sb.WriteString(run.String())
		}
		run.Reset()
	}
	for c := 0; c < g.cols; c++ {
		cl := g.cells[r*g.cols+c]
		if cl.pair != run_pair {
			flush()
			run_pair = cl.pair
		}
		run.WriteRune(cl.glyph)
	}
	flush()
}
