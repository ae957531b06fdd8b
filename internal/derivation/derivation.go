// Package derivation owns the mutable state of a running program: the
// per-cell memory behind the display, the active non-terminal index, and
// the stochastic scheduler that picks and applies one rule per step.
package derivation

import (
	"math/rand"
	"runtime"
	"time"

	"github.com/vzahradnik/garden/internal/canvas"
	"github.com/vzahradnik/garden/internal/grammar"
)

// Pos addresses one canvas cell.
type Pos struct {
	R int
	C int
}

// mem is the remembered state of one cell: the terminal glyph underneath
// the current display, its colors, and the z-order of the last write.
type mem struct {
	glyph rune
	fore  int
	back  int
	zord  rune
}

// Derivation is the rewriting state for one canvas. The grammar is
// read-only; Canvas, memory and the active set are mutated only by Step,
// Start and Restart on the caller's goroutine.
type Derivation struct {
	g  *grammar.Grammar
	cv canvas.Canvas

	rng     *rand.Rand
	threads int

	rows, cols int
	// Grid-aligned effective dimensions, cached for wrapping.
	effRows int
	effCols int

	x      map[Pos]rune
	memory []mem
}

// New creates a derivation over cv. seed 0 picks a time-derived seed.
// threads 0 uses all cores; 1 disables parallel matching and multi-fire.
func New(cv canvas.Canvas, seed int64, threads int) *Derivation {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	return &Derivation{
		cv:      cv,
		rng:     rand.New(rand.NewSource(seed)),
		threads: threads,
		x:       make(map[Pos]rune),
	}
}

// Reset points the derivation at a grammar and canvas geometry. Memory is
// reallocated by the next Init if the geometry changed.
func (d *Derivation) Reset(g *grammar.Grammar, rows, cols int) {
	d.g = g
	d.rows = rows
	d.cols = cols
	d.effRows = ((rows - 1) / g.GridH) * g.GridH
	if d.effRows < 1 {
		d.effRows = 1
	}
	d.effCols = (cols / g.GridW) * g.GridW
	if d.effCols < 1 {
		d.effCols = 1
	}
}

// Init prepares memory and color pairs. When clear is set, or when the
// geometry changed since the last Init, all state is wiped; otherwise the
// canvas, memory and active set survive a program switch.
func (d *Derivation) Init(clear bool) {
	fresh := len(d.memory) != d.rows*d.cols
	if fresh {
		d.memory = make([]mem, d.rows*d.cols)
	}
	d.initColors()
	if clear || fresh {
		d.Restart()
	}
}

// initColors registers the 8x8 color pair table, mirroring the eight
// ANSI colors in both positions.
func (d *Derivation) initColors() {
	for fore := 0; fore < 8; fore++ {
		for back := 0; back < 8; back++ {
			d.cv.RegisterPair(fore, back)
		}
	}
}

// Restart clears the active set, the canvas and the cell memory.
func (d *Derivation) Restart() {
	d.x = make(map[Pos]rune)
	d.cv.Clear()
	for i := range d.memory {
		d.memory[i] = mem{glyph: ' ', fore: 7, back: 0, zord: 'a'}
	}
}

// Start instantiates every start specification: resolves its anchors to a
// cell, paints the symbol and registers it in the active set. Memory is
// left untouched.
func (d *Derivation) Start() {
	gw, gh := d.g.GridW, d.g.GridH
	eff_col := (d.cols / gw) * gw
	eff_row := ((d.rows - 1) / gh) * gh

	for _, s := range d.g.S {
		c := d.cols / 2
		switch s.H {
		case 'l':
			c = 0
		case 'r':
			c = d.cols - 1
		case 'c':
			c = d.cols / 2
		case 'R':
			c = eff_col - gw
		case 'C':
			c = gw * ((eff_col / gw) / 2)
		case 'X':
			c = gw * d.rng.Intn(max(eff_col/gw, 1))
		default:
			c = d.rng.Intn(max(d.cols, 1))
		}

		r := d.rows / 2
		switch s.V {
		case 'u':
			r = 1
		case 'l':
			r = d.rows - 1
		case 'c':
			r = d.rows / 2
		case 'L':
			r = gh*((d.rows-2)/gh) + 1
		case 'C':
			r = gh * ((eff_row / gh) / 2)
		case 'X':
			r = gh*d.rng.Intn(max((d.rows-1)/gh, 1)) + 1
		default:
			r = d.rng.Intn(max(d.rows-1, 1)) + 1
		}
		if r < 1 {
			r = 1
		}
		if c < 0 {
			c = 0
		}

		d.x[Pos{r, c}] = s.Symbol
		d.cv.SetCell(r, c, s.Symbol, 0)
	}
}

// wrapRow maps a pattern row onto the toroidal canvas. Row 0 stays
// reserved for the status line: rows wrap within [1, effRows].
func (d *Derivation) wrapRow(r int) int {
	return ((r-1)%d.effRows+d.effRows)%d.effRows + 1
}

// wrapCol maps a pattern column onto [0, effCols).
func (d *Derivation) wrapCol(c int) int {
	return (c%d.effCols + d.effCols) % d.effCols
}
