// Package app drives the interpreter: it owns the current grammar, the
// derivation, pause/restart handling, program chaining and the timing that
// turns idle time into synthetic B/M/T keys.
package app

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/vzahradnik/garden/internal/audio"
	"github.com/vzahradnik/garden/internal/canvas"
	"github.com/vzahradnik/garden/internal/derivation"
	"github.com/vzahradnik/garden/internal/grammar"

	tea "github.com/charmbracelet/bubbletea"
)

// Model is the root bubbletea model.
type Model struct {
	width  int
	height int
	ready  bool // window size received

	program string // name the current program was loaded as
	g       *grammar.Grammar
	grid    *canvas.Grid
	deriv   *derivation.Derivation
	player  *audio.Player

	keys Keys

	paused bool
	score  int
	steps  int

	// Program chain: '>' rules push the current program, "return" pops.
	callers []string

	// Synthetic key bookkeeping, reset on every program (re)load.
	epoch     time.Time
	elapsed_b int
	elapsed_m int
	elapsed_t int

	// Failed-step suppression: a repeat of a key that just failed is
	// treated as a timeout.
	last_key rune
	last_ok  bool

	fired    *grammar.Rule // most recently fired rule, shown in the status line
	poll_seq int
	quitting bool

	// Set when a chained program fails to load; main reports it and exits 1.
	LoadErr error
}

// NewModel loads the initial program. The returned error is fatal
// (ProgramNotFound exits with code 1 before the UI starts).
func NewModel(program string, seed int64, threads int) (Model, error) {
	g, err := grammar.Load(program)
	if err != nil {
		return Model{}, err
	}

	grid := canvas.NewGrid(24, 80)
	m := Model{
		program: program,
		g:       g,
		grid:    grid,
		deriv:   derivation.New(grid, seed, threads),
		player:  audio.NewPlayer(),
		keys:    NewKeys(g),
		paused:  true,
		last_ok: true,
		epoch:   time.Now(),
	}
	m.player.LoadSamples(g.Dir(), samplePaths(g))
	return m, nil
}

func (m Model) Init() tea.Cmd {
	// Nothing to do until the window size arrives; the derivation starts
	// paused with the help line visible.
	return nil
}

// Messages

// MsgPoll is the idle-poll tick that synthesizes B/M/T keys. The sequence
// number invalidates stale chains after a pause/unpause flip so only one
// poll chain is ever live.
type MsgPoll struct{ Seq int }

func poll_after(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return MsgPoll{Seq: seq} })
}

// poll_interval is the idle-poll cadence: the T threshold when set,
// otherwise a fast poll standing in for the non-blocking read.
func (m Model) poll_interval() time.Duration {
	if m.g.StepT > 0 {
		return time.Duration(m.g.StepT) * time.Millisecond
	}
	return 10 * time.Millisecond
}

// samplePaths collects the sound-key dictionary entries of a grammar.
func samplePaths(g *grammar.Grammar) map[rune]string {
	paths := make(map[rune]string)
	for sym := range g.Sounds {
		if p, ok := g.SamplePath(sym); ok {
			paths[sym] = strings.TrimSpace(p)
		}
	}
	return paths
}

// switch_target resolves a program-switch argument to a loadable name.
// A single-character argument consults the program-path dictionary first;
// relative targets resolve against the current program's directory.
func (m Model) switch_target(arg string) string {
	rs := []rune(arg)
	if len(rs) == 1 {
		if mapped, ok := m.g.ProgramPath(rs[0]); ok {
			arg = strings.TrimSpace(mapped)
		}
	}
	if filepath.IsAbs(arg) {
		return arg
	}
	return filepath.Join(m.g.Dir(), arg)
}
