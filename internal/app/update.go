package app

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vzahradnik/garden/internal/grammar"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.ready = true
			m.restart_scene()
		}
		// After the first size the new geometry is picked up on restart.
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		r := keyRune(msg)
		if r == 0 || !m.ready {
			return m, nil
		}
		// A repeat of a key whose step just failed is treated as a
		// timeout; synthetic ticks keep running.
		if !m.last_ok && r == m.last_key {
			return m, nil
		}
		return m.dispatch(r, false)

	case MsgPoll:
		if msg.Seq != m.poll_seq || m.paused || !m.ready || m.quitting {
			return m, nil
		}
		wch := m.synthetic_key()
		if wch == 0 {
			return m, poll_after(m.poll_interval(), m.poll_seq)
		}
		return m.dispatch(wch, true)
	}

	return m, nil
}

// synthetic_key turns elapsed time into the next synthetic key: 'T' is the
// fastest tick, 'M' overrides it, 'B' overrides both.
func (m *Model) synthetic_key() rune {
	dur := int(time.Since(m.epoch).Milliseconds())

	el_t := m.elapsed_t + 1
	if m.g.StepT > 0 {
		el_t = dur / m.g.StepT
	}
	el_m := m.elapsed_m
	if m.g.StepM > 0 {
		el_m = dur / m.g.StepM
	}
	el_b := m.elapsed_b
	if m.g.StepB > 0 {
		el_b = dur / m.g.StepB
	}

	var wch rune
	if el_t > m.elapsed_t {
		wch = 'T'
		m.elapsed_t = el_t
	}
	if el_m > m.elapsed_m {
		wch = 'M'
		m.elapsed_m = el_m
	}
	if el_b > m.elapsed_b {
		wch = 'B'
		m.elapsed_b = el_b
	}
	return wch
}

// dispatch routes one key: control handling first, then a derivation step.
func (m Model) dispatch(r rune, synthetic bool) (tea.Model, tea.Cmd) {
	switch {
	case r == m.keys.Restart:
		m.paused = true
		m.restart_scene()
		return m, nil

	case r == m.keys.Pause:
		m.paused = !m.paused
		if !m.paused {
			m.poll_seq++
			return m, poll_after(m.poll_interval(), m.poll_seq)
		}
		return m, nil

	case r == m.keys.Quit && !m.last_ok && m.paused:
		m.quitting = true
		return m, tea.Quit
	}

	return m.step(r, synthetic)
}

// restart_scene re-reads the canvas geometry and re-instantiates the
// start symbols from scratch.
func (m *Model) restart_scene() {
	m.grid.Resize(m.height, m.width)
	m.deriv.Reset(m.g, m.height, m.width)
	m.deriv.Init(true)
	m.deriv.Start()
}

// step runs the scheduler for one key, fans out sounds and handles
// program-switch rules.
func (m Model) step(r rune, synthetic bool) (tea.Model, tea.Cmd) {
	res := m.deriv.Step(r)
	m.last_key = r
	m.last_ok = res.Applied

	if res.Applied {
		m.steps++
		m.score += res.Reward
		m.fired = res.Rules[len(res.Rules)-1]
		for _, sym := range res.Sounds() {
			m.player.Play(sym)
		}
		for _, rule := range res.Rules {
			if rule.Action == grammar.ActionSwitch {
				return m.switch_program(rule)
			}
		}
	}

	if synthetic && !m.paused {
		d := m.poll_interval()
		if !res.Applied && r == 'T' {
			// Nothing applicable on the fast tick; yield the CPU.
			d = 50 * time.Millisecond
		}
		return m, poll_after(d, m.poll_seq)
	}
	return m, nil
}

// switch_program handles a fired program-switch rule: "quit" exits,
// "return" pops the caller stack, anything else pushes the current
// program and chains to the target. A rule without a header argument
// falls back to the program-path dictionary entry of its marker.
func (m Model) switch_program(rule *grammar.Rule) (tea.Model, tea.Cmd) {
	arg := rule.Arg()
	if arg == "" {
		if mapped, ok := m.g.ProgramPath(rule.Sound); ok {
			arg = strings.TrimSpace(mapped)
		}
	}
	switch arg {
	case "quit":
		m.quitting = true
		return m, tea.Quit
	case "return":
		if len(m.callers) == 0 {
			m.quitting = true
			return m, tea.Quit
		}
		name := m.callers[len(m.callers)-1]
		m.callers = m.callers[:len(m.callers)-1]
		return m.load_program(name, rule)
	default:
		target := m.switch_target(arg)
		m.callers = append(m.callers, m.program)
		return m.load_program(target, rule)
	}
}

// load_program replaces the current grammar and re-seeds the scene.
// Score and steps persist across the chain; timing restarts.
func (m Model) load_program(name string, rule *grammar.Rule) (tea.Model, tea.Cmd) {
	g, err := grammar.Load(name)
	if err != nil {
		m.LoadErr = err
		m.quitting = true
		return m, tea.Quit
	}

	m.g = g
	m.program = name
	m.keys = NewKeys(g)
	m.player.LoadSamples(g.Dir(), samplePaths(g))

	m.fired = nil
	m.last_key = 0
	m.last_ok = true
	m.elapsed_b = 0
	m.elapsed_m = 0
	m.elapsed_t = 0
	m.epoch = time.Now()

	clear := rule.Clear || g.ClearRequested
	m.deriv.Reset(g, m.height, m.width)
	m.deriv.Init(clear)
	m.deriv.Start()

	m.paused = rule.Pause
	if !m.paused {
		m.poll_seq++
		return m, poll_after(m.poll_interval(), m.poll_seq)
	}
	return m, nil
}
