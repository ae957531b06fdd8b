// Package grammar holds a parsed rewriting program: the non-terminal set,
// the rules keyed by their left-hand symbol, start specifications, the
// dictionary, grid alignment and timing.
//
// A symbol is a non-terminal iff it appears as the LHS of at least one rule;
// terminals and non-terminals share the same character space.
package grammar

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Action tags what firing a rule does beyond rewriting the canvas.
type Action int

const (
	// ActionRewrite is a plain rewrite with no side effect.
	ActionRewrite Action = iota
	// ActionSound plays the sample keyed by Rule.Sound.
	ActionSound
	// ActionSwitch replaces the current program with another one.
	ActionSwitch
)

// Start places one symbol on the canvas at derivation start.
// Uppercase anchors snap to the grid alignment, 'X' is uniform-random
// aligned, lowercase pins to an edge, 'c' centers, anything else is
// uniform-random unaligned.
type Start struct {
	V      rune // vertical placement: u l c L C X
	H      rune // horizontal placement: l r c R C X
	Symbol rune
}

// Rule is one rewriting rule, fully derived at load time.
type Rule struct {
	LHS    rune
	Header string // raw header line, kept for display and the switch argument
	RHS    string // pattern, '*' already replaced by the LHS

	// Anchor positions of the three '@' occurrences in RHS. The second pair
	// stays (-1,-1) when absent; the third falls back to the first so a
	// single-anchor rule applies in place.
	Ro, Co int
	Rm, Cm int
	Rq, Cq int

	Key    rune // activation key, '?' = any
	Rep    rune // replacement for '@'
	Ctx    rune // required context glyph, 0 = none
	CtxRep rune // replacement for context-marked cells
	Fore   int  // 0..7
	Back   int  // 0..8, 8 = transparent
	Zord   rune // z-order byte
	Reward int
	Weight int // >= 1

	Action Action
	Sound  rune // sample key, 0 = none
	Clear  bool // switch variant: clear canvas
	Pause  bool // switch variant: pause after switching
}

// Horizontal reports whether the apply phase proceeds rightward from the
// midline anchor rather than downward past it.
func (r *Rule) Horizontal() bool { return r.Cq > r.Co }

// Arg returns the whitespace-delimited argument from the header tail,
// used by program-switch rules (new program name, "quit" or "return").
func (r *Rule) Arg() string {
	rs := []rune(r.Header)
	if len(rs) <= 5 {
		return ""
	}
	fields := strings.Fields(string(rs[5:]))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Grammar is a complete parsed program. Built by Load, read-only afterwards.
type Grammar struct {
	V      map[rune]bool
	R      map[rune][]*Rule
	S      []Start
	Dict   map[rune]string
	Sounds map[rune]bool

	Help string

	// Grid alignment for symbol placement and wrapping (1,1 = unconstrained).
	GridW int
	GridH int

	// Timing thresholds in milliseconds for the synthetic B/M/T keys.
	StepB int
	StepM int
	StepT int

	// Set by a bare '^' line: clear the canvas when this program starts.
	ClearRequested bool

	// Resolved at load time, not part of the program text.
	Path string
}

// New returns an empty grammar with default grid and timing.
func New() *Grammar {
	return &Grammar{
		V:      make(map[rune]bool),
		R:      make(map[rune][]*Rule),
		Dict:   make(map[rune]string),
		Sounds: make(map[rune]bool),
		GridW:  1,
		GridH:  1,
		StepB:  500,
		StepM:  50,
		StepT:  0,
	}
}

// NonTerminal reports whether s is the LHS of at least one rule.
func (g *Grammar) NonTerminal(s rune) bool { return g.V[s] }

// Dir returns the directory the program was loaded from, used to resolve
// sample paths and relative program-switch targets.
func (g *Grammar) Dir() string { return filepath.Dir(g.Path) }

// Color resolves a header color character to 0..9: a digit stands for
// itself, otherwise the dictionary value's first character is consulted.
// Unknown keys fall back to def.
func (g *Grammar) Color(c rune, def int) int {
	val := -1
	if c >= '0' && c <= '9' {
		val = int(c - '0')
	} else if v, ok := g.Dict[c]; ok && v != "" {
		first := []rune(v)[0]
		if first >= '0' && first <= '9' {
			val = int(first - '0')
		}
	}
	if val >= 0 && val <= 9 {
		return val
	}
	return def
}

// ControlKey returns the user-facing key bound to the internal control key
// (one of 'x', 'q', ' '). Programs remap controls through dictionary
// entries; without a remap the control key is itself.
func (g *Grammar) ControlKey(control rune) rune {
	if v, ok := g.Dict[control]; ok && v != "" {
		return []rune(v)[0]
	}
	return control
}

// SamplePath returns the dictionary value for a sound key.
func (g *Grammar) SamplePath(sym rune) (string, bool) {
	v, ok := g.Dict[sym]
	return v, ok
}

// ProgramPath returns the dictionary value for a program reference key.
func (g *Grammar) ProgramPath(sym rune) (string, bool) {
	v, ok := g.Dict[sym]
	return v, ok
}

// addRule parses one header line plus the shared body into a rule.
func (g *Grammar) addRule(header, body string) {
	rs := []rune(header)

	lhs := 's'
	if len(rs) > 2 {
		lhs = rs[2]
	}
	if _, ok := g.R[lhs]; !ok {
		g.R[lhs] = nil
		g.V[lhs] = true
	}

	rule := &Rule{
		LHS:    lhs,
		Header: header,
		Action: ActionRewrite,
	}

	if len(rs) > 1 && rs[1] != '=' {
		c := rs[1]
		if strings.ContainsRune(">])|", c) {
			rule.Action = ActionSwitch
			// The marker char doubles as a program-path dictionary key.
			rule.Sound = c
			rule.Clear = c == ')' || c == '|'
			rule.Pause = c == ']' || c == '|'
		} else {
			rule.Action = ActionSound
			rule.Sound = c
			g.Sounds[c] = true
		}
	}

	rule.Ro, rule.Co = origin(body, 0)
	rule.Rm, rule.Cm = origin(body, 1)
	rule.Rq, rule.Cq = origin(body, 2)
	if rule.Rq < 0 {
		rule.Rq, rule.Cq = rule.Ro, rule.Co
	}

	rule.Key = '?'
	if len(rs) > 3 {
		rule.Key = rs[3]
	}
	rule.Rep = ' '
	if len(rs) > 4 {
		rule.Rep = rs[4]
	}

	rule.Fore = 7
	rule.Back = 8
	if len(rs) > 5 {
		rule.Fore = g.Color(rs[5], rule.Fore)
	}
	if len(rs) > 6 {
		rule.Back = g.Color(rs[6], rule.Back)
	}

	if len(rs) > 7 && rs[7] != '?' {
		rule.Ctx = rs[7]
	}
	rule.CtxRep = ' '
	if len(rs) > 8 {
		rule.CtxRep = rs[8]
	}
	if rule.CtxRep == '*' {
		rule.CtxRep = lhs
	}
	rule.Zord = 'a'
	if len(rs) > 9 {
		rule.Zord = rs[9]
	}

	rule.Weight = 1
	if len(rs) > 10 {
		fields := strings.Fields(string(rs[10:]))
		if len(fields) > 0 {
			rule.Reward, _ = strconv.Atoi(fields[0])
		}
		if len(fields) > 1 {
			if w, err := strconv.Atoi(fields[1]); err == nil {
				rule.Weight = w
			}
		}
		if rule.Weight < 1 {
			rule.Weight = 1
		}
	}

	// '*' in the body is shorthand for the LHS itself.
	rule.RHS = strings.ReplaceAll(body, "*", string(lhs))

	g.R[lhs] = append(g.R[lhs], rule)
}

// origin returns the row/col of the ord-th '@' in a pattern, or (-1,-1).
func origin(rhs string, ord int) (int, int) {
	r, c := 0, 0
	for _, p := range rhs {
		if p == '\n' {
			r++
			c = -1
		} else if p == '@' {
			if ord == 0 {
				return r, c
			}
			ord--
		}
		c++
	}
	return -1, -1
}
