package grammar

import (
	"strings"
	"testing"
)

func parse_program(t *testing.T, text string) *Grammar {
	t.Helper()
	g, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return g
}

func single_rule(t *testing.T, g *Grammar, lhs rune) *Rule {
	t.Helper()
	rules := g.R[lhs]
	if len(rules) != 1 {
		t.Fatalf("Expected 1 rule for %q, got %d", lhs, len(rules))
	}
	return rules[0]
}

func TestHeaderPositions(t *testing.T) {
	g := parse_program(t, "==sxA30BCm 5 2\n@\n")
	r := single_rule(t, g, 's')

	if r.LHS != 's' {
		t.Errorf("Expected LHS 's', got %q", r.LHS)
	}
	if r.Key != 'x' {
		t.Errorf("Expected key 'x', got %q", r.Key)
	}
	if r.Rep != 'A' {
		t.Errorf("Expected rep 'A', got %q", r.Rep)
	}
	if r.Fore != 3 {
		t.Errorf("Expected fore 3, got %d", r.Fore)
	}
	if r.Back != 0 {
		t.Errorf("Expected back 0, got %d", r.Back)
	}
	if r.Ctx != 'B' {
		t.Errorf("Expected ctx 'B', got %q", r.Ctx)
	}
	if r.CtxRep != 'C' {
		t.Errorf("Expected ctxrep 'C', got %q", r.CtxRep)
	}
	if r.Zord != 'm' {
		t.Errorf("Expected zord 'm', got %q", r.Zord)
	}
	if r.Reward != 5 {
		t.Errorf("Expected reward 5, got %d", r.Reward)
	}
	if r.Weight != 2 {
		t.Errorf("Expected weight 2, got %d", r.Weight)
	}
	if r.Action != ActionRewrite {
		t.Errorf("Expected plain rewrite action, got %v", r.Action)
	}
}

func TestHeaderDefaults(t *testing.T) {
	g := parse_program(t, "==s\n@\n")
	r := single_rule(t, g, 's')

	if r.Key != '?' {
		t.Errorf("Expected default key '?', got %q", r.Key)
	}
	if r.Rep != ' ' {
		t.Errorf("Expected default rep ' ', got %q", r.Rep)
	}
	if r.Fore != 7 || r.Back != 8 {
		t.Errorf("Expected default colors 7/8, got %d/%d", r.Fore, r.Back)
	}
	if r.Ctx != 0 {
		t.Errorf("Expected no ctx, got %q", r.Ctx)
	}
	if r.CtxRep != ' ' {
		t.Errorf("Expected default ctxrep ' ', got %q", r.CtxRep)
	}
	if r.Zord != 'a' {
		t.Errorf("Expected default zord 'a', got %q", r.Zord)
	}
	if r.Reward != 0 || r.Weight != 1 {
		t.Errorf("Expected reward 0 weight 1, got %d/%d", r.Reward, r.Weight)
	}
}

func TestCtxQuestionMarkMeansNone(t *testing.T) {
	g := parse_program(t, "==sxA78?\n@\n")
	r := single_rule(t, g, 's')
	if r.Ctx != 0 {
		t.Errorf("Expected '?' ctx to clear, got %q", r.Ctx)
	}
}

func TestCtxRepStarIsLHS(t *testing.T) {
	g := parse_program(t, "==sxA78B*\n@\n")
	r := single_rule(t, g, 's')
	if r.CtxRep != 's' {
		t.Errorf("Expected ctxrep '*' to resolve to LHS 's', got %q", r.CtxRep)
	}
}

func TestWeightClampedToOne(t *testing.T) {
	g := parse_program(t, "==sxA78? a 3 0\n@\n")
	r := single_rule(t, g, 's')
	if r.Reward != 3 {
		t.Errorf("Expected reward 3, got %d", r.Reward)
	}
	if r.Weight != 1 {
		t.Errorf("Expected weight clamped to 1, got %d", r.Weight)
	}
}

func TestLoadMarkers(t *testing.T) {
	cases := []struct {
		marker string
		clear  bool
		pause  bool
	}{
		{">", false, false},
		{")", true, false},
		{"]", false, true},
		{"|", true, true},
	}
	for _, tc := range cases {
		g := parse_program(t, "="+tc.marker+"sx  next.cfg\n@\n")
		r := single_rule(t, g, 's')
		if r.Action != ActionSwitch {
			t.Errorf("marker %q: expected switch action", tc.marker)
		}
		if r.Clear != tc.clear {
			t.Errorf("marker %q: expected clear=%v, got %v", tc.marker, tc.clear, r.Clear)
		}
		if r.Pause != tc.pause {
			t.Errorf("marker %q: expected pause=%v, got %v", tc.marker, tc.pause, r.Pause)
		}
		if r.Arg() != "next.cfg" {
			t.Errorf("marker %q: expected arg 'next.cfg', got %q", tc.marker, r.Arg())
		}
	}
}

func TestSoundMarker(t *testing.T) {
	g := parse_program(t, "=bsxA\n@\n")
	r := single_rule(t, g, 's')
	if r.Action != ActionSound {
		t.Errorf("Expected sound action")
	}
	if r.Sound != 'b' {
		t.Errorf("Expected sound key 'b', got %q", r.Sound)
	}
	if !g.Sounds['b'] {
		t.Errorf("Expected 'b' registered in sounds")
	}
}

func TestAnchors(t *testing.T) {
	g := parse_program(t, "==sx\n@x@y@\n")
	r := single_rule(t, g, 's')

	if r.Ro != 0 || r.Co != 0 {
		t.Errorf("Expected first anchor (0,0), got (%d,%d)", r.Ro, r.Co)
	}
	if r.Rm != 0 || r.Cm != 2 {
		t.Errorf("Expected mid anchor (0,2), got (%d,%d)", r.Rm, r.Cm)
	}
	if r.Rq != 0 || r.Cq != 4 {
		t.Errorf("Expected apply anchor (0,4), got (%d,%d)", r.Rq, r.Cq)
	}
	if !r.Horizontal() {
		t.Errorf("Expected horizontal rule")
	}
}

func TestAnchorFallback(t *testing.T) {
	g := parse_program(t, "==sx\nn\n@\n")
	r := single_rule(t, g, 's')

	if r.Ro != 1 || r.Co != 0 {
		t.Errorf("Expected first anchor (1,0), got (%d,%d)", r.Ro, r.Co)
	}
	if r.Rm != -1 || r.Cm != -1 {
		t.Errorf("Expected missing mid anchor, got (%d,%d)", r.Rm, r.Cm)
	}
	if r.Rq != 1 || r.Cq != 0 {
		t.Errorf("Expected apply anchor falling back to (1,0), got (%d,%d)", r.Rq, r.Cq)
	}
	if r.Horizontal() {
		t.Errorf("Expected vertical rule")
	}
}

func TestStarReplacedByLHS(t *testing.T) {
	g := parse_program(t, "==sx\n@*\n")
	r := single_rule(t, g, 's')
	if r.RHS != "@s" {
		t.Errorf("Expected '*' replaced by LHS, got %q", r.RHS)
	}
}

func TestColorResolution(t *testing.T) {
	g := parse_program(t, "#=a3\n#=bzz\n==sxAab\n@\n")

	if c := g.Color('5', 7); c != 5 {
		t.Errorf("Expected digit 5, got %d", c)
	}
	if c := g.Color('a', 7); c != 3 {
		t.Errorf("Expected dictionary color 3, got %d", c)
	}
	if c := g.Color('b', 7); c != 7 {
		t.Errorf("Expected non-digit dictionary value to fall back, got %d", c)
	}
	if c := g.Color('z', 4); c != 4 {
		t.Errorf("Expected unknown key fallback 4, got %d", c)
	}

	r := single_rule(t, g, 's')
	if r.Fore != 3 {
		t.Errorf("Expected rule fore from dictionary, got %d", r.Fore)
	}
	if r.Back != 8 {
		t.Errorf("Expected rule back fallback 8, got %d", r.Back)
	}
}

func TestControlRemap(t *testing.T) {
	g := parse_program(t, "#=xr\n==s\n@\n")
	if k := g.ControlKey('x'); k != 'r' {
		t.Errorf("Expected restart remapped to 'r', got %q", k)
	}
	if k := g.ControlKey('q'); k != 'q' {
		t.Errorf("Expected unmapped control to stay 'q', got %q", k)
	}
}

func TestNonTerminals(t *testing.T) {
	g := parse_program(t, "==sx\n@\n==tx\n@\n")
	if !g.NonTerminal('s') || !g.NonTerminal('t') {
		t.Errorf("Expected s and t as non-terminals")
	}
	if g.NonTerminal('A') {
		t.Errorf("Expected 'A' to be a terminal")
	}
}
