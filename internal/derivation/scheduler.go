package derivation

import (
	"sort"
	"sync"

	"github.com/vzahradnik/garden/internal/grammar"
)

// candidate is one applicable (position, rule) pair found by the matcher.
// Gather emits candidates in canonical (row, col, rule index) order so the
// weighted draw is independent of map iteration.
type candidate struct {
	pos  Pos
	rule *grammar.Rule
}

// area is the unwrapped bounding box a rule application would touch, used
// by multi-fire to keep simultaneous applications disjoint.
type area struct {
	minR, maxR int
	minC, maxC int
}

func (a area) overlaps(b area) bool {
	return !(a.maxR < b.minR || a.minR > b.maxR || a.maxC < b.minC || a.minC > b.maxC)
}

// StepResult reports what one derivation step did.
type StepResult struct {
	Applied bool
	// Rules fired, in application order. Single-fire steps carry one.
	Rules  []*grammar.Rule
	Reward int
}

// Sounds returns the sample keys of the fired sound rules, in application
// order.
func (s StepResult) Sounds() []rune {
	var out []rune
	for _, r := range s.Rules {
		if r.Action == grammar.ActionSound && r.Sound != 0 {
			out = append(out, r.Sound)
		}
	}
	return out
}

// Step performs one derivation step for an input key: gather every
// applicable (position, rule) pair among active non-terminals, draw one by
// weight, and apply it. With more than one matcher thread the gather runs
// in parallel and non-overlapping extra applications may fire in the same
// step. A step that applies nothing leaves all state untouched.
func (d *Derivation) Step(key rune) StepResult {
	cands := d.gather(key)
	if len(cands) == 0 {
		return StepResult{}
	}
	if d.threads > 1 {
		return d.fireSet(cands)
	}
	return d.fireOne(cands)
}

// gather finds all applicable rules for a key. Matching is read-only, so
// anchors are sharded across matcher goroutines; results keep the
// canonical (row, col, rule index) order regardless of shard layout.
func (d *Derivation) gather(key rune) []candidate {
	// Non-terminals alterable by rules in this key's group.
	active := make(map[rune]bool)
	for sym, rules := range d.g.R {
		for _, rule := range rules {
			if rule.Key == key || rule.Key == '?' {
				active[sym] = true
				break
			}
		}
	}

	anchors := make([]Pos, 0, len(d.x))
	for pos, sym := range d.x {
		if active[sym] {
			anchors = append(anchors, pos)
		}
	}
	if len(anchors) == 0 {
		return nil
	}
	sort.Slice(anchors, func(i, j int) bool {
		if anchors[i].R != anchors[j].R {
			return anchors[i].R < anchors[j].R
		}
		return anchors[i].C < anchors[j].C
	})

	match := func(pos Pos) []candidate {
		var out []candidate
		for _, rule := range d.g.R[d.x[pos]] {
			if rule.Key != key && rule.Key != '?' {
				continue
			}
			if d.dryApply(pos.R-rule.Ro, pos.C-rule.Co, rule) {
				out = append(out, candidate{pos: pos, rule: rule})
			}
		}
		return out
	}

	per_anchor := make([][]candidate, len(anchors))
	if d.threads > 1 && len(anchors) > 1 {
		workers := d.threads
		if workers > len(anchors) {
			workers = len(anchors)
		}
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(shard int) {
				defer wg.Done()
				for i := shard; i < len(anchors); i += workers {
					per_anchor[i] = match(anchors[i])
				}
			}(w)
		}
		wg.Wait()
	} else {
		for i, pos := range anchors {
			per_anchor[i] = match(pos)
		}
	}

	var cands []candidate
	for _, cs := range per_anchor {
		cands = append(cands, cs...)
	}
	return cands
}

// fireOne draws one candidate by weight and applies it at the apply-origin
// anchor. A commit failure is final: no other candidate is retried.
func (d *Derivation) fireOne(cands []candidate) StepResult {
	total := 0
	for _, c := range cands {
		total += c.rule.Weight
	}
	u := d.rng.Float64() * float64(total)

	cum := 0.0
	for _, c := range cands {
		cum += float64(c.rule.Weight)
		if cum >= u {
			return d.commit(c)
		}
	}
	return StepResult{}
}

// fireSet repeatedly draws candidates by weight without replacement and
// accepts each whose screen area is disjoint from everything accepted so
// far, then applies the accepted set sequentially in draw order.
func (d *Derivation) fireSet(cands []candidate) StepResult {
	remaining := make([]candidate, len(cands))
	copy(remaining, cands)

	var accepted []candidate
	var areas []area
	for len(remaining) > 0 {
		total := 0
		for _, c := range remaining {
			total += c.rule.Weight
		}
		u := d.rng.Float64() * float64(total)

		pick := len(remaining) - 1
		cum := 0.0
		for i, c := range remaining {
			cum += float64(c.rule.Weight)
			if cum >= u {
				pick = i
				break
			}
		}
		c := remaining[pick]
		remaining = append(remaining[:pick], remaining[pick+1:]...)

		a := d.ruleArea(c)
		clash := false
		for _, other := range areas {
			if a.overlaps(other) {
				clash = true
				break
			}
		}
		if !clash {
			accepted = append(accepted, c)
			areas = append(areas, a)
		}
	}

	var res StepResult
	for _, c := range accepted {
		one := d.commit(c)
		if !one.Applied {
			continue
		}
		res.Applied = true
		res.Rules = append(res.Rules, one.Rules...)
		res.Reward += one.Reward
	}
	return res
}

// commit applies one candidate and accounts for its reward.
func (d *Derivation) commit(c candidate) StepResult {
	if !d.apply(c.pos.R-c.rule.Rq, c.pos.C-c.rule.Cq, c.rule) {
		return StepResult{}
	}
	return StepResult{
		Applied: true,
		Rules:   []*grammar.Rule{c.rule},
		Reward:  c.rule.Reward,
	}
}

// ruleArea computes the unwrapped bounding box of the cells a candidate's
// application would walk. Boxes are compared without wrapping, so two
// applications that meet only across the canvas edge are not detected as
// overlapping.
func (d *Derivation) ruleArea(c candidate) area {
	ro := c.pos.R - c.rule.Rq
	co := c.pos.C - c.rule.Cq
	a := area{minR: ro, maxR: ro, minC: co, maxC: co}

	r, col := ro, co
	for _, p := range c.rule.RHS {
		if p == '\n' {
			r++
			col = co
			continue
		}
		cur := col
		col++
		if p == ' ' {
			continue
		}
		if r < a.minR {
			a.minR = r
		}
		if r > a.maxR {
			a.maxR = r
		}
		if cur < a.minC {
			a.minC = cur
		}
		if cur > a.maxC {
			a.maxC = cur
		}
	}
	return a
}
