package derivation

import "github.com/vzahradnik/garden/internal/grammar"

// apply commits rule with its apply-origin anchor aligned so the pattern
// origin lands at (ro, co). Cells in the precondition region are never
// written; for each cell in the apply region the replacement glyph is
// painted, memory is updated and the active set adjusted.
//
// Writes are gated by z-order: a cell is painted only when the rule's
// z-order is at least the cell's remembered one. The active-set update is
// not gated, matching the single-owner-per-cell invariant.
func (d *Derivation) apply(ro, co int, rule *grammar.Rule) bool {
	r, c := ro, co

	for _, p := range rule.RHS {
		if p == '\n' {
			r++
			c = co
			continue
		}
		cur := c
		c++

		if rule.Cq > rule.Co && cur-co <= rule.Cm {
			continue
		}
		if rule.Cq <= rule.Co && r-ro <= rule.Rm {
			continue
		}

		rep := p
		if rep == '@' {
			rep = rule.Rep
		}
		if rep == '&' {
			rep = rule.CtxRep
		}
		is_nonterminal := d.g.NonTerminal(rep)
		if rep == ' ' {
			continue
		}

		wr := d.wrapRow(r)
		wc := d.wrapCol(cur)
		idx := wr*d.cols + wc

		if rep == '~' {
			rep = ' '
		}

		back := rule.Back
		if rule.Back > 7 {
			// transparent background; take background from memory
			back = d.memory[idx].back
		}

		cell := mem{glyph: rep, fore: rule.Fore, back: back, zord: rule.Zord}
		if rep == '$' {
			cell = d.memory[idx]
		}
		if cell.glyph == 0 {
			// memory empty
			cell = mem{glyph: ' ', fore: rule.Fore, back: back, zord: 'a'}
		}

		if rule.Zord >= d.memory[idx].zord {
			pair := d.cv.Pair(cell.fore, cell.back)
			d.cv.SetCell(wr, wc, cell.glyph, pair)

			saved := cell
			if is_nonterminal {
				// A non-terminal sits on top of the remembered terminal:
				// keep glyph, foreground and z-order, adopt the background.
				saved = d.memory[idx]
				saved.back = cell.back
			}
			d.memory[idx] = saved
		}

		loc := Pos{wr, wc}
		if is_nonterminal {
			d.x[loc] = rep
		} else {
			delete(d.x, loc)
		}
	}
	return true
}
