package derivation

import "github.com/vzahradnik/garden/internal/grammar"

// dryApply tests whether rule matches with its first anchor aligned so the
// pattern origin lands at (ro, co). It is a pure read over the canvas: no
// state is touched.
//
// Spaces are don't-care. '@' matches the LHS, '&' the context glyph, '~'
// an empty cell, anything else must match literally; those tests cover
// only the precondition region (left of the midline anchor for a
// horizontal rule, above it for a vertical one). The context assertions
// '!' (anything except the context) and '%' (the context or its
// replacement) hold wherever they appear, so rules without a midline
// anchor can still demand context.
func (d *Derivation) dryApply(ro, co int, rule *grammar.Rule) bool {
	r, c := ro, co
	horiz := rule.Horizontal()

	for _, p := range rule.RHS {
		if p == '\n' {
			r++
			c = co
			continue
		}
		cur := c
		c++
		if p == ' ' {
			continue
		}

		if p != '!' && p != '%' {
			if horiz {
				if cur-co >= rule.Cm {
					continue
				}
			} else if r-ro >= rule.Rm {
				continue
			}
		}

		wr := d.wrapRow(r)
		wc := d.wrapCol(cur)

		ctx := d.cv.Glyph(wr, wc)
		if ctx == ' ' {
			ctx = '~'
		}

		req := p
		if req == '@' {
			req = rule.LHS
		}
		if p == '&' {
			req = rule.Ctx
		}
		if req == ' ' {
			req = '~'
		}

		if (req != '!' && req != '%' && req != ctx) ||
			(req == '!' && ctx == rule.Ctx) ||
			(p == '%' && ctx != rule.CtxRep && ctx != rule.Ctx) {
			return false
		}
	}
	return true
}
