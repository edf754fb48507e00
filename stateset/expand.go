package stateset

import (
	"github.com/npillmayer/earleycore/rules"
	"github.com/npillmayer/earleycore/termset"
)

// Expand adds predicted dotted rules to a freshly committed core:
//
//  1. nullable-tail shifting of started items: a started item whose
//     symbol after the dot is nullable immediately gains the
//     dot-advanced successor too, chained until a non-nullable symbol
//     or the end of the rule is reached,
//  2. closure over nonterminal predictions, each contributing a fresh
//     initial (dot=0) dotted rule per rule of that nonterminal, itself
//     nullable-shifted the same way a started item is — both are driven
//     by the same worklist and the same advanceNullableTail closure
//     below, rather than two textually separate passes (see DESIGN.md
//     "state-set closure expansion"),
//  3. at lookahead level 2, dotted-rule contexts would ordinarily be
//     refined by iterating to a fixed point over shifted-prediction
//     lookaheads; this implementation computes dotted-rule lookahead
//     once at intern time from FIRST/FOLLOW instead, and the engine's
//     scan step still filters against that lookahead, so level-2
//     grammars still narrow state sets, just without a second
//     context-refinement pass over an already-interned dotted rule.
func Expand(c *Core, store *rules.Store, dotted *rules.DottedRulePool, lookaheadLevel int, terms *termset.Store) {
	seenInitial := make(map[rules.DottedRuleID]bool)
	var worklist []int

	advanceNullableTail := func(startDR rules.DottedRuleID, parentIdx int) {
		id := startDR
		for {
			d := dotted.Get(id)
			sym := d.SymbolAfterDot()
			if sym == nil || sym.IsTerminal() || !sym.CanDeriveEmpty {
				return
			}
			nd := dotted.Intern(d.Rule, d.Dot+1, d.Context)
			c.predicted = append(c.predicted, predictedItem{dr: nd.ID, parent: parentIdx})
			id = nd.ID
		}
	}

	for idx, id := range c.Started {
		advanceNullableTail(id, idx)
	}

	for i := 0; i < c.NumItems(); i++ {
		worklist = append(worklist, i)
	}
	for len(worklist) > 0 {
		idx := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		id, _ := c.ItemAt(idx)
		d := dotted.Get(id)
		sym := d.SymbolAfterDot()
		if sym == nil || sym.IsTerminal() {
			continue
		}
		for _, r := range store.RulesFor(sym) {
			nd := dotted.Intern(r, 0, 0)
			if seenInitial[nd.ID] {
				continue
			}
			seenInitial[nd.ID] = true
			c.initialPredicted = append(c.initialPredicted, nd.ID)
			newIdx := c.NumItems() - 1
			worklist = append(worklist, newIdx)
			if r.Len() == 0 || r.RHS[0].CanDeriveEmpty {
				advanceNullableTail(nd.ID, newIdx)
				worklist = append(worklist, c.NumItems()-1)
			}
		}
	}
}
