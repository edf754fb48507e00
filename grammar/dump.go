package grammar

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/npillmayer/earleycore/rules"
	"github.com/npillmayer/earleycore/symtab"
)

// EachTerminalByCode calls fn for every declared terminal in ascending
// order of external code, the deterministic order diagnostics and
// grammar dumps want instead of declaration order. Grounded on
// lr/tables.go's CFSM.states treeset (interning a set, then walking it
// in comparator order via Iterator()).
func (g *Grammar) EachTerminalByCode(fn func(*symtab.Symbol)) {
	set := treeset.NewWith(func(a, b interface{}) int {
		return utils.IntComparator(a.(*symtab.Symbol).Code, b.(*symtab.Symbol).Code)
	})
	g.Symbols.EachTerminal(func(s *symtab.Symbol) { set.Add(s) })
	it := set.Iterator()
	for it.Next() {
		fn(it.Value().(*symtab.Symbol))
	}
}

// EachRuleSorted calls fn for every rule in ascending (LHS representation,
// declaration serial) order, rather than raw declaration order, so a
// grammar dump groups every alternative for a nonterminal together.
// Grounded the same way as EachTerminalByCode.
func (g *Grammar) EachRuleSorted(fn func(*rules.Rule)) {
	set := treeset.NewWith(func(a, b interface{}) int {
		ra, rb := a.(*rules.Rule), b.(*rules.Rule)
		if c := utils.StringComparator(ra.LHS.Repr, rb.LHS.Repr); c != 0 {
			return c
		}
		return utils.IntComparator(ra.Serial, rb.Serial)
	})
	g.Rules.Each(func(r *rules.Rule) { set.Add(r) })
	it := set.Iterator()
	for it.Next() {
		fn(it.Value().(*rules.Rule))
	}
}
