package grammar

import (
	"github.com/npillmayer/earleycore/rules"
	"github.com/npillmayer/earleycore/symtab"
	"github.com/npillmayer/earleycore/termset"
)

// Analysis holds the fixed-point results of grammar analysis: nullable,
// derives-terminal-string, accessible and loop flags per symbol, plus
// FIRST/FOLLOW sets. Mirrors the fixed-point saturation style gorgo's
// lr.Analysis performs for LR tables but computes Earley-specific flags
// (loop, derives-string) instead of CFSM states.
type Analysis struct {
	empty      map[symtab.ID]bool
	derives    map[symtab.ID]bool
	accessible map[symtab.ID]bool
	loop       map[symtab.ID]bool

	first  map[symtab.ID][]int // bit indices (TermID) per symbol
	follow map[symtab.ID][]int

	firstIDs  map[symtab.ID]termset.ID
	followIDs map[symtab.ID]termset.ID
}

// Empty reports whether s can derive the empty string.
func (a *Analysis) Empty(s *symtab.Symbol) bool { return a.empty[s.ID] }

// DerivesString reports whether s can derive some terminal string.
func (a *Analysis) DerivesString(s *symtab.Symbol) bool { return a.derives[s.ID] }

// Accessible reports whether s is reachable from the axiom.
func (a *Analysis) Accessible(s *symtab.Symbol) bool { return a.accessible[s.ID] }

// Loop reports whether s can derive only itself.
func (a *Analysis) Loop(s *symtab.Symbol) bool { return a.loop[s.ID] }

// FirstID / FollowID return the interned terminal-set id for FIRST(s) /
// FOLLOW(s), valid only after Grammar.Read has completed.
func (a *Analysis) FirstID(s *symtab.Symbol) termset.ID  { return a.firstIDs[s.ID] }
func (a *Analysis) FollowID(s *symtab.Symbol) termset.ID { return a.followIDs[s.ID] }

// analyze computes empty/derives/accessible/loop and FIRST/FOLLOW for
// every symbol, then validates the grammar, reporting the first error
// found (always checking for loops; in strict mode also unaccessible and
// non-deriving nonterminals).
func analyze(symbols *symtab.Table, store *rules.Store, strict bool) (*Analysis, *codeError) {
	a := &Analysis{
		empty:      make(map[symtab.ID]bool),
		derives:    make(map[symtab.ID]bool),
		accessible: make(map[symtab.ID]bool),
		loop:       make(map[symtab.ID]bool),
		first:      make(map[symtab.ID][]int),
		follow:     make(map[symtab.ID][]int),
	}
	symbols.EachTerminal(func(s *symtab.Symbol) {
		a.derives[s.ID] = true
		a.first[s.ID] = []int{s.TermID}
	})

	computeEmpty(symbols, store, a)
	computeDerivesString(symbols, store, a)
	computeAccessible(symbols, store, a)
	computeLoop(symbols, store, a)
	computeFirstFollow(symbols, store, a)

	if err := checkLoops(symbols, a); err != nil {
		return a, err
	}
	if strict {
		if err := checkAccessibleAndDerives(symbols, a); err != nil {
			return a, err
		}
	} else if err := checkAxiomDerives(symbols, a); err != nil {
		// Non-strict mode only warns via the deriving check on the axiom,
		// deferring accessibility/derivation checks on other nonterminals.
		return a, err
	}
	return a, nil
}

func computeEmpty(symbols *symtab.Table, store *rules.Store, a *Analysis) {
	changed := true
	for changed {
		changed = false
		store.Each(func(r *rules.Rule) {
			if a.empty[r.LHS.ID] {
				return
			}
			allEmpty := true
			for _, sym := range r.RHS {
				if sym.IsTerminal() || !a.empty[sym.ID] {
					allEmpty = false
					break
				}
			}
			if allEmpty {
				a.empty[r.LHS.ID] = true
				changed = true
			}
		})
	}
}

func computeDerivesString(symbols *symtab.Table, store *rules.Store, a *Analysis) {
	changed := true
	for changed {
		changed = false
		store.Each(func(r *rules.Rule) {
			if a.derives[r.LHS.ID] {
				return
			}
			all := true
			for _, sym := range r.RHS {
				if !a.derives[sym.ID] {
					all = false
					break
				}
			}
			if all {
				a.derives[r.LHS.ID] = true
				changed = true
			}
		})
	}
}

func computeAccessible(symbols *symtab.Table, store *rules.Store, a *Analysis) {
	a.accessible[symbols.Axiom.ID] = true
	changed := true
	for changed {
		changed = false
		store.Each(func(r *rules.Rule) {
			if !a.accessible[r.LHS.ID] {
				return
			}
			for _, sym := range r.RHS {
				if !a.accessible[sym.ID] {
					a.accessible[sym.ID] = true
					changed = true
				}
			}
		})
	}
}

// computeLoop: A has loop_p iff some rule A → αBβ exists with B=A or B
// has loop_p, and all other symbols in αβ are nullable.
func computeLoop(symbols *symtab.Table, store *rules.Store, a *Analysis) {
	changed := true
	for changed {
		changed = false
		store.Each(func(r *rules.Rule) {
			if a.loop[r.LHS.ID] {
				return
			}
			for i, b := range r.RHS {
				if b.IsTerminal() {
					continue
				}
				if b != r.LHS && !a.loop[b.ID] {
					continue
				}
				if restNullable(r.RHS, i, a) {
					a.loop[r.LHS.ID] = true
					changed = true
					break
				}
			}
		})
	}
}

func restNullable(rhs []*symtab.Symbol, except int, a *Analysis) bool {
	for i, sym := range rhs {
		if i == except {
			continue
		}
		if sym.IsTerminal() || !a.empty[sym.ID] {
			return false
		}
	}
	return true
}

func computeFirstFollow(symbols *symtab.Table, store *rules.Store, a *Analysis) {
	symbols.EachNonterminal(func(s *symtab.Symbol) {
		a.first[s.ID] = nil
		a.follow[s.ID] = nil
	})
	changed := true
	for changed {
		changed = false
		store.Each(func(r *rules.Rule) {
			// FIRST(LHS) gets FIRST of the nullable-prefix of RHS.
			for _, sym := range r.RHS {
				before := len(a.first[r.LHS.ID])
				a.first[r.LHS.ID] = unionInts(a.first[r.LHS.ID], a.first[sym.ID])
				if len(a.first[r.LHS.ID]) != before {
					changed = true
				}
				if sym.IsTerminal() || !a.empty[sym.ID] {
					break
				}
			}
			// FOLLOW propagation: for each B in RHS, FOLLOW(B) gets
			// FIRST of the nullable-suffix after B, and if that suffix
			// is fully nullable, also FOLLOW(LHS).
			for i, b := range r.RHS {
				if b.IsTerminal() {
					continue
				}
				j := i + 1
				sawNonNullable := false
				for ; j < len(r.RHS); j++ {
					sym := r.RHS[j]
					before := len(a.follow[b.ID])
					a.follow[b.ID] = unionInts(a.follow[b.ID], a.first[sym.ID])
					if len(a.follow[b.ID]) != before {
						changed = true
					}
					if sym.IsTerminal() || !a.empty[sym.ID] {
						sawNonNullable = true
						break
					}
				}
				if !sawNonNullable {
					before := len(a.follow[b.ID])
					a.follow[b.ID] = unionInts(a.follow[b.ID], a.follow[r.LHS.ID])
					if len(a.follow[b.ID]) != before {
						changed = true
					}
				}
			}
		})
	}
}

func unionInts(a, b []int) []int {
	if len(b) == 0 {
		return a
	}
	seen := make(map[int]bool, len(a))
	for _, x := range a {
		seen[x] = true
	}
	out := a
	for _, x := range b {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}

func checkLoops(symbols *symtab.Table, a *Analysis) *codeError {
	var found *codeError
	symbols.EachNonterminal(func(s *symtab.Symbol) {
		if found != nil {
			return
		}
		if a.loop[s.ID] {
			found = newError(LoopNonTerm, "nonterminal %q derives only itself", s.Repr)
		}
	})
	return found
}

func checkAccessibleAndDerives(symbols *symtab.Table, a *Analysis) *codeError {
	var found *codeError
	symbols.EachNonterminal(func(s *symtab.Symbol) {
		if found != nil {
			return
		}
		if !a.accessible[s.ID] {
			found = newError(UnaccessibleNonTerm, "nonterminal %q is not accessible from the axiom", s.Repr)
			return
		}
		if !a.derives[s.ID] {
			found = newError(NonTermDerivation, "nonterminal %q does not derive any terminal string", s.Repr)
		}
	})
	return found
}

func checkAxiomDerives(symbols *symtab.Table, a *Analysis) *codeError {
	if !a.derives[symbols.Axiom.ID] {
		return newError(NonTermDerivation, "axiom %q does not derive any terminal string", symbols.Axiom.Repr)
	}
	return nil
}
