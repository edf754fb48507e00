/*
Package earley implements the scan/predict/complete engine: given a
grammar's dotted-rule pool and state-set machinery, it builds the
sequence of Earley state sets for an input token stream, consulting a
small per-(set, terminal, lookahead) goto-cache to avoid rebuilding
identical transitions.

Grounded directly on lr/earley/earley.go's Parser (states slice, the
scan/predict/complete inner loop, the outer per-token loop reading from
a Tokenizer), generalized to operate over interned stateset.Core/Set
instead of a flat iteratable.Set, and to maintain a goto-cache.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package earley

import (
	"fmt"

	"github.com/npillmayer/earleycore/grammar"
	"github.com/npillmayer/earleycore/rules"
	"github.com/npillmayer/earleycore/stateset"
	"github.com/npillmayer/earleycore/symtab"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("earleycore.earley")
}

// gotoCacheCap bounds entries kept per (set, terminal, lookahead) key.
const gotoCacheCap = 3

// Engine builds Earley state sets for one parse run over a fixed
// grammar. Not safe for concurrent use; create one Engine per run.
type Engine struct {
	g     *grammar.Grammar
	sets  *stateset.Table
	states []*stateset.Set

	cache map[cacheKey][]cacheEntry
}

type cacheKey struct {
	set   stateset.ID
	term  int // terminal code
	la    int // lookahead terminal code, or -1 if unused
}

type cacheEntry struct {
	origins []originCheck // one per started item with matched length > 1, to verify before reuse
	result  *stateset.Set
}

type originCheck struct {
	originIdx int // absolute index into Engine.states at cache-record time
	originID  stateset.ID
}

// NewEngine creates an engine for an already-Read grammar.
func NewEngine(g *grammar.Grammar) *Engine {
	return &Engine{
		g:     g,
		sets:  stateset.NewTable(),
		cache: make(map[cacheKey][]cacheEntry),
	}
}

// ErrSyntaxError is returned by Step when no transition exists for the
// given terminal in the current state set.
type ErrSyntaxError struct {
	AtSet int
	Code  int
}

func (e *ErrSyntaxError) Error() string {
	return fmt.Sprintf("syntax error: unexpected terminal code %d at set %d", e.Code, e.AtSet)
}

// InitialSet builds state set 0 from every rule with LHS=axiom.
func (eng *Engine) InitialSet() *stateset.Set {
	eng.sets.Cores().BeginNewSet(-1)
	for _, r := range eng.g.Rules.RulesFor(eng.g.Symbols.Axiom) {
		dr := eng.g.Dotted.Intern(r, 0, 0)
		eng.sets.Cores().AddStarted(dr.ID, 0)
	}
	s0 := eng.sets.Commit(eng.g.Rules, eng.g.Dotted, eng.g.LookaheadLevel())
	eng.states = []*stateset.Set{s0}
	return s0
}

// States returns every state set built so far, index 0 is InitialSet().
func (eng *Engine) States() []*stateset.Set {
	return eng.states
}

// Len returns the number of committed state sets (one more than the
// number of tokens shifted so far).
func (eng *Engine) Len() int {
	return len(eng.states)
}

// CanShift reports whether the current (last) state set has a
// prediction for the given terminal code, without committing a step.
func (eng *Engine) CanShift(code int) bool {
	sym, ok := eng.g.Symbols.FindByCode(code)
	if !ok {
		return false
	}
	last := eng.states[len(eng.states)-1]
	return len(last.Core.Predictions(eng.g.Dotted, sym)) > 0
}

// CanShiftAt is CanShift evaluated against an arbitrary already-built
// state set rather than the current last one; used by error recovery's
// back-frontier search.
func (eng *Engine) CanShiftAt(idx int, code int) bool {
	sym, ok := eng.g.Symbols.FindByCode(code)
	if !ok {
		return false
	}
	return len(eng.states[idx].Core.Predictions(eng.g.Dotted, sym)) > 0
}

// Truncate discards every committed state set from index n onward,
// rewinding the engine so Step resumes building from state set n-1.
// Used by error recovery to abandon a failed recovery attempt and try
// another back-frontier or head position.
func (eng *Engine) Truncate(n int) {
	eng.states = eng.states[:n]
}

// Tail returns a copy of every state set from index n onward, so a
// caller can Truncate(n) to explore an alternative and later restore
// this tail with Restore.
func (eng *Engine) Tail(n int) []*stateset.Set {
	return append([]*stateset.Set(nil), eng.states[n:]...)
}

// Restore appends a previously saved Tail back onto the engine at
// index n (eng must already be Truncate(n)-ed, or n == eng.Len()).
func (eng *Engine) Restore(n int, tail []*stateset.Set) {
	eng.states = append(eng.states[:n], tail...)
}

// Step consumes one terminal (with an optional lookahead terminal code,
// used only when the grammar's lookahead level > 0) from the current
// (last) state set, appending the resulting state set and returning it.
func (eng *Engine) Step(tokenCode int, lookaheadCode int) (*stateset.Set, error) {
	i := len(eng.states) - 1
	S := eng.states[i]

	la := -1
	if eng.g.LookaheadLevel() > 0 {
		la = lookaheadCode
	}
	key := cacheKey{set: S.ID, term: tokenCode, la: la}
	if entries, ok := eng.cache[key]; ok {
		for _, e := range entries {
			if eng.verifyOrigins(e.origins) {
				eng.states = append(eng.states, e.result)
				return e.result, nil
			}
		}
	}

	termSym, ok := eng.g.Symbols.FindByCode(tokenCode)
	if !ok {
		return nil, &ErrSyntaxError{AtSet: i, Code: tokenCode}
	}
	predIdx := S.Core.Predictions(eng.g.Dotted, termSym)
	if len(predIdx) == 0 {
		return nil, &ErrSyntaxError{AtSet: i, Code: tokenCode}
	}

	eng.sets.Cores().BeginNewSet(tokenCode)
	dedupe := make(map[dedupeKey]bool)
	var origins []originCheck

	addShift := func(itemIdx int) {
		id, _ := S.Core.ItemAt(itemIdx)
		d := eng.g.Dotted.Get(id)
		nd := eng.g.Dotted.Intern(d.Rule, d.Dot+1, d.Context)
		if la >= 0 {
			if !eng.inLookahead(nd, la) && !eng.inLookahead(nd, symtab.ErrorCode) {
				return
			}
		}
		m := S.MatchedLengthOf(itemIdx) + 1
		dk := dedupeKey{dr: nd.ID, m: m}
		if dedupe[dk] {
			return
		}
		dedupe[dk] = true
		eng.sets.Cores().AddStarted(nd.ID, m)
		if m > 1 {
			origin := i + 1 - m
			origins = append(origins, originCheck{originIdx: origin, originID: eng.states[origin].ID})
		}
		if nd.EmptyTail {
			eng.chainEmptyTailCompletion(nd, i+1-m, i)
		}
	}

	for _, idx := range predIdx {
		addShift(idx)
	}

	newSet := eng.sets.Commit(eng.g.Rules, eng.g.Dotted, eng.g.LookaheadLevel())
	eng.states = append(eng.states, newSet)

	entries := eng.cache[key]
	if len(entries) >= gotoCacheCap {
		entries = entries[1:]
	}
	entries = append(entries, cacheEntry{origins: origins, result: newSet})
	eng.cache[key] = entries

	tracer().Debugf("earley: step term=%d la=%d -> set %d (%d items)", tokenCode, la, newSet.ID, newSet.Core.NumItems())
	return newSet, nil
}

type dedupeKey struct {
	dr rules.DottedRuleID
	m  int
}

func (eng *Engine) inLookahead(d *rules.DottedRule, code int) bool {
	sym, ok := eng.g.Symbols.FindByCode(code)
	if !ok {
		return false
	}
	return eng.g.Terms.Get(d.Lookahead).Test(sym.TermID)
}

// chainEmptyTailCompletion performs the "empty-tail shift-and-complete"
// step: a freshly added started dotted rule whose tail is nullable
// immediately completes, so its LHS's predecessors in the origin set
// must also be shifted.
func (eng *Engine) chainEmptyTailCompletion(nd *rules.DottedRule, origin, currentSetIdx int) {
	originSet := eng.states[origin]
	preds := originSet.Core.Predictions(eng.g.Dotted, nd.Rule.LHS)
	for _, predIdx := range preds {
		id, _ := originSet.Core.ItemAt(predIdx)
		pd := eng.g.Dotted.Get(id)
		shifted := eng.g.Dotted.Intern(pd.Rule, pd.Dot+1, pd.Context)
		m := originSet.MatchedLengthOf(predIdx) + (currentSetIdx + 1 - origin)
		eng.sets.Cores().AddStarted(shifted.ID, m)
		if shifted.EmptyTail {
			eng.chainEmptyTailCompletion(shifted, currentSetIdx+1-m, currentSetIdx)
		}
	}
}

// verifyOrigins implements the goto-cache soundness check: a cached
// transition is reused only if every started item with matched length
// > 1 still has the same origin state set (by identity) as when the
// cache entry was recorded.
func (eng *Engine) verifyOrigins(origins []originCheck) bool {
	for _, oc := range origins {
		if oc.originIdx >= len(eng.states) || eng.states[oc.originIdx].ID != oc.originID {
			return false
		}
	}
	return true
}

// Accept reports whether the final state set contains a completed
// $S → ... $eof • item.
func (eng *Engine) Accept() bool {
	last := eng.states[len(eng.states)-1]
	n := last.Core.NumItems()
	for i := 0; i < n; i++ {
		id, started := last.Core.ItemAt(i)
		if !started {
			continue
		}
		d := eng.g.Dotted.Get(id)
		if d.AtEnd() && d.Rule.LHS.ID == eng.g.Symbols.Axiom.ID {
			return true
		}
	}
	return false
}
