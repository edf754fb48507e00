/*
Package recovery implements minimal-cost error recovery: when an
earley.Engine reports a syntax error, search for the cheapest way to
skip a run of input tokens and resynchronize onto a state set that
again accepts input, so parsing can continue instead of aborting.

Grounded on original_source's error_recovery (and its
new_recovery_state/push_recovery_state/set_recovery_state helpers) in
yaep.c, adapted from that function's hand-rolled state-set-tail
bookkeeping to earley.Engine's Truncate/Tail/Restore primitives: rather
than saving and replaying raw tail arrays the way the C implementation
does to rewind the parse to an earlier set, a recovery attempt here
simply truncates the engine back to its origin and lets Engine.Step
rebuild the continuation, which is simpler in Go and has the same
observable effect since a set built from the same (core, terminal) pair
is always identical.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package recovery

import (
	"math"

	"github.com/npillmayer/earleycore/earley"
	"github.com/npillmayer/earleycore/grammar"
	"github.com/npillmayer/earleycore/stateset"
	"github.com/npillmayer/earleycore/symtab"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("earleycore.recovery")
}

// Tokens gives the searcher random access to the input stream beyond
// whatever the main parse loop has consumed so far, since resync may
// need to skip forward past the point of error before it finds a
// token the grammar accepts. At(i) returns ok=false once the input is
// exhausted at or before index i.
type Tokens interface {
	At(i int) (code int, attr interface{}, ok bool)
}

// Shift records one terminal shifted while rebuilding the engine's
// continuation past bestOrigin, in order; the caller splices these
// into its own per-transition token log since they replace whatever
// (if anything) occupied those positions before the error. Code ==
// symtab.ErrorCode marks the synthetic `error` shift, which carries no
// attr.
type Shift struct {
	Code int
	Attr interface{}
}

// Result describes a successful recovery: the caller resumes normal
// scanning at ResumeTokenIdx, using the already-rebuilt engine state.
// OriginIdx is the state-set index the engine was rewound to before
// Shifts were replayed; a caller keeping its own per-transition token
// log should truncate that log to OriginIdx entries and then append
// Shifts.
type Result struct {
	Recovered         bool
	Cost              int
	ErrorTokenIdx     int
	StartIgnoredIdx   int
	StartRecoveredIdx int
	ResumeTokenIdx    int
	OriginIdx         int
	Shifts            []Shift
}

// recoveryMatch subsequent tokens must shift cleanly for a resync
// point to count as a successful recovery.
const defaultRecoveryMatch = 3

// attempt is one (back frontier, head position) combination still to
// be tried; cost is the number of ignored tokens committed to reach
// it, counting both back-frontier moves and head advances.
type attempt struct {
	originIdx int
	headTok   int
	cost      int
}

// Recover searches for the minimum-cost resync starting from a syntax
// error detected while trying to shift errTokIdx in the engine's
// current (last) state set. On success the engine itself is left
// holding the winning recovery's rebuilt continuation, ready for the
// caller to resume normal scanning at the returned ResumeTokenIdx; on
// failure the engine is left truncated back to the error set.
func Recover(eng *earley.Engine, g *grammar.Grammar, tokens Tokens, errTokIdx int) Result {
	recoveryMatch := g.RecoveryMatch()
	if recoveryMatch <= 0 {
		recoveryMatch = defaultRecoveryMatch
	}
	errSetIdx := eng.Len() - 1

	best := math.MaxInt32
	var bestOrigin int
	var bestTail []*stateset.Set
	var bestShifts []Shift
	var bestStartIgnored, bestStartRecovered, bestResume int
	found := false

	origin, backCost, haveFrontier := findErrorStateSet(eng, errSetIdx, errSetIdx)
	if !haveFrontier || backCost >= best {
		eng.Truncate(errSetIdx + 1)
		return Result{Recovered: false, ErrorTokenIdx: errTokIdx}
	}

	stack := []attempt{{originIdx: origin, headTok: errTokIdx, cost: backCost}}
	visited := make(map[attempt]bool)

	for len(stack) > 0 {
		a := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if a.cost >= best || visited[a] {
			continue
		}
		visited[a] = true

		cost, startIgnored, startRecovered, resume, tail, shifts, ok := tryResync(eng, g, tokens, a, recoveryMatch, best)
		if ok && cost < best {
			best = cost
			bestOrigin = a.originIdx
			bestTail = tail
			bestShifts = shifts
			bestStartIgnored = startIgnored
			bestStartRecovered = startRecovered
			bestResume = resume
			found = true
		}

		if nextOrigin, nextCost, hasMore := findErrorStateSet(eng, a.originIdx-1, errSetIdx); hasMore && nextCost < best {
			stack = append(stack, attempt{originIdx: nextOrigin, headTok: a.headTok, cost: nextCost})
		}
		if _, ok := tokens.At(a.headTok); ok && a.cost+1 < best {
			stack = append(stack, attempt{originIdx: a.originIdx, headTok: a.headTok + 1, cost: a.cost + 1})
		}
	}

	eng.Truncate(errSetIdx + 1)
	if !found {
		return Result{Recovered: false, ErrorTokenIdx: errTokIdx}
	}
	eng.Truncate(bestOrigin + 1)
	eng.Restore(bestOrigin+1, bestTail)
	tracer().Debugf("recovery: resynced at cost %d, resuming at token %d", best, bestResume)
	return Result{
		Recovered:         true,
		Cost:              best,
		ErrorTokenIdx:     errTokIdx,
		StartIgnoredIdx:   bestStartIgnored,
		StartRecoveredIdx: bestStartRecovered,
		ResumeTokenIdx:    bestResume,
		OriginIdx:         bestOrigin,
		Shifts:            bestShifts,
	}
}

// findErrorStateSet walks backward from idx (inclusive) down to 0
// looking for the nearest state set whose core accepts the `error`
// pseudo-terminal (the injected `$S -> error $eof` rule guarantees set
// 0 always qualifies). cost is counted from errSetIdx, the original
// point of failure, so costs accumulated across successive back-
// frontier moves stay comparable to the skip-phase token costs.
func findErrorStateSet(eng *earley.Engine, idx, errSetIdx int) (origin int, cost int, ok bool) {
	for i := idx; i >= 0; i-- {
		if eng.CanShiftAt(i, symtab.ErrorCode) {
			return i, errSetIdx - i, true
		}
	}
	return 0, 0, false
}

// tryResync performs the shift-error, skip-to-match, shift-and-verify
// sequence for one (origin, head) attempt, truncating the engine to
// a.originIdx+1 first so the attempt starts from a clean base.
// Returns the rebuilt tail of state sets on success, leaving the
// engine holding that tail so later search branches see it truncated
// back to a.originIdx+1 on their own next attempt.
func tryResync(eng *earley.Engine, g *grammar.Grammar, tokens Tokens, a attempt, recoveryMatch, best int) (cost, startIgnored, startRecovered, resume int, tail []*stateset.Set, shifts []Shift, ok bool) {
	eng.Truncate(a.originIdx + 1)
	if _, err := eng.Step(symtab.ErrorCode, -1); err != nil {
		return 0, 0, 0, 0, nil, nil, false
	}
	shifts = append(shifts, Shift{Code: symtab.ErrorCode})

	skipped := a.headTok
	total := a.cost
	for {
		code, _, have := tokens.At(skipped)
		if !have {
			return 0, 0, 0, 0, nil, nil, false
		}
		if eng.CanShift(code) {
			break
		}
		skipped++
		total++
		if total >= best {
			return 0, 0, 0, 0, nil, nil, false
		}
	}
	startRecovered = skipped

	matched := 0
	tokIdx := skipped
	for matched < recoveryMatch {
		code, attr, have := tokens.At(tokIdx)
		if !have {
			break
		}
		la := -1
		if g.LookaheadLevel() > 0 {
			if nc, _, hnext := tokens.At(tokIdx + 1); hnext {
				la = nc
			}
		}
		if _, err := eng.Step(code, la); err != nil {
			return 0, 0, 0, 0, nil, nil, false
		}
		shifts = append(shifts, Shift{Code: code, Attr: attr})
		matched++
		tokIdx++
	}

	return total, a.headTok, startRecovered, tokIdx, eng.Tail(a.originIdx + 1), shifts, true
}
