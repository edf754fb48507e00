/*
Package parserun ties the grammar, earley engine, error recovery and
forest builder together into the single public parse lifecycle a
caller drives: configure a Run's callbacks, call Parse, then read Root
and Ambiguous.

Grounded on original_source's yaep_parse entry point (the
read-token/syntax-error/parse-alloc/parse-free callback quartet, the
main scan loop calling error_recovery on failure, and building the
translation once input is exhausted) and on lr/earley/earley.go's
Parser for the shape of a per-run engine wrapping one grammar.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package parserun

import (
	"context"
	"fmt"

	"github.com/npillmayer/earleycore/earley"
	"github.com/npillmayer/earleycore/forest"
	"github.com/npillmayer/earleycore/grammar"
	"github.com/npillmayer/earleycore/recovery"
	"github.com/npillmayer/earleycore/symtab"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("earleycore.parserun")
}

// Run drives one parse over a fixed, already-Read grammar. Not safe
// for concurrent use; create one Run per parse.
type Run struct {
	g   *grammar.Grammar
	eng *earley.Engine

	// ReadToken pulls the next input terminal; code must be
	// symtab.EOFCode exactly once, as the final token. attr is
	// opaque caller data threaded through to the forest's terminal
	// nodes and to SyntaxError.
	ReadToken func(r *Run) (code int, attr interface{})

	// SyntaxError is invoked once a recovery attempt (successful or
	// not) has been decided. If recovery failed, startIgnoredIdx ==
	// startRecoveredIdx == errTokIdx and Parse returns an error.
	SyntaxError func(r *Run, errTokIdx int, errAttr interface{},
		startIgnoredIdx int, startIgnoredAttr interface{},
		startRecoveredIdx int, startRecoveredAttr interface{})

	// ParseAlloc/ParseFree are retained for API fidelity with the
	// pluggable-allocator convention this module is grounded on;
	// forest nodes are plain Go composite literals collected by the
	// garbage collector, so ParseAlloc is never called by this package.
	// ParseFree is called only by Dispose, once per released node and
	// once per terminal's attr.
	ParseAlloc func(n int) interface{}
	ParseFree  func(interface{})

	UserData interface{}

	buf       []tokenEntry
	eofSeen   bool
	cursor    int // next real-input buffer index to read; diverges from eng.Len()-1 once a recovery skips tokens
	shiftLog  []forest.TokenRecord
	root      *forest.Node
	ambiguous bool
}

type tokenEntry struct {
	code int
	attr interface{}
}

// New creates a Run over an already-Read grammar.
func New(g *grammar.Grammar) *Run {
	return &Run{
		g:   g,
		eng: earley.NewEngine(g),
	}
}

// Root returns the forest rooted at the axiom's translation, or nil if
// Parse has not yet succeeded.
func (r *Run) Root() *forest.Node {
	return r.root
}

// Ambiguous reports whether any nonterminal span in the parse resolved
// to more than one derivation.
func (r *Run) Ambiguous() bool {
	return r.ambiguous
}

// tokenAt gives recovery.Tokens random access into the buffered input,
// pulling further tokens from ReadToken as needed. Once EOF has been
// pulled, every index at or past it reports ok=false: recovery has
// nothing left to skip past or resync on beyond the end of input.
func (r *Run) tokenAt(i int) (code int, attr interface{}, ok bool) {
	for i >= len(r.buf) {
		if r.eofSeen {
			return 0, nil, false
		}
		c, a := r.ReadToken(r)
		r.buf = append(r.buf, tokenEntry{code: c, attr: a})
		if c == symtab.EOFCode {
			r.eofSeen = true
		}
	}
	return r.buf[i].code, r.buf[i].attr, true
}

var _ recovery.Tokens = (*Run)(nil)

// At implements recovery.Tokens directly over the buffered input.
func (r *Run) At(i int) (int, interface{}, bool) { return r.tokenAt(i) }

// Parse runs the scan/predict/complete loop to completion, invoking
// error recovery on syntax errors when the grammar's recovery flag is
// set, and builds the parse forest on success.
func (r *Run) Parse() (grammar.ErrorCode, error) {
	r.eng.InitialSet()

	for {
		pos := r.cursor
		code, attr, ok := r.tokenAt(pos)
		if !ok {
			return grammar.UndefinedOrBadGrammar, fmt.Errorf("parserun: input exhausted without reaching eof")
		}
		if _, known := r.g.Symbols.FindByCode(code); !known {
			return grammar.InvalidTokenCode, fmt.Errorf("parserun: token %d has code %d: %w", pos, code, grammar.InvalidTokenCode)
		}

		la := -1
		if r.g.LookaheadLevel() > 0 {
			if nc, _, hok := r.tokenAt(pos + 1); hok {
				la = nc
			}
		}

		if _, err := r.eng.Step(code, la); err != nil {
			if !r.g.ErrorRecoveryFlag() {
				if r.SyntaxError != nil {
					r.SyntaxError(r, pos, attr, pos, attr, pos, attr)
				}
				return grammar.UndefinedOrBadGrammar, err
			}
			res := recovery.Recover(r.eng, r.g, r, pos)
			if !res.Recovered {
				if r.SyntaxError != nil {
					r.SyntaxError(r, pos, attr, pos, attr, pos, attr)
				}
				return grammar.UndefinedOrBadGrammar, err
			}
			_, startIgnoredA, _ := r.tokenAt(res.StartIgnoredIdx)
			_, startRecoveredA, _ := r.tokenAt(res.StartRecoveredIdx)
			if r.SyntaxError != nil {
				r.SyntaxError(r, pos, attr, res.StartIgnoredIdx, startIgnoredA, res.StartRecoveredIdx, startRecoveredA)
			}
			tracer().Infof("parserun: recovered from error at token %d, cost %d, resuming at %d", pos, res.Cost, res.ResumeTokenIdx)

			if res.OriginIdx < len(r.shiftLog) {
				r.shiftLog = r.shiftLog[:res.OriginIdx]
			}
			for _, sh := range res.Shifts {
				r.shiftLog = append(r.shiftLog, forest.TokenRecord{Code: sh.Code, Attr: sh.Attr})
			}
			r.cursor = res.ResumeTokenIdx
			if r.eng.Accept() {
				break
			}
			continue
		}

		r.shiftLog = append(r.shiftLog, forest.TokenRecord{Code: code, Attr: attr})
		r.cursor++
		if code == symtab.EOFCode && r.eng.Accept() {
			break
		}
	}

	b := forest.NewBuilder(r.g, r.eng.States(), r.shiftLog)
	root, ambiguous, err := b.Build()
	if err != nil {
		return grammar.UndefinedOrBadGrammar, err
	}
	if r.g.CostFlag() && ambiguous {
		root = forest.PruneCost(root)
	}
	r.root = root
	r.ambiguous = ambiguous
	return grammar.OK, nil
}

// Dispose releases the parse forest built by Parse, handing each
// terminal's attr and every other node to ParseFree if the caller set
// one. Safe to call on a Run with no forest (a no-op).
func (r *Run) Dispose() {
	if r.root == nil {
		return
	}
	forest.FreeTree(r.root, func(v interface{}) {
		if r.ParseFree != nil {
			r.ParseFree(v)
		}
	}, func(n *forest.Node) {
		if r.ParseFree != nil {
			r.ParseFree(n.Attr)
		}
	})
	r.root = nil
}

// RunContext wraps Parse, polling ctx between input tokens (the only
// safe suspension point: mid-state-set construction is not) and
// returning ctx.Err() if canceled before completion.
func RunContext(ctx context.Context, r *Run) (grammar.ErrorCode, error) {
	inner := r.ReadToken
	r.ReadToken = func(rr *Run) (int, interface{}) {
		select {
		case <-ctx.Done():
			return symtab.EOFCode, nil
		default:
			return inner(rr)
		}
	}
	code, err := r.Parse()
	if ctx.Err() != nil {
		return grammar.UndefinedOrBadGrammar, ctx.Err()
	}
	return code, err
}
