/*
Package grammar implements the grammar reader and analyzer: it turns the
caller's terminal/rule callbacks into interned symbols and rules,
injects the canonical start rule and its `error` recovery rule, and runs
the fixed-point analysis (empty/accessible/derives-terminal/loop,
FIRST/FOLLOW) that the Earley engine and the dotted-rule pool depend on.

Grounded on lr/doc.go's GrammarBuilder walkthrough for the public
lifecycle shape (read, then analyze), and on original_source's
yaep_read_grammar / yaep.c for the exact reader-callback contract, error
conditions and start-rule injection this module reproduces from the
(out of scope) textual grammar syntax down to the callback level.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package grammar

import (
	"github.com/npillmayer/earleycore/rules"
	"github.com/npillmayer/earleycore/symtab"
	"github.com/npillmayer/earleycore/termset"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("earleycore.grammar")
}

// NilTranslation is the reserved translation-index sentinel meaning
// "emit a nil child" when a rule's callback supplies a translation array.
const NilTranslation = int(^uint(0) >> 1) // INT_MAX equivalent

// ReadTerminalFunc yields the next (name, code); ok is false once
// terminals are exhausted.
type ReadTerminalFunc func() (name string, code int, ok bool)

// ReadRuleFunc yields the next rule; ok is false once rules are
// exhausted. transl entries are RHS indices (or NilTranslation); a nil
// or all-NilTranslation transl with a non-empty anode means every child
// is dropped except any explicit NilTranslation entries, which are
// emitted as nil nodes.
type ReadRuleFunc func() (lhs string, rhs []string, anode string, anodeCost int,
	transl []int, mark byte, rhsMarks string, ok bool)

// Grammar owns the interned symbol table, rule store, terminal-set
// store and dotted-rule pool for one grammar. Once Read returns OK, a
// Grammar is immutable and may be shared read-only by concurrent parse
// runs once Read has succeeded.
type Grammar struct {
	Symbols *symtab.Table
	Rules   *rules.Store
	Terms   *termset.Store
	Dotted  *rules.DottedRulePool

	analysis *Analysis

	lookaheadLevel    int // 0, 1 or 2
	oneParseFlag      bool
	costFlag          bool
	errorRecoveryFlag bool
	recoveryMatch     int

	lastErr *codeError
	ready   bool
}

// New creates an empty, not-yet-read grammar with YAEP-compatible
// defaults (lookahead level 1, one-parse, no cost tracking, recovery on,
// recovery match 3).
func New() *Grammar {
	return &Grammar{
		lookaheadLevel:    1,
		oneParseFlag:      true,
		errorRecoveryFlag: true,
		recoveryMatch:     3,
	}
}

// LastError returns the ErrorCode of the most recent failing Read, or OK.
func (g *Grammar) LastError() ErrorCode {
	if g.lastErr == nil {
		return OK
	}
	return g.lastErr.code
}

// LastErrorMessage returns a detail message for LastError.
func (g *Grammar) LastErrorMessage() string {
	if g.lastErr == nil {
		return ""
	}
	return g.lastErr.Error()
}

func (g *Grammar) fail(code ErrorCode, format string, args ...interface{}) ErrorCode {
	g.lastErr = newError(code, format, args...)
	g.ready = false
	tracer().Errorf("grammar: %s", g.lastErr.Error())
	return code
}

// Ready reports whether Read completed successfully and the grammar may
// be parsed with.
func (g *Grammar) Ready() bool {
	return g.ready
}

// LookaheadLevel, OneParseFlag, CostFlag, ErrorRecoveryFlag,
// RecoveryMatch expose the current configuration to the parse-run
// packages (earley, recovery, forest).
func (g *Grammar) LookaheadLevel() int   { return g.lookaheadLevel }
func (g *Grammar) OneParseFlag() bool    { return g.oneParseFlag }
func (g *Grammar) CostFlag() bool        { return g.costFlag }
func (g *Grammar) ErrorRecoveryFlag() bool { return g.errorRecoveryFlag }
func (g *Grammar) RecoveryMatch() int    { return g.recoveryMatch }
func (g *Grammar) Analysis() *Analysis   { return g.analysis }

// SetLookaheadLevel sets static (1) or dynamic (2) lookahead, or 0 to
// disable. Returns the previous value.
func (g *Grammar) SetLookaheadLevel(level int) int {
	prev := g.lookaheadLevel
	g.lookaheadLevel = level
	return prev
}

// SetOneParseFlag controls whether the forest builder stops at the
// first parse for ambiguous input. Returns the previous value.
func (g *Grammar) SetOneParseFlag(b bool) bool {
	prev := g.oneParseFlag
	g.oneParseFlag = b
	return prev
}

// SetCostFlag controls cost-minimal forest pruning. Returns the
// previous value.
func (g *Grammar) SetCostFlag(b bool) bool {
	prev := g.costFlag
	g.costFlag = b
	return prev
}

// SetErrorRecoveryFlag controls whether Parse attempts recovery on a
// syntax error. Returns the previous value.
func (g *Grammar) SetErrorRecoveryFlag(b bool) bool {
	prev := g.errorRecoveryFlag
	g.errorRecoveryFlag = b
	return prev
}

// SetRecoveryMatch sets how many subsequent tokens must shift
// successfully for a recovery to be accepted. Returns the previous value.
func (g *Grammar) SetRecoveryMatch(n int) int {
	prev := g.recoveryMatch
	g.recoveryMatch = n
	return prev
}
