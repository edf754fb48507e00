/*
Package earleycore implements a general-purpose context-free-grammar
parser based on Earley's algorithm, augmented with static/dynamic
lookahead, memoized state-set cores, minimal-cost error recovery and
shared-packed parse forest construction.

Package structure is as follows:

■ container: arena allocation and interning containers shared by every
other package.

■ symtab: interns terminal and nonterminal symbols.

■ termset: interned terminal bitsets (FIRST/FOLLOW/lookahead).

■ rules: rule storage and the dotted-rule pool.

■ grammar: the grammar reader, analyzer and public grammar lifecycle.

■ stateset: Earley state-set cores, matched-length vectors and the
core-symbol index.

■ earley: the scan/predict/complete engine.

■ recovery: minimal-cost error recovery search.

■ forest: parse-forest (DAG) construction and disposal.

■ parserun: the public parse-run lifecycle, tying the packages above
together into the single entry point callers use.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package earleycore

import "fmt"

// Span denotes a half-open range [From, To) of input-token positions
// covered by a terminal or a reduced nonterminal.
type Span struct {
	From uint64
	To   uint64
}

// Len returns the number of tokens covered by s.
func (s Span) Len() uint64 {
	return s.To - s.From
}

// IsNull reports whether s is the zero span.
func (s Span) IsNull() bool {
	return s == Span{}
}

// Extend grows s to also cover other.
func (s Span) Extend(other Span) Span {
	if other.From < s.From {
		s.From = other.From
	}
	if other.To > s.To {
		s.To = other.To
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s.From, s.To)
}

// Token is the minimal interface the Earley engine requires of input
// tokens: a terminal code (negative values are reserved, see
// symtab.EOFCode/symtab.ErrorCode) and an opaque caller attribute.
type Token interface {
	Code() int
	Attr() interface{}
}
