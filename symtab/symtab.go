/*
Package symtab interns terminal and nonterminal symbols for a grammar:
one Symbol per distinct external representation, plus the code→symbol
and repr→symbol maps needed for O(1) lookup once terminal declaration is
closed.

Grounded on runtime/symtable.go's interning-table idiom (a repr map plus
a dense lookup vector) and on the symbol bookkeeping implied by
lr/tables.go's use of *Symbol (Name, Value/TokenType, IsTerminal).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package symtab

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("earleycore.symtab")
}

// Kind distinguishes terminal from nonterminal symbols.
type Kind uint8

const (
	Nonterminal Kind = iota
	Terminal
)

// Reserved terminal codes.
const (
	EOFCode   = -1
	ErrorCode = -2
)

// Reserved names.
const (
	AxiomName = "$S"
	EOFName   = "$eof"
	ErrorName = "error"
)

// ID is a dense, zero-based symbol identifier, unique within a Table.
type ID int

// Symbol is an interned terminal or nonterminal.
type Symbol struct {
	ID   ID
	Repr string
	Kind Kind

	// terminal-only fields
	Code   int // external terminal code; may be negative for $eof/error
	TermID int // dense 0..|T|-1 index, assigned by FinishAddingTerminals

	// nonterminal-only fields
	NontermID int // dense 0..|N|-1 index
	Rules     []int // rule indices (into rules.Store) with this symbol as LHS

	// derived flags, copied from the grammar analysis by grammar.Read
	Accessible     bool
	DerivesString  bool
	CanDeriveEmpty bool
	Loop           bool
}

func (s *Symbol) IsTerminal() bool {
	return s.Kind == Terminal
}

func (s *Symbol) String() string {
	return s.Repr
}

// Table interns symbols by external representation.
type Table struct {
	byRepr []*Symbol
	reprOf map[string]*Symbol
	byCode map[int]*Symbol

	terminalsClosed bool
	minCode, maxCode int
	codeVector       []*Symbol // dense code->symbol, valid only if terminalsClosed and range is compact

	Axiom *Symbol
	EOF   *Symbol
	Error *Symbol

	nextTermID int
	nextNontermID int
}

// denseCodeRangeCap bounds how large (max-min) may be before we fall
// back to the hash map for code lookups, rather than allocating a dense
// slice for a handful of far-apart codes.
const denseCodeRangeCap = 200_000

// New creates an empty symbol table, already carrying the three
// reserved symbols ($S, $eof, error).
func New() *Table {
	t := &Table{
		reprOf: make(map[string]*Symbol),
		byCode: make(map[int]*Symbol),
	}
	t.Axiom = t.internNonterminal(AxiomName)
	t.EOF = t.internTerminal(EOFName, EOFCode)
	t.Error = t.internTerminal(ErrorName, ErrorCode)
	return t
}

func (t *Table) internNonterminal(repr string) *Symbol {
	s := &Symbol{ID: ID(len(t.byRepr)), Repr: repr, Kind: Nonterminal, NontermID: t.nextNontermID}
	t.nextNontermID++
	t.byRepr = append(t.byRepr, s)
	t.reprOf[repr] = s
	return s
}

func (t *Table) internTerminal(repr string, code int) *Symbol {
	s := &Symbol{ID: ID(len(t.byRepr)), Repr: repr, Kind: Terminal, Code: code, TermID: t.nextTermID}
	t.nextTermID++
	t.byRepr = append(t.byRepr, s)
	t.reprOf[repr] = s
	t.byCode[code] = s
	return s
}

// Errors surfaced by AddTerminal.
var (
	ErrRepeatedTermDecl = fmt.Errorf("repeated terminal declaration")
	ErrRepeatedTermCode = fmt.Errorf("repeated terminal code")
	ErrNegativeTermCode = fmt.Errorf("negative terminal code")
)

// AddTerminal interns a new terminal with the given name and code. Codes
// must be user-supplied as nonnegative (reserved codes like EOFCode are
// not user-addable).
func (t *Table) AddTerminal(name string, code int) (*Symbol, error) {
	if code < 0 {
		return nil, ErrNegativeTermCode
	}
	if existing, ok := t.reprOf[name]; ok {
		if existing.IsTerminal() {
			return nil, ErrRepeatedTermDecl
		}
		return nil, ErrRepeatedTermDecl
	}
	if _, ok := t.byCode[code]; ok {
		return nil, ErrRepeatedTermCode
	}
	s := t.internTerminal(name, code)
	tracer().Debugf("symtab: added terminal %s (code=%d)", name, code)
	return s, nil
}

// AddNonterminal interns name as a nonterminal, or returns the existing
// symbol if already present (grammar.Read auto-creates nonterminals on
// first use, so repeated calls are expected and not an error here).
func (t *Table) AddNonterminal(name string) *Symbol {
	if s, ok := t.reprOf[name]; ok {
		return s
	}
	s := t.internNonterminal(name)
	tracer().Debugf("symtab: added nonterminal %s", name)
	return s
}

// FindByRepr looks up a symbol by its external representation.
func (t *Table) FindByRepr(repr string) (*Symbol, bool) {
	s, ok := t.reprOf[repr]
	return s, ok
}

// FindByCode looks up a terminal by code, using the dense vector when
// available, falling back to the hash map otherwise.
func (t *Table) FindByCode(code int) (*Symbol, bool) {
	if t.terminalsClosed && t.codeVector != nil {
		if code < t.minCode || code > t.maxCode {
			return nil, false
		}
		s := t.codeVector[code-t.minCode]
		return s, s != nil
	}
	s, ok := t.byCode[code]
	return s, ok
}

// FinishAddingTerminals closes terminal declaration and computes the
// dense code→symbol vector, if the code range is compact enough.
func (t *Table) FinishAddingTerminals() {
	if t.terminalsClosed {
		return
	}
	t.terminalsClosed = true
	first := true
	for code := range t.byCode {
		if first || code < t.minCode {
			t.minCode = code
		}
		if first || code > t.maxCode {
			t.maxCode = code
		}
		first = false
	}
	if first {
		return // no terminals at all
	}
	extent := t.maxCode - t.minCode
	if extent < 0 {
		extent = -extent
	}
	if extent > denseCodeRangeCap {
		tracer().Infof("symtab: code range %d exceeds dense cap, using hash lookup", extent)
		return
	}
	vec := make([]*Symbol, extent+1)
	for code, s := range t.byCode {
		vec[code-t.minCode] = s
	}
	t.codeVector = vec
	tracer().Debugf("symtab: dense code vector built, range=[%d,%d]", t.minCode, t.maxCode)
}

// NumTerminals returns the number of interned terminal symbols.
func (t *Table) NumTerminals() int {
	return t.nextTermID
}

// NumNonterminals returns the number of interned nonterminal symbols.
func (t *Table) NumNonterminals() int {
	return t.nextNontermID
}

// EachSymbol calls fn for every interned symbol, in interning order.
func (t *Table) EachSymbol(fn func(*Symbol)) {
	for _, s := range t.byRepr {
		fn(s)
	}
}

// EachTerminal calls fn for every interned terminal, in interning order.
func (t *Table) EachTerminal(fn func(*Symbol)) {
	for _, s := range t.byRepr {
		if s.IsTerminal() {
			fn(s)
		}
	}
}

// EachNonterminal calls fn for every interned nonterminal, in interning order.
func (t *Table) EachNonterminal(fn func(*Symbol)) {
	for _, s := range t.byRepr {
		if !s.IsTerminal() {
			fn(s)
		}
	}
}
