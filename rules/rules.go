/*
Package rules stores grammar rules and interns dotted rules (rule, dot
position, lookahead context) for the Earley engine.

Grounded on lr/tables.go's Item/Rule usage (RHS, LHS, PeekSymbol,
Advance, Prefix) for the dotted-rule shape, generalized to carry an
explicit context id and a precomputed lookahead bitset instead of being
recomputed from the CFSM the way LR tables do it.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package rules

import (
	"strings"

	"github.com/npillmayer/earleycore/symtab"
	"github.com/npillmayer/earleycore/termset"
)

// Rule is a single grammar production LHS → RHS.
type Rule struct {
	Serial int // order of declaration, 0 is the injected start rule
	LHS    *symtab.Symbol
	RHS    []*symtab.Symbol

	Marks      []byte // per-position mark characters, opaque to the core
	Mark       byte   // rule-level mark
	// Transl lists, in output order, which RHS positions populate the
	// abstract node's children: each entry is an RHS index, or
	// grammar.NilTranslation to insert a nil child at that position. A
	// nil or empty Transl with AnodeName=="" translates the whole rule
	// to a nil node; a single non-sentinel entry with AnodeName==""
	// instead passes that one child straight up.
	Transl     []int
	AnodeName  string // abstract-node name, "" if none
	Cost       int    // >= 0

	// RuleStart is the base offset into the dotted-rule pool's dense
	// index for this rule: dottedRule id space is addressed by
	// (context, RuleStart+dot).
	RuleStart int
}

func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString(r.LHS.Repr)
	b.WriteString(" :")
	for _, s := range r.RHS {
		b.WriteByte(' ')
		b.WriteString(s.Repr)
	}
	return b.String()
}

// Len returns len(RHS).
func (r *Rule) Len() int {
	return len(r.RHS)
}

// Store owns all rules of a grammar, plus the per-LHS rule index needed
// by prediction.
type Store struct {
	rules     []*Rule
	byLHS     map[*symtab.Symbol][]*Rule
	ruleStart int // running total of dot positions allocated so far
}

// NewStore creates an empty rule store.
func NewStore() *Store {
	return &Store{byLHS: make(map[*symtab.Symbol][]*Rule)}
}

// Add appends a new rule, assigning it a serial number and a
// RuleStart offset into the dotted-rule address space.
func (st *Store) Add(lhs *symtab.Symbol, rhs []*symtab.Symbol, marks []byte, mark byte,
	transl []int, anodeName string, cost int) *Rule {
	//
	r := &Rule{
		Serial:    len(st.rules),
		LHS:       lhs,
		RHS:       rhs,
		Marks:     marks,
		Mark:      mark,
		Transl:    transl,
		AnodeName: anodeName,
		Cost:      cost,
		RuleStart: st.ruleStart,
	}
	st.ruleStart += len(rhs) + 1 // dot positions 0..len(rhs)
	st.rules = append(st.rules, r)
	st.byLHS[lhs] = append(st.byLHS[lhs], r)
	lhs.Rules = append(lhs.Rules, r.Serial)
	return r
}

// Rule returns the rule with the given serial number.
func (st *Store) Rule(serial int) *Rule {
	return st.rules[serial]
}

// Len returns the number of rules.
func (st *Store) Len() int {
	return len(st.rules)
}

// RulesFor returns every rule with the given LHS.
func (st *Store) RulesFor(lhs *symtab.Symbol) []*Rule {
	return st.byLHS[lhs]
}

// Each calls fn for every rule, in declaration order.
func (st *Store) Each(fn func(*Rule)) {
	for _, r := range st.rules {
		fn(r)
	}
}

// --- Dotted rules -----------------------------------------------------

// DottedRuleID is a globally unique, densely and monotonically
// increasing identifier for an interned dotted rule.
type DottedRuleID int

// DottedRule is a (rule, dot, context) triple, interned so that pointer
// equality implies value equality.
type DottedRule struct {
	ID      DottedRuleID
	Rule    *Rule
	Dot     int
	Context termset.ID // lookahead-context terminal-set id (level 2 only; 0 otherwise)

	Lookahead    termset.ID // precomputed lookahead bitset
	EmptyTail    bool       // true iff all RHS symbols from Dot onward are nullable
}

// AtEnd reports whether the dot has reached the end of the RHS.
func (d *DottedRule) AtEnd() bool {
	return d.Dot == len(d.Rule.RHS)
}

// SymbolAfterDot returns the RHS symbol immediately following the dot,
// or nil if the dot is at the end.
func (d *DottedRule) SymbolAfterDot() *symtab.Symbol {
	if d.AtEnd() {
		return nil
	}
	return d.Rule.RHS[d.Dot]
}

func (d *DottedRule) String() string {
	var b strings.Builder
	b.WriteString(d.Rule.LHS.Repr)
	b.WriteString(" ->")
	for i, s := range d.Rule.RHS {
		if i == d.Dot {
			b.WriteString(" •")
		}
		b.WriteByte(' ')
		b.WriteString(s.Repr)
	}
	if d.Dot == len(d.Rule.RHS) {
		b.WriteString(" •")
	}
	return b.String()
}

type poolKey struct {
	context termset.ID
	addr    int // RuleStart + Dot
}

// DottedRulePool interns every (rule, dot, context) triple on first
// request, indexed so lookup is an O(1) table probe.
type DottedRulePool struct {
	byKey map[poolKey]*DottedRule
	all   []*DottedRule

	firstOfFn  func(lhs *symtab.Symbol) termset.ID
	followOfFn func(lhs *symtab.Symbol) termset.ID
	terms      *termset.Store
}

// NewDottedRulePool creates an empty pool. firstOf and followOf give
// access to the grammar analyzer's FIRST/FOLLOW sets; terms is the
// terminal-set store lookaheads are interned into.
func NewDottedRulePool(terms *termset.Store, firstOf func(*symtab.Symbol) termset.ID,
	followOf func(*symtab.Symbol) termset.ID) *DottedRulePool {
	//
	return &DottedRulePool{
		byKey:      make(map[poolKey]*DottedRule),
		terms:      terms,
		followOfFn: followOf,
		firstOfFn:  firstOf,
	}
}

// Intern returns the unique dotted rule for (rule, dot, context),
// creating it on first request.
func (p *DottedRulePool) Intern(rule *Rule, dot int, context termset.ID) *DottedRule {
	key := poolKey{context: context, addr: rule.RuleStart + dot}
	if d, ok := p.byKey[key]; ok {
		return d
	}
	d := &DottedRule{
		ID:      DottedRuleID(len(p.all)),
		Rule:    rule,
		Dot:     dot,
		Context: context,
	}
	d.EmptyTail = p.emptyTail(rule, dot)
	d.Lookahead = p.computeLookahead(rule, dot, context)
	p.byKey[key] = d
	p.all = append(p.all, d)
	return d
}

func (p *DottedRulePool) emptyTail(rule *Rule, dot int) bool {
	for i := dot; i < len(rule.RHS); i++ {
		if !rule.RHS[i].CanDeriveEmpty {
			return false
		}
	}
	return true
}

// computeLookahead walks the RHS from dot, OR-ing FIRST of each symbol
// (or a singleton for a terminal), stopping at the first non-nullable
// symbol; if the walk reaches the end it also ORs in FOLLOW(LHS) and,
// when context is non-zero, the supplied context set as well.
func (p *DottedRulePool) computeLookahead(rule *Rule, dot int, context termset.ID) termset.ID {
	set := p.terms.NewSet()
	reachedEnd := true
	for i := dot; i < len(rule.RHS); i++ {
		sym := rule.RHS[i]
		if sym.IsTerminal() {
			set.Up(sym.TermID)
			reachedEnd = false
			break
		}
		firstID := p.firstOfFn(sym)
		set.Or(p.terms.Get(firstID))
		if !sym.CanDeriveEmpty {
			reachedEnd = false
			break
		}
	}
	if reachedEnd {
		set.Or(p.terms.Get(p.followOfFn(rule.LHS)))
		if context != 0 {
			set.Or(p.terms.Get(context))
		}
	}
	id, _ := p.terms.InsertOrFind(set)
	return id
}

// Get returns the dotted rule with the given id.
func (p *DottedRulePool) Get(id DottedRuleID) *DottedRule {
	return p.all[id]
}

// Len returns the number of interned dotted rules.
func (p *DottedRulePool) Len() int {
	return len(p.all)
}
