package forest

import (
	"fmt"

	"github.com/npillmayer/earleycore/grammar"
	"github.com/npillmayer/earleycore/rules"
	"github.com/npillmayer/earleycore/stateset"
	"github.com/npillmayer/earleycore/symtab"
)

// TokenRecord is the terminal shifted between state set pos-1 and pos.
// A recovery-inserted `error` shift (code symtab.ErrorCode) does not
// correspond to a real input token; its attr is unused. The terminal
// node's mark is not carried here: it comes from the producing rule's
// per-position mark instead, matching rule->marks[pos] in the original.
type TokenRecord struct {
	Code int
	Attr interface{}
}

// Builder walks a completed Earley run's state sets backwards and
// produces the parse-forest DAG rooted at the axiom's completed item.
type Builder struct {
	g      *grammar.Grammar
	states []*stateset.Set
	tokens []TokenRecord

	memo      map[memoKey]*Node
	ambiguous bool
}

// NewBuilder prepares a builder over the state sets and shifted tokens
// of one finished run. len(tokens) must equal len(states)-1.
func NewBuilder(g *grammar.Grammar, states []*stateset.Set, tokens []TokenRecord) *Builder {
	return &Builder{
		g:      g,
		states: states,
		tokens: tokens,
		memo:   make(map[memoKey]*Node),
	}
}

// Build walks the forest from the completed axiom item in the final
// state set and returns its root node, together with whether any
// nonterminal span resolved to more than one candidate derivation.
func (b *Builder) Build() (*Node, bool, error) {
	last := len(b.states) - 1
	S := b.states[last]
	n := S.Core.NumItems()
	for i := 0; i < n; i++ {
		id, started := S.Core.ItemAt(i)
		if !started {
			continue
		}
		d := b.g.Dotted.Get(id)
		if !d.AtEnd() || d.Rule.LHS.ID != b.g.Symbols.Axiom.ID {
			continue
		}
		if S.MatchedLengthOf(i) != last {
			continue
		}
		root, _, err := b.walkItem(d, 0, last)
		if err != nil {
			return nil, false, err
		}
		return root, b.ambiguous, nil
	}
	return nil, false, fmt.Errorf("forest: no completed axiom item in final state set")
}

// walkItem builds the node for dr's derivation spanning [origin, setIdx),
// memoized by (rule, origin, setIdx) so repeat derivations of the same
// span collapse onto one shared node.
func (b *Builder) walkItem(dr *rules.DottedRule, origin, setIdx int) (*Node, bool, error) {
	key := memoKey{ruleSerial: dr.Rule.Serial, origin: origin, setIdx: setIdx}
	if n, ok := b.memo[key]; ok {
		return n, false, nil
	}

	rhs := dr.Rule.RHS
	children := make([]*Node, len(rhs))
	pos := setIdx
	for i := len(rhs) - 1; i >= 0; i-- {
		sym := rhs[i]
		leftmost := i == 0

		if sym.IsTerminal() {
			if pos == 0 {
				return nil, false, fmt.Errorf("forest: ran out of input walking %s", dr)
			}
			rec := b.tokens[pos-1]
			if rec.Code == symtab.ErrorCode {
				children[i] = NewErrorNode()
			} else {
				var mark byte
				if i < len(dr.Rule.Marks) {
					mark = dr.Rule.Marks[i]
				}
				children[i] = NewTerminalNode(rec.Code, mark, rec.Attr)
			}
			pos--
			continue
		}

		S := b.states[pos]
		candIdx := S.Core.Completions(b.g.Dotted, sym)
		type candidate struct {
			idx, origin int
		}
		var cands []candidate
		for _, idx := range candIdx {
			m := S.MatchedLengthOf(idx)
			childOrigin := pos - m
			if leftmost && childOrigin != origin {
				continue
			}
			if !leftmost {
				// The rule's prefix before sym must span [origin, childOrigin):
				// the origin set has to hold the dotted rule with its dot
				// before sym and a matched length of childOrigin-origin.
				prefix := b.g.Dotted.Intern(dr.Rule, i, dr.Context)
				P := b.states[childOrigin]
				prefixOK := false
				for _, pi := range P.Core.Predictions(b.g.Dotted, sym) {
					if pid, _ := P.Core.ItemAt(pi); pid == prefix.ID && P.MatchedLengthOf(pi) == childOrigin-origin {
						prefixOK = true
						break
					}
				}
				if !prefixOK {
					continue
				}
			}
			cands = append(cands, candidate{idx: idx, origin: childOrigin})
		}
		if len(cands) == 0 {
			return nil, false, fmt.Errorf("forest: no completion of %s found ending at set %d", sym, pos)
		}

		id, _ := S.Core.ItemAt(cands[0].idx)
		d := b.g.Dotted.Get(id)
		primary, _, err := b.walkItem(d, cands[0].origin, pos)
		if err != nil {
			return nil, false, err
		}

		result := primary
		if len(cands) > 1 {
			b.ambiguous = true
			if !b.g.OneParseFlag() {
				head := primary
				for _, c := range cands[1:] {
					cid, _ := S.Core.ItemAt(c.idx)
					cd := b.g.Dotted.Get(cid)
					altNode, _, err := b.walkItem(cd, c.origin, pos)
					if err != nil {
						continue
					}
					head = &Node{Type: Alt, Alt: altNode, Next: head}
				}
				result = head
			}
		}
		children[i] = result
		pos = cands[0].origin
	}
	if pos != origin {
		return nil, false, fmt.Errorf("forest: walk of %s did not reach its origin (got %d, want %d)", dr, pos, origin)
	}

	node := buildRuleNode(dr.Rule, children)
	b.memo[key] = node
	return node, b.ambiguous, nil
}

// buildRuleNode assembles the translation of one completed rule from
// its children, following Rule.Transl / Rule.AnodeName.
func buildRuleNode(r *rules.Rule, children []*Node) *Node {
	if r.AnodeName == "" {
		for _, t := range r.Transl {
			if t != grammar.NilTranslation {
				return children[t]
			}
		}
		return NewNilNode()
	}
	out := make([]*Node, 0, len(r.Transl))
	for _, t := range r.Transl {
		if t == grammar.NilTranslation {
			out = append(out, NewNilNode())
			continue
		}
		out = append(out, children[t])
	}
	return &Node{Type: Abstract, Name: r.AnodeName, Mark: r.Mark, Cost: r.Cost, Children: out}
}
