package forest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/earleycore/earley"
	"github.com/npillmayer/earleycore/forest"
	"github.com/npillmayer/earleycore/grammar"
	"github.com/npillmayer/earleycore/symtab"
)

const (
	termN    = 1
	termPlus = 2
)

// sumGrammar builds E -> E plus E | n, deliberately ambiguous on
// chains of 3 or more additions so Builder.Build's Alt-chain path and
// PruneCost both get exercised.
func sumGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	terms := []struct {
		name string
		code int
	}{{"n", termN}, {"plus", termPlus}}
	ti := 0
	readTerminal := func() (string, int, bool) {
		if ti >= len(terms) {
			return "", 0, false
		}
		tm := terms[ti]
		ti++
		return tm.name, tm.code, true
	}

	type ruleDef struct {
		lhs   string
		rhs   []string
		anode string
		cost  int
		trans []int
	}
	rules := []ruleDef{
		{lhs: "E", rhs: []string{"E", "plus", "E"}, anode: "Add", cost: 0, trans: []int{0, 2}},
		{lhs: "E", rhs: []string{"n"}, anode: "", cost: 0, trans: []int{0}},
	}
	ri := 0
	readRule := func() (string, []string, string, int, []int, byte, string, bool) {
		if ri >= len(rules) {
			return "", nil, "", 0, nil, 0, "", false
		}
		r := rules[ri]
		ri++
		return r.lhs, r.rhs, r.anode, r.cost, r.trans, 0, "", true
	}

	g := grammar.New()
	code := g.Read(true, readTerminal, readRule)
	require.Equal(t, grammar.OK, code, g.LastErrorMessage())
	return g
}

func parse(t *testing.T, g *grammar.Grammar, codes []int) (*forest.Node, bool) {
	t.Helper()
	eng := earley.NewEngine(g)
	eng.InitialSet()
	var tokens []forest.TokenRecord
	for _, c := range codes {
		_, err := eng.Step(c, -1)
		require.NoError(t, err)
		tokens = append(tokens, forest.TokenRecord{Code: c})
	}
	require.True(t, eng.Accept())
	b := forest.NewBuilder(g, eng.States(), tokens)
	root, ambiguous, err := b.Build()
	require.NoError(t, err)
	return root, ambiguous
}

func TestBuilderSingleTerm(t *testing.T) {
	g := sumGrammar(t)
	root, ambiguous := parse(t, g, []int{termN, symtab.EOFCode})
	require.False(t, ambiguous)
	require.Equal(t, forest.Terminal, root.Type)
	require.Equal(t, termN, root.Code)
}

func TestBuilderAddition(t *testing.T) {
	g := sumGrammar(t)
	root, ambiguous := parse(t, g, []int{termN, termPlus, termN, symtab.EOFCode})
	require.False(t, ambiguous)
	require.Equal(t, forest.Abstract, root.Type)
	require.Equal(t, "Add", root.Name)
	require.Len(t, root.Children, 2)
	require.Equal(t, forest.Terminal, root.Children[0].Type)
	require.Equal(t, forest.Terminal, root.Children[1].Type)
}

func TestBuilderAmbiguousChainAndPruneCost(t *testing.T) {
	g := sumGrammar(t)
	g.SetOneParseFlag(false) // build alt nodes instead of stopping at the first parse
	root, ambiguous := parse(t, g, []int{termN, termPlus, termN, termPlus, termN, symtab.EOFCode})
	require.True(t, ambiguous)
	require.Equal(t, forest.Alt, root.Type)

	resolved := forest.PruneCost(root)
	require.Equal(t, forest.Abstract, resolved.Type)
	require.Equal(t, "Add", resolved.Name)
}

func TestFreeTreeVisitsEveryTerminalOnce(t *testing.T) {
	g := sumGrammar(t)
	root, _ := parse(t, g, []int{termN, termPlus, termN, symtab.EOFCode})

	var terms int
	var freed int
	forest.FreeTree(root, func(interface{}) { freed++ }, func(*forest.Node) { terms++ })
	require.Equal(t, 2, terms)
	require.Equal(t, 1, freed) // the one Abstract node; terminals go through termcb, not free
}
