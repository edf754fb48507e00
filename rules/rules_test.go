package rules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/earleycore/rules"
	"github.com/npillmayer/earleycore/symtab"
	"github.com/npillmayer/earleycore/termset"
)

func TestStoreAddAssignsSerialAndRuleStart(t *testing.T) {
	tab := symtab.New()
	e := tab.AddNonterminal("E")
	n := tab.AddNonterminal("n")

	st := rules.NewStore()
	r0 := st.Add(e, []*symtab.Symbol{n}, nil, 0, nil, "", 0)
	r1 := st.Add(e, []*symtab.Symbol{n, n}, nil, 0, nil, "", 0)

	require.Equal(t, 0, r0.Serial)
	require.Equal(t, 1, r1.Serial)
	require.Equal(t, 0, r0.RuleStart)
	require.Equal(t, 2, r1.RuleStart) // r0 occupies dot positions 0,1 (len(RHS)+1 = 2)
	require.Equal(t, 2, st.Len())
	require.ElementsMatch(t, []*rules.Rule{r0, r1}, st.RulesFor(e))
}

func TestDottedRuleAtEndAndSymbolAfterDot(t *testing.T) {
	tab := symtab.New()
	e := tab.AddNonterminal("E")
	n, err := tab.AddTerminal("n", 1)
	require.NoError(t, err)

	st := rules.NewStore()
	r := st.Add(e, []*symtab.Symbol{n}, nil, 0, nil, "", 0)

	terms := termset.NewStore(1)
	pool := rules.NewDottedRulePool(terms,
		func(*symtab.Symbol) termset.ID { return 0 },
		func(*symtab.Symbol) termset.ID { return 0 },
	)

	d0 := pool.Intern(r, 0, 0)
	require.False(t, d0.AtEnd())
	require.Same(t, n, d0.SymbolAfterDot())

	d1 := pool.Intern(r, 1, 0)
	require.True(t, d1.AtEnd())
	require.Nil(t, d1.SymbolAfterDot())
}

func TestDottedRulePoolInternsByKey(t *testing.T) {
	tab := symtab.New()
	e := tab.AddNonterminal("E")
	n, err := tab.AddTerminal("n", 1)
	require.NoError(t, err)

	st := rules.NewStore()
	r := st.Add(e, []*symtab.Symbol{n}, nil, 0, nil, "", 0)

	terms := termset.NewStore(1)
	pool := rules.NewDottedRulePool(terms,
		func(*symtab.Symbol) termset.ID { return 0 },
		func(*symtab.Symbol) termset.ID { return 0 },
	)

	a := pool.Intern(r, 0, 0)
	b := pool.Intern(r, 0, 0)
	require.Same(t, a, b, "same (rule, dot, context) must intern to the same pointer")
	require.Equal(t, 1, pool.Len())

	c := pool.Intern(r, 1, 0)
	require.NotSame(t, a, c)
	require.Equal(t, 2, pool.Len())
	require.Same(t, c, pool.Get(c.ID))
}

func TestEmptyTailDetectsNullableSuffix(t *testing.T) {
	tab := symtab.New()
	e := tab.AddNonterminal("E")
	opt := tab.AddNonterminal("Opt")
	opt.CanDeriveEmpty = true

	st := rules.NewStore()
	r := st.Add(e, []*symtab.Symbol{opt}, nil, 0, nil, "", 0)

	terms := termset.NewStore(1)
	terms.InsertOrFind(terms.NewSet()) // id 0, the set the FIRST/FOLLOW stubs below return
	pool := rules.NewDottedRulePool(terms,
		func(*symtab.Symbol) termset.ID { return 0 },
		func(*symtab.Symbol) termset.ID { return 0 },
	)
	d := pool.Intern(r, 0, 0)
	require.True(t, d.EmptyTail)
}
