package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/earleycore/symtab"
)

func TestNewCarriesReservedSymbols(t *testing.T) {
	tab := symtab.New()
	require.Equal(t, symtab.AxiomName, tab.Axiom.Repr)
	require.Equal(t, symtab.EOFName, tab.EOF.Repr)
	require.Equal(t, symtab.ErrorName, tab.Error.Repr)
	require.True(t, tab.EOF.IsTerminal())
	require.True(t, tab.Error.IsTerminal())
	require.False(t, tab.Axiom.IsTerminal())
	require.Equal(t, symtab.EOFCode, tab.EOF.Code)
	require.Equal(t, symtab.ErrorCode, tab.Error.Code)
}

func TestAddTerminalRejectsDuplicatesAndNegativeCodes(t *testing.T) {
	tab := symtab.New()
	sym, err := tab.AddTerminal("num", 1)
	require.NoError(t, err)
	require.Equal(t, 1, sym.Code)

	_, err = tab.AddTerminal("num", 2)
	require.ErrorIs(t, err, symtab.ErrRepeatedTermDecl)

	_, err = tab.AddTerminal("other", 1)
	require.ErrorIs(t, err, symtab.ErrRepeatedTermCode)

	_, err = tab.AddTerminal("neg", -5)
	require.ErrorIs(t, err, symtab.ErrNegativeTermCode)
}

func TestAddNonterminalIsIdempotent(t *testing.T) {
	tab := symtab.New()
	a := tab.AddNonterminal("Expr")
	b := tab.AddNonterminal("Expr")
	require.Same(t, a, b)
	require.Equal(t, 2, tab.NumNonterminals()) // $S plus Expr
}

func TestFindByCodeUsesDenseVectorAfterClose(t *testing.T) {
	tab := symtab.New()
	_, err := tab.AddTerminal("plus", 10)
	require.NoError(t, err)
	_, err = tab.AddTerminal("minus", 11)
	require.NoError(t, err)
	tab.FinishAddingTerminals()

	s, ok := tab.FindByCode(10)
	require.True(t, ok)
	require.Equal(t, "plus", s.Repr)

	_, ok = tab.FindByCode(999)
	require.False(t, ok)
}

func TestEachTerminalAndNonterminalPartitionAllSymbols(t *testing.T) {
	tab := symtab.New()
	_, err := tab.AddTerminal("num", 1)
	require.NoError(t, err)
	tab.AddNonterminal("Expr")

	var terms, nonterms int
	tab.EachTerminal(func(*symtab.Symbol) { terms++ })
	tab.EachNonterminal(func(*symtab.Symbol) { nonterms++ })
	var all int
	tab.EachSymbol(func(*symtab.Symbol) { all++ })
	require.Equal(t, all, terms+nonterms)
	require.Equal(t, 3, terms)    // num, $eof, error
	require.Equal(t, 2, nonterms) // $S, Expr
}
