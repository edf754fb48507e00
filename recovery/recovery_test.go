package recovery_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/earleycore/earley"
	"github.com/npillmayer/earleycore/grammar"
	"github.com/npillmayer/earleycore/recovery"
	"github.com/npillmayer/earleycore/symtab"
)

const (
	termN    = 1
	termPlus = 2
)

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
		trans []int
	}
	rules := []ruleDef{
		{lhs: "E", rhs: []string{"E", "plus", "E"}, anode: "Add", trans: []int{0, 2}},
		{lhs: "E", rhs: []string{"n"}, anode: "", trans: nil},
	}
	ri := 0
	readRule := func() (string, []string, string, int, []int, byte, string, bool) {
		if ri >= len(rules) {
			return "", nil, "", 0, nil, 0, "", false
		}
		r := rules[ri]
		ri++
		return r.lhs, r.rhs, r.anode, 0, r.trans, 0, "", true
	}
	g := grammar.New()
	code := g.Read(true, readTerminal, readRule)
	require.Equal(t, grammar.OK, code, g.LastErrorMessage())
	return g
}

// fixedTokens implements recovery.Tokens over a fixed, fully-known
// token sequence ending in symtab.EOFCode.
type fixedTokens []int

func (f fixedTokens) At(i int) (int, interface{}, bool) {
	if i < 0 || i >= len(f) {
		return 0, nil, false
	}
	return f[i], nil, true
}

func TestRecoverSkipsRepeatedOperator(t *testing.T) {
	g := sumGrammar(t)
	toks := fixedTokens{termN, termPlus, termPlus, symtab.EOFCode}

	eng := earley.NewEngine(g)
	eng.InitialSet()

	i := 0
	var err error
	for {
		code, _, ok := toks.At(i)
		require.True(t, ok)
		_, err = eng.Step(code, -1)
		if err != nil {
			break
		}
		i++
		if code == symtab.EOFCode {
			break
		}
	}
	require.Error(t, err, "expected the doubled operator to fail to shift")

	res := recovery.Recover(eng, g, toks, i)
	require.True(t, res.Recovered)
	require.True(t, eng.Accept())
	require.Equal(t, len(toks)-1, res.StartIgnoredIdx+1, "recovery should have ignored at least the duplicate plus")
}

func TestRecoverFallsBackToInjectedErrorRule(t *testing.T) {
	g := sumGrammar(t)
	// a bare "plus" as the very first token can never be shifted from
	// set 0, and skipping it leaves nothing the grammar accepts either
	// (plus alone is still not a start of any E), so the sole recovery
	// path is the injected $S -> error $eof rule matching immediately.
	toks := fixedTokens{termPlus, symtab.EOFCode}
	eng := earley.NewEngine(g)
	eng.InitialSet()
	_, err := eng.Step(termPlus, -1)
	require.Error(t, err)

	res := recovery.Recover(eng, g, toks, 0)
	require.True(t, res.Recovered)
	require.True(t, eng.Accept())
}
