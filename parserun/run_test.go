package parserun_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/earleycore/forest"
	"github.com/npillmayer/earleycore/grammar"
	"github.com/npillmayer/earleycore/parserun"
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
		{lhs: "E", rhs: []string{"n"}, anode: "", trans: []int{0}},
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

// feeder drives Run.ReadToken over a fixed code sequence, handing out
// each token's own index as its attr so tests can check the forest
// carries the right attrs through.
func feeder(codes []int) func(r *parserun.Run) (int, interface{}) {
	i := 0
	return func(r *parserun.Run) (int, interface{}) {
		if i >= len(codes) {
			return symtab.EOFCode, nil
		}
		c := codes[i]
		a := i
		i++
		return c, a
	}
}

func TestParseAccepts(t *testing.T) {
	g := sumGrammar(t)
	r := parserun.New(g)
	r.ReadToken = feeder([]int{termN, termPlus, termN})

	code, err := r.Parse()
	require.NoError(t, err)
	require.Equal(t, grammar.OK, code)
	require.False(t, r.Ambiguous())

	root := r.Root()
	require.Equal(t, forest.Abstract, root.Type)
	require.Equal(t, "Add", root.Name)
	require.Equal(t, 0, root.Children[0].Attr)
	require.Equal(t, 2, root.Children[1].Attr)
}

func TestParseRecoversFromRepeatedOperator(t *testing.T) {
	g := sumGrammar(t)
	r := parserun.New(g)
	r.ReadToken = feeder([]int{termN, termPlus, termPlus})

	var sawError bool
	r.SyntaxError = func(_ *parserun.Run, errTokIdx int, _ interface{},
		startIgnoredIdx int, _ interface{}, startRecoveredIdx int, _ interface{}) {
		sawError = true
		require.Equal(t, 2, errTokIdx)
		require.LessOrEqual(t, startIgnoredIdx, startRecoveredIdx)
	}

	code, err := r.Parse()
	require.NoError(t, err)
	require.Equal(t, grammar.OK, code)
	require.True(t, sawError)
	require.NotNil(t, r.Root())
}

func TestParseFailsWithoutRecovery(t *testing.T) {
	g := sumGrammar(t)
	g.SetErrorRecoveryFlag(false)
	r := parserun.New(g)
	r.ReadToken = feeder([]int{termN, termPlus, termPlus})

	var sawError bool
	r.SyntaxError = func(*parserun.Run, int, interface{}, int, interface{}, int, interface{}) {
		sawError = true
	}

	_, err := r.Parse()
	require.Error(t, err)
	require.True(t, sawError)
}

func TestRunDisposeIsIdempotentAndCallsParseFree(t *testing.T) {
	g := sumGrammar(t)
	r := parserun.New(g)
	r.ReadToken = feeder([]int{termN})

	freed := 0
	r.ParseFree = func(interface{}) { freed++ }

	_, err := r.Parse()
	require.NoError(t, err)
	r.Dispose()
	require.Nil(t, r.Root())
	require.Greater(t, freed, 0)
	r.Dispose() // no-op, must not panic
}
