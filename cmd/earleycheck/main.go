/*
Command earleycheck is a small end-to-end smoke test for this module's
public API: it defines a tiny arithmetic grammar, tokenizes a command-line
expression by hand, runs it through parserun.Run, and dumps the
resulting parse forest. With -demo-recovery it feeds a deliberately
malformed expression instead, to exercise the error-recovery path and
print the SyntaxError callback's arguments. With -dump-grammar it
prints the built-in grammar's terminals and rules first, sorted rather
than in declaration order.

Grounded on terex/terexlang/trepl/repl.go's main (flag-based trace-level
selection, tracer().SetTraceLevel/Infof/Errorf, os.Exit on failure) and
on the same file's makeExprGrammar for the expression-grammar shape
(Expr -> Expr + Term | Term, Term -> Term * Factor | Factor, Factor ->
number | ( Expr )), adapted to this module's ReadTerminalFunc/
ReadRuleFunc callbacks instead of lr.GrammarBuilder.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/earleycore/forest"
	"github.com/npillmayer/earleycore/grammar"
	"github.com/npillmayer/earleycore/parserun"
	"github.com/npillmayer/earleycore/rules"
	"github.com/npillmayer/earleycore/symtab"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("earleycore.earleycheck")
}

// Terminal codes for the built-in expression grammar.
const (
	tNumber = 1
	tPlus   = 2
	tStar   = 3
	tLParen = 4
	tRParen = 5
)

// exprGrammar builds:
//
//	Expr   -> Expr + Term  |  Term
//	Term   -> Term * Factor  |  Factor
//	Factor -> number  |  ( Expr )
func exprGrammar() *grammar.Grammar {
	terms := []struct {
		name string
		code int
	}{
		{"number", tNumber}, {"+", tPlus}, {"*", tStar}, {"(", tLParen}, {")", tRParen},
	}
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
		{lhs: "Expr", rhs: []string{"Expr", "+", "Term"}, anode: "Add", trans: []int{0, 2}},
		{lhs: "Expr", rhs: []string{"Term"}, anode: "", trans: []int{0}},
		{lhs: "Term", rhs: []string{"Term", "*", "Factor"}, anode: "Mul", trans: []int{0, 2}},
		{lhs: "Term", rhs: []string{"Factor"}, anode: "", trans: []int{0}},
		{lhs: "Factor", rhs: []string{"number"}, anode: "", trans: []int{0}},
		{lhs: "Factor", rhs: []string{"(", "Expr", ")"}, anode: "", trans: []int{1}},
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
	if code := g.Read(true, readTerminal, readRule); code != grammar.OK {
		tracer().Errorf("grammar: %s", g.LastErrorMessage())
		os.Exit(2)
	}
	return g
}

// lex splits a whitespace-separated expression into terminal codes and
// attrs (the literal text of each token, and the parsed int for
// numbers).
func lex(input string) []struct {
	code int
	attr interface{}
} {
	var out []struct {
		code int
		attr interface{}
	}
	for _, tok := range strings.Fields(input) {
		switch tok {
		case "+":
			out = append(out, struct {
				code int
				attr interface{}
			}{tPlus, tok})
		case "*":
			out = append(out, struct {
				code int
				attr interface{}
			}{tStar, tok})
		case "(":
			out = append(out, struct {
				code int
				attr interface{}
			}{tLParen, tok})
		case ")":
			out = append(out, struct {
				code int
				attr interface{}
			}{tRParen, tok})
		default:
			n, err := strconv.Atoi(tok)
			if err != nil {
				tracer().Errorf("earleycheck: %q is not a number or operator, treating as garbage", tok)
				n = 0
			}
			out = append(out, struct {
				code int
				attr interface{}
			}{tNumber, n})
		}
	}
	return out
}

func dump(n *forest.Node, indent string) {
	if n == nil {
		fmt.Println(indent + "<nil>")
		return
	}
	switch n.Type {
	case forest.Terminal:
		fmt.Printf("%sterm %v\n", indent, n.Attr)
	case forest.Nil:
		fmt.Println(indent + "nil")
	case forest.Error:
		fmt.Println(indent + "error")
	case forest.Abstract:
		fmt.Printf("%s%s\n", indent, n.Name)
		for _, c := range n.Children {
			dump(c, indent+"  ")
		}
	case forest.Alt:
		fmt.Println(indent + "alt {")
		dump(n.Alt, indent+"  ")
		dump(n.Next, indent+"  ")
		fmt.Println(indent + "}")
	}
}

func main() {
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	demoRecovery := flag.Bool("demo-recovery", false, "feed a malformed expression to exercise error recovery")
	dumpGrammar := flag.Bool("dump-grammar", false, "print the built-in grammar's terminals and rules, sorted, before parsing")
	flag.Parse()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel))

	g := exprGrammar()

	if *dumpGrammar {
		g.EachTerminalByCode(func(s *symtab.Symbol) {
			fmt.Printf("terminal %-8s code=%d\n", s.Repr, s.Code)
		})
		g.EachRuleSorted(func(r *rules.Rule) {
			fmt.Printf("rule %s\n", r.String())
		})
	}

	input := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if input == "" {
		if *demoRecovery {
			input = "2 + + 3 * 4"
		} else {
			input = "2 + 3 * ( 4 + 5 )"
		}
	}
	tracer().Infof("earleycheck: input %q", input)

	toks := lex(input)
	i := 0
	r := parserun.New(g)
	r.ReadToken = func(*parserun.Run) (int, interface{}) {
		if i >= len(toks) {
			return symtab.EOFCode, nil
		}
		t := toks[i]
		i++
		return t.code, t.attr
	}
	r.SyntaxError = func(_ *parserun.Run, errTokIdx int, errAttr interface{},
		startIgnoredIdx int, _ interface{}, startRecoveredIdx int, recoveredAttr interface{}) {
		tracer().Infof("earleycheck: syntax error at token %d (%v); ignored tokens [%d,%d), resuming at %v",
			errTokIdx, errAttr, startIgnoredIdx, startRecoveredIdx, recoveredAttr)
	}

	code, err := r.Parse()
	if err != nil {
		tracer().Errorf("earleycheck: parse failed: %v", err)
		os.Exit(1)
	}
	if code != grammar.OK {
		tracer().Errorf("earleycheck: parse returned %s", code)
		os.Exit(1)
	}

	fmt.Printf("ambiguous: %v\n", r.Ambiguous())
	dump(r.Root(), "")
	r.Dispose()
}
