package grammar

import (
	"github.com/npillmayer/earleycore/rules"
	"github.com/npillmayer/earleycore/symtab"
	"github.com/npillmayer/earleycore/termset"
)

// Read drives the two reader callbacks to build this grammar, then
// analyzes it. On success it returns OK and the grammar is Ready(); on
// failure it returns the failing ErrorCode and the grammar is rolled
// back to not-ready, so a caller may fix the callbacks and Read again
// on the same Grammar object.
func (g *Grammar) Read(strict bool, readTerminal ReadTerminalFunc, readRule ReadRuleFunc) ErrorCode {
	g.Symbols = symtab.New()
	g.Rules = rules.NewStore()
	g.lastErr = nil
	g.ready = false

	for {
		name, code, ok := readTerminal()
		if !ok {
			break
		}
		if isReservedName(name) {
			return g.fail(FixedNameUsage, "terminal name %q is reserved", name)
		}
		if _, err := g.Symbols.AddTerminal(name, code); err != nil {
			switch err {
			case symtab.ErrNegativeTermCode:
				return g.fail(NegativeTermCode, "terminal %q has negative code %d", name, code)
			case symtab.ErrRepeatedTermCode:
				return g.fail(RepeatedTermCode, "terminal code %d reused for %q", code, name)
			default:
				return g.fail(RepeatedTermDecl, "terminal %q declared more than once", name)
			}
		}
	}
	g.Symbols.FinishAddingTerminals()

	firstUserLHS := ""
	ruleIdx := 0
	for {
		lhsName, rhsNames, anode, anodeCost, transl, mark, rhsMarks, ok := readRule()
		if !ok {
			break
		}
		if isReservedName(lhsName) {
			return g.fail(FixedNameUsage, "rule LHS %q is reserved", lhsName)
		}
		if lhsSym, isTerm := g.Symbols.FindByRepr(lhsName); isTerm && lhsSym.IsTerminal() {
			return g.fail(TermInRuleLhs, "terminal %q used as rule LHS", lhsName)
		}
		if anodeCost < 0 {
			return g.fail(NegativeCost, "rule for %q has negative cost %d", lhsName, anodeCost)
		}
		if err := validateTranslation(anode, transl, len(rhsNames)); err != nil {
			return g.fail(err.code, "%s", err.detail)
		}

		if ruleIdx == 0 {
			firstUserLHS = lhsName
			g.injectStartRules(firstUserLHS)
		}

		lhs := g.Symbols.AddNonterminal(lhsName)
		rhs := make([]*symtab.Symbol, len(rhsNames))
		for i, name := range rhsNames {
			if name == symtab.ErrorName {
				rhs[i] = g.Symbols.Error
				continue
			}
			if sym, ok := g.Symbols.FindByRepr(name); ok {
				rhs[i] = sym
			} else {
				rhs[i] = g.Symbols.AddNonterminal(name)
			}
		}
		var marks []byte
		if rhsMarks != "" {
			marks = []byte(rhsMarks)
		}
		g.Rules.Add(lhs, rhs, marks, mark, transl, anode, anodeCost)
		ruleIdx++
	}
	if ruleIdx == 0 {
		return g.fail(NoRules, "grammar has no rules")
	}

	analysis, aerr := analyze(g.Symbols, g.Rules, strict)
	if aerr != nil {
		return g.fail(aerr.code, "%s", aerr.detail)
	}
	g.analysis = analysis
	g.Symbols.EachSymbol(func(s *symtab.Symbol) {
		s.CanDeriveEmpty = analysis.Empty(s)
		s.DerivesString = analysis.DerivesString(s)
		s.Accessible = analysis.Accessible(s)
		s.Loop = analysis.Loop(s)
	})

	g.Terms = termset.NewStore(g.Symbols.NumTerminals())
	g.buildTerminalSets()
	g.Dotted = rules.NewDottedRulePool(g.Terms,
		func(s *symtab.Symbol) termset.ID { return g.analysis.firstIDs[s.ID] },
		func(s *symtab.Symbol) termset.ID { return g.analysis.followIDs[s.ID] },
	)

	g.ready = true
	return OK
}

// injectStartRules adds rule 0 ($S → <firstLHS> $eof) and the `error`
// recovery rule ($S → error $eof). firstLHS need not exist yet as a
// symbol; it is auto-created as a nonterminal here.
func (g *Grammar) injectStartRules(firstLHS string) {
	start := g.Symbols.AddNonterminal(firstLHS)
	g.Rules.Add(g.Symbols.Axiom, []*symtab.Symbol{start, g.Symbols.EOF}, nil, 0, []int{0}, "", 0)
	g.Rules.Add(g.Symbols.Axiom, []*symtab.Symbol{g.Symbols.Error, g.Symbols.EOF}, nil, 0, []int{0}, "", 0)
}

func isReservedName(name string) bool {
	return name == symtab.AxiomName || name == symtab.EOFName
}

// validateTranslation checks IncorrectTranslation, IncorrectSymbolNumber
// and RepeatedSymbolNumber for a rule's supplied translation indices.
func validateTranslation(anode string, transl []int, rhsLen int) *codeError {
	nonNeg := 0
	seen := make(map[int]bool)
	for _, t := range transl {
		if t == NilTranslation {
			continue
		}
		if t < 0 {
			continue
		}
		nonNeg++
		if t >= rhsLen {
			return newError(IncorrectSymbolNumber, "translation index %d out of range (RHS has %d symbols)", t, rhsLen)
		}
		if seen[t] {
			return newError(RepeatedSymbolNumber, "translation index %d used more than once", t)
		}
		seen[t] = true
	}
	if anode == "" && nonNeg > 1 {
		return newError(IncorrectTranslation, "rule without an abstract node may reference at most one RHS symbol")
	}
	return nil
}

// buildTerminalSets interns FIRST/FOLLOW sets (computed during analyze
// as plain bitsets) into g.Terms, recording their ids for the dotted-
// rule pool's lookahead computation.
func (g *Grammar) buildTerminalSets() {
	n := g.Symbols.NumTerminals()
	g.analysis.firstIDs = make(map[symtab.ID]termset.ID)
	g.analysis.followIDs = make(map[symtab.ID]termset.ID)
	g.Symbols.EachSymbol(func(s *symtab.Symbol) {
		first := termset.NewSet(n)
		for _, bit := range g.analysis.first[s.ID] {
			first.Up(bit)
		}
		id, _ := g.Terms.InsertOrFind(first)
		g.analysis.firstIDs[s.ID] = id

		follow := termset.NewSet(n)
		for _, bit := range g.analysis.follow[s.ID] {
			follow.Up(bit)
		}
		fid, _ := g.Terms.InsertOrFind(follow)
		g.analysis.followIDs[s.ID] = fid
	})
}
