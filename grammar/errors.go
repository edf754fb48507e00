package grammar

import "fmt"

// ErrorCode enumerates the grammar-definition and parse-time error
// conditions. ErrorCode implements error so it can be returned directly,
// but callers that need the templated detail message should use
// (*Grammar).LastErrorMessage() after a failing Read.
type ErrorCode int

const (
	OK ErrorCode = iota
	NoMemory
	UndefinedOrBadGrammar
	DescriptionSyntaxError
	FixedNameUsage
	RepeatedTermDecl
	NegativeTermCode
	RepeatedTermCode
	NoRules
	TermInRuleLhs
	IncorrectTranslation
	NegativeCost
	IncorrectSymbolNumber
	RepeatedSymbolNumber
	UnaccessibleNonTerm
	NonTermDerivation
	LoopNonTerm
	InvalidTokenCode
)

var errorNames = map[ErrorCode]string{
	OK:                     "ok",
	NoMemory:               "out of memory",
	UndefinedOrBadGrammar:  "grammar is undefined or invalid",
	DescriptionSyntaxError: "syntax error in grammar description",
	FixedNameUsage:         "use of a reserved name",
	RepeatedTermDecl:       "terminal declared more than once",
	NegativeTermCode:       "negative terminal code",
	RepeatedTermCode:       "terminal code declared more than once",
	NoRules:                "grammar has no rules",
	TermInRuleLhs:          "terminal used as rule left-hand side",
	IncorrectTranslation:   "inconsistent translation indices",
	NegativeCost:           "negative abstract-node cost",
	IncorrectSymbolNumber:  "incorrect symbol number",
	RepeatedSymbolNumber:   "repeated symbol number",
	UnaccessibleNonTerm:    "nonterminal is not accessible from the axiom",
	NonTermDerivation:      "nonterminal does not derive any terminal string",
	LoopNonTerm:            "nonterminal can derive only itself",
	InvalidTokenCode:       "invalid token code",
}

func (e ErrorCode) String() string {
	if s, ok := errorNames[e]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}

// codeError pairs an ErrorCode with a detail message describing the
// specific symbol/rule that triggered it.
type codeError struct {
	code   ErrorCode
	detail string
}

func newError(code ErrorCode, format string, args ...interface{}) *codeError {
	return &codeError{code: code, detail: fmt.Sprintf(format, args...)}
}

func (e *codeError) Error() string {
	return fmt.Sprintf("%s: %s", e.code, e.detail)
}

func (e *codeError) Code() ErrorCode {
	return e.code
}
