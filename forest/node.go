/*
Package forest builds and disposes parse-forest DAGs from the state
sets an earley.Engine has recorded: back-tracing each rule's RHS
right-to-left, memoizing abstract nodes by (rule, origin, set index) so
two derivations that reach the same (rule, span) share one node, and
collecting ambiguity as linked alt cells rather than duplicating
subtrees.

Grounded on lr/earley/parsetree.go's Walk (backwards right-to-left
traversal over RHS, item-completion search per symbol, ambiguity
resolution) for the back-traversal shape, and on original_source's
YaepTreeNode/YaepAbstractNode/YaepAltNode union for the node model this
package reproduces in Go as a single tagged struct instead of a C union.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package forest

// NodeType tags the concrete type of a Node.
type NodeType int

const (
	Nil NodeType = iota
	Error
	Terminal
	Abstract
	Alt
)

func (t NodeType) String() string {
	switch t {
	case Nil:
		return "nil"
	case Error:
		return "error"
	case Terminal:
		return "terminal"
	case Abstract:
		return "abstract"
	case Alt:
		return "alt"
	default:
		return "?"
	}
}

// Node is a generalized parse-forest node. Only the field group
// selected by Type is meaningful.
type Node struct {
	Type NodeType

	// Terminal (Mark is shared with Abstract)
	Code int
	Mark byte
	Attr interface{}

	// Abstract (also uses Mark)
	Name     string
	Cost     int
	Children []*Node

	// Alt
	Alt  *Node // the alternative's own node (never itself an Alt)
	Next *Node // next alternative, or nil

	visited bool // not read anywhere: FreeTree's reduce pass tracks visits in its own map
}

// NewTerminalNode creates a terminal leaf for a shifted token.
func NewTerminalNode(code int, mark byte, attr interface{}) *Node {
	return &Node{Type: Terminal, Code: code, Mark: mark, Attr: attr}
}

// NewNilNode creates the sentinel used when a rule's translation drops
// a child explicitly (grammar.NilTranslation).
func NewNilNode() *Node {
	return &Node{Type: Nil}
}

// NewErrorNode creates the node used as the translation of a shifted
// `error` pseudo-terminal.
func NewErrorNode() *Node {
	return &Node{Type: Error}
}

// memoKey identifies an abstract node by the production that built it
// and the span it covers, so two derivations reaching the same (rule,
// origin, set index) collapse onto one shared node.
type memoKey struct {
	ruleSerial int
	origin     int
	setIdx     int
}
