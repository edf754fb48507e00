package forest

// FreeTree releases every node of a forest, invoking termcb once per
// surviving terminal node and free once per released node (abstract,
// alt, nil and error nodes only; terminals are handed to termcb
// instead, since Node.Attr may alias caller state the builder never
// owned).
//
// Two passes, since the forest is a DAG and a naive single-pass free
// would double-free shared abstract nodes:
//  1. reduce: depth-first mark every reachable node; the second time a
//     child pointer is followed into an already-marked node, the
//     pointer is cleared instead of being followed again, so the sweep
//     below sees each shared node's children exactly once.
//  2. sweep: depth-first free of whatever the reduce pass left behind.
func FreeTree(root *Node, free func(interface{}), termcb func(*Node)) {
	if root == nil {
		return
	}
	reduce(root, make(map[*Node]bool))
	sweep(root, free, termcb, make(map[*Node]bool))
}

func reduce(n *Node, seen map[*Node]bool) {
	if n == nil || seen[n] {
		return
	}
	seen[n] = true
	switch n.Type {
	case Abstract:
		for i, ch := range n.Children {
			if ch != nil && seen[ch] {
				n.Children[i] = nil
				continue
			}
			reduce(ch, seen)
		}
	case Alt:
		if n.Alt != nil && seen[n.Alt] {
			n.Alt = nil
		} else {
			reduce(n.Alt, seen)
		}
		if n.Next != nil && seen[n.Next] {
			n.Next = nil
		} else {
			reduce(n.Next, seen)
		}
	}
}

func sweep(n *Node, free func(interface{}), termcb func(*Node), freed map[*Node]bool) {
	if n == nil || freed[n] {
		return
	}
	freed[n] = true
	switch n.Type {
	case Abstract:
		for _, ch := range n.Children {
			sweep(ch, free, termcb, freed)
		}
	case Alt:
		sweep(n.Alt, free, termcb, freed)
		sweep(n.Next, free, termcb, freed)
	case Terminal:
		if termcb != nil {
			termcb(n)
		}
		return
	}
	if free != nil {
		free(n)
	}
}
