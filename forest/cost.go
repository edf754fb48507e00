package forest

// PruneCost walks an ambiguous forest and replaces every alt chain with
// its minimum-cost alternative: an abstract node's cost is its own cost
// plus the cost of every (already-resolved) child; terminal, nil and
// error nodes cost 0. Node costs are memoized by pointer identity so a
// shared abstract node is only priced once.
//
// Call this only when the grammar's cost flag is set and Builder.Build
// reported ambiguity; on a non-ambiguous forest there are no alt chains
// to resolve and the root is returned unchanged.
func PruneCost(root *Node) *Node {
	memo := make(map[*Node]int)
	root = resolveAlt(root, memo)
	costOf(root, memo)
	return root
}

// resolveAlt collapses an alt chain to its cheapest candidate, itself
// resolved recursively; a plain node is returned unchanged.
func resolveAlt(n *Node, memo map[*Node]int) *Node {
	if n.Type != Alt {
		return n
	}
	var candidates []*Node
	cur := n
	for cur.Type == Alt {
		candidates = append(candidates, resolveAlt(cur.Alt, memo))
		cur = cur.Next
	}
	candidates = append(candidates, resolveAlt(cur, memo))

	best := candidates[0]
	bestCost := costOf(best, memo)
	for _, c := range candidates[1:] {
		if cc := costOf(c, memo); cc < bestCost {
			best, bestCost = c, cc
		}
	}
	return best
}

func costOf(n *Node, memo map[*Node]int) int {
	if c, ok := memo[n]; ok {
		return c
	}
	var c int
	if n.Type == Abstract {
		c = n.Cost
		for i, ch := range n.Children {
			resolved := resolveAlt(ch, memo)
			n.Children[i] = resolved
			c += costOf(resolved, memo)
		}
	}
	memo[n] = c
	return c
}
