package comment

import "sort"

// Node is a comment with its replies.
type Node struct {
	Comment *Comment
	Replies []*Node
}

// BuildThread assembles comments (in insertion order) into a forest. A
// comment whose parent is absent from the input becomes a root. Roots are
// newest first; replies keep insertion order.
func BuildThread(comments []*Comment) []*Node {
	nodes := make(map[string]*Node, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &Node{Comment: c}
	}

	var roots []*Node
	for _, c := range comments {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && parent != n {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].Comment.CreatedAt.After(roots[j].Comment.CreatedAt)
	})
	return roots
}

// Walk visits every node depth-first, passing its depth.
func Walk(roots []*Node, fn func(n *Node, depth int)) {
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			visit(n.Replies, depth+1)
		}
	}
	visit(roots, 0)
}
