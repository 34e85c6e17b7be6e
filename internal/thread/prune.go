package thread

// DefaultMaxDepth is the deepest level kept by Prune. Roots are depth 0.
const DefaultMaxDepth = 5

// Prune truncates every tree so no node is deeper than maxDepth. Nodes at
// maxDepth keep their own data but lose their children; everything below
// them is dropped from the forest. Pruning happens in place and returns
// the number of nodes removed. A second call with the same depth removes
// nothing.
func Prune(f *Forest, maxDepth int) int {
	if maxDepth < 0 {
		maxDepth = 0
	}
	var cut []string
	f.Walk(func(v Visit) bool {
		if v.Depth < maxDepth {
			return true
		}
		cut = append(cut, v.Node.Children...)
		v.Node.Children = []string{}
		return false
	})

	removed := 0
	for len(cut) > 0 {
		id := cut[len(cut)-1]
		cut = cut[:len(cut)-1]
		n := f.nodes[id]
		if n == nil {
			continue
		}
		cut = append(cut, n.Children...)
		delete(f.nodes, id)
		removed++
	}
	return removed
}
