// Package thread rebuilds reply trees from flat comment records and turns
// them back into flat, context-carrying rows.
//
// Nodes live in an arena keyed by comment id; a node's children are held
// as ids. All traversals use an explicit stack so input depth never maps
// onto call-stack depth.
package thread

import (
	"encoding/json"
	"slices"

	"github.com/fragmede/threadprep/internal/comment"
)

// Node is a comment inside a forest.
type Node struct {
	comment.Record

	Children []string
	Images   []string
}

// Forest is an ordered set of independent comment trees.
type Forest struct {
	Roots []string
	nodes map[string]*Node
}

func newForest(size int) *Forest {
	return &Forest{nodes: make(map[string]*Node, size)}
}

// Node returns the node with the given id, or nil.
func (f *Forest) Node(id string) *Node {
	return f.nodes[id]
}

// Len returns the number of nodes reachable from the roots.
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Children returns the child nodes of n in order.
func (f *Forest) Children(n *Node) []*Node {
	kids := make([]*Node, 0, len(n.Children))
	for _, id := range n.Children {
		if c := f.nodes[id]; c != nil {
			kids = append(kids, c)
		}
	}
	return kids
}

// Visit is one step of a pre-order walk.
type Visit struct {
	Node  *Node
	Root  *Node
	Depth int
	// Ancestors runs from the root to the parent. Siblings share the
	// slice, so it must be treated as read-only.
	Ancestors []*Node
}

// Parent returns the visited node's parent, or nil for a root.
func (v Visit) Parent() *Node {
	if len(v.Ancestors) == 0 {
		return nil
	}
	return v.Ancestors[len(v.Ancestors)-1]
}

// Walk visits every tree in root order. See WalkTree.
func (f *Forest) Walk(fn func(Visit) bool) {
	for _, id := range f.Roots {
		f.WalkTree(id, fn)
	}
}

// WalkTree visits one tree in pre-order: a node, then each child subtree
// in order. When fn returns false the node's children are not visited.
func (f *Forest) WalkTree(rootID string, fn func(Visit) bool) {
	root := f.nodes[rootID]
	if root == nil {
		return
	}
	stack := []Visit{{Node: root, Root: root}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(v) {
			continue
		}
		if len(v.Node.Children) == 0 {
			continue
		}
		anc := append(slices.Clip(v.Ancestors), v.Node)
		for i := len(v.Node.Children) - 1; i >= 0; i-- {
			child := f.nodes[v.Node.Children[i]]
			if child == nil {
				continue
			}
			stack = append(stack, Visit{
				Node:      child,
				Root:      v.Root,
				Depth:     v.Depth + 1,
				Ancestors: anc,
			})
		}
	}
}

// MaxDepth returns the depth of the deepest node, or -1 for an empty forest.
func (f *Forest) MaxDepth() int {
	deepest := -1
	f.Walk(func(v Visit) bool {
		deepest = max(deepest, v.Depth)
		return true
	})
	return deepest
}

// MarshalJSON writes the forest as nested comment objects carrying
// "children" and, once propagated, "images".
func (f *Forest) MarshalJSON() ([]byte, error) {
	trees := make([]map[string]any, 0, len(f.Roots))
	for _, id := range f.Roots {
		if n := f.nodes[id]; n != nil {
			trees = append(trees, f.nested(n))
		}
	}
	return json.Marshal(trees)
}

func (f *Forest) nested(n *Node) map[string]any {
	obj := n.Record.Fields()
	kids := make([]map[string]any, 0, len(n.Children))
	for _, c := range f.Children(n) {
		kids = append(kids, f.nested(c))
	}
	obj["children"] = kids
	if n.Images != nil {
		obj["images"] = n.Images
	}
	return obj
}
