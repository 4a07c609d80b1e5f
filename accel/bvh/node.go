package bvh

import "github.com/lunex-engine/rtscene/types"

type NodeKind uint8

const (
	Internal NodeKind = iota
	Leaf
)

// Node is a BVH node. Leaves reference a contiguous primitive range
// [First, First+Count); internal nodes reference their left child while
// the right child is always stored at Left+1.
type Node struct {
	Bounds types.AABB
	Kind   NodeKind

	// Leaf data.
	First uint32
	Count uint32

	// Internal node data.
	Left uint32
}

// IsLeaf returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.Kind == Leaf
}

// Right returns the index of the right child of an internal node.
func (n *Node) Right() uint32 {
	return n.Left + 1
}

func (n *Node) setLeaf(first, count uint32) {
	n.Kind = Leaf
	n.First = first
	n.Count = count
	n.Left = 0
}

func (n *Node) setChildNodes(left uint32) {
	n.Kind = Internal
	n.Left = left
	n.First = 0
	n.Count = 0
}
