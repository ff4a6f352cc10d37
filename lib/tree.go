package lib

import (
	"github.com/pkg/errors"
)

// Node is a node of a partition tree. A leaf is a concrete subnet, an
// internal node is a subnet split into two equal halves: children[0] is the
// lower half and children[1] the upper half.
type Node struct {
	ID     int
	Remark string // only meaningful on leaves

	// LeafCount and DepthField are caches, valid only right after
	// Tree.Recompute.
	LeafCount  int
	DepthField int

	children *[2]*Node
}

// IsLeaf tells whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.children == nil
}

// Left returns the lower half, or nil on a leaf.
func (n *Node) Left() *Node {
	if n.children == nil {
		return nil
	}
	return n.children[0]
}

// Right returns the upper half, or nil on a leaf.
func (n *Node) Right() *Node {
	if n.children == nil {
		return nil
	}
	return n.children[1]
}

// Tree is a binary partition tree. It owns the node id allocator, so ids
// stay unique for the whole lifetime of the Tree, across StartOver calls.
type Tree struct {
	Root   *Node
	nextID int
}

// NewTree creates a tree made of a single leaf.
func NewTree() *Tree {
	t := &Tree{}
	t.Root = t.CreateLeaf()
	return t
}

// CreateLeaf allocates a leaf with a fresh id. The leaf is not attached.
func (t *Tree) CreateLeaf() *Node {
	n := &Node{ID: t.nextID}
	t.nextID++
	return n
}

// StartOver replaces the whole tree with a single new leaf.
func (t *Tree) StartOver() {
	t.Root = t.CreateLeaf()
}

// Divide turns a leaf into an internal node with two new leaves. Checking
// that the subnet is still divisible (mask < 32) is up to the caller.
func (t *Tree) Divide(n *Node) error {
	if !n.IsLeaf() {
		return errors.Errorf("node %d is already divided", n.ID)
	}
	n.children = &[2]*Node{t.CreateLeaf(), t.CreateLeaf()}
	return nil
}

// Join discards the subtree under n. The remark of n itself is kept.
func (t *Tree) Join(n *Node) error {
	if n.IsLeaf() {
		return errors.Errorf("node %d is not divided", n.ID)
	}
	n.children = nil
	return nil
}

// Recompute refreshes the LeafCount and DepthField caches of every node.
func (t *Tree) Recompute() {
	RecomputeLeafCounts(t.Root)
	RecomputeDepthField(t.Root)
}

// Find returns the node with the given id, or nil.
func (t *Tree) Find(id int) *Node {
	var found *Node
	walk(t.Root, func(n *Node) bool {
		if n.ID == id {
			found = n
		}
		return found == nil
	})
	return found
}

// RecomputeLeafCounts sets LeafCount on every node of the subtree and
// returns the number of leaves under n.
func RecomputeLeafCounts(n *Node) int {
	if n.IsLeaf() {
		n.LeafCount = 1
		return 1
	}
	n.LeafCount = RecomputeLeafCounts(n.children[0]) +
		RecomputeLeafCounts(n.children[1])
	return n.LeafCount
}

// RecomputeDepthField sets DepthField on every node of the subtree. It must
// run after RecomputeLeafCounts: an internal node stores the sum of its
// children's results and hands its own LeafCount to the caller, so that
// DepthField ends up equal to LeafCount rather than to the height. The row
// layout sizes its mask columns from these values.
func RecomputeDepthField(n *Node) int {
	if n.IsLeaf() {
		n.DepthField = 0
		return 1
	}
	n.DepthField = RecomputeDepthField(n.children[0]) +
		RecomputeDepthField(n.children[1])
	return n.LeafCount
}

// Leaves returns the leaves under n in left-to-right order.
func Leaves(n *Node) []*Node {
	var leaves []*Node
	walk(n, func(c *Node) bool {
		if c.IsLeaf() {
			leaves = append(leaves, c)
		}
		return true
	})
	return leaves
}

// DescendantIDs returns the ids of n and of every node below it.
func DescendantIDs(n *Node) map[int]struct{} {
	ids := make(map[int]struct{})
	walk(n, func(c *Node) bool {
		ids[c.ID] = struct{}{}
		return true
	})
	return ids
}

// walk visits the subtree in pre-order until f returns false.
func walk(n *Node, f func(*Node) bool) bool {
	if !f(n) {
		return false
	}
	if n.children != nil {
		return walk(n.children[0], f) && walk(n.children[1], f)
	}
	return true
}
