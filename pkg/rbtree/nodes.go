package rbtree

// NodeInfo is a read-only view of one arena node, meant for exporters and
// diagnostics. Links hold arena ids, with 0 meaning absent.
type NodeInfo[K any] struct {
	Key    K
	ID     uint32
	Parent uint32
	Left   uint32
	Right  uint32
	Red    bool
}

// RootID returns the arena id of the root, 0 when the tree is empty.
func (tree *Tree[K]) RootID() uint32 {
	return tree.root
}

// Nodes visits every node in pre-order (node, left, right) until visit
// returns false. The walk uses an explicit stack.
func (tree *Tree[K]) Nodes(visit func(NodeInfo[K]) bool) {
	if tree.root == 0 {
		return
	}

	alloc := tree.nodes
	stack := []uint32{tree.root}

	for len(stack) > 0 {
		nodeIdx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nd := alloc[nodeIdx]

		info := NodeInfo[K]{
			Key:    nd.key,
			ID:     nodeIdx,
			Parent: nd.parent,
			Left:   nd.left,
			Right:  nd.right,
			Red:    nd.color == red,
		}
		if !visit(info) {
			return
		}

		if nd.right != 0 {
			stack = append(stack, nd.right)
		}

		if nd.left != 0 {
			stack = append(stack, nd.left)
		}
	}
}
