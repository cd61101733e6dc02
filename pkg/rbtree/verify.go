package rbtree

import (
	"errors"
	"fmt"
)

// Invariant violations reported by Verify.
var (
	ErrRedRoot      = errors.New("root is red")
	ErrRedViolation = errors.New("red node has a red child")
	ErrBlackHeight  = errors.New("black height mismatch")
	ErrOrder        = errors.New("keys out of order")
	ErrParentLink   = errors.New("parent link mismatch")
	ErrSize         = errors.New("subtree size mismatch")
)

// Verify checks every red-black, ordering and bookkeeping invariant and
// returns the first violation found, wrapped with the offending node.
// Recursive; the depth is bounded by the tree height.
func (tree *Tree[K]) Verify() error {
	if tree.root == 0 {
		return nil
	}

	if tree.nodes[tree.root].parent != 0 {
		return fmt.Errorf("%w: root #%d has parent #%d", ErrParentLink, tree.root, tree.nodes[tree.root].parent)
	}

	if tree.nodes[tree.root].color == red {
		return ErrRedRoot
	}

	_, err := tree.verifySubtree(tree.root, 0, 0)

	return err
}

// verifySubtree returns the black height of the subtree rooted at nodeIdx.
// lower and upper are the nearest ancestors bounding the subtree keys.
func (tree *Tree[K]) verifySubtree(nodeIdx, lower, upper uint32) (int, error) {
	if nodeIdx == 0 {
		return 1, nil
	}

	alloc := tree.nodes
	nd := alloc[nodeIdx]

	if lower != 0 && tree.cmp(alloc[lower].key, nd.key) >= 0 {
		return 0, fmt.Errorf("%w: node #%d not above #%d", ErrOrder, nodeIdx, lower)
	}

	if upper != 0 && tree.cmp(nd.key, alloc[upper].key) >= 0 {
		return 0, fmt.Errorf("%w: node #%d not below #%d", ErrOrder, nodeIdx, upper)
	}

	for _, child := range [2]uint32{nd.left, nd.right} {
		if child == 0 {
			continue
		}

		if alloc[child].parent != nodeIdx {
			return 0, fmt.Errorf("%w: node #%d points to parent #%d instead of #%d",
				ErrParentLink, child, alloc[child].parent, nodeIdx)
		}

		if nd.color == red && alloc[child].color == red {
			return 0, fmt.Errorf("%w: #%d -> #%d", ErrRedViolation, nodeIdx, child)
		}
	}

	if want := alloc[nd.left].size + alloc[nd.right].size + 1; nd.size != want {
		return 0, fmt.Errorf("%w: node #%d has %d, want %d", ErrSize, nodeIdx, nd.size, want)
	}

	leftHeight, err := tree.verifySubtree(nd.left, lower, nodeIdx)
	if err != nil {
		return 0, err
	}

	rightHeight, err := tree.verifySubtree(nd.right, nodeIdx, upper)
	if err != nil {
		return 0, err
	}

	if leftHeight != rightHeight {
		return 0, fmt.Errorf("%w: node #%d has %d on the left and %d on the right",
			ErrBlackHeight, nodeIdx, leftHeight, rightHeight)
	}

	if nd.color == black {
		leftHeight++
	}

	return leftHeight, nil
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (tree *Tree[K]) Height() int {
	return tree.height(tree.root)
}

func (tree *Tree[K]) height(nodeIdx uint32) int {
	if nodeIdx == 0 {
		return 0
	}

	return 1 + max(tree.height(tree.nodes[nodeIdx].left), tree.height(tree.nodes[nodeIdx].right))
}

// BlackHeight returns the number of black nodes on the leftmost root-to-leaf
// path. For a valid tree every path has the same count.
func (tree *Tree[K]) BlackHeight() int {
	count := 0

	for cursor := tree.root; cursor != 0; cursor = tree.nodes[cursor].left {
		if tree.nodes[cursor].color == black {
			count++
		}
	}

	return count
}
