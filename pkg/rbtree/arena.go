package rbtree

import (
	"math"

	"github.com/Sumatoshi-tech/rangeq/pkg/safeconv"
)

// growCapacityNumerator and growCapacityDenominator define the 3/2 growth factor for storage.
const (
	growCapacityNumerator   = 3
	growCapacityDenominator = 2
)

const (
	red   = false
	black = true
)

type node[K any] struct {
	key                 K
	parent, left, right uint32
	size                uint32 // Nodes in the subtree rooted here.
	color               bool   // Black or red.
}

// newArena returns storage with the reserved absent slot already in place.
func newArena[K any](capacity int) []node[K] {
	storage := make([]node[K], 1, capacity+1)
	storage[0].color = black

	return storage
}

// malloc appends a detached red node and returns its index. The arena may
// be reallocated, so callers must not hold on to node slices across it.
func (tree *Tree[K]) malloc(key K, parent uint32) uint32 {
	nodeLen := len(tree.nodes)

	if uint64(nodeLen) >= math.MaxUint32 {
		// [math.MaxUint32] would not fit in the subtree sizes.
		panic("the size of the rbtree arena has reached the maximum value for uint32")
	}

	if nodeLen == cap(tree.nodes) {
		grown := make([]node[K], nodeLen, nodeLen*growCapacityNumerator/growCapacityDenominator+1)
		copy(grown, tree.nodes)
		tree.nodes = grown
	}

	tree.nodes = append(tree.nodes, node[K]{
		key: key, parent: parent, left: 0, right: 0, size: 1, color: red,
	})

	return safeconv.MustIntToUint32(nodeLen)
}

func doAssert(condition bool) {
	if !condition {
		panic("rbtree internal assertion failed")
	}
}

// Internal node attribute accessors.

func isLeftChild[K any](nodeIdx uint32, alloc []node[K]) bool {
	return nodeIdx == alloc[alloc[nodeIdx].parent].left
}

func isRightChild[K any](nodeIdx uint32, alloc []node[K]) bool {
	return nodeIdx == alloc[alloc[nodeIdx].parent].right
}

func uncleOf[K any](nodeIdx uint32, alloc []node[K]) uint32 {
	parent := alloc[nodeIdx].parent
	grandparent := alloc[parent].parent

	if grandparent == 0 {
		return 0
	}

	if isLeftChild(parent, alloc) {
		return alloc[grandparent].right
	}

	return alloc[grandparent].left
}

func leftmost[K any](nodeIdx uint32, alloc []node[K]) uint32 {
	for alloc[nodeIdx].left != 0 {
		nodeIdx = alloc[nodeIdx].left
	}

	return nodeIdx
}

func rightmost[K any](nodeIdx uint32, alloc []node[K]) uint32 {
	for alloc[nodeIdx].right != 0 {
		nodeIdx = alloc[nodeIdx].right
	}

	return nodeIdx
}

// Return the minimum node that's larger than N. Return 0 if no such
// node is found.
func doNext[K any](nodeIdx uint32, alloc []node[K]) uint32 {
	if alloc[nodeIdx].right != 0 {
		return leftmost(alloc[nodeIdx].right, alloc)
	}

	for nodeIdx != 0 {
		parentIdx := alloc[nodeIdx].parent
		if parentIdx == 0 {
			return 0
		}

		if isLeftChild(nodeIdx, alloc) {
			return parentIdx
		}

		nodeIdx = parentIdx
	}

	return 0
}

// Return the maximum node that's smaller than N. Return 0 if no
// such node is found.
func doPrev[K any](nodeIdx uint32, alloc []node[K]) uint32 {
	if alloc[nodeIdx].left != 0 {
		return rightmost(alloc[nodeIdx].left, alloc)
	}

	for nodeIdx != 0 {
		parentIdx := alloc[nodeIdx].parent
		if parentIdx == 0 {
			return 0
		}

		if isRightChild(nodeIdx, alloc) {
			return parentIdx
		}

		nodeIdx = parentIdx
	}

	return 0
}
