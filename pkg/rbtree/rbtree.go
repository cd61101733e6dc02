// Package rbtree provides an arena-backed red-black tree keyed by an injected
// comparator, with STL-like boundary search and rank distance between
// iterators.
package rbtree

import (
	"cmp"
	"math"
	"unsafe"
)

// MaxCapacity is the largest number of keys a tree can hold. One arena slot
// is reserved and indices are uint32.
const MaxCapacity = math.MaxUint32 - 1

// Tree is a red-black tree holding unique keys, with an API similar to
// C++ STL's std::set.
//
// Nodes live in a flat arena owned by the tree and refer to each other by
// uint32 index. Index 0 is reserved and stands for an absent node, so the
// parent back-reference is just an index and never owns anything. Every
// node also carries the size of its subtree, which turns the tree into an
// order-statistics set.
//
// A Tree is not safe for concurrent mutation.
type Tree[K any] struct {
	// Nodes arena. nodes[0] is the absent sentinel.
	nodes []node[K]

	// Root of the tree, 0 when empty.
	root uint32

	cmp func(a, b K) int
}

// Option configures a Tree at construction time.
type Option func(*options)

type options struct {
	capacity int
}

// WithCapacity pre-sizes the arena for the given number of keys, clamped to
// MaxCapacity.
func WithCapacity(capacity int) Option {
	return func(opts *options) {
		if capacity > 0 {
			opts.capacity = int(min(int64(capacity), MaxCapacity))
		}
	}
}

// New creates an empty tree ordered by compare, which must return a
// negative number, zero or a positive number when a is less than, equal to
// or greater than b, and must define a strict weak order.
func New[K any](compare func(a, b K) int, opts ...Option) *Tree[K] {
	doAssert(compare != nil)

	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Tree[K]{nodes: newArena[K](cfg.capacity), root: 0, cmp: compare}
}

// NewOrdered creates an empty tree over a naturally ordered key type.
func NewOrdered[K cmp.Ordered](opts ...Option) *Tree[K] {
	return New(cmp.Compare[K], opts...)
}

// Len returns the number of keys in the tree.
func (tree *Tree[K]) Len() int {
	return int(tree.nodes[tree.root].size)
}

// Clone performs a deep copy of the tree. Node indices are stable, so the
// copy has exactly the shape and colors of the original. Keys themselves are
// copied by value.
func (tree *Tree[K]) Clone() *Tree[K] {
	nodes := make([]node[K], len(tree.nodes), cap(tree.nodes))
	copy(nodes, tree.nodes)

	return &Tree[K]{nodes: nodes, root: tree.root, cmp: tree.cmp}
}

// Take moves the contents of the tree into a new Tree and leaves the
// receiver empty. Iterators obtained before the call must not be used with
// the receiver afterwards.
func (tree *Tree[K]) Take() *Tree[K] {
	moved := &Tree[K]{nodes: tree.nodes, root: tree.root, cmp: tree.cmp}

	tree.nodes = newArena[K](0)
	tree.root = 0

	return moved
}

// Reset releases every node at once.
func (tree *Tree[K]) Reset() {
	tree.nodes = newArena[K](0)
	tree.root = 0
}

// ArenaSlots returns the number of allocated arena slots, including the
// reserved one.
func (tree *Tree[K]) ArenaSlots() int {
	return cap(tree.nodes)
}

// ArenaBytes returns the memory reserved by the arena.
func (tree *Tree[K]) ArenaBytes() uint64 {
	return uint64(cap(tree.nodes)) * uint64(unsafe.Sizeof(node[K]{}))
}

// Insert adds key to the tree. If the key is already present, nothing
// changes and the result is false plus an iterator at the existing key.
// Otherwise the result is true plus an iterator at the new key.
func (tree *Tree[K]) Insert(key K) (bool, Iterator[K]) {
	if tree.root == 0 {
		nodeIdx := tree.malloc(key, 0)
		tree.nodes[nodeIdx].color = black
		tree.root = nodeIdx

		return true, Iterator[K]{tree, nodeIdx}
	}

	cursor := tree.root

	for {
		comp := tree.cmp(key, tree.nodes[cursor].key)

		switch {
		case comp == 0:
			return false, Iterator[K]{tree, cursor}
		case comp < 0:
			if tree.nodes[cursor].left == 0 {
				nodeIdx := tree.malloc(key, cursor)
				tree.nodes[cursor].left = nodeIdx
				tree.attached(nodeIdx)

				return true, Iterator[K]{tree, nodeIdx}
			}

			cursor = tree.nodes[cursor].left
		default:
			if tree.nodes[cursor].right == 0 {
				nodeIdx := tree.malloc(key, cursor)
				tree.nodes[cursor].right = nodeIdx
				tree.attached(nodeIdx)

				return true, Iterator[K]{tree, nodeIdx}
			}

			cursor = tree.nodes[cursor].right
		}
	}
}

// attached accounts for a freshly linked red leaf and restores the
// red-black properties.
func (tree *Tree[K]) attached(nodeIdx uint32) {
	for ancestor := tree.nodes[nodeIdx].parent; ancestor != 0; ancestor = tree.nodes[ancestor].parent {
		tree.nodes[ancestor].size++
	}

	tree.fixViolation(nodeIdx)
}

func (tree *Tree[K]) fixViolation(nodeIdx uint32) {
	alloc := tree.nodes

	for nodeIdx != tree.root && alloc[alloc[nodeIdx].parent].color == red {
		parent := alloc[nodeIdx].parent
		uncle := uncleOf(nodeIdx, alloc)

		if uncle == 0 || alloc[uncle].color == black {
			tree.handleBlackUncle(nodeIdx)

			break
		}

		// Red uncle: push the blackness down from the grandparent and
		// continue from there.
		grandparent := alloc[parent].parent
		alloc[parent].color = black
		alloc[uncle].color = black
		alloc[grandparent].color = red
		nodeIdx = grandparent
	}

	alloc[tree.root].color = black
}

func (tree *Tree[K]) handleBlackUncle(nodeIdx uint32) {
	alloc := tree.nodes
	parent := alloc[nodeIdx].parent

	// Straighten a triangle into a line.
	switch {
	case isLeftChild(nodeIdx, alloc) && isRightChild(parent, alloc):
		tree.rotateRight(parent)
		nodeIdx = alloc[nodeIdx].right
	case isRightChild(nodeIdx, alloc) && isLeftChild(parent, alloc):
		tree.rotateLeft(parent)
		nodeIdx = alloc[nodeIdx].left
	}

	parent = alloc[nodeIdx].parent
	grandparent := alloc[parent].parent

	if isLeftChild(nodeIdx, alloc) {
		tree.rotateRight(grandparent)
	} else {
		tree.rotateLeft(grandparent)
	}

	alloc[parent].color = black
	alloc[grandparent].color = red
}

// rotateDirection performs a tree rotation in the specified direction.
// IsLeft=true performs left rotation, isLeft=false performs right rotation.
//
// Left rotation:
//
//	  X              Y
//	A   Y    =>    X   C
//	  B C        A B
//
// Right rotation:
//
//	    Y            X
//	  X   C  =>    A   Y
//	A B              B C
//
//nolint:dupword // ASCII art diagrams contain intentional repeated letters.
func (tree *Tree[K]) rotateDirection(pivot uint32, isLeft bool) {
	alloc := tree.nodes

	var child uint32
	if isLeft {
		child = alloc[pivot].right
	} else {
		child = alloc[pivot].left
	}

	doAssert(child != 0)

	// Move the inner subtree.
	var innerSubtree uint32
	if isLeft {
		innerSubtree = alloc[child].left
		alloc[pivot].right = innerSubtree
	} else {
		innerSubtree = alloc[child].right
		alloc[pivot].left = innerSubtree
	}

	if innerSubtree != 0 {
		alloc[innerSubtree].parent = pivot
	}

	// Update parent links.
	alloc[child].parent = alloc[pivot].parent

	switch {
	case alloc[pivot].parent == 0:
		tree.root = child
	case isLeftChild(pivot, alloc):
		alloc[alloc[pivot].parent].left = child
	default:
		alloc[alloc[pivot].parent].right = child
	}

	// Complete the rotation.
	if isLeft {
		alloc[child].left = pivot
	} else {
		alloc[child].right = pivot
	}

	alloc[pivot].parent = child

	// The child now spans what the pivot used to.
	alloc[child].size = alloc[pivot].size
	alloc[pivot].size = alloc[alloc[pivot].left].size + alloc[alloc[pivot].right].size + 1
}

func (tree *Tree[K]) rotateLeft(nodeIdx uint32) {
	tree.rotateDirection(nodeIdx, true)
}

func (tree *Tree[K]) rotateRight(nodeIdx uint32) {
	tree.rotateDirection(nodeIdx, false)
}

// LowerBound finds the smallest key N such that N >= key, and returns the
// iterator pointing to it. If no such key is found, returns tree.Limit().
func (tree *Tree[K]) LowerBound(key K) Iterator[K] {
	alloc := tree.nodes
	answer := uint32(0)

	for cursor := tree.root; cursor != 0; {
		comp := tree.cmp(key, alloc[cursor].key)

		switch {
		case comp == 0:
			return Iterator[K]{tree, cursor}
		case comp < 0:
			answer = cursor
			cursor = alloc[cursor].left
		default:
			cursor = alloc[cursor].right
		}
	}

	return Iterator[K]{tree, answer}
}

// UpperBound finds the smallest key N such that N > key, and returns the
// iterator pointing to it. If no such key is found, returns tree.Limit().
func (tree *Tree[K]) UpperBound(key K) Iterator[K] {
	alloc := tree.nodes
	answer := uint32(0)

	for cursor := tree.root; cursor != 0; {
		if tree.cmp(key, alloc[cursor].key) < 0 {
			answer = cursor
			cursor = alloc[cursor].left
		} else {
			cursor = alloc[cursor].right
		}
	}

	return Iterator[K]{tree, answer}
}

// Find returns the iterator pointing to key, or tree.Limit() if it is absent.
func (tree *Tree[K]) Find(key K) Iterator[K] {
	iter := tree.LowerBound(key)
	if iter.Limit() || tree.cmp(key, tree.nodes[iter.node].key) != 0 {
		return tree.Limit()
	}

	return iter
}

// Contains reports whether key is in the tree.
func (tree *Tree[K]) Contains(key K) bool {
	return !tree.Find(key).Limit()
}

// Min creates an iterator that points to the minimum key in the tree.
// If the tree is empty, returns Limit().
func (tree *Tree[K]) Min() Iterator[K] {
	if tree.root == 0 {
		return tree.Limit()
	}

	return Iterator[K]{tree, leftmost(tree.root, tree.nodes)}
}

// Max creates an iterator that points at the maximum key in the tree.
// If the tree is empty, returns Limit().
func (tree *Tree[K]) Max() Iterator[K] {
	if tree.root == 0 {
		return tree.Limit()
	}

	return Iterator[K]{tree, rightmost(tree.root, tree.nodes)}
}

// Limit creates an iterator that points beyond the maximum key in the tree.
func (tree *Tree[K]) Limit() Iterator[K] {
	return Iterator[K]{tree, 0}
}

// Distance returns the number of keys in the in-order range [first, last).
//
// The result is 0 when first is the limit, when first and last point at the
// same key, and when last precedes first. A limit last counts everything
// from first to the end of the tree.
func (tree *Tree[K]) Distance(first, last Iterator[K]) int {
	tree.owns(first)
	tree.owns(last)

	if first.Limit() {
		return 0
	}

	alloc := tree.nodes

	if !last.Limit() && tree.cmp(alloc[last.node].key, alloc[first.node].key) < 0 {
		return 0
	}

	count := 0
	for cursor := first.node; cursor != 0 && cursor != last.node; cursor = doNext(cursor, alloc) {
		count++
	}

	return count
}

func (tree *Tree[K]) owns(iter Iterator[K]) {
	doAssert(iter.Limit() || iter.tree == tree)
}
