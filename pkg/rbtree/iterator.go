package rbtree

import "iter"

// Iterator allows scanning tree keys in sort order.
//
// Iterators stay valid across insertions because nodes never move inside
// the arena. Clone does not carry iterators over to the copy, and Take and
// Reset invalidate every iterator of the source tree.
type Iterator[K any] struct {
	tree *Tree[K]
	node uint32
}

// Equal reports whether both iterators point at the same node of the same
// tree. All limits are equal.
func (it Iterator[K]) Equal(other Iterator[K]) bool {
	return it.node == other.node && (it.node == 0 || it.tree == other.tree)
}

// Limit checks if the iterator points beyond the max key in the tree.
// The zero Iterator is a limit.
func (it Iterator[K]) Limit() bool {
	return it.node == 0
}

// Key returns the current key.
//
// REQUIRES: !it.Limit().
func (it Iterator[K]) Key() K {
	doAssert(!it.Limit())

	return it.tree.nodes[it.node].key
}

// Next creates a new iterator that points to the successor of the current key.
//
// REQUIRES: !it.Limit().
func (it Iterator[K]) Next() Iterator[K] {
	doAssert(!it.Limit())

	return Iterator[K]{it.tree, doNext(it.node, it.tree.nodes)}
}

// Prev creates a new iterator that points to the predecessor of the current
// key. The predecessor of the limit is the maximum, and the predecessor of
// the minimum is the limit.
func (it Iterator[K]) Prev() Iterator[K] {
	if it.Limit() {
		if it.tree == nil {
			return it
		}

		return it.tree.Max()
	}

	return Iterator[K]{it.tree, doPrev(it.node, it.tree.nodes)}
}

// All yields every key in ascending order. The tree must not be modified
// during the iteration.
func (tree *Tree[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for it := tree.Min(); !it.Limit(); it = it.Next() {
			if !yield(it.Key()) {
				return
			}
		}
	}
}

// Ascend yields the keys of the in-order range [first, last), with the same
// boundary rules as Distance.
func (tree *Tree[K]) Ascend(first, last Iterator[K]) iter.Seq[K] {
	tree.owns(first)
	tree.owns(last)

	return func(yield func(K) bool) {
		if first.Limit() {
			return
		}

		if !last.Limit() && tree.cmp(last.Key(), first.Key()) < 0 {
			return
		}

		for it := first; !it.Limit() && !it.Equal(last); it = it.Next() {
			if !yield(it.Key()) {
				return
			}
		}
	}
}
