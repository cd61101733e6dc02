// Package rangeq drives an ordered set with the k/q range-query command
// protocol: "k <key>" inserts a key and "q <lo> <hi>" prints how many keys
// lie in [lo, hi].
package rangeq

import (
	"github.com/Sumatoshi-tech/rangeq/pkg/rbtree"
)

// Set is the ordered set the driver talks to.
type Set interface {
	// Insert adds key and reports whether it was absent.
	Insert(key int64) bool
	// CountRange returns the number of keys in [lo, hi], 0 when lo > hi.
	CountRange(lo, hi int64) int
	// Len returns the number of keys.
	Len() int
}

// TreeSet is the Set backed by the red-black tree engine.
type TreeSet struct {
	tree *rbtree.Tree[int64]
}

// NewTreeSet creates an empty TreeSet.
func NewTreeSet(opts ...rbtree.Option) *TreeSet {
	return &TreeSet{tree: rbtree.NewOrdered[int64](opts...)}
}

// Insert adds key and reports whether it was absent.
func (set *TreeSet) Insert(key int64) bool {
	inserted, _ := set.tree.Insert(key)

	return inserted
}

// CountRange counts [lo, hi] as the rank distance between its boundaries.
func (set *TreeSet) CountRange(lo, hi int64) int {
	if lo > hi {
		return 0
	}

	return set.tree.Distance(set.tree.LowerBound(lo), set.tree.UpperBound(hi))
}

// Len returns the number of keys.
func (set *TreeSet) Len() int {
	return set.tree.Len()
}

// Tree exposes the underlying engine for dumps and statistics.
func (set *TreeSet) Tree() *rbtree.Tree[int64] {
	return set.tree
}
