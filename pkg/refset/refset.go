// Package refset wraps third-party ordered sets behind the same small
// surface as the red-black tree engine, for differential testing.
package refset

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/google/btree"
	"github.com/petar/GoLLRB/llrb"
)

// btreeDegree is the node degree used for BTree sets.
const btreeDegree = 32

// BTree is an ordered set backed by github.com/google/btree.
type BTree struct {
	tree *btree.BTreeG[int64]
}

// NewBTree creates an empty BTree set.
func NewBTree() *BTree {
	return &BTree{tree: btree.NewOrderedG[int64](btreeDegree)}
}

// Insert adds key and reports whether it was absent.
func (set *BTree) Insert(key int64) bool {
	_, replaced := set.tree.ReplaceOrInsert(key)

	return !replaced
}

// CountRange returns the number of keys in [lo, hi].
func (set *BTree) CountRange(lo, hi int64) int {
	if lo > hi {
		return 0
	}

	count := 0

	set.tree.AscendGreaterOrEqual(lo, func(key int64) bool {
		if key > hi {
			return false
		}

		count++

		return true
	})

	return count
}

// Len returns the number of keys.
func (set *BTree) Len() int {
	return set.tree.Len()
}

// llrbKey adapts int64 to llrb.Item.
type llrbKey int64

func (key llrbKey) Less(than llrb.Item) bool {
	return key < than.(llrbKey)
}

// LLRB is an ordered set backed by a left-leaning red-black tree from
// github.com/petar/GoLLRB.
type LLRB struct {
	tree *llrb.LLRB
}

// NewLLRB creates an empty LLRB set.
func NewLLRB() *LLRB {
	return &LLRB{tree: llrb.New()}
}

// Insert adds key and reports whether it was absent.
func (set *LLRB) Insert(key int64) bool {
	return set.tree.ReplaceOrInsert(llrbKey(key)) == nil
}

// CountRange returns the number of keys in [lo, hi].
func (set *LLRB) CountRange(lo, hi int64) int {
	if lo > hi {
		return 0
	}

	count := 0

	set.tree.AscendGreaterOrEqual(llrbKey(lo), func(item llrb.Item) bool {
		if item.(llrbKey) > llrbKey(hi) {
			return false
		}

		count++

		return true
	})

	return count
}

// Len returns the number of keys.
func (set *LLRB) Len() int {
	return set.tree.Len()
}

// Gods is an ordered set backed by the red-black tree of
// github.com/emirpasic/gods.
type Gods struct {
	tree *redblacktree.Tree
}

// NewGods creates an empty Gods set.
func NewGods() *Gods {
	return &Gods{tree: redblacktree.NewWith(utils.Int64Comparator)}
}

// Insert adds key and reports whether it was absent.
func (set *Gods) Insert(key int64) bool {
	before := set.tree.Size()
	set.tree.Put(key, struct{}{})

	return set.tree.Size() > before
}

// CountRange returns the number of keys in [lo, hi].
func (set *Gods) CountRange(lo, hi int64) int {
	if lo > hi {
		return 0
	}

	first, found := set.tree.Ceiling(lo)
	if !found {
		return 0
	}

	count := 0

	for it := set.tree.IteratorAt(first); ; {
		if it.Key().(int64) > hi {
			break
		}

		count++

		if !it.Next() {
			break
		}
	}

	return count
}

// Len returns the number of keys.
func (set *Gods) Len() int {
	return set.tree.Size()
}
