package rbtree_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/rangeq/pkg/rbtree"
)

func TestRankSelect(t *testing.T) {
	t.Parallel()

	tree := rbtree.NewOrdered[int]()
	for _, key := range []int{10, 5, 15, 3, 7, 12, 18} {
		tree.Insert(key)
	}

	sorted := []int{3, 5, 7, 10, 12, 15, 18}

	for pos, key := range sorted {
		iter := tree.Select(pos)
		require.False(t, iter.Limit())
		assert.Equal(t, key, iter.Key())
		assert.Equal(t, pos, tree.Rank(tree.Find(key)))
	}

	assert.True(t, tree.Select(-1).Limit())
	assert.True(t, tree.Select(len(sorted)).Limit())
	assert.Equal(t, len(sorted), tree.Rank(tree.Limit()))
}

func TestCountRange(t *testing.T) {
	t.Parallel()

	tree := rbtree.NewOrdered[int]()
	for _, key := range []int{10, 5, 15, 3, 7, 12, 18} {
		tree.Insert(key)
	}

	tests := []struct {
		name   string
		lo, hi int
		want   int
	}{
		{"whole", 3, 18, 7},
		{"wider", -100, 100, 7},
		{"inner", 5, 11, 3},
		{"single", 7, 7, 1},
		{"gap", 8, 9, 0},
		{"reversed", 12, 5, 0},
		{"below", -10, 0, 0},
		{"above", 19, 40, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tree.CountRange(tc.lo, tc.hi))
		})
	}
}

func TestCountRangeMatchesDistance(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	tree := rbtree.NewOrdered[int64]()

	for range 2000 {
		tree.Insert(rng.Int63n(1 << 16))
	}

	for range 500 {
		lo, hi := rng.Int63n(1<<16), rng.Int63n(1<<16)
		if lo > hi {
			lo, hi = hi, lo
		}

		want := tree.Distance(tree.LowerBound(lo), tree.UpperBound(hi))
		assert.Equal(t, want, tree.CountRange(lo, hi), "[%d, %d]", lo, hi)
	}
}

func TestNodes(t *testing.T) {
	t.Parallel()

	tree := rbtree.NewOrdered[int]()
	tree.Nodes(func(rbtree.NodeInfo[int]) bool {
		t.Fatal("empty tree has no nodes")

		return false
	})
	assert.Equal(t, uint32(0), tree.RootID())

	for _, key := range []int{10, 5, 15, 3} {
		tree.Insert(key)
	}

	var visited []int

	reds := 0

	tree.Nodes(func(info rbtree.NodeInfo[int]) bool {
		visited = append(visited, info.Key)
		if info.Red {
			reds++
		}

		return true
	})

	assert.Equal(t, []int{10, 5, 3, 15}, visited, "pre-order")
	assert.Equal(t, 1, reds)

	var first rbtree.NodeInfo[int]

	tree.Nodes(func(info rbtree.NodeInfo[int]) bool {
		first = info

		return false
	})

	assert.Equal(t, tree.RootID(), first.ID)
	assert.Equal(t, uint32(0), first.Parent)
	assert.NotZero(t, first.Left)
	assert.NotZero(t, first.Right)
}
