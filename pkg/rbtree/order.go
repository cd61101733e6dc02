package rbtree

// Rank returns the number of keys that precede iter in sort order. The rank
// of the limit is Len().
// Time: O(log n).
func (tree *Tree[K]) Rank(iter Iterator[K]) int {
	tree.owns(iter)

	if iter.Limit() {
		return tree.Len()
	}

	alloc := tree.nodes
	nodeIdx := iter.node
	rank := alloc[alloc[nodeIdx].left].size

	for nodeIdx != tree.root {
		parent := alloc[nodeIdx].parent
		if isRightChild(nodeIdx, alloc) {
			rank += alloc[alloc[parent].left].size + 1
		}

		nodeIdx = parent
	}

	return int(rank)
}

// Select returns the iterator at 0-based position pos in sort order, or
// Limit() when pos is out of range.
// Time: O(log n).
func (tree *Tree[K]) Select(pos int) Iterator[K] {
	if pos < 0 || pos >= tree.Len() {
		return tree.Limit()
	}

	alloc := tree.nodes
	target := uint32(pos)

	for cursor := tree.root; cursor != 0; {
		leftSize := alloc[alloc[cursor].left].size

		switch {
		case target < leftSize:
			cursor = alloc[cursor].left
		case target == leftSize:
			return Iterator[K]{tree, cursor}
		default:
			target -= leftSize + 1
			cursor = alloc[cursor].right
		}
	}

	return tree.Limit()
}

// CountRange returns the number of keys N with lo <= N <= hi, and 0 when
// lo > hi. It answers the same question as
// Distance(LowerBound(lo), UpperBound(hi)) through subtree sizes instead of
// walking the range.
// Time: O(log n).
func (tree *Tree[K]) CountRange(lo, hi K) int {
	if tree.cmp(lo, hi) > 0 {
		return 0
	}

	return tree.Rank(tree.UpperBound(hi)) - tree.Rank(tree.LowerBound(lo))
}
