package rope

import (
	"math/bits"
)

// buckets holds partially rebalanced subtrees, at most one per Fibonacci index.
// Slot i holds a node with length in [fib(i), fib(i+1)). Higher slots hold content further left.
type buckets struct {
	fib   *fibonacci
	slots []*node
}

func newBuckets() *buckets {
	return &buckets{fib: newFibonacci()}
}

// add appends n to the right of everything added so far.
func (b *buckets) add(n *node) {
	for {
		k := b.fib.index(n.length)
		if k >= len(b.slots) {
			b.slots = append(b.slots, make([]*node, k+1-len(b.slots))...)
		}

		// everything in slots <= k sits to the left of n and must be merged first
		var prefix *node
		for j := 0; j <= k; j++ {
			if b.slots[j] != nil {
				prefix = concat(b.slots[j], prefix)
				b.slots[j] = nil
			}
		}
		if prefix == nil {
			b.slots[k] = n
			return
		}
		n = concat(prefix, n)
	}
}

// fold joins every occupied slot, smallest first, with larger slots attached on the left.
func (b *buckets) fold() *node {
	var acc *node
	for _, n := range b.slots {
		if n != nil {
			acc = concat(n, acc)
		}
	}
	return acc
}

// rebalance builds a height-bounded tree over leaves, which must all be non-empty.
func rebalance(leaves []*node) *node {
	switch len(leaves) {
	case 0:
		return nil
	case 1:
		return leaves[0]
	}

	b := newBuckets()
	for _, leaf := range leaves {
		b.add(leaf)
	}
	return b.fold()
}

// build pairs adjacent nodes level by level into a tree of minimal height.
// The first 2*(n - 2^(d-1)) leaves are paired early so every later level is a power of two.
func build(leaves []*node) *node {
	switch len(leaves) {
	case 0:
		return nil
	case 1:
		return leaves[0]
	}

	depth := bits.Len(uint(len(leaves))) // floor(log2(n)) + 1
	early := 2 * (len(leaves) - 1<<(depth-1))

	level := make([]*node, 0, len(leaves))
	for i := 0; i < early; i += 2 {
		level = append(level, concat(leaves[i], leaves[i+1]))
	}
	level = append(level, leaves[early:]...)

	for len(level) > 1 {
		next := level[:0]
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, concat(level[i], level[i+1]))
		}
		level = next
	}
	return level[0]
}
