package rope

import (
	"strings"
	"unicode/utf8"
)

// node is either a leaf (text set, no children) or an internal node (two children).
// Nodes are never modified after they're created.
type node struct {
	left, right *node
	length      int  // runes in this subtree
	height      int  // 1 for leaves
	text        string
	ascii       bool // leaf only: rune offsets are byte offsets
}

func newLeaf(text string) *node {
	n := utf8.RuneCountInString(text)
	return &node{
		length: n,
		height: 1,
		text:   text,
		ascii:  n == len(text) && utf8.ValidString(text),
	}
}

// concat joins two subtrees under a new internal node. Either side may be nil.
func concat(left, right *node) *node {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	return &node{
		left:   left,
		right:  right,
		length: left.length + right.length,
		height: max(left.height, right.height) + 1,
	}
}

func (n *node) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// weight is the number of runes routed left at this node.
func (n *node) weight() int {
	if n.left == nil {
		return n.length
	}
	return n.left.length
}

// runeAt finds the rune at idx, which must be within [0,n.length).
func (n *node) runeAt(idx int) rune {
	for !n.isLeaf() {
		if w := n.weight(); idx >= w {
			idx -= w
			n = n.right
		} else {
			n = n.left
		}
	}
	if n.ascii {
		return rune(n.text[idx])
	}
	return runeAt(n.text, idx)
}

// slice returns the leaf covering [start,end) of this leaf, reusing it if the range is whole.
func (n *node) slice(start, end int) *node {
	if start == 0 && end == n.length {
		return n
	}
	if n.ascii {
		return &node{length: end - start, height: 1, text: n.text[start:end], ascii: true}
	}
	return newLeaf(runeSlice(n.text, start, end))
}

// collect appends the leaves covering [start,end) of this subtree to out, in order.
// Bounds are relative to this subtree and may run past either edge.
func (n *node) collect(out []*node, start, end int) []*node {
	if n == nil || start >= end || end <= 0 || start >= n.length {
		return out
	}

	if n.isLeaf() {
		start = max(start, 0)
		end = min(end, n.length)
		if start >= end {
			return out
		}
		return append(out, n.slice(start, end))
	}

	w := n.weight()
	if start < w {
		out = n.left.collect(out, start, end)
	}
	if end > w {
		out = n.right.collect(out, start-w, end-w)
	}
	return out
}

// leaves appends every leaf of this subtree to out, in order.
func (n *node) leaves(out []*node) []*node {
	if n == nil {
		return out
	}
	if n.isLeaf() {
		return append(out, n)
	}
	out = n.left.leaves(out)
	return n.right.leaves(out)
}

// walk calls fn for each leaf in order, stopping early if it returns false.
func (n *node) walk(fn func(*node) bool) bool {
	if n == nil {
		return true
	}
	if n.isLeaf() {
		return fn(n)
	}
	return n.left.walk(fn) && n.right.walk(fn)
}

func (n *node) appendTo(sb *strings.Builder) {
	n.walk(func(leaf *node) bool {
		sb.WriteString(leaf.text)
		return true
	})
}
