// Package rope implements a rope: a balanced binary tree over immutable string segments.
//
// Positions and lengths count runes, not bytes.
// Leaves are never modified once created, so ropes may share subtrees freely.
// A Rope is not goroutine-safe for mutation; concurrent readers are fine.
package rope

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is matched (via errors.Is) by every *IndexError.
	ErrOutOfRange = errors.New("rope: index out of range")

	// ErrInvalidArgument is returned by From for values that can't become a Rope.
	ErrInvalidArgument = errors.New("rope: invalid argument")
)

// IndexError reports a position outside of a Rope.
type IndexError struct {
	Index int // offending value
	Len   int // length of the rope at the time
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("rope: index %d out of range [0,%d]", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrOutOfRange
}

// Rope is a sequence of runes stored as a tree of immutable segments.
// The zero Rope is empty and ready to use.
//
// Concat, SubRope and Split return new ropes. Append, AppendLeft, Insert, Delete, Replace,
// Rebalance and Build replace this Rope's root in-place.
//
// Insert, Delete and Replace collect every surviving leaf and rebuild the whole tree, so each
// edit costs O(n) in the number of leaves. This keeps the tree balanced after every edit.
type Rope struct {
	root *node
}
