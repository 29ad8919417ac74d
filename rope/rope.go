package rope

import (
	"fmt"
	"iter"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// New builds a Rope with one leaf per non-empty part, then rebalances it.
func New(parts ...string) *Rope {
	leaves := make([]*node, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			leaves = append(leaves, newLeaf(p))
		}
	}
	return &Rope{root: rebalance(leaves)}
}

// From builds a Rope from a string, []string, []byte, Rope, *Rope or fmt.Stringer.
// Other types return an error matching ErrInvalidArgument.
func From(v any) (*Rope, error) {
	switch v := v.(type) {
	case string:
		return New(v), nil
	case []string:
		return New(v...), nil
	case []byte:
		return New(string(v)), nil
	case *Rope:
		if v == nil {
			return nil, errors.Wrap(ErrInvalidArgument, "nil *Rope")
		}
		return &Rope{root: v.root}, nil
	case Rope:
		return &Rope{root: v.root}, nil
	case fmt.Stringer:
		return New(v.String()), nil
	}
	return nil, errors.Wrapf(ErrInvalidArgument, "can't build rope from %T", v)
}

// Concat returns a new Rope holding a followed by b. O(1).
// Either may be nil.
func Concat(a, b *Rope) *Rope {
	return &Rope{root: concat(a.rootOrNil(), b.rootOrNil())}
}

func (r *Rope) rootOrNil() *node {
	if r == nil {
		return nil
	}
	return r.root
}

func (r *Rope) Len() int {
	if r == nil || r.root == nil {
		return 0
	}
	return r.root.length
}

// Height returns the height of the tree: 0 when empty, 1 for a single leaf.
func (r *Rope) Height() int {
	root := r.rootOrNil()
	if root == nil {
		return 0
	}
	return root.height
}

func (r *Rope) LeafCount() (count int) {
	r.rootOrNil().walk(func(*node) bool {
		count++
		return true
	})
	return count
}

// Index returns the rune at position idx.
func (r *Rope) Index(idx int) (rune, error) {
	if idx < 0 || idx >= r.Len() {
		return 0, &IndexError{Index: idx, Len: r.Len()}
	}
	return r.root.runeAt(idx), nil
}

func (r *Rope) checkRange(start, end int) error {
	if start < 0 || start > r.Len() {
		return &IndexError{Index: start, Len: r.Len()}
	}
	if end < start || end > r.Len() {
		return &IndexError{Index: end, Len: r.Len()}
	}
	return nil
}

// Substring returns the runes [start,end) as a string.
func (r *Rope) Substring(start, end int) (string, error) {
	if err := r.checkRange(start, end); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, leaf := range r.root.collect(nil, start, end) {
		sb.WriteString(leaf.text)
	}
	return sb.String(), nil
}

// SubRope returns a new, rebalanced Rope holding the runes [start,end).
// Whole leaves are shared with this Rope.
func (r *Rope) SubRope(start, end int) (*Rope, error) {
	if err := r.checkRange(start, end); err != nil {
		return nil, err
	}
	return &Rope{root: rebalance(r.root.collect(nil, start, end))}, nil
}

// Split returns [0,idx) and [idx,Len()) as two new ropes.
func (r *Rope) Split(idx int) (*Rope, *Rope, error) {
	left, err := r.SubRope(0, idx)
	if err != nil {
		return nil, nil, err
	}
	right, err := r.SubRope(idx, r.Len())
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// Append adds other to the end of this Rope, without rebalancing.
func (r *Rope) Append(other *Rope) {
	r.root = concat(r.root, other.rootOrNil())
}

// AppendLeft adds other to the start of this Rope, without rebalancing.
func (r *Rope) AppendLeft(other *Rope) {
	r.root = concat(other.rootOrNil(), r.root)
}

// Insert inserts text before position idx, which may equal Len().
func (r *Rope) Insert(idx int, text string) error {
	return r.Replace(idx, idx, text)
}

// Delete removes the runes [start,end).
func (r *Rope) Delete(start, end int) error {
	return r.Replace(start, end, "")
}

// Replace swaps the runes [start,end) for text, then rebuilds the tree.
func (r *Rope) Replace(start, end int, text string) error {
	if err := r.checkRange(start, end); err != nil {
		return err
	}
	if start == end && text == "" {
		return nil
	}

	leaves := r.root.collect(nil, 0, start)
	if text != "" {
		leaves = append(leaves, newLeaf(text))
	}
	leaves = r.root.collect(leaves, end, r.Len())

	r.root = rebalance(leaves)
	return nil
}

// Set replaces the rune at idx with text, which may be empty or longer than one rune.
func (r *Rope) Set(idx int, text string) error {
	if idx < 0 || idx >= r.Len() {
		return &IndexError{Index: idx, Len: r.Len()}
	}
	return r.Replace(idx, idx+1, text)
}

func (r *Rope) checkStep(start, end, step int) error {
	if err := r.checkRange(start, end); err != nil {
		return err
	}
	if step < 1 {
		return errors.Wrapf(ErrInvalidArgument, "step %d must be positive", step)
	}
	return nil
}

// Every returns the runes at start, start+step, start+2*step... before end.
func (r *Rope) Every(start, end, step int) (string, error) {
	if err := r.checkStep(start, end, step); err != nil {
		return "", err
	}
	sub, err := r.Substring(start, end)
	if err != nil || step == 1 {
		return sub, err
	}
	return stepped(sub, step, true), nil
}

// DeleteEvery removes the runes at start, start+step, start+2*step... before end.
func (r *Rope) DeleteEvery(start, end, step int) error {
	if err := r.checkStep(start, end, step); err != nil {
		return err
	}
	if step == 1 {
		return r.Delete(start, end)
	}
	sub, err := r.Substring(start, end)
	if err != nil {
		return err
	}
	return r.Replace(start, end, stepped(sub, step, false))
}

// Rebalance rebuilds the tree with Fibonacci-bounded height over the current leaves.
func (r *Rope) Rebalance() {
	r.root = rebalance(r.root.leaves(nil))
}

// Build rebuilds the tree with minimal height over the current leaves.
func (r *Rope) Build() {
	r.root = build(r.root.leaves(nil))
}

func (r *Rope) String() string {
	if r == nil || r.root == nil {
		return ""
	}
	var sb strings.Builder
	r.root.appendTo(&sb)
	return sb.String()
}

// Equal reports whether both ropes hold the same text, regardless of tree shape.
func (r *Rope) Equal(other *Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r.rootOrNil() == other.rootOrNil() {
		return true
	}
	return r.String() == other.String()
}

// Leaves yields each segment of this Rope in order.
func (r *Rope) Leaves() iter.Seq[string] {
	root := r.rootOrNil()
	return func(yield func(string) bool) {
		root.walk(func(leaf *node) bool {
			return yield(leaf.text)
		})
	}
}

// Runes yields each rune of this Rope along with its position.
func (r *Rope) Runes() iter.Seq2[int, rune] {
	root := r.rootOrNil()
	return func(yield func(int, rune) bool) {
		var pos int
		root.walk(func(leaf *node) bool {
			for _, ch := range leaf.text {
				if !yield(pos, ch) {
					return false
				}
				pos++
			}
			return true
		})
	}
}

// DebugPrint logs the tree shape at debug level. A nil logger uses zap.L().
func (r *Rope) DebugPrint(log *zap.Logger) {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	sugar.Debugf("> rope len=%d height=%d leaves=%d", r.Len(), r.Height(), r.LeafCount())

	var visit func(n *node, depth int)
	visit = func(n *node, depth int) {
		indent := strings.Repeat("|  ", depth)
		if n.isLeaf() {
			sugar.Debugf("%s- len=%d %q", indent, n.length, n.text)
			return
		}
		sugar.Debugf("%s+ len=%d weight=%d", indent, n.length, n.weight())
		visit(n.left, depth+1)
		visit(n.right, depth+1)
	}
	if root := r.rootOrNil(); root != nil {
		visit(root, 0)
	}
}
