package rope

import (
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// readBlock is the size of each leaf created by FromReader.
const readBlock = 32 * 1024

// FromReader reads r until io.EOF, storing each full block as its own leaf.
// Short reads are gathered until the block fills, and blocks never split a UTF-8 sequence.
func FromReader(r io.Reader) (*Rope, error) {
	var leaves []*node
	buf := make([]byte, readBlock)
	var pending int

	for {
		n, err := io.ReadFull(r, buf[pending:])
		pending += n

		done := err == io.EOF || err == io.ErrUnexpectedEOF
		if err != nil && !done {
			return nil, errors.Wrap(err, "rope: read")
		}

		if pending > 0 {
			cut := pending
			if !done {
				cut = lastRuneBoundary(buf[:pending])
			}
			leaves = append(leaves, newLeaf(string(buf[:cut])))
			pending = copy(buf, buf[cut:pending])
		}

		if done {
			break
		}
	}

	return &Rope{root: rebalance(leaves)}, nil
}

// lastRuneBoundary returns the length of the longest prefix of p that doesn't end mid-rune.
func lastRuneBoundary(p []byte) int {
	for back := 1; back <= utf8.UTFMax && back <= len(p); back++ {
		at := len(p) - back
		if !utf8.RuneStart(p[at]) {
			continue
		}
		if utf8.FullRune(p[at:]) {
			return len(p)
		}
		return at
	}
	return len(p)
}

// WriteTo writes every leaf of this Rope to w.
func (r *Rope) WriteTo(w io.Writer) (total int64, err error) {
	r.rootOrNil().walk(func(leaf *node) bool {
		var n int
		n, err = io.WriteString(w, leaf.text)
		total += int64(n)
		return err == nil
	})
	return total, err
}
