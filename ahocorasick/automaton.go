package ahocorasick

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// invalidKey is added to each byte of invalid UTF-8, so such bytes never share an edge with U+FFFD.
const invalidKey = unicode.MaxRune + 1

// keyAt returns the trie key for the character starting at s[i], and its width in bytes.
func keyAt(s string, i int) (rune, int) {
	ch, size := utf8.DecodeRuneInString(s[i:])
	if ch == utf8.RuneError && size == 1 {
		return invalidKey + rune(s[i]), 1
	}
	return ch, size
}

type node struct {
	id      int
	key     rune
	depth   int // in characters, each invalid byte counting as one
	next    map[rune]*node
	fail    *node // root fails to itself
	output  *node // nearest proper suffix that ends a pattern, or nil
	pattern string
	final   bool
}

// Automaton is a trie of patterns with failure and output links.
// The zero Automaton is not usable; call New or BuildFrom.
type Automaton struct {
	root     *node
	count    int
	maxDepth int
	nextID   int
	dirty    bool
}

// New returns an empty Automaton. Searching it matches nothing.
func New() *Automaton {
	a := &Automaton{}
	a.root = a.newNode(0, 0)
	a.root.fail = a.root
	return a
}

// BuildFrom inserts every pattern and then builds links.
func BuildFrom(patterns []string) *Automaton {
	a := New()
	for _, p := range patterns {
		a.Insert(p)
	}
	a.BuildLinks()
	return a
}

func (a *Automaton) newNode(key rune, depth int) *node {
	a.nextID++
	return &node{id: a.nextID, key: key, depth: depth}
}

// Len returns the number of distinct patterns.
func (a *Automaton) Len() int {
	return a.count
}

// Ready reports whether links are built for every inserted pattern.
// A Ready automaton is safe for concurrent searches.
func (a *Automaton) Ready() bool {
	return !a.dirty
}

// Insert adds a pattern to the trie. Empty patterns are ignored.
// BuildLinks must run again before searching, which Search does if needed.
func (a *Automaton) Insert(pattern string) {
	if pattern == "" {
		return
	}

	curr := a.root
	for i := 0; i < len(pattern); {
		ch, size := keyAt(pattern, i)
		i += size

		child, ok := curr.next[ch]
		if !ok {
			if curr.next == nil {
				curr.next = make(map[rune]*node)
			}
			child = a.newNode(ch, curr.depth+1)
			curr.next[ch] = child
		}
		curr = child
	}

	if !curr.final {
		a.maxDepth = max(a.maxDepth, curr.depth)
		curr.final = true
		curr.pattern = pattern
		a.count++
	}
	a.dirty = true
}

// BuildLinks sets failure and output links with a breadth-first pass over the trie.
func (a *Automaton) BuildLinks() {
	root := a.root
	root.fail = root

	queue := []*node{root}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for ch, child := range curr.next {

			if curr == root {
				child.fail = root
			} else {
				dest := curr.fail
				for dest != root && dest.next[ch] == nil {
					dest = dest.fail
				}
				if to := dest.next[ch]; to != nil {
					dest = to
				}
				child.fail = dest
			}

			if child.fail.final {
				child.output = child.fail
			} else {
				child.output = child.fail.output
			}

			queue = append(queue, child)
		}
	}

	a.dirty = false
}

// step moves from curr along ch, following failure links as needed.
func (a *Automaton) step(curr *node, ch rune) *node {
	for curr != a.root && curr.next[ch] == nil {
		curr = curr.fail
	}
	if to := curr.next[ch]; to != nil {
		return to
	}
	return curr
}

// scan runs text through the automaton, calling fn for every pattern node matched, with its byte range.
func (a *Automaton) scan(text string, fn func(n *node, start, end int)) {
	if a.dirty {
		a.BuildLinks()
	}

	// byte offsets of the most recent runes, enough to locate the start of the longest pattern
	recent := make([]int, a.maxDepth+1)
	report := func(n *node, k, end int) {
		fn(n, recent[(k-n.depth+1)%len(recent)], end)
	}

	curr := a.root
	var k int
	for i := 0; i < len(text); {
		ch, size := keyAt(text, i)
		recent[k%len(recent)] = i
		curr = a.step(curr, ch)
		end := i + size

		if curr.final {
			report(curr, k, end)
		}
		// each hop is a strictly shorter suffix, so this ends at nil
		for out := curr.output; out != nil; out = out.output {
			report(out, k, end)
		}
		i = end
		k++
	}
}

// Search returns the distinct patterns found anywhere in text, without positions.
// Use FindAll for positions.
func (a *Automaton) Search(text string) Set {
	found := make(Set)
	a.scan(text, func(n *node, _, _ int) {
		found[n.pattern] = struct{}{}
	})
	return found
}

// SearchPatternsIn is an alias for Search.
func (a *Automaton) SearchPatternsIn(text string) Set {
	return a.Search(text)
}

// FindAll returns every occurrence of every pattern in text.
// Matches are ordered by End, then longest first.
func (a *Automaton) FindAll(text string) []Match {
	var out []Match
	a.scan(text, func(n *node, start, end int) {
		out = append(out, Match{Pattern: n.pattern, Start: start, End: end})
	})
	return out
}

// Patterns returns every inserted pattern in ascending order.
func (a *Automaton) Patterns() []string {
	out := make([]string, 0, a.count)
	a.walk(func(n *node, _ int) {
		if n.final {
			out = append(out, n.pattern)
		}
	})
	slices.Sort(out)
	return out
}

// walk visits the trie depth-first in rune order.
func (a *Automaton) walk(fn func(n *node, level int)) {
	var visit func(n *node, level int)
	visit = func(n *node, level int) {
		fn(n, level)
		for _, ch := range sortedKeys(n.next) {
			visit(n.next[ch], level+1)
		}
	}
	visit(a.root, 0)
}

// DebugPrint logs every node with its failure and output links at debug level.
// A nil logger uses zap.L().
func (a *Automaton) DebugPrint(log *zap.Logger) {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	sugar.Debugf("> automaton patterns=%d nodes=%d dirty=%v", a.count, a.nextID, a.dirty)

	a.walk(func(n *node, level int) {
		fail, output := "@", "@"
		if n.fail != nil {
			fail = "#" + strconv.Itoa(n.fail.id)
		}
		if n.output != nil {
			output = "#" + strconv.Itoa(n.output.id)
		}
		var key string
		switch {
		case n == a.root:
		case n.key >= invalidKey:
			key = string([]byte{byte(n.key - invalidKey)})
		default:
			key = string(n.key)
		}
		sugar.Debugf("%s[#%d] %q fail=%s out=%s pattern=%q", strings.Repeat("  ", level), n.id, key, fail, output, n.pattern)
	})
}

func sortedKeys(m map[rune]*node) []rune {
	keys := make([]rune, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
