// Package ahocorasick implements an Aho-Corasick automaton for finding many patterns in one pass.
//
// Build the automaton with BuildFrom (or New, Insert and BuildLinks), then call Search or FindAll.
// Text is matched by character: valid UTF-8 runes, with each invalid byte standing alone.
// An invalid byte never matches U+FFFD or any other rune.
//
// Once links are built, an automaton is read-only and safe for concurrent searches.
// Insert is not goroutine-safe. It also leaves the automaton dirty, and the next Search
// or FindAll rebuilds links first, which is a write. Call BuildLinks after the last Insert
// before sharing an automaton between goroutines.
package ahocorasick

import (
	"slices"
)

// Match is a single occurrence of a pattern.
// Start and End are byte offsets into the searched text: text[Start:End] == Pattern.
type Match struct {
	Pattern    string
	Start, End int
}

// Set holds distinct matched patterns.
type Set map[string]struct{}

func (s Set) Has(pattern string) bool {
	_, ok := s[pattern]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Sorted returns the patterns in this Set in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
