package rope

import (
	"strings"
	"unicode/utf8"
)

// runeAt returns the idx'th rune of s. The caller ensures idx is in range.
func runeAt(s string, idx int) rune {
	for _, r := range s {
		if idx == 0 {
			return r
		}
		idx--
	}
	return utf8.RuneError
}

// runeOffset converts a rune offset within s to a byte offset.
// Offsets at or past the end return len(s).
func runeOffset(s string, idx int) int {
	if idx <= 0 {
		return 0
	}
	for i := range s {
		if idx == 0 {
			return i
		}
		idx--
	}
	return len(s)
}

// runeSlice returns the runes [start,end) of s.
func runeSlice(s string, start, end int) string {
	from := runeOffset(s, start)
	return s[from : from+runeOffset(s[from:], end-start)]
}

// stepped returns the runes of s at positions 0, step, 2*step... or, if keep is false, every other rune.
// Invalid bytes are copied through unchanged.
func stepped(s string, step int, keep bool) string {
	var sb strings.Builder
	for i, k := 0, 0; i < len(s); k++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		if (k%step == 0) == keep {
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	return sb.String()
}
