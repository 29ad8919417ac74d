package rope

import (
	"unicode/utf16"
)

// UTF16Len returns the length of this Rope in UTF-16 code units, i.e., its JS length.
func (r *Rope) UTF16Len() (count int) {
	r.rootOrNil().walk(func(leaf *node) bool {
		if leaf.ascii {
			count += leaf.length
		} else {
			count += jsLength(leaf.text)
		}
		return true
	})
	return count
}

// jsLength returns the JS length of the given string (which in Go, is always UTF-8).
func jsLength(s string) (count int) {
	for _, r := range s {
		each := utf16.RuneLen(r)

		if each < 0 {
			count++
		} else {
			count += each
		}
	}

	return count
}
