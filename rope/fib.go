package rope

import (
	"math"
	"slices"
)

// fibonacci is a lazily extended, memoized Fibonacci sequence starting 1, 2, 3, 5, ...
type fibonacci struct {
	seq []int
}

func newFibonacci() *fibonacci {
	return &fibonacci{seq: []int{1, 2}}
}

// get returns the idx'th number of the sequence, extending it as needed.
func (f *fibonacci) get(idx int) int {
	for len(f.seq) <= idx {
		if !f.grow() {
			panic("rope: fibonacci index overflows int")
		}
	}
	return f.seq[idx]
}

func (f *fibonacci) grow() bool {
	a, b := f.seq[len(f.seq)-2], f.seq[len(f.seq)-1]
	if b > math.MaxInt-a {
		return false
	}
	f.seq = append(f.seq, a+b)
	return true
}

// index returns the largest idx such that get(idx) <= n. n must be at least 1.
func (f *fibonacci) index(n int) int {
	for f.seq[len(f.seq)-1] <= n {
		if !f.grow() {
			break
		}
	}
	idx, found := slices.BinarySearch(f.seq, n)
	if found {
		return idx
	}
	return idx - 1
}
