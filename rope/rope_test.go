package rope

import (
	"fmt"
	"math/bits"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taylorza/go-lfsr"
)

//  100k chars, insert in middle => ~O(leaves) per op

const (
	benchBlock  = 1000
	benchRounds = 200
)

func BenchmarkInsertMiddle(b *testing.B) {
	block := strings.Repeat("a", benchBlock)

	for b.Loop() {
		r := New(block)
		for range benchRounds {
			if err := r.Insert(r.Len()/2, block); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkIndex(b *testing.B) {
	r := New()
	for i := range 10_000 {
		r.Append(New(fmt.Sprintf("%04d", i)))
	}
	r.Rebalance()
	gen := lfsr.NewLfsr32(0xace1)

	for b.Loop() {
		v, _ := gen.Next()
		r.Index(int(v) % r.Len())
	}
}

func TestRoundTrip(t *testing.T) {
	r := New("a", "bc", "def")

	assert.Equal(t, 6, r.Len())
	assert.Equal(t, "abcdef", r.String())

	all, err := r.Substring(0, r.Len())
	require.NoError(t, err)
	assert.Equal(t, "abcdef", all)
}

func TestIndexConsistency(t *testing.T) {
	for _, parts := range [][]string{
		{"a", "bc", "def"},
		{"héllo", " ", "wörld", "🎉!"},
		{"x"},
		{"日本", "語", "", "テキスト"},
	} {
		r := New(parts...)
		expected := []rune(strings.Join(parts, ""))
		require.Equal(t, len(expected), r.Len(), "parts=%v", parts)

		for i, want := range expected {
			got, err := r.Index(i)
			require.NoError(t, err)
			assert.Equal(t, want, got, "parts=%v i=%d", parts, i)
		}
	}
}

func TestIndexOutOfRange(t *testing.T) {
	r := New("hello", "there")

	for _, idx := range []int{-1, r.Len(), r.Len() + 10} {
		_, err := r.Index(idx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOutOfRange)

		var ie *IndexError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, idx, ie.Index)
		assert.Equal(t, r.Len(), ie.Len)
	}

	var empty Rope
	_, err := empty.Index(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSubstring(t *testing.T) {
	r := New("hel", "lo w", "orld")

	type testCase struct {
		start, end int
		expected   string
		bad        bool
	}
	cases := []testCase{
		{0, 11, "hello world", false},
		{0, 0, "", false},
		{11, 11, "", false},
		{2, 5, "llo", false},
		{3, 7, "lo w", false},
		{4, 9, "o wor", false},
		{-1, 3, "", true},
		{0, 12, "", true},
		{5, 4, "", true},
		{12, 12, "", true},
	}

	for _, c := range cases {
		actual, err := r.Substring(c.start, c.end)
		if c.bad {
			assert.ErrorIs(t, err, ErrOutOfRange, "start=%d end=%d", c.start, c.end)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, c.expected, actual, "start=%d end=%d", c.start, c.end)

		sub, err := r.SubRope(c.start, c.end)
		require.NoError(t, err)
		assert.Equal(t, c.expected, sub.String())
	}
}

func TestConcat(t *testing.T) {
	a, b, c := New("ab", "c"), New("de"), New("f", "gh", "i")

	left := Concat(Concat(a, b), c)
	right := Concat(a, Concat(b, c))

	assert.Equal(t, "abcdefghi", left.String())
	assert.Equal(t, left.String(), right.String())
	assert.True(t, left.Equal(right))

	// inputs untouched
	assert.Equal(t, "abc", a.String())
	assert.Equal(t, "de", b.String())

	assert.Equal(t, "de", Concat(nil, b).String())
	assert.Equal(t, "de", Concat(b, &Rope{}).String())
	assert.Equal(t, 0, Concat(nil, nil).Len())
}

func TestAppend(t *testing.T) {
	r := New("mid")
	r.Append(New("dle"))
	r.AppendLeft(New("the "))
	r.Append(nil)

	assert.Equal(t, "the middle", r.String())
	assert.Equal(t, 10, r.Len())
}

func TestSplit(t *testing.T) {
	r := New("split ", "me ", "anywhere ✂")
	whole := r.String()

	for i := 0; i <= r.Len(); i++ {
		left, right, err := r.Split(i)
		require.NoError(t, err)
		assert.Equal(t, i, left.Len())
		assert.Equal(t, whole, left.String()+right.String(), "i=%d", i)
	}

	_, _, err := r.Split(r.Len() + 1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, _, err = r.Split(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	assert.Equal(t, whole, r.String())
}

func TestEdits(t *testing.T) {
	const original = "hello world"

	type testCase struct {
		name     string
		op       func(r *Rope) error
		expected string
	}
	cases := []testCase{
		{"insert start", func(r *Rope) error { return r.Insert(0, ">> ") }, ">> hello world"},
		{"insert middle", func(r *Rope) error { return r.Insert(5, ",") }, "hello, world"},
		{"insert end", func(r *Rope) error { return r.Insert(11, "!") }, "hello world!"},
		{"insert empty", func(r *Rope) error { return r.Insert(3, "") }, original},
		{"delete prefix", func(r *Rope) error { return r.Delete(0, 6) }, "world"},
		{"delete middle", func(r *Rope) error { return r.Delete(2, 9) }, "held"},
		{"delete all", func(r *Rope) error { return r.Delete(0, 11) }, ""},
		{"delete none", func(r *Rope) error { return r.Delete(4, 4) }, original},
		{"replace", func(r *Rope) error { return r.Replace(6, 11, "there") }, "hello there"},
		{"replace grow", func(r *Rope) error { return r.Replace(0, 1, "J") }, "Jello world"},
		{"replace with nothing", func(r *Rope) error { return r.Replace(5, 11, "") }, "hello"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := New("hel", "lo", " wor", "ld")
			require.NoError(t, c.op(r))
			assert.Equal(t, c.expected, r.String())
			assert.Equal(t, len([]rune(c.expected)), r.Len())
		})
	}
}

func TestEditsOutOfRange(t *testing.T) {
	r := New("abc")

	assert.ErrorIs(t, r.Insert(4, "x"), ErrOutOfRange)
	assert.ErrorIs(t, r.Insert(-1, "x"), ErrOutOfRange)
	assert.ErrorIs(t, r.Delete(2, 1), ErrOutOfRange)
	assert.ErrorIs(t, r.Replace(0, 9, "x"), ErrOutOfRange)
	assert.Equal(t, "abc", r.String())
}

// TestEditsRandom applies a long pseudo-random edit sequence and checks it against a []rune model.
func TestEditsRandom(t *testing.T) {
	gen := lfsr.NewLfsr32(0x5eed)
	next := func(n int) int {
		v, _ := gen.Next()
		return int(v % uint32(n))
	}
	alphabet := []rune("abcdé日🎉")
	randText := func() string {
		out := make([]rune, 1+next(6))
		for i := range out {
			out[i] = alphabet[next(len(alphabet))]
		}
		return string(out)
	}

	r := New()
	var model []rune

	for i := 0; i < 500; i++ {
		switch next(4) {
		case 0, 1:
			at := next(len(model) + 1)
			text := randText()
			require.NoError(t, r.Insert(at, text))
			model = append(model[:at:at], append([]rune(text), model[at:]...)...)

		case 2:
			if len(model) == 0 {
				continue
			}
			start := next(len(model))
			end := start + next(len(model)-start+1)
			require.NoError(t, r.Delete(start, end))
			model = append(model[:start:start], model[end:]...)

		case 3:
			start := next(len(model) + 1)
			end := start + next(len(model)-start+1)
			text := randText()
			require.NoError(t, r.Replace(start, end, text))
			model = append(model[:start:start], append([]rune(text), model[end:]...)...)
		}

		require.Equal(t, len(model), r.Len(), "step=%d", i)
		if i%25 == 0 {
			require.Equal(t, string(model), r.String(), "step=%d", i)
			assertBalanced(t, r)
		}
	}

	assert.Equal(t, string(model), r.String())
	for i, ch := range model {
		got, err := r.Index(i)
		require.NoError(t, err)
		require.Equal(t, ch, got)
	}
}

// assertBalanced checks the Fibonacci height bound, which depends on total length rather than
// leaf count: a rope of length n, with fib(k) <= n, is at most k+2 high.
func assertBalanced(t *testing.T, r *Rope) {
	t.Helper()
	if r.Len() == 0 {
		assert.Zero(t, r.Height())
		return
	}
	limit := newFibonacci().index(r.Len()) + 2
	assert.LessOrEqual(t, r.Height(), limit, "len=%d leaves=%d", r.Len(), r.LeafCount())
}

func TestRebalanceGeometricLengths(t *testing.T) {
	var parts []string
	for i := range 21 {
		parts = append(parts, strings.Repeat(string(rune('a'+i)), 1<<i))
	}

	for _, order := range []string{"ascending", "descending"} {
		if order == "descending" {
			parts = reverseParts(parts)
		}

		r := New()
		for _, p := range parts {
			r.Append(New(p))
		}
		r.Rebalance()

		assert.Equal(t, strings.Join(parts, ""), r.String(), order)
		assert.Equal(t, len(parts), r.LeafCount(), order)
		assertBalanced(t, r)
	}
}

func reverseParts(parts []string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[len(parts)-1-i] = p
	}
	return out
}

func TestRebalanceSkewed(t *testing.T) {
	for _, n := range []int{2, 3, 10, 100, 1000, 5000} {
		r := New()
		var expected strings.Builder
		for i := 0; i < n; i++ {
			ch := string(rune('a' + i%26))
			r.AppendLeft(New(ch))
			expected.WriteString(ch)
		}
		want := reverse(expected.String())

		require.Equal(t, n, r.Height(), "always-left appends should make a vine")
		r.Rebalance()

		assert.Equal(t, want, r.String(), "n=%d", n)
		assert.Equal(t, n, r.LeafCount())
		assertBalanced(t, r)
	}
}

func TestRebalanceMixedLengths(t *testing.T) {
	gen := lfsr.NewLfsr32(0xbeef)
	r := New()
	var expected strings.Builder

	for i := 0; i < 2000; i++ {
		v, _ := gen.Next()
		part := strings.Repeat(string(rune('A'+i%26)), 1+int(v%8))
		r.Append(New(part))
		expected.WriteString(part)
	}

	r.Rebalance()
	assert.Equal(t, expected.String(), r.String())
	assertBalanced(t, r)

	// a second pass doesn't change content
	r.Rebalance()
	assert.Equal(t, expected.String(), r.String())
}

func TestRebalanceEdgeCases(t *testing.T) {
	var empty Rope
	empty.Rebalance()
	assert.Equal(t, 0, empty.Height())
	assert.Equal(t, "", empty.String())

	single := New("only")
	single.Rebalance()
	assert.Equal(t, 1, single.Height())
	assert.Equal(t, "only", single.String())
}

func TestBuild(t *testing.T) {
	for n := 1; n <= 70; n++ {
		r := New()
		var expected strings.Builder
		for i := 0; i < n; i++ {
			part := fmt.Sprintf("%d,", i)
			r.Append(New(part))
			expected.WriteString(part)
		}

		r.Build()
		assert.Equal(t, expected.String(), r.String(), "n=%d", n)
		assert.Equal(t, bits.Len(uint(n-1))+1, r.Height(), "n=%d", n)
	}
}

func TestSharedLeaves(t *testing.T) {
	base := New("shared ", "leaves ", "stay put")
	sub, err := base.SubRope(0, 14)
	require.NoError(t, err)
	joined := Concat(base, sub)

	require.NoError(t, base.Replace(0, 6, "SHARED"))
	require.NoError(t, sub.Delete(0, 7))

	assert.Equal(t, "SHARED leaves stay put", base.String())
	assert.Equal(t, "leaves ", sub.String())
	assert.Equal(t, "shared leaves stay putshared leaves ", joined.String())
}

func TestFrom(t *testing.T) {
	r, err := From("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", r.String())

	r, err = From([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "ab", r.String())

	r, err = From([]byte("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "bytes", r.String())

	r, err = From(New("copy"))
	require.NoError(t, err)
	assert.Equal(t, "copy", r.String())

	r, err = From(strings.NewReplacer()) // not a Stringer
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Nil(t, r)

	_, err = From(42)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "int")

	var nilRope *Rope
	_, err = From(nilRope)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestIterators(t *testing.T) {
	r := New("ab", "ç", "d")

	var leaves []string
	for leaf := range r.Leaves() {
		leaves = append(leaves, leaf)
	}
	assert.Equal(t, []string{"ab", "ç", "d"}, leaves)

	var positions []int
	var runes []rune
	for i, ch := range r.Runes() {
		positions = append(positions, i)
		runes = append(runes, ch)
		if i == 2 {
			break
		}
	}
	assert.Equal(t, []int{0, 1, 2}, positions)
	assert.Equal(t, []rune("abç"), runes)
}

func TestUTF16Len(t *testing.T) {
	type testCase struct {
		parts    []string
		expected int
	}

	cases := []testCase{
		{nil, 0},
		{[]string{"👍"}, 2},
		{[]string{"𝌆", "x"}, 3},
		{[]string{"hello", " there"}, 11},
		{[]string{string([]rune{0xd834})}, 1},
	}

	for _, c := range cases {
		actual := New(c.parts...).UTF16Len()
		if actual != c.expected {
			t.Errorf("for parts=%v actual=%d expected=%d", c.parts, actual, c.expected)
		}
	}
}

func TestNilRope(t *testing.T) {
	var r *Rope

	if r.Len() != 0 || r.Height() != 0 || r.LeafCount() != 0 {
		t.Errorf("expected empty nil rope, was len=%d height=%d leaves=%d", r.Len(), r.Height(), r.LeafCount())
	}
	if r.String() != "" {
		t.Errorf("expected empty string, was=%q", r.String())
	}
	if !r.Equal(New()) || !New().Equal(nil) || !r.Equal(nil) {
		t.Errorf("expected nil and empty ropes to be equal")
	}
	if New("a").Equal(nil) || r.Equal(New("a")) {
		t.Errorf("expected non-empty rope to differ from nil")
	}
	if r.UTF16Len() != 0 {
		t.Errorf("expected zero UTF-16 length, was=%d", r.UTF16Len())
	}
	for leaf := range r.Leaves() {
		t.Errorf("expected no leaves, was=%q", leaf)
	}
	r.DebugPrint(nil)
}

func TestSet(t *testing.T) {
	r := New("hello", " ", "world")

	require.NoError(t, r.Set(0, "J"))
	require.NoError(t, r.Set(5, "__"))
	require.NoError(t, r.Set(r.Len()-1, ""))
	assert.Equal(t, "Jello__worl", r.String())

	for _, idx := range []int{-1, r.Len()} {
		err := r.Set(idx, "x")
		assert.ErrorIs(t, err, ErrOutOfRange, "idx=%d", idx)
	}
	assert.Equal(t, "Jello__worl", r.String())
}

func TestEvery(t *testing.T) {
	r := New("0123", "456", "789")

	type testCase struct {
		start, end, step int
		expected         string
	}
	cases := []testCase{
		{0, 10, 1, "0123456789"},
		{0, 10, 2, "02468"},
		{1, 10, 3, "147"},
		{2, 3, 5, "2"},
		{4, 4, 2, ""},
	}
	for _, c := range cases {
		actual, err := r.Every(c.start, c.end, c.step)
		if err != nil {
			t.Fatalf("Every(%d,%d,%d) failed: %v", c.start, c.end, c.step, err)
		}
		if actual != c.expected {
			t.Errorf("expected %q for Every(%d,%d,%d), was=%q", c.expected, c.start, c.end, c.step, actual)
		}
	}

	_, err := r.Every(0, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = r.Every(0, 11, 1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	// invalid bytes count as one rune each and pass through untouched
	odd := New("a\xffb\xfe")
	actual, err := odd.Every(0, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, "ab", actual)
	actual, err = odd.Every(1, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, "\xff\xfe", actual)
}

func TestDeleteEvery(t *testing.T) {
	r := New("0123", "456", "789")
	require.NoError(t, r.DeleteEvery(0, 10, 2))
	assert.Equal(t, "13579", r.String())
	assertBalanced(t, r)

	require.NoError(t, r.DeleteEvery(1, 4, 1))
	assert.Equal(t, "19", r.String())

	require.NoError(t, r.DeleteEvery(0, 2, 5))
	assert.Equal(t, "9", r.String())

	assert.ErrorIs(t, r.DeleteEvery(0, 1, -1), ErrInvalidArgument)
	assert.ErrorIs(t, r.DeleteEvery(0, 2, 1), ErrOutOfRange)
	assert.Equal(t, "9", r.String())
}

func TestDebugPrint(t *testing.T) {
	r := New("a", "b", "c")
	r.DebugPrint(nil)

	var empty Rope
	empty.DebugPrint(nil)
}

func reverse(s string) string {
	out := []rune(s)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
