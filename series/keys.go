package series

import (
	"iter"
	"slices"

	"github.com/arloliu/tsview/timeframe"
)

// keys maps storage slots to time indices. It is a closed sum type with two arms:
//
//   - denseKeys: slot i holds index base+i, lookups are arithmetic.
//   - sparseKeys: slot i holds keys[i], a strictly increasing sequence, lookups binary search.
type keys interface {
	Len() int
	At(slot int) timeframe.Index
	// Find returns the slot holding t.
	Find(t timeframe.Index) (int, bool)
	// Bounds returns the half-open slot range [start, end) whose indices lie in [lo, hi].
	Bounds(lo, hi timeframe.Index) (int, int)
	// Sub returns the layout of slots [start, end) without copying.
	Sub(start, end int) keys

	isKeys()
}

type denseKeys struct {
	base timeframe.Index
	n    int
}

type sparseKeys struct {
	keys []timeframe.Index
}

var (
	_ keys = denseKeys{}
	_ keys = sparseKeys{}
)

func (d denseKeys) isKeys()  {}
func (s sparseKeys) isKeys() {}

func (d denseKeys) Len() int { return d.n }

func (d denseKeys) At(slot int) timeframe.Index {
	if slot < 0 || slot >= d.n {
		panic("series: slot out of range")
	}

	return d.base.Add(int64(slot))
}

func (d denseKeys) last() timeframe.Index {
	return d.base.Add(int64(d.n - 1))
}

func (d denseKeys) Find(t timeframe.Index) (int, bool) {
	if d.n == 0 || t < d.base || t > d.last() {
		return 0, false
	}

	return int(t.Sub(d.base)), true
}

// Bounds clamps lo and hi to the stored indices before subtracting, so extreme bounds
// cannot overflow.
func (d denseKeys) Bounds(lo, hi timeframe.Index) (int, int) {
	if lo > hi || d.n == 0 || hi < d.base {
		return 0, 0
	}
	if lo > d.last() {
		return d.n, d.n
	}
	lo = max(lo, d.base)
	hi = min(hi, d.last())

	return int(lo.Sub(d.base)), int(hi.Sub(d.base)) + 1
}

func (d denseKeys) Sub(start, end int) keys {
	return denseKeys{base: d.base.Add(int64(start)), n: end - start}
}

func (s sparseKeys) Len() int { return len(s.keys) }

func (s sparseKeys) At(slot int) timeframe.Index { return s.keys[slot] }

func (s sparseKeys) Find(t timeframe.Index) (int, bool) {
	return slices.BinarySearch(s.keys, t)
}

func (s sparseKeys) Bounds(lo, hi timeframe.Index) (int, int) {
	if lo > hi || len(s.keys) == 0 {
		return 0, 0
	}
	start, _ := slices.BinarySearch(s.keys, lo)
	end, found := slices.BinarySearch(s.keys, hi)
	if found {
		end++
	}

	return clampSpan(int64(start), int64(end), len(s.keys))
}

func (s sparseKeys) Sub(start, end int) keys {
	return sparseKeys{keys: s.keys[start:end:end]}
}

// clampSpan clamps [start, end) into [0, n] and collapses inverted spans to empty.
func clampSpan(start, end int64, n int) (int, int) {
	start = max(0, min(start, int64(n)))
	end = max(start, min(end, int64(n)))

	return int(start), int(end)
}

// isConsecutive reports whether ts is base, base+1, base+2, ...
func isConsecutive(ts []timeframe.Index) bool {
	for i := 1; i < len(ts); i++ {
		if ts[i] != ts[i-1]+1 {
			return false
		}
	}

	return true
}

// keysFor picks the dense arm when sorted, unique ts are consecutive.
func keysFor(ts []timeframe.Index) keys {
	if len(ts) == 0 {
		return denseKeys{}
	}
	if isConsecutive(ts) {
		return denseKeys{base: ts[0], n: len(ts)}
	}

	return sparseKeys{keys: ts}
}

// TimeIndexRange is a lazy, restartable sequence of time indices.
// Dense layouts produce indices arithmetically without any backing slice.
type TimeIndexRange struct {
	keys keys
}

// Len returns the number of indices in O(1).
func (r TimeIndexRange) Len() int {
	if r.keys == nil {
		return 0
	}

	return r.keys.Len()
}

// Empty reports whether the range has no indices.
func (r TimeIndexRange) Empty() bool {
	return r.Len() == 0
}

// At returns the i-th index. It panics if i is out of range.
func (r TimeIndexRange) At(i int) timeframe.Index {
	return r.keys.At(i)
}

// All returns an iterator over the indices. Each call starts a fresh iteration.
func (r TimeIndexRange) All() iter.Seq[timeframe.Index] {
	return func(yield func(timeframe.Index) bool) {
		for i := 0; i < r.Len(); i++ {
			if !yield(r.keys.At(i)) {
				return
			}
		}
	}
}

// Collect copies the indices into a new slice.
func (r TimeIndexRange) Collect() []timeframe.Index {
	out := make([]timeframe.Index, 0, r.Len())
	for t := range r.All() {
		out = append(out, t)
	}

	return out
}

// First returns the first index, or false when empty.
func (r TimeIndexRange) First() (timeframe.Index, bool) {
	if r.Empty() {
		return 0, false
	}

	return r.keys.At(0), true
}

// Last returns the last index, or false when empty.
func (r TimeIndexRange) Last() (timeframe.Index, bool) {
	if r.Empty() {
		return 0, false
	}

	return r.keys.At(r.keys.Len() - 1), true
}
