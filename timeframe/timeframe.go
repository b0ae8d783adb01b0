// Package timeframe provides the strongly-typed time positions every tsview series is keyed by.
//
// An Index is a position on a named timeline. A TimeFrame maps each Index of that timeline to an
// absolute time value (clock ticks, microseconds, camera frames...). Two series sampled on different
// timelines can only be compared after converting indices through their TimeFrames with
// ConvertIndex or ConvertRange.
package timeframe

import (
	"slices"
	"strconv"
)

// Index is a position along a timeline. Indices are totally ordered and support offset arithmetic.
type Index int64

// Value returns the raw integer value.
func (i Index) Value() int64 {
	return int64(i)
}

// Add returns the index offset by delta.
func (i Index) Add(delta int64) Index {
	return i + Index(delta)
}

// Sub returns the signed distance i - other.
func (i Index) Sub(other Index) int64 {
	return int64(i - other)
}

func (i Index) String() string {
	return strconv.FormatInt(int64(i), 10)
}

// Interval is a closed range [Start, End] of indices.
type Interval struct {
	Start Index
	End   Index
}

// NewInterval builds an interval from raw values.
func NewInterval(start, end int64) Interval {
	return Interval{Start: Index(start), End: Index(end)}
}

// Valid reports whether Start <= End.
func (iv Interval) Valid() bool {
	return iv.Start <= iv.End
}

// Contains reports whether t lies inside the closed interval.
func (iv Interval) Contains(t Index) bool {
	return t >= iv.Start && t <= iv.End
}

// Overlaps reports whether two closed intervals share at least one index.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start <= other.End && other.Start <= iv.End
}

// Duration returns End - Start.
func (iv Interval) Duration() int64 {
	return iv.End.Sub(iv.Start)
}

// Center returns the midpoint, rounded toward Start.
func (iv Interval) Center() Index {
	return iv.Start + (iv.End-iv.Start)/2
}

// Clip restricts the interval to [lo, hi]. The boolean is false when nothing remains.
func (iv Interval) Clip(lo, hi Index) (Interval, bool) {
	out := Interval{Start: max(iv.Start, lo), End: min(iv.End, hi)}

	return out, out.Valid()
}

func (iv Interval) String() string {
	return "[" + iv.Start.String() + ", " + iv.End.String() + "]"
}

// CompareIntervals orders intervals by start, then by end.
func CompareIntervals(a, b Interval) int {
	if a.Start != b.Start {
		if a.Start < b.Start {
			return -1
		}

		return 1
	}
	if a.End != b.End {
		if a.End < b.End {
			return -1
		}

		return 1
	}

	return 0
}

// TimeFrame maps indices to absolute, non-decreasing time values.
//
// A TimeFrame is immutable after construction and may be shared freely between series.
type TimeFrame struct {
	times []int64
}

// New creates a TimeFrame from absolute times. The input is copied and sorted if needed.
func New(times []int64) *TimeFrame {
	cp := slices.Clone(times)
	if !slices.IsSorted(cp) {
		slices.Sort(cp)
	}

	return &TimeFrame{times: cp}
}

// NewUniform creates a TimeFrame of n samples starting at start and spaced by step.
func NewUniform(n int, start, step int64) *TimeFrame {
	times := make([]int64, max(n, 0))
	for i := range times {
		times[i] = start + int64(i)*step
	}

	return &TimeFrame{times: times}
}

// Len returns the number of indices on this timeline.
func (tf *TimeFrame) Len() int {
	if tf == nil {
		return 0
	}

	return len(tf.times)
}

// TimeAt returns the absolute time of idx, clamped to the valid index range.
// An empty or nil TimeFrame is the identity mapping.
func (tf *TimeFrame) TimeAt(idx Index) int64 {
	if tf.Len() == 0 {
		return int64(idx)
	}
	pos := max(0, min(int(idx), len(tf.times)-1))

	return tf.times[pos]
}

// IndexAt returns the index whose time matches t.
//
// When t falls between two samples, preceding selects the earlier index; otherwise the nearest
// index is returned (ties go to the earlier one). Results are clamped to the valid range.
func (tf *TimeFrame) IndexAt(t int64, preceding bool) Index {
	n := tf.Len()
	if n == 0 {
		return Index(t)
	}

	pos, found := slices.BinarySearch(tf.times, t)
	switch {
	case found:
		return Index(pos)
	case pos == 0:
		return 0
	case pos >= n:
		return Index(n - 1)
	case preceding:
		return Index(pos - 1)
	}

	if t-tf.times[pos-1] <= tf.times[pos]-t {
		return Index(pos - 1)
	}

	return Index(pos)
}

// ceilIndex returns the first index whose time is >= t, or Len() when none is.
func (tf *TimeFrame) ceilIndex(t int64) Index {
	pos, _ := slices.BinarySearch(tf.times, t)

	return Index(pos)
}

// floorIndex returns the last index whose time is <= t, or -1 when none is.
func (tf *TimeFrame) floorIndex(t int64) Index {
	pos, found := slices.BinarySearch(tf.times, t)
	if found {
		for pos+1 < len(tf.times) && tf.times[pos+1] == t {
			pos++
		}

		return Index(pos)
	}

	return Index(pos - 1)
}

// Same reports whether indices of a and b can be compared without conversion.
func Same(a, b *TimeFrame) bool {
	return a == nil || b == nil || a == b
}

// ConvertIndex translates idx from one timeline to the nearest index of another.
// When either TimeFrame is nil, or both are the same, idx is returned unchanged.
func ConvertIndex(idx Index, from, to *TimeFrame) Index {
	if Same(from, to) {
		return idx
	}

	return to.IndexAt(from.TimeAt(idx), false)
}

// ConvertRange translates the closed range [lo, hi] expressed on from into the closed range of
// indices on to whose times fall inside it. The result may be inverted (lo > hi) when no index
// of to falls inside the range; callers treat that as an empty range.
func ConvertRange(lo, hi Index, from, to *TimeFrame) (Index, Index) {
	if Same(from, to) {
		return lo, hi
	}
	if to.Len() == 0 {
		return Index(from.TimeAt(lo)), Index(from.TimeAt(hi))
	}

	return to.ceilIndex(from.TimeAt(lo)), to.floorIndex(from.TimeAt(hi))
}
