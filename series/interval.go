package series

import (
	"iter"
	"slices"

	"github.com/arloliu/tsview/timeframe"
)

// RangeMode selects which intervals a range query returns.
type RangeMode uint8

const (
	// Contained returns intervals lying entirely inside the range.
	Contained RangeMode = iota
	// Overlapping returns intervals sharing at least one index with the range.
	Overlapping
	// Clip returns overlapping intervals trimmed to the range.
	Clip
)

func (m RangeMode) String() string {
	switch m {
	case Contained:
		return "Contained"
	case Overlapping:
		return "Overlapping"
	case Clip:
		return "Clip"
	default:
		return "Unknown"
	}
}

// DigitalIntervalSeries is a list of closed intervals ordered by start.
type DigitalIntervalSeries struct {
	intervals []timeframe.Interval
	tf        *timeframe.TimeFrame
}

// NewIntervalSeries creates a series from intervals in any order. Invalid intervals
// (start > end) are dropped. Overlapping intervals are kept as given.
func NewIntervalSeries(intervals []timeframe.Interval) *DigitalIntervalSeries {
	out := make([]timeframe.Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Valid() {
			out = append(out, iv)
		}
	}
	slices.SortFunc(out, timeframe.CompareIntervals)

	return &DigitalIntervalSeries{intervals: out}
}

// IntervalsFromBool builds intervals from runs of true values; index i of the slice is time i.
func IntervalsFromBool(states []bool) *DigitalIntervalSeries {
	var out []timeframe.Interval
	start := -1
	for i, on := range states {
		switch {
		case on && start < 0:
			start = i
		case !on && start >= 0:
			out = append(out, timeframe.NewInterval(int64(start), int64(i-1)))
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, timeframe.NewInterval(int64(start), int64(len(states)-1)))
	}

	return &DigitalIntervalSeries{intervals: out}
}

// Len returns the number of intervals.
func (s *DigitalIntervalSeries) Len() int {
	if s == nil {
		return 0
	}

	return len(s.intervals)
}

// At returns the i-th interval.
func (s *DigitalIntervalSeries) At(i int) timeframe.Interval {
	return s.intervals[i]
}

// Intervals returns all intervals without copying.
func (s *DigitalIntervalSeries) Intervals() []timeframe.Interval {
	if s == nil {
		return nil
	}
	n := len(s.intervals)

	return s.intervals[:n:n]
}

// All iterates the intervals in order.
func (s *DigitalIntervalSeries) All() iter.Seq2[int, timeframe.Interval] {
	return slices.All(s.Intervals())
}

// HasEventAt reports whether any interval contains t.
func (s *DigitalIntervalSeries) HasEventAt(t timeframe.Index) bool {
	_, ok := s.IntervalAt(t)

	return ok
}

// IntervalAt returns the first interval containing t.
func (s *DigitalIntervalSeries) IntervalAt(t timeframe.Index) (timeframe.Interval, bool) {
	ivs := s.Intervals()
	// Intervals starting after t cannot contain it.
	end := s.startBound(t)
	for i := end - 1; i >= 0; i-- {
		if ivs[i].Contains(t) {
			return ivs[i], true
		}
	}

	return timeframe.Interval{}, false
}

// startBound returns the number of intervals whose start is <= t.
func (s *DigitalIntervalSeries) startBound(t timeframe.Index) int {
	pos, _ := slices.BinarySearchFunc(s.Intervals(), t, func(iv timeframe.Interval, t timeframe.Index) int {
		if iv.Start <= t {
			return -1
		}

		return 1
	})

	return pos
}

// AddInterval inserts iv, merging it with every interval it overlaps.
// Invalid intervals are rejected.
func (s *DigitalIntervalSeries) AddInterval(iv timeframe.Interval) bool {
	if !iv.Valid() {
		return false
	}

	merged := iv
	kept := s.intervals[:0:0]
	for _, cur := range s.intervals {
		if cur.Overlaps(merged) {
			merged.Start = min(merged.Start, cur.Start)
			merged.End = max(merged.End, cur.End)

			continue
		}
		kept = append(kept, cur)
	}
	pos, _ := slices.BinarySearchFunc(kept, merged, timeframe.CompareIntervals)
	s.intervals = slices.Insert(kept, pos, merged)

	return true
}

// RemoveInterval deletes the interval equal to iv.
func (s *DigitalIntervalSeries) RemoveInterval(iv timeframe.Interval) bool {
	i := slices.Index(s.intervals, iv)
	if i < 0 {
		return false
	}
	s.intervals = slices.Delete(s.intervals, i, i+1)

	return true
}

// SetEventAtTime turns the state at t on or off.
//
// Turning on joins t with neighbouring intervals ending at t-1 or starting at t+1.
// Turning off splits the containing interval around t.
func (s *DigitalIntervalSeries) SetEventAtTime(t timeframe.Index, on bool) {
	if on {
		if s.HasEventAt(t) {
			return
		}
		s.AddInterval(timeframe.Interval{Start: t, End: t})
		s.joinAdjacent(t)

		return
	}

	var out []timeframe.Interval
	for _, cur := range s.intervals {
		if !cur.Contains(t) {
			out = append(out, cur)

			continue
		}
		if left := (timeframe.Interval{Start: cur.Start, End: t - 1}); left.Valid() {
			out = append(out, left)
		}
		if right := (timeframe.Interval{Start: t + 1, End: cur.End}); right.Valid() {
			out = append(out, right)
		}
	}
	slices.SortFunc(out, timeframe.CompareIntervals)
	s.intervals = out
}

// joinAdjacent merges the interval containing t with neighbours that touch it.
func (s *DigitalIntervalSeries) joinAdjacent(t timeframe.Index) {
	cur, ok := s.IntervalAt(t)
	if !ok {
		return
	}
	joined := cur
	for _, other := range s.intervals {
		if other.End+1 == joined.Start || joined.End+1 == other.Start {
			joined.Start = min(joined.Start, other.Start)
			joined.End = max(joined.End, other.End)
		}
	}
	if joined != cur {
		s.AddInterval(joined)
	}
}

// IntervalsInRange returns a copy of the intervals matching [lo, hi] under mode.
func (s *DigitalIntervalSeries) IntervalsInRange(lo, hi timeframe.Index, mode RangeMode) []timeframe.Interval {
	if lo > hi {
		return nil
	}

	var out []timeframe.Interval
	for _, iv := range s.Intervals()[:s.startBound(hi)] {
		switch mode {
		case Contained:
			if iv.Start >= lo && iv.End <= hi {
				out = append(out, iv)
			}
		case Overlapping:
			if iv.End >= lo {
				out = append(out, iv)
			}
		case Clip:
			if c, ok := iv.Clip(lo, hi); ok {
				out = append(out, c)
			}
		}
	}

	return out
}

// StartBounds returns the half-open slot range of intervals whose start lies in [lo, hi].
func (s *DigitalIntervalSeries) StartBounds(lo, hi timeframe.Index) (int, int) {
	if lo > hi {
		return 0, 0
	}

	return s.startBefore(lo), s.startBound(hi)
}

// startBefore returns the number of intervals whose start is < t.
func (s *DigitalIntervalSeries) startBefore(t timeframe.Index) int {
	pos, _ := slices.BinarySearchFunc(s.Intervals(), t, func(iv timeframe.Interval, t timeframe.Index) int {
		if iv.Start < t {
			return -1
		}

		return 1
	})

	return pos
}

// Invert returns the gaps between intervals as a new series on the same timeline.
func (s *DigitalIntervalSeries) Invert(domain Domain, opts ...InvertOption) *DigitalIntervalSeries {
	return &DigitalIntervalSeries{intervals: InvertIntervals(s.Intervals(), domain, opts...), tf: s.TimeFrame()}
}

// SetTimeFrame associates the series with a timeline.
func (s *DigitalIntervalSeries) SetTimeFrame(tf *timeframe.TimeFrame) {
	s.tf = tf
}

// TimeFrame returns the associated timeline, or nil.
func (s *DigitalIntervalSeries) TimeFrame() *timeframe.TimeFrame {
	if s == nil {
		return nil
	}

	return s.tf
}

// CreateView returns a read-only view of the intervals whose start lies in [lo, hi].
// A nil series yields an empty view.
func (s *DigitalIntervalSeries) CreateView(lo, hi timeframe.Index) *IntervalView {
	start, end := s.StartBounds(lo, hi)
	var ivs []timeframe.Interval
	if start < end {
		ivs = s.intervals[start:end:end]
	}

	return &IntervalView{
		intervals: ivs,
		source:    s,
		interval:  timeframe.Interval{Start: lo, End: hi},
	}
}
