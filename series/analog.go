package series

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/timeframe"
)

// AnalogTimeSeries is a time-indexed series of float32 samples.
//
// Samples are kept sorted by time index. Consecutive indices are stored densely (a base index
// plus a count) and everything else sparsely. Range queries return subslices of the internal
// storage; mutating the series invalidates any range or view obtained earlier.
type AnalogTimeSeries struct {
	col timeColumn[float32]
	tf  *timeframe.TimeFrame
}

// NewAnalog creates a series from parallel values and times.
//
// Times need not be sorted. When a time appears more than once, the last value wins.
// The inputs are copied.
func NewAnalog(values []float32, times []timeframe.Index) (*AnalogTimeSeries, error) {
	if len(values) != len(times) {
		return nil, fmt.Errorf("%w: %d values, %d times", errs.ErrLengthMismatch, len(values), len(times))
	}

	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return times[order[a]] < times[order[b]] })

	ts := make([]timeframe.Index, 0, len(times))
	vs := make([]float32, 0, len(values))
	for _, i := range order {
		if n := len(ts); n > 0 && ts[n-1] == times[i] {
			vs[n-1] = values[i]
			continue
		}
		ts = append(ts, times[i])
		vs = append(vs, values[i])
	}

	return &AnalogTimeSeries{col: timeColumn[float32]{keys: keysFor(ts), data: vs}}, nil
}

// NewDenseAnalog creates a dense series whose i-th value sits at base+i.
// The series takes ownership of values.
func NewDenseAnalog(base timeframe.Index, values []float32) *AnalogTimeSeries {
	return &AnalogTimeSeries{col: timeColumn[float32]{keys: denseKeys{base: base, n: len(values)}, data: values}}
}

// NewAnalogFromMap creates a series from a time to value map.
func NewAnalogFromMap(m map[timeframe.Index]float32) *AnalogTimeSeries {
	ts := slices.Sorted(maps.Keys(m))
	vs := make([]float32, len(ts))
	for i, t := range ts {
		vs[i] = m[t]
	}

	return &AnalogTimeSeries{col: timeColumn[float32]{keys: keysFor(ts), data: vs}}
}

// Len returns the number of samples.
func (s *AnalogTimeSeries) Len() int {
	if s == nil {
		return 0
	}

	return s.col.len()
}

// IsDense reports whether samples occupy consecutive time indices.
func (s *AnalogTimeSeries) IsDense() bool {
	return s.col.dense()
}

// At returns the time and value stored at slot i. It panics if i is out of range.
func (s *AnalogTimeSeries) At(i int) (timeframe.Index, float32) {
	return s.col.layout().At(i), s.col.data[i]
}

// TimeAt returns the time index of slot i.
func (s *AnalogTimeSeries) TimeAt(i int) timeframe.Index {
	return s.col.layout().At(i)
}

// Values returns all values in time order without copying. Callers must not modify the result.
func (s *AnalogTimeSeries) Values() []float32 {
	if s == nil {
		return nil
	}
	n := len(s.col.data)

	return s.col.data[:n:n]
}

// Times returns all time indices as a lazy range.
func (s *AnalogTimeSeries) Times() TimeIndexRange {
	if s == nil {
		return TimeIndexRange{}
	}

	return TimeIndexRange{keys: s.col.layout()}
}

// FindIndex returns the slot holding t.
func (s *AnalogTimeSeries) FindIndex(t timeframe.Index) (int, bool) {
	return s.col.find(t)
}

// ValueAt returns the value stored at t.
func (s *AnalogTimeSeries) ValueAt(t timeframe.Index) (float32, bool) {
	slot, ok := s.col.find(t)
	if !ok {
		return 0, false
	}

	return s.col.data[slot], true
}

// RangeBounds returns the half-open slot range [start, end) of samples with time in [lo, hi].
// An inverted range yields start == end.
func (s *AnalogTimeSeries) RangeBounds(lo, hi timeframe.Index) (int, int) {
	if s == nil {
		return 0, 0
	}

	return s.col.bounds(lo, hi)
}

// ValuesInRange returns the values with time in [lo, hi] without copying.
func (s *AnalogTimeSeries) ValuesInRange(lo, hi timeframe.Index) []float32 {
	return s.TimeValueRange(lo, hi).Values()
}

// TimeValueRange returns the samples with time in [lo, hi] as a lazy range.
func (s *AnalogTimeSeries) TimeValueRange(lo, hi timeframe.Index) TimeValueRange {
	if s == nil {
		return TimeValueRange{}
	}
	start, end := s.col.bounds(lo, hi)

	return TimeValueRange{col: s.col.sub(start, end)}
}

// DataInRange returns the values and time indices in [lo, hi] as a pair of parallel spans.
func (s *AnalogTimeSeries) DataInRange(lo, hi timeframe.Index) SpanPair {
	r := s.TimeValueRange(lo, hi)

	return SpanPair{Values: r.Values(), Times: r.Times()}
}

// Set stores v at t, overwriting any existing sample.
func (s *AnalogTimeSeries) Set(t timeframe.Index, v float32) {
	s.col.data[s.col.upsert(t)] = v
}

// ClearAt removes the sample at t.
func (s *AnalogTimeSeries) ClearAt(t timeframe.Index) bool {
	return s.col.remove(t)
}

// SetTimeFrame associates the series with a timeline.
func (s *AnalogTimeSeries) SetTimeFrame(tf *timeframe.TimeFrame) {
	s.tf = tf
}

// TimeFrame returns the associated timeline, or nil.
func (s *AnalogTimeSeries) TimeFrame() *timeframe.TimeFrame {
	if s == nil {
		return nil
	}

	return s.tf
}

// Clone returns an independent copy of the series sharing only its TimeFrame.
func (s *AnalogTimeSeries) Clone() *AnalogTimeSeries {
	return &AnalogTimeSeries{col: s.col.clone(), tf: s.tf}
}

// CreateView returns a read-only view of the samples with time in [lo, hi]. The view borrows
// the series' memory. A nil series yields an empty view.
func (s *AnalogTimeSeries) CreateView(lo, hi timeframe.Index) *AnalogView {
	return &AnalogView{
		TimeValueRange: s.TimeValueRange(lo, hi),
		source:         s,
		interval:       timeframe.Interval{Start: lo, End: hi},
	}
}

// SpanPair holds parallel values and time indices over the same samples.
type SpanPair struct {
	Values []float32
	Times  TimeIndexRange
}

// TimeValueRange is a lazy view of (time, value) pairs over a contiguous run of samples.
type TimeValueRange struct {
	col timeColumn[float32]
}

// Len returns the number of samples.
func (r TimeValueRange) Len() int {
	return len(r.col.data)
}

// Empty reports whether the range holds no samples.
func (r TimeValueRange) Empty() bool {
	return r.Len() == 0
}

// At returns the i-th (time, value) pair.
func (r TimeValueRange) At(i int) (timeframe.Index, float32) {
	return r.col.keys.At(i), r.col.data[i]
}

// Values returns the values without copying.
func (r TimeValueRange) Values() []float32 {
	return r.col.data
}

// Times returns the time indices lazily.
func (r TimeValueRange) Times() TimeIndexRange {
	return TimeIndexRange{keys: r.col.keys}
}

// All iterates (time, value) pairs in time order.
func (r TimeValueRange) All() iter.Seq2[timeframe.Index, float32] {
	return func(yield func(timeframe.Index, float32) bool) {
		for i, v := range r.col.data {
			if !yield(r.col.keys.At(i), v) {
				return
			}
		}
	}
}
