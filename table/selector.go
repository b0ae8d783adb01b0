package table

import (
	"fmt"
	"slices"

	"github.com/arloliu/tsview/timeframe"
)

// SelectorKind identifies the row selector variant.
type SelectorKind uint8

const (
	// SelectorIndex rows are raw indices.
	SelectorIndex SelectorKind = iota
	// SelectorTimestamp rows are TimeFrame indices.
	SelectorTimestamp
	// SelectorInterval rows are closed TimeFrame intervals.
	SelectorInterval
)

func (k SelectorKind) String() string {
	switch k {
	case SelectorIndex:
		return "index"
	case SelectorTimestamp:
		return "timestamp"
	case SelectorInterval:
		return "interval"
	default:
		return fmt.Sprintf("SelectorKind(%d)", k)
	}
}

// RowDescriptor tells which selector entry produced a row.
//
// Only the field matching Kind is meaningful. Entity is the entity index the row was expanded
// for, or NoEntity.
type RowDescriptor struct {
	Kind     SelectorKind
	Index    int
	Time     timeframe.Index
	Interval timeframe.Interval
	Entity   int
}

// RowSelector defines what a table row is.
//
// The set of implementations is closed: IndexSelector, TimestampSelector and IntervalSelector.
type RowSelector interface {
	Kind() SelectorKind
	// RowCount returns the number of selector rows before any entity expansion.
	RowCount() int
	// Descriptor returns the entry behind selector row i.
	Descriptor(i int) (RowDescriptor, bool)
	// Filtered returns a new selector keeping only the given rows, in the given order.
	// Out of range rows are skipped.
	Filtered(rows []int) RowSelector

	isRowSelector()
}

// IndexSelector selects rows by raw index.
type IndexSelector struct {
	indices []int
}

// NewIndexSelector creates an IndexSelector. The slice is copied.
func NewIndexSelector(indices []int) *IndexSelector {
	return &IndexSelector{indices: slices.Clone(indices)}
}

// NewRangeSelector selects the indices 0..n-1.
func NewRangeSelector(n int) *IndexSelector {
	indices := make([]int, max(n, 0))
	for i := range indices {
		indices[i] = i
	}

	return &IndexSelector{indices: indices}
}

func (s *IndexSelector) isRowSelector() {}

func (s *IndexSelector) Kind() SelectorKind { return SelectorIndex }

func (s *IndexSelector) RowCount() int { return len(s.indices) }

// Indices returns the selected indices. The slice must not be modified.
func (s *IndexSelector) Indices() []int { return s.indices }

func (s *IndexSelector) Descriptor(i int) (RowDescriptor, bool) {
	if i < 0 || i >= len(s.indices) {
		return RowDescriptor{}, false
	}

	return RowDescriptor{Kind: SelectorIndex, Index: s.indices[i], Entity: NoEntity}, true
}

func (s *IndexSelector) Filtered(rows []int) RowSelector {
	return &IndexSelector{indices: pick(s.indices, rows)}
}

// TimestampSelector selects one row per TimeFrame index.
type TimestampSelector struct {
	times []timeframe.Index
	tf    *timeframe.TimeFrame
}

// NewTimestampSelector creates a TimestampSelector over times expressed on tf. The slice is
// copied and keeps its order.
func NewTimestampSelector(times []timeframe.Index, tf *timeframe.TimeFrame) *TimestampSelector {
	return &TimestampSelector{times: slices.Clone(times), tf: tf}
}

func (s *TimestampSelector) isRowSelector() {}

func (s *TimestampSelector) Kind() SelectorKind { return SelectorTimestamp }

func (s *TimestampSelector) RowCount() int { return len(s.times) }

// Timestamps returns the selected indices. The slice must not be modified.
func (s *TimestampSelector) Timestamps() []timeframe.Index { return s.times }

// TimeFrame returns the timeline the timestamps are expressed on.
func (s *TimestampSelector) TimeFrame() *timeframe.TimeFrame { return s.tf }

func (s *TimestampSelector) Descriptor(i int) (RowDescriptor, bool) {
	if i < 0 || i >= len(s.times) {
		return RowDescriptor{}, false
	}

	return RowDescriptor{Kind: SelectorTimestamp, Index: i, Time: s.times[i], Entity: NoEntity}, true
}

func (s *TimestampSelector) Filtered(rows []int) RowSelector {
	return &TimestampSelector{times: pick(s.times, rows), tf: s.tf}
}

// IntervalSelector selects one row per closed interval.
type IntervalSelector struct {
	intervals []timeframe.Interval
	tf        *timeframe.TimeFrame
}

// NewIntervalSelector creates an IntervalSelector over intervals expressed on tf. The slice
// is copied and keeps its order.
func NewIntervalSelector(intervals []timeframe.Interval, tf *timeframe.TimeFrame) *IntervalSelector {
	return &IntervalSelector{intervals: slices.Clone(intervals), tf: tf}
}

func (s *IntervalSelector) isRowSelector() {}

func (s *IntervalSelector) Kind() SelectorKind { return SelectorInterval }

func (s *IntervalSelector) RowCount() int { return len(s.intervals) }

// Intervals returns the selected intervals. The slice must not be modified.
func (s *IntervalSelector) Intervals() []timeframe.Interval { return s.intervals }

// TimeFrame returns the timeline the intervals are expressed on.
func (s *IntervalSelector) TimeFrame() *timeframe.TimeFrame { return s.tf }

func (s *IntervalSelector) Descriptor(i int) (RowDescriptor, bool) {
	if i < 0 || i >= len(s.intervals) {
		return RowDescriptor{}, false
	}

	return RowDescriptor{Kind: SelectorInterval, Index: i, Interval: s.intervals[i], Entity: NoEntity}, true
}

func (s *IntervalSelector) Filtered(rows []int) RowSelector {
	return &IntervalSelector{intervals: pick(s.intervals, rows), tf: s.tf}
}

func pick[T any](src []T, rows []int) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if r >= 0 && r < len(src) {
			out = append(out, src[r])
		}
	}

	return out
}
