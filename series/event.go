package series

import (
	"iter"
	"slices"

	"github.com/arloliu/tsview/timeframe"
)

// DigitalEventSeries is a sorted set of instantaneous events.
type DigitalEventSeries struct {
	events []timeframe.Index
	tf     *timeframe.TimeFrame
}

// NewEventSeries creates a series from events in any order. Duplicates are dropped and the
// input is copied.
func NewEventSeries(events []timeframe.Index) *DigitalEventSeries {
	cp := slices.Clone(events)
	slices.Sort(cp)

	return &DigitalEventSeries{events: slices.Compact(cp)}
}

// Len returns the number of events.
func (s *DigitalEventSeries) Len() int {
	if s == nil {
		return 0
	}

	return len(s.events)
}

// At returns the i-th event.
func (s *DigitalEventSeries) At(i int) timeframe.Index {
	return s.events[i]
}

// Events returns all events without copying.
func (s *DigitalEventSeries) Events() []timeframe.Index {
	if s == nil {
		return nil
	}
	n := len(s.events)

	return s.events[:n:n]
}

// Contains reports whether an event occurs at t.
func (s *DigitalEventSeries) Contains(t timeframe.Index) bool {
	_, found := slices.BinarySearch(s.Events(), t)

	return found
}

// AddEvent inserts an event at t. It returns false if one already exists.
func (s *DigitalEventSeries) AddEvent(t timeframe.Index) bool {
	pos, found := slices.BinarySearch(s.events, t)
	if found {
		return false
	}
	s.events = slices.Insert(s.events, pos, t)

	return true
}

// RemoveEvent deletes the event at t.
func (s *DigitalEventSeries) RemoveEvent(t timeframe.Index) bool {
	pos, found := slices.BinarySearch(s.events, t)
	if !found {
		return false
	}
	s.events = slices.Delete(s.events, pos, pos+1)

	return true
}

// RangeBounds returns the half-open slot range of events in [lo, hi].
func (s *DigitalEventSeries) RangeBounds(lo, hi timeframe.Index) (int, int) {
	if s == nil {
		return 0, 0
	}

	return sparseKeys{keys: s.events}.Bounds(lo, hi)
}

// EventsInRange returns the events in [lo, hi] without copying.
func (s *DigitalEventSeries) EventsInRange(lo, hi timeframe.Index) []timeframe.Index {
	start, end := s.RangeBounds(lo, hi)
	if start == end {
		return nil
	}

	return s.events[start:end:end]
}

// CountInRange returns the number of events in [lo, hi].
func (s *DigitalEventSeries) CountInRange(lo, hi timeframe.Index) int {
	start, end := s.RangeBounds(lo, hi)

	return end - start
}

// Windows yields [e-before, e+after] around every event.
func (s *DigitalEventSeries) Windows(before, after int64) iter.Seq[timeframe.Interval] {
	return func(yield func(timeframe.Interval) bool) {
		for _, e := range s.Events() {
			if !yield(timeframe.Interval{Start: e.Add(-before), End: e.Add(after)}) {
				return
			}
		}
	}
}

// SetTimeFrame associates the series with a timeline.
func (s *DigitalEventSeries) SetTimeFrame(tf *timeframe.TimeFrame) {
	s.tf = tf
}

// TimeFrame returns the associated timeline, or nil.
func (s *DigitalEventSeries) TimeFrame() *timeframe.TimeFrame {
	if s == nil {
		return nil
	}

	return s.tf
}

// CreateView returns a read-only view of the events in [lo, hi]. A nil series yields an
// empty view.
func (s *DigitalEventSeries) CreateView(lo, hi timeframe.Index) *EventView {
	return &EventView{
		events:   s.EventsInRange(lo, hi),
		source:   s,
		interval: timeframe.Interval{Start: lo, End: hi},
	}
}
