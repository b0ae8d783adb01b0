package series

import (
	"iter"
	"slices"

	"github.com/arloliu/tsview/timeframe"
)

// AnalogView is a read-only window over an AnalogTimeSeries.
//
// The view shares memory with its source and stays valid only while the source is not mutated.
// Materialize produces an owned copy.
type AnalogView struct {
	TimeValueRange

	source   *AnalogTimeSeries
	interval timeframe.Interval
}

// Source returns the series the view was created from.
func (v *AnalogView) Source() *AnalogTimeSeries {
	return v.source
}

// Interval returns the requested range, which may extend beyond the first and last sample.
func (v *AnalogView) Interval() timeframe.Interval {
	return v.interval
}

// TimeFrame returns the timeline of the source series.
func (v *AnalogView) TimeFrame() *timeframe.TimeFrame {
	return v.source.TimeFrame()
}

// Materialize copies the viewed samples into a new series.
func (v *AnalogView) Materialize() *AnalogTimeSeries {
	return &AnalogTimeSeries{col: v.col.clone(), tf: v.source.TimeFrame()}
}

// EventView is a read-only window over a DigitalEventSeries.
type EventView struct {
	events   []timeframe.Index
	source   *DigitalEventSeries
	interval timeframe.Interval
}

// Len returns the number of events in the view.
func (v *EventView) Len() int {
	return len(v.events)
}

// Empty reports whether the view holds no events.
func (v *EventView) Empty() bool {
	return len(v.events) == 0
}

// Events returns the events without copying.
func (v *EventView) Events() []timeframe.Index {
	return v.events
}

// Source returns the series the view was created from.
func (v *EventView) Source() *DigitalEventSeries {
	return v.source
}

// Interval returns the requested range.
func (v *EventView) Interval() timeframe.Interval {
	return v.interval
}

// TimeFrame returns the timeline of the source series.
func (v *EventView) TimeFrame() *timeframe.TimeFrame {
	return v.source.TimeFrame()
}

// RelativeTo yields each event's signed offset from ref.
func (v *EventView) RelativeTo(ref timeframe.Index) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for _, e := range v.events {
			if !yield(e.Sub(ref)) {
				return
			}
		}
	}
}

// Materialize copies the viewed events into a new series.
func (v *EventView) Materialize() *DigitalEventSeries {
	return &DigitalEventSeries{events: slices.Clone(v.events), tf: v.source.TimeFrame()}
}

// IntervalView is a read-only window over a DigitalIntervalSeries holding the intervals whose
// start lies inside the requested range.
type IntervalView struct {
	intervals []timeframe.Interval
	source    *DigitalIntervalSeries
	interval  timeframe.Interval
}

// Len returns the number of intervals in the view.
func (v *IntervalView) Len() int {
	return len(v.intervals)
}

// Empty reports whether the view holds no intervals.
func (v *IntervalView) Empty() bool {
	return len(v.intervals) == 0
}

// Intervals returns the intervals without copying.
func (v *IntervalView) Intervals() []timeframe.Interval {
	return v.intervals
}

// Source returns the series the view was created from.
func (v *IntervalView) Source() *DigitalIntervalSeries {
	return v.source
}

// Interval returns the requested range.
func (v *IntervalView) Interval() timeframe.Interval {
	return v.interval
}

// TimeFrame returns the timeline of the source series.
func (v *IntervalView) TimeFrame() *timeframe.TimeFrame {
	return v.source.TimeFrame()
}

// Materialize copies the viewed intervals into a new series.
func (v *IntervalView) Materialize() *DigitalIntervalSeries {
	return &DigitalIntervalSeries{intervals: slices.Clone(v.intervals), tf: v.source.TimeFrame()}
}
