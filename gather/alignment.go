package gather

import (
	"iter"

	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/timeframe"
)

// AlignedInterval is one gather window plus the index trials are aligned to.
type AlignedInterval struct {
	timeframe.Interval

	Alignment timeframe.Index
}

// Sequence is a lazy, restartable sequence of gather windows.
type Sequence = iter.Seq[AlignedInterval]

// AlignPoint selects which point of an interval becomes its alignment index.
type AlignPoint uint8

const (
	AlignStart AlignPoint = iota
	AlignCenter
	AlignEnd
)

func (p AlignPoint) String() string {
	switch p {
	case AlignStart:
		return "start"
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	default:
		return "unknown"
	}
}

func (p AlignPoint) of(iv timeframe.Interval) timeframe.Index {
	switch p {
	case AlignCenter:
		return iv.Center()
	case AlignEnd:
		return iv.End
	default:
		return iv.Start
	}
}

// Intervals yields the given intervals aligned to their start.
func Intervals(ivs []timeframe.Interval) Sequence {
	return func(yield func(AlignedInterval) bool) {
		for _, iv := range ivs {
			if !yield(AlignedInterval{Interval: iv, Alignment: iv.Start}) {
				return
			}
		}
	}
}

// ExpandEvents yields [e-before, e+after] for every event e, aligned to e.
// No interval list is built.
func ExpandEvents(events *series.DigitalEventSeries, before, after int64) Sequence {
	return func(yield func(AlignedInterval) bool) {
		for _, e := range events.Events() {
			iv := timeframe.Interval{Start: e.Add(-before), End: e.Add(after)}
			if !yield(AlignedInterval{Interval: iv, Alignment: e}) {
				return
			}
		}
	}
}

// WithAlignment yields the intervals of s aligned to the chosen point.
func WithAlignment(s *series.DigitalIntervalSeries, point AlignPoint) Sequence {
	return func(yield func(AlignedInterval) bool) {
		for _, iv := range s.Intervals() {
			if !yield(AlignedInterval{Interval: iv, Alignment: point.of(iv)}) {
				return
			}
		}
	}
}
