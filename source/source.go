// Package source exposes series to the table engine through read-only, timeline-aware
// interfaces.
//
// Every query method takes the target TimeFrame its indices are expressed on. Adapters convert
// them to the wrapped series' own timeline; a nil target, or the series' own timeline, means no
// conversion.
package source

import (
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/timeframe"
)

// Kind tags the concrete family behind a Source.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAnalog
	KindEvent
	KindInterval
	KindPoint
	KindLine
	KindMask
)

func (k Kind) String() string {
	switch k {
	case KindAnalog:
		return "analog"
	case KindEvent:
		return "event"
	case KindInterval:
		return "interval"
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	case KindMask:
		return "mask"
	default:
		return "unknown"
	}
}

// IsRagged reports whether sources of this kind may hold several entities per index.
func (k Kind) IsRagged() bool {
	return k == KindPoint || k == KindLine || k == KindMask
}

// Source is the common part of every adapter.
type Source interface {
	Name() string
	Kind() Kind
	TimeFrame() *timeframe.TimeFrame
}

// AnalogSource reads one float sample per index.
type AnalogSource interface {
	Source
	Len() int
	// DataInRange returns the samples whose index lies in [lo, hi] on target.
	DataInRange(lo, hi timeframe.Index, target *timeframe.TimeFrame) []float32
	// ValueAt returns the sample at t on target.
	ValueAt(t timeframe.Index, target *timeframe.TimeFrame) (float32, bool)
}

// EventSource reads instantaneous events.
type EventSource interface {
	Source
	Len() int
	// EventsInRange returns the events in [lo, hi] on target, expressed on the source timeline.
	EventsInRange(lo, hi timeframe.Index, target *timeframe.TimeFrame) []timeframe.Index
}

// IntervalSource reads closed intervals.
type IntervalSource interface {
	Source
	Len() int
	Intervals() []timeframe.Interval
	// IntervalsInRange returns the intervals matching [lo, hi] on target under mode, expressed on
	// the source timeline.
	IntervalsInRange(lo, hi timeframe.Index, target *timeframe.TimeFrame, mode series.RangeMode) []timeframe.Interval
}

// RaggedSource reads series holding several entities per index.
type RaggedSource interface {
	Source
	TotalEntities() int
	// HasMultiSamples reports whether any index holds more than one entity.
	HasMultiSamples() bool
	EntityCountAt(t timeframe.Index, target *timeframe.TimeFrame) int
	EntityIDAt(t timeframe.Index, i int, target *timeframe.TimeFrame) (series.EntityID, bool)
}

// PointSource reads tracked points.
type PointSource interface {
	RaggedSource
	Points() []series.Point2D
	PointsInRange(lo, hi timeframe.Index, target *timeframe.TimeFrame) []series.Point2D
	PointAt(t timeframe.Index, i int, target *timeframe.TimeFrame) (series.Point2D, bool)
}

// LineSource reads tracked polylines.
type LineSource interface {
	RaggedSource
	Lines() []series.Line2D
	LinesInRange(lo, hi timeframe.Index, target *timeframe.TimeFrame) []series.Line2D
	LineAt(t timeframe.Index, i int, target *timeframe.TimeFrame) (series.Line2D, bool)
}
