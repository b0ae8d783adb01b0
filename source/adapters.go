package source

import (
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/timeframe"
)

type base struct {
	name string
	kind Kind
	tf   *timeframe.TimeFrame
}

func (b base) Name() string                    { return b.name }
func (b base) Kind() Kind                      { return b.kind }
func (b base) TimeFrame() *timeframe.TimeFrame { return b.tf }

func (b base) index(t timeframe.Index, target *timeframe.TimeFrame) timeframe.Index {
	return timeframe.ConvertIndex(t, target, b.tf)
}

func (b base) span(lo, hi timeframe.Index, target *timeframe.TimeFrame) (timeframe.Index, timeframe.Index) {
	return timeframe.ConvertRange(lo, hi, target, b.tf)
}

// timeframeOr prefers an explicit TimeFrame over the series' own.
func timeframeOr(tf, own *timeframe.TimeFrame) *timeframe.TimeFrame {
	if tf != nil {
		return tf
	}

	return own
}

// AnalogAdapter serves an AnalogTimeSeries.
type AnalogAdapter struct {
	base
	s *series.AnalogTimeSeries
}

var _ AnalogSource = (*AnalogAdapter)(nil)

// NewAnalogAdapter wraps s. A nil tf means the series' own TimeFrame.
func NewAnalogAdapter(name string, s *series.AnalogTimeSeries, tf *timeframe.TimeFrame) *AnalogAdapter {
	return &AnalogAdapter{base: base{name: name, kind: KindAnalog, tf: timeframeOr(tf, s.TimeFrame())}, s: s}
}

func (a *AnalogAdapter) Len() int { return a.s.Len() }

func (a *AnalogAdapter) DataInRange(lo, hi timeframe.Index, target *timeframe.TimeFrame) []float32 {
	lo, hi = a.span(lo, hi, target)

	return a.s.ValuesInRange(lo, hi)
}

func (a *AnalogAdapter) ValueAt(t timeframe.Index, target *timeframe.TimeFrame) (float32, bool) {
	return a.s.ValueAt(a.index(t, target))
}

// EventAdapter serves a DigitalEventSeries.
type EventAdapter struct {
	base
	s *series.DigitalEventSeries
}

var _ EventSource = (*EventAdapter)(nil)

// NewEventAdapter wraps s. A nil tf means the series' own TimeFrame.
func NewEventAdapter(name string, s *series.DigitalEventSeries, tf *timeframe.TimeFrame) *EventAdapter {
	return &EventAdapter{base: base{name: name, kind: KindEvent, tf: timeframeOr(tf, s.TimeFrame())}, s: s}
}

func (a *EventAdapter) Len() int { return a.s.Len() }

func (a *EventAdapter) EventsInRange(lo, hi timeframe.Index, target *timeframe.TimeFrame) []timeframe.Index {
	lo, hi = a.span(lo, hi, target)

	return a.s.EventsInRange(lo, hi)
}

// Series returns the wrapped series.
func (a *EventAdapter) Series() *series.DigitalEventSeries { return a.s }

// IntervalAdapter serves a DigitalIntervalSeries.
type IntervalAdapter struct {
	base
	s *series.DigitalIntervalSeries
}

var _ IntervalSource = (*IntervalAdapter)(nil)

// NewIntervalAdapter wraps s. A nil tf means the series' own TimeFrame.
func NewIntervalAdapter(name string, s *series.DigitalIntervalSeries, tf *timeframe.TimeFrame) *IntervalAdapter {
	return &IntervalAdapter{base: base{name: name, kind: KindInterval, tf: timeframeOr(tf, s.TimeFrame())}, s: s}
}

func (a *IntervalAdapter) Len() int { return a.s.Len() }

func (a *IntervalAdapter) Intervals() []timeframe.Interval { return a.s.Intervals() }

func (a *IntervalAdapter) IntervalsInRange(lo, hi timeframe.Index, target *timeframe.TimeFrame, mode series.RangeMode) []timeframe.Interval {
	lo, hi = a.span(lo, hi, target)

	return a.s.IntervalsInRange(lo, hi, mode)
}

// Series returns the wrapped series.
func (a *IntervalAdapter) Series() *series.DigitalIntervalSeries { return a.s }

// RaggedAdapter serves any ragged series.
type RaggedAdapter[T any] struct {
	base
	s *series.RaggedSeries[T]
}

// NewRaggedAdapter wraps s under the given kind. A nil tf means the series' own TimeFrame.
func NewRaggedAdapter[T any](name string, kind Kind, s *series.RaggedSeries[T], tf *timeframe.TimeFrame) *RaggedAdapter[T] {
	return &RaggedAdapter[T]{base: base{name: name, kind: kind, tf: timeframeOr(tf, s.TimeFrame())}, s: s}
}

func (a *RaggedAdapter[T]) TotalEntities() int { return a.s.TotalEntities() }

func (a *RaggedAdapter[T]) HasMultiSamples() bool { return a.s.HasMultiSamples() }

func (a *RaggedAdapter[T]) EntityCountAt(t timeframe.Index, target *timeframe.TimeFrame) int {
	return a.s.EntityCountAt(a.index(t, target))
}

func (a *RaggedAdapter[T]) EntityIDAt(t timeframe.Index, i int, target *timeframe.TimeFrame) (series.EntityID, bool) {
	return a.s.EntityIDAt(a.index(t, target), i)
}

// Series returns the wrapped series.
func (a *RaggedAdapter[T]) Series() *series.RaggedSeries[T] { return a.s }

func (a *RaggedAdapter[T]) all() []T {
	out := make([]T, 0, a.s.TotalEntities())
	for _, es := range a.s.All() {
		for _, e := range es {
			out = append(out, e.Value)
		}
	}

	return out
}

func (a *RaggedAdapter[T]) inRange(lo, hi timeframe.Index, target *timeframe.TimeFrame) []T {
	lo, hi = a.span(lo, hi, target)
	var out []T
	for _, e := range a.s.Range(lo, hi).Entities() {
		out = append(out, e.Value)
	}

	return out
}

func (a *RaggedAdapter[T]) at(t timeframe.Index, i int, target *timeframe.TimeFrame) (T, bool) {
	return a.s.EntityAt(a.index(t, target), i)
}

// PointDataAdapter serves PointData.
type PointDataAdapter struct {
	*RaggedAdapter[series.Point2D]
}

var _ PointSource = PointDataAdapter{}

// NewPointDataAdapter wraps s. A nil tf means the series' own TimeFrame.
func NewPointDataAdapter(name string, s *series.PointData, tf *timeframe.TimeFrame) PointDataAdapter {
	return PointDataAdapter{NewRaggedAdapter(name, KindPoint, s, tf)}
}

// Points returns every point in time order.
func (a PointDataAdapter) Points() []series.Point2D { return a.all() }

// PointsInRange returns the points in [lo, hi] on target.
func (a PointDataAdapter) PointsInRange(lo, hi timeframe.Index, target *timeframe.TimeFrame) []series.Point2D {
	return a.inRange(lo, hi, target)
}

// PointAt returns the i-th point at t on target.
func (a PointDataAdapter) PointAt(t timeframe.Index, i int, target *timeframe.TimeFrame) (series.Point2D, bool) {
	return a.at(t, i, target)
}

// LineDataAdapter serves LineData.
type LineDataAdapter struct {
	*RaggedAdapter[series.Line2D]
}

var _ LineSource = LineDataAdapter{}

// NewLineDataAdapter wraps s. A nil tf means the series' own TimeFrame.
func NewLineDataAdapter(name string, s *series.LineData, tf *timeframe.TimeFrame) LineDataAdapter {
	return LineDataAdapter{NewRaggedAdapter(name, KindLine, s, tf)}
}

// Lines returns every line in time order.
func (a LineDataAdapter) Lines() []series.Line2D { return a.all() }

// LinesInRange returns the lines in [lo, hi] on target.
func (a LineDataAdapter) LinesInRange(lo, hi timeframe.Index, target *timeframe.TimeFrame) []series.Line2D {
	return a.inRange(lo, hi, target)
}

// LineAt returns the i-th line at t on target.
func (a LineDataAdapter) LineAt(t timeframe.Index, i int, target *timeframe.TimeFrame) (series.Line2D, bool) {
	return a.at(t, i, target)
}
