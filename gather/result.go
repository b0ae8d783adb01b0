package gather

import (
	"iter"

	"github.com/arloliu/tsview/timeframe"
)

// Result holds one element per alignment window, in window order.
//
// Len always equals the number of windows. When the source was nil every element is the zero
// value of V and Has reports false; when a window simply holds no data its element is an
// empty view or copy.
type Result[V any] struct {
	views   []V
	windows []AlignedInterval
	source  Timed
	alignTF *timeframe.TimeFrame
	missing bool
}

// Len returns the number of windows.
func (r *Result[V]) Len() int {
	return len(r.windows)
}

// Empty reports whether no window was gathered.
func (r *Result[V]) Empty() bool {
	return len(r.windows) == 0
}

// Has reports whether slot i holds a view. It is false for every slot when the source was nil.
func (r *Result[V]) Has(i int) bool {
	return !r.missing && i >= 0 && i < len(r.views)
}

// At returns the element of window i. It panics if i is out of range.
func (r *Result[V]) At(i int) V {
	return r.views[i]
}

// Views returns every element without copying.
func (r *Result[V]) Views() []V {
	return r.views
}

// All iterates (window position, element) pairs.
func (r *Result[V]) All() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		for i, v := range r.views {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Intervals returns a copy of the windows, on the alignment timeline.
func (r *Result[V]) Intervals() []timeframe.Interval {
	out := make([]timeframe.Interval, len(r.windows))
	for i, w := range r.windows {
		out[i] = w.Interval
	}

	return out
}

// IntervalAt returns window i on the alignment timeline.
func (r *Result[V]) IntervalAt(i int) timeframe.Interval {
	return r.windows[i].Interval
}

// AlignedAt returns window i together with its alignment index.
func (r *Result[V]) AlignedAt(i int) AlignedInterval {
	return r.windows[i]
}

// AlignmentTimeAt returns the absolute time of window i's alignment index.
func (r *Result[V]) AlignmentTimeAt(i int) int64 {
	return r.alignTF.TimeAt(r.windows[i].Alignment)
}

// Source returns the gathered series, or nil when it was nil.
func (r *Result[V]) Source() Timed {
	return r.source
}

// Transform applies fn to every element, including zero ones, and returns the results in order.
func Transform[V, R any](r *Result[V], fn func(V) R) []R {
	out := make([]R, len(r.views))
	for i, v := range r.views {
		out[i] = fn(v)
	}

	return out
}

// TransformWithInterval is Transform with the element's window passed along.
func TransformWithInterval[V, R any](r *Result[V], fn func(V, AlignedInterval) R) []R {
	out := make([]R, len(r.views))
	for i, v := range r.views {
		out[i] = fn(v, r.windows[i])
	}

	return out
}

// Materializer is a view that can copy itself into an owned value.
type Materializer[O any] interface {
	Materialize() O
}

// Materialize converts every view into an owned copy of type O. Missing slots stay zero.
//
//	owned := gather.Materialize[*series.AnalogTimeSeries](views)
func Materialize[O any, V Materializer[O]](r *Result[V]) []O {
	out := make([]O, len(r.views))
	if r.missing {
		return out
	}
	for i, v := range r.views {
		out[i] = v.Materialize()
	}

	return out
}
