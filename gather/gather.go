// Package gather builds one view (or one owned copy) of a source series per alignment window,
// the per-trial slicing used for raster and peri-event analyses.
//
// Gather and the typed helpers Analog, Events and IntervalsOf produce zero-copy views that
// alias the source; the source must outlive the Result and must not be mutated while it is in
// use. GatherCopies and Ragged produce owned sub-series instead, because ragged storage cannot
// be viewed. The two kinds of Result have different element types, so they cannot be mixed up.
package gather

import (
	"log/slog"

	"github.com/arloliu/tsview/internal/options"
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/timeframe"
)

// Timed is implemented by every series with an associated timeline.
type Timed interface {
	TimeFrame() *timeframe.TimeFrame
}

// ViewSource is a series that can produce zero-copy range views of type V.
type ViewSource[V any] interface {
	Timed
	CreateView(lo, hi timeframe.Index) V
}

// CopySource is a series that can produce owned range copies of type C.
type CopySource[C any] interface {
	Timed
	CreateTimeRangeCopy(lo, hi timeframe.Index) C
}

type config struct {
	tf     *timeframe.TimeFrame
	logger *slog.Logger
}

// Option configures a gather.
type Option = options.Option[*config]

// WithTimeFrame declares the timeline the alignment windows are expressed on. Windows are
// converted to the source's timeline before slicing.
func WithTimeFrame(tf *timeframe.TimeFrame) Option {
	return options.NoError(func(c *config) {
		c.tf = tf
	})
}

// WithLogger sets the logger used for diagnostics. It defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *config) {
		c.logger = l
	})
}

func newConfig(opts []Option) *config {
	cfg := &config{}
	err := options.ApplyAll(cfg, opts...)
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if err != nil {
		cfg.logger.Warn("gather option rejected", slog.Any("error", err))
	}

	return cfg
}

// Gather creates one view of src per window of align. Use the typed helpers when src may be a
// nil pointer.
func Gather[V any](src ViewSource[V], align Sequence, opts ...Option) *Result[V] {
	if src == nil {
		return build[V](nil, true, align, newConfig(opts), nil)
	}

	return build(src, false, align, newConfig(opts), src.CreateView)
}

// GatherCopies creates one owned copy of src per window of align.
func GatherCopies[C any](src CopySource[C], align Sequence, opts ...Option) *Result[C] {
	if src == nil {
		return build[C](nil, true, align, newConfig(opts), nil)
	}

	return build(src, false, align, newConfig(opts), src.CreateTimeRangeCopy)
}

// Analog gathers views of an analog series.
func Analog(s *series.AnalogTimeSeries, align Sequence, opts ...Option) *Result[*series.AnalogView] {
	return build(s, s == nil, align, newConfig(opts), s.CreateView)
}

// Events gathers views of an event series.
func Events(s *series.DigitalEventSeries, align Sequence, opts ...Option) *Result[*series.EventView] {
	return build(s, s == nil, align, newConfig(opts), s.CreateView)
}

// IntervalsOf gathers views of an interval series.
func IntervalsOf(s *series.DigitalIntervalSeries, align Sequence, opts ...Option) *Result[*series.IntervalView] {
	return build(s, s == nil, align, newConfig(opts), s.CreateView)
}

// Ragged gathers owned copies of a point, line or mask series.
func Ragged[T any](s *series.RaggedSeries[T], align Sequence, opts ...Option) *Result[*series.RaggedSeries[T]] {
	return build(s, s == nil, align, newConfig(opts), s.CreateTimeRangeCopy)
}

func build[V any](src Timed, missing bool, align Sequence, cfg *config, slice func(lo, hi timeframe.Index) V) *Result[V] {
	r := &Result[V]{alignTF: cfg.tf, missing: missing}
	var srcTF *timeframe.TimeFrame
	if !missing {
		r.source = src
		srcTF = src.TimeFrame()
	}
	if align == nil {
		align = func(func(AlignedInterval) bool) {}
	}
	for w := range align {
		r.windows = append(r.windows, w)
		if missing {
			var zero V
			r.views = append(r.views, zero)

			continue
		}
		lo, hi := timeframe.ConvertRange(w.Start, w.End, cfg.tf, srcTF)
		r.views = append(r.views, slice(lo, hi))
	}

	if missing {
		cfg.logger.Warn("gather source is nil, every slot is empty", slog.Int("windows", len(r.windows)))
	}

	return r
}
