package series

import (
	"log/slog"
	"slices"

	"github.com/arloliu/tsview/internal/options"
	"github.com/arloliu/tsview/progress"
	"github.com/arloliu/tsview/timeframe"
)

// Domain bounds an interval inversion. An unbounded domain only reports gaps between
// intervals; a bounded one also reports the gaps before the first and after the last.
type Domain struct {
	bounded bool
	start   timeframe.Index
	end     timeframe.Index
}

// Unbounded returns a domain without outer edges.
func Unbounded() Domain {
	return Domain{}
}

// Bounded returns the domain [start, end].
func Bounded(start, end timeframe.Index) Domain {
	return Domain{bounded: true, start: start, end: end}
}

// IsBounded reports whether the domain has outer edges.
func (d Domain) IsBounded() bool {
	return d.bounded
}

// Bounds returns the domain edges. They are meaningless for an unbounded domain.
func (d Domain) Bounds() (timeframe.Index, timeframe.Index) {
	return d.start, d.end
}

type invertConfig struct {
	report progress.Func
}

// InvertOption configures InvertIntervals.
type InvertOption = options.Option[*invertConfig]

// WithInvertProgress reports completion percentages while inverting.
func WithInvertProgress(f progress.Func) InvertOption {
	return options.NoError(func(c *invertConfig) {
		c.report = f
	})
}

// Inversion progress checkpoints.
const (
	invertStarted  = 0
	invertSorted   = 10
	invertLeading  = 20
	invertHalfway  = 40
	invertSwept    = 80
	invertFinished = 100
)

// InvertIntervals returns the gaps of ivs within domain.
//
// Gaps share their endpoints with the neighbouring intervals: inverting [(5,10),(13,20)]
// yields [(10,13)]. Touching or overlapping intervals produce no gap. The input is not
// modified and may be in any order.
func InvertIntervals(ivs []timeframe.Interval, domain Domain, opts ...InvertOption) []timeframe.Interval {
	cfg := &invertConfig{}
	if err := options.ApplyAll(cfg, opts...); err != nil {
		slog.Default().Warn("interval inversion option rejected", slog.Any("error", err))
	}
	report := progress.OrNoop(cfg.report)
	report(invertStarted)

	if len(ivs) == 0 {
		report(invertFinished)
		if domain.bounded && domain.start <= domain.end {
			return []timeframe.Interval{{Start: domain.start, End: domain.end}}
		}

		return []timeframe.Interval{}
	}

	sorted := ivs
	if !slices.IsSortedFunc(ivs, timeframe.CompareIntervals) {
		sorted = slices.Clone(ivs)
		slices.SortFunc(sorted, timeframe.CompareIntervals)
	}
	report(invertSorted)

	out := make([]timeframe.Interval, 0, len(sorted)+1)
	if domain.bounded && sorted[0].Start > domain.start {
		out = append(out, timeframe.Interval{Start: domain.start, End: sorted[0].Start})
	}
	report(invertLeading)

	reach := sorted[0].End
	half := len(sorted) / 2
	if half == 0 {
		report(invertHalfway)
	}
	for i, next := range sorted[1:] {
		if reach < next.Start {
			out = append(out, timeframe.Interval{Start: reach, End: next.Start})
		}
		reach = max(reach, next.End)
		if i+1 == half {
			report(invertHalfway)
		}
	}
	report(invertSwept)

	if domain.bounded && reach < domain.end {
		out = append(out, timeframe.Interval{Start: reach, End: domain.end})
	}
	report(invertFinished)

	return out
}
