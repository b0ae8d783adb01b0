package transform

import (
	"context"
	"fmt"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/progress"
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/timeframe"
)

// InvertParams configures interval inversion. When Bounded is set the gaps before the first
// and after the last interval, within [Start, End], are reported too.
type InvertParams struct {
	Bounded bool
	Start   timeframe.Index
	End     timeframe.Index
}

func (p InvertParams) validate() error {
	if p.Bounded && p.Start > p.End {
		return fmt.Errorf("%w: inversion domain [%d, %d] is inverted", errs.ErrInvalidParameter, p.Start, p.End)
	}

	return nil
}

func (p InvertParams) domain() series.Domain {
	if p.Bounded {
		return series.Bounded(p.Start, p.End)
	}

	return series.Unbounded()
}

// NewInvertIntervals returns the operation producing the gaps of an interval series.
func NewInvertIntervals() Operation {
	return &op[*series.DigitalIntervalSeries, *series.DigitalIntervalSeries, InvertParams]{
		name:  "invert_intervals",
		empty: func() *series.DigitalIntervalSeries { return series.NewIntervalSeries(nil) },
		run: func(_ context.Context, in *series.DigitalIntervalSeries, p InvertParams, env Env) (*series.DigitalIntervalSeries, error) {
			return in.Invert(p.domain(), series.WithInvertProgress(env.Progress)), nil
		},
	}
}

// EventWindowParams sizes the window opened around every event.
type EventWindowParams struct {
	Before int64
	After  int64
}

func (p EventWindowParams) validate() error {
	if p.Before < 0 || p.After < 0 {
		return fmt.Errorf("%w: event window before=%d after=%d must not be negative",
			errs.ErrInvalidParameter, p.Before, p.After)
	}

	return nil
}

// EventWindows turns every event e into [e-Before, e+After]. Overlapping windows merge.
func EventWindows(events *series.DigitalEventSeries, p EventWindowParams, report progress.Func) *series.DigitalIntervalSeries {
	report = progress.OrNoop(report)
	out := series.NewIntervalSeries(nil)
	n := events.Len()
	i := 0
	for w := range events.Windows(p.Before, p.After) {
		out.AddInterval(w)
		i++
		report(i * 100 / n)
	}
	out.SetTimeFrame(events.TimeFrame())

	return out
}

// NewEventWindow returns the operation expanding events into windows.
func NewEventWindow() Operation {
	return &op[*series.DigitalEventSeries, *series.DigitalIntervalSeries, EventWindowParams]{
		name:     "event_window",
		defaults: EventWindowParams{Before: 0, After: 0},
		empty:    func() *series.DigitalIntervalSeries { return series.NewIntervalSeries(nil) },
		run: func(_ context.Context, in *series.DigitalEventSeries, p EventWindowParams, env Env) (*series.DigitalIntervalSeries, error) {
			out := EventWindows(in, p, env.Progress)
			env.Progress(100)

			return out, nil
		},
	}
}
