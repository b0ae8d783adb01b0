package transform

import (
	"context"
	"fmt"
	"math"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/progress"
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/timeframe"
)

// Direction selects which side of the threshold counts as active.
type Direction uint8

const (
	// Above is active while value > threshold.
	Above Direction = iota
	// Below is active while value < threshold.
	Below
	// Absolute is active while |value| > threshold.
	Absolute
)

// MissingData selects how gaps between non-consecutive samples are read.
type MissingData uint8

const (
	// MissingAsZero reads every skipped index as a zero sample.
	MissingAsZero MissingData = iota
	// MissingIgnored joins the samples on both sides of a gap.
	MissingIgnored
)

// ThresholdParams configures analog interval thresholding.
type ThresholdParams struct {
	Threshold float64
	Direction Direction
	// Lockout is the minimum distance between the starts of two intervals.
	Lockout float64
	// MinDuration drops intervals with End - Start below it.
	MinDuration float64
	Missing     MissingData
}

// DefaultThresholdParams detects values above 1, reading gaps as zero.
func DefaultThresholdParams() ThresholdParams {
	return ThresholdParams{Threshold: 1, Direction: Above, Missing: MissingAsZero}
}

func (p ThresholdParams) validate() error {
	if p.Lockout < 0 || p.MinDuration < 0 {
		return fmt.Errorf("%w: lockout %g and min duration %g must not be negative",
			errs.ErrInvalidParameter, p.Lockout, p.MinDuration)
	}
	if p.Direction > Absolute || p.Missing > MissingIgnored {
		return fmt.Errorf("%w: unknown direction or missing data mode", errs.ErrInvalidParameter)
	}

	return nil
}

func (p ThresholdParams) active(v float32) bool {
	switch p.Direction {
	case Below:
		return float64(v) < p.Threshold
	case Absolute:
		return math.Abs(float64(v)) > p.Threshold
	default:
		return float64(v) > p.Threshold
	}
}

type thresholdScan struct {
	p         ThresholdParams
	out       []timeframe.Interval
	open      bool
	cur       timeframe.Interval
	started   bool
	lastStart timeframe.Index
}

func (s *thresholdScan) extend(t timeframe.Index) {
	if s.open {
		s.cur.End = t

		return
	}
	if s.started && float64(t-s.lastStart) < s.p.Lockout {
		return
	}
	s.open, s.started, s.lastStart = true, true, t
	s.cur = timeframe.Interval{Start: t, End: t}
}

func (s *thresholdScan) close() {
	if !s.open {
		return
	}
	s.open = false
	if float64(s.cur.Duration()) >= s.p.MinDuration {
		s.out = append(s.out, s.cur)
	}
}

// ThresholdIntervals returns the runs of samples on the active side of the threshold.
//
// Each interval spans from its first to its last active sample. A run that reaches the end of
// the series ends at the last sample.
func ThresholdIntervals(s *series.AnalogTimeSeries, p ThresholdParams, report progress.Func) *series.DigitalIntervalSeries {
	report = progress.OrNoop(report)
	scan := &thresholdScan{p: p}
	zeroActive := p.active(0)

	n := s.Len()
	for i := range n {
		t, v := s.At(i)
		if i > 0 && p.Missing == MissingAsZero {
			if prev := s.TimeAt(i - 1); t-prev > 1 {
				if zeroActive {
					scan.extend(prev + 1)
					scan.extend(t - 1)
				} else {
					scan.close()
				}
			}
		}
		if p.active(v) {
			scan.extend(t)
		} else {
			scan.close()
		}
		report((i + 1) * 100 / n)
	}
	scan.close()
	report(100)

	out := series.NewIntervalSeries(scan.out)
	out.SetTimeFrame(s.TimeFrame())

	return out
}

// NewAnalogThreshold returns the operation detecting threshold crossings as intervals.
func NewAnalogThreshold() Operation {
	return &op[*series.AnalogTimeSeries, *series.DigitalIntervalSeries, ThresholdParams]{
		name:     "analog_threshold",
		defaults: DefaultThresholdParams(),
		empty:    func() *series.DigitalIntervalSeries { return series.NewIntervalSeries(nil) },
		run: func(_ context.Context, in *series.AnalogTimeSeries, p ThresholdParams, env Env) (*series.DigitalIntervalSeries, error) {
			return ThresholdIntervals(in, p, env.Progress), nil
		},
	}
}
