package compute

import (
	"fmt"
	"math"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/source"
	"github.com/arloliu/tsview/stats"
	"github.com/arloliu/tsview/table"
)

// AnalogValue reads the analog sample at each row timestamp. Rows without a sample are NaN.
type AnalogValue struct {
	src source.AnalogSource
}

var _ table.Computer[float64] = (*AnalogValue)(nil)

// NewAnalogValue creates an AnalogValue over src.
func NewAnalogValue(src source.AnalogSource) *AnalogValue {
	return &AnalogValue{src: src}
}

func (c *AnalogValue) SourceDependency() string { return c.src.Name() }

func (c *AnalogValue) Compute(_ table.Env, plan *table.ExecutionPlan) ([]float64, error) {
	if !plan.HasIndices() {
		return nil, fmt.Errorf("%w: analog value needs timestamp rows", errs.ErrUnsupportedSelector)
	}

	out := make([]float64, plan.Len())
	for i, t := range plan.Indices() {
		v, ok := c.src.ValueAt(t, plan.TimeFrame())
		if !ok {
			out[i] = math.NaN()

			continue
		}
		out[i] = float64(v)
	}

	return out, nil
}

// Reduction names a summary over the samples of an interval.
type Reduction uint8

const (
	ReduceMean Reduction = iota
	ReduceMin
	ReduceMax
	ReduceStdDev
	ReduceSum
	ReduceCount
)

var reductionNames = []string{"mean", "min", "max", "std_dev", "sum", "count"}

func (r Reduction) String() string {
	if int(r) < len(reductionNames) {
		return reductionNames[r]
	}

	return fmt.Sprintf("Reduction(%d)", r)
}

// ParseReduction parses the String form of a Reduction.
func ParseReduction(s string) (Reduction, error) {
	for i, name := range reductionNames {
		if name == s {
			return Reduction(i), nil
		}
	}

	return 0, fmt.Errorf("%w: reduction %q", errs.ErrInvalidParameter, s)
}

func (r Reduction) apply(values []float32) float64 {
	switch r {
	case ReduceMin:
		return stats.MinOf(values)
	case ReduceMax:
		return stats.MaxOf(values)
	case ReduceStdDev:
		return stats.StdDevOf(values)
	case ReduceSum:
		return stats.SumOf(values)
	case ReduceCount:
		return float64(len(values))
	default:
		return stats.MeanOf(values)
	}
}

// AnalogReduction summarizes the analog samples inside each row interval.
type AnalogReduction struct {
	src source.AnalogSource
	op  Reduction
}

var _ table.Computer[float64] = (*AnalogReduction)(nil)

// NewAnalogReduction creates an AnalogReduction over src.
func NewAnalogReduction(src source.AnalogSource, op Reduction) *AnalogReduction {
	return &AnalogReduction{src: src, op: op}
}

func (c *AnalogReduction) SourceDependency() string { return c.src.Name() }

func (c *AnalogReduction) Compute(_ table.Env, plan *table.ExecutionPlan) ([]float64, error) {
	if !plan.HasIntervals() {
		return nil, fmt.Errorf("%w: analog %s needs interval rows", errs.ErrUnsupportedSelector, c.op)
	}

	out := make([]float64, plan.Len())
	for i, iv := range plan.Intervals() {
		out[i] = c.op.apply(c.src.DataInRange(iv.Start, iv.End, plan.TimeFrame()))
	}

	return out, nil
}

// AnalogSlice gathers the analog samples inside each row interval.
type AnalogSlice struct {
	src source.AnalogSource
}

var _ table.Computer[[]float64] = (*AnalogSlice)(nil)

// NewAnalogSlice creates an AnalogSlice over src.
func NewAnalogSlice(src source.AnalogSource) *AnalogSlice {
	return &AnalogSlice{src: src}
}

func (c *AnalogSlice) SourceDependency() string { return c.src.Name() }

func (c *AnalogSlice) Compute(_ table.Env, plan *table.ExecutionPlan) ([][]float64, error) {
	if !plan.HasIntervals() {
		return nil, fmt.Errorf("%w: analog slice needs interval rows", errs.ErrUnsupportedSelector)
	}

	out := make([][]float64, plan.Len())
	for i, iv := range plan.Intervals() {
		values := c.src.DataInRange(iv.Start, iv.End, plan.TimeFrame())
		row := make([]float64, len(values))
		for j, v := range values {
			row[j] = float64(v)
		}
		out[i] = row
	}

	return out, nil
}
