package compute

import (
	"fmt"
	"math"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/source"
	"github.com/arloliu/tsview/table"
)

// Component selects a coordinate of a point.
type Component uint8

const (
	ComponentX Component = iota
	ComponentY
)

func (c Component) String() string {
	if c == ComponentY {
		return "y"
	}

	return "x"
}

// ParseComponent parses "x" or "y".
func ParseComponent(s string) (Component, error) {
	switch s {
	case "x":
		return ComponentX, nil
	case "y":
		return ComponentY, nil
	default:
		return 0, fmt.Errorf("%w: component %q", errs.ErrInvalidParameter, s)
	}
}

func (c Component) of(p series.Point2D) float64 {
	if c == ComponentY {
		return float64(p.Y)
	}

	return float64(p.X)
}

// entityIDs attributes each row to the entity the plan assigns to it.
func entityIDs(src source.RaggedSource, plan *table.ExecutionPlan) [][]series.EntityID {
	out := make([][]series.EntityID, plan.Len())
	for i, t := range plan.Indices() {
		if id, ok := src.EntityIDAt(t, plan.EntityIndex(i), plan.TimeFrame()); ok {
			out[i] = []series.EntityID{id}
		}
	}

	return out
}

// PointComponent reads one coordinate of the point each row refers to. Rows without a point
// are NaN.
type PointComponent struct {
	src  source.PointSource
	comp Component
}

var (
	_ table.Computer[float64] = (*PointComponent)(nil)
	_ table.EntityIDProvider  = (*PointComponent)(nil)
)

// NewPointComponent creates a PointComponent over src.
func NewPointComponent(src source.PointSource, comp Component) *PointComponent {
	return &PointComponent{src: src, comp: comp}
}

func (c *PointComponent) SourceDependency() string { return c.src.Name() }

func (c *PointComponent) Compute(_ table.Env, plan *table.ExecutionPlan) ([]float64, error) {
	if !plan.HasIndices() {
		return nil, fmt.Errorf("%w: point component needs timestamp rows", errs.ErrUnsupportedSelector)
	}

	out := make([]float64, plan.Len())
	for i, t := range plan.Indices() {
		p, ok := c.src.PointAt(t, plan.EntityIndex(i), plan.TimeFrame())
		if !ok {
			out[i] = math.NaN()

			continue
		}
		out[i] = c.comp.of(p)
	}

	return out, nil
}

func (c *PointComponent) EntityIDStructure() table.EntityIDStructure { return table.EntityIDsSimple }

func (c *PointComponent) EntityIDs(plan *table.ExecutionPlan) [][]series.EntityID {
	return entityIDs(c.src, plan)
}

// LineSampling samples each row's line at evenly spaced positions along its length.
//
// With n segments it produces 2(n+1) outputs named x@p and y@p for p = 0, 1/n, ..., 1, printed
// with three decimals. Rows without a line read as zero.
type LineSampling struct {
	src       source.LineSource
	positions []float64
}

var (
	_ table.MultiComputer[float64] = (*LineSampling)(nil)
	_ table.EntityIDProvider       = (*LineSampling)(nil)
)

// NewLineSampling creates a LineSampling over src. Fewer than one segment is treated as one.
func NewLineSampling(src source.LineSource, segments int) *LineSampling {
	segments = max(segments, 1)
	positions := make([]float64, segments+1)
	for k := range positions {
		positions[k] = float64(k) / float64(segments)
	}

	return &LineSampling{src: src, positions: positions}
}

func (c *LineSampling) SourceDependency() string { return c.src.Name() }

func (c *LineSampling) OutputSuffixes() []string {
	out := make([]string, 0, 2*len(c.positions))
	for _, p := range c.positions {
		out = append(out, fmt.Sprintf("x@%.3f", p), fmt.Sprintf("y@%.3f", p))
	}

	return out
}

func (c *LineSampling) Compute(_ table.Env, plan *table.ExecutionPlan) ([][]float64, error) {
	if !plan.HasIndices() {
		return nil, fmt.Errorf("%w: line sampling needs timestamp rows", errs.ErrUnsupportedSelector)
	}

	outputs := make([][]float64, 2*len(c.positions))
	for k := range outputs {
		outputs[k] = make([]float64, plan.Len())
	}
	for i, t := range plan.Indices() {
		line, ok := c.src.LineAt(t, plan.EntityIndex(i), plan.TimeFrame())
		if !ok {
			continue
		}
		for k, pos := range c.positions {
			p, ok := line.PointAt(pos)
			if !ok {
				continue
			}
			outputs[2*k][i] = float64(p.X)
			outputs[2*k+1][i] = float64(p.Y)
		}
	}

	return outputs, nil
}

func (c *LineSampling) EntityIDStructure() table.EntityIDStructure { return table.EntityIDsSimple }

func (c *LineSampling) EntityIDs(plan *table.ExecutionPlan) [][]series.EntityID {
	return entityIDs(c.src, plan)
}

// LineTimestamp reports the time index of the line each row refers to. Rows without a line
// read as zero.
type LineTimestamp struct {
	src source.LineSource
}

var (
	_ table.Computer[int64]  = (*LineTimestamp)(nil)
	_ table.EntityIDProvider = (*LineTimestamp)(nil)
)

// NewLineTimestamp creates a LineTimestamp over src.
func NewLineTimestamp(src source.LineSource) *LineTimestamp {
	return &LineTimestamp{src: src}
}

func (c *LineTimestamp) SourceDependency() string { return c.src.Name() }

func (c *LineTimestamp) Compute(_ table.Env, plan *table.ExecutionPlan) ([]int64, error) {
	if !plan.HasIndices() {
		return nil, fmt.Errorf("%w: line timestamp needs timestamp rows", errs.ErrUnsupportedSelector)
	}

	out := make([]int64, plan.Len())
	for i, t := range plan.Indices() {
		if _, ok := c.src.LineAt(t, plan.EntityIndex(i), plan.TimeFrame()); ok {
			out[i] = int64(t)
		}
	}

	return out, nil
}

func (c *LineTimestamp) EntityIDStructure() table.EntityIDStructure { return table.EntityIDsSimple }

func (c *LineTimestamp) EntityIDs(plan *table.ExecutionPlan) [][]series.EntityID {
	return entityIDs(c.src, plan)
}
