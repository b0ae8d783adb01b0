package compute

import (
	"fmt"
	"sort"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/source"
	"github.com/arloliu/tsview/table"
	"github.com/arloliu/tsview/timeframe"
)

// OverlapOperation selects what IntervalOverlap reports per row.
type OverlapOperation uint8

const (
	// CountOverlaps counts the source intervals overlapping the row interval.
	CountOverlaps OverlapOperation = iota
	// AssignID reports the position of the source interval overlapping the row, or -1.
	AssignID
	// AssignIDStart reports that interval's start on the row timeline, or -1.
	AssignIDStart
	// AssignIDEnd reports that interval's end on the row timeline, or -1.
	AssignIDEnd
)

var overlapNames = []string{"count_overlaps", "assign_id", "assign_id_start", "assign_id_end"}

func (o OverlapOperation) String() string {
	if int(o) < len(overlapNames) {
		return overlapNames[o]
	}

	return fmt.Sprintf("OverlapOperation(%d)", o)
}

// ParseOverlapOperation parses the String form of an OverlapOperation.
func ParseOverlapOperation(s string) (OverlapOperation, error) {
	for i, name := range overlapNames {
		if name == s {
			return OverlapOperation(i), nil
		}
	}

	return 0, fmt.Errorf("%w: overlap operation %q", errs.ErrInvalidParameter, s)
}

// IntervalOverlap relates each row interval to the intervals of a source.
type IntervalOverlap struct {
	src source.IntervalSource
	op  OverlapOperation
}

var _ table.Computer[int64] = (*IntervalOverlap)(nil)

// NewIntervalOverlap creates an IntervalOverlap over src.
func NewIntervalOverlap(src source.IntervalSource, op OverlapOperation) *IntervalOverlap {
	return &IntervalOverlap{src: src, op: op}
}

func (c *IntervalOverlap) SourceDependency() string { return c.src.Name() }

func (c *IntervalOverlap) Compute(_ table.Env, plan *table.ExecutionPlan) ([]int64, error) {
	if !plan.HasIntervals() {
		return nil, fmt.Errorf("%w: interval overlap needs interval rows", errs.ErrUnsupportedSelector)
	}

	out := make([]int64, plan.Len())
	if c.op == CountOverlaps {
		for i, row := range plan.Intervals() {
			out[i] = int64(len(c.src.IntervalsInRange(row.Start, row.End, plan.TimeFrame(), series.Overlapping)))
		}

		return out, nil
	}

	// source intervals are sorted by start and may overlap; the latest-starting interval that
	// overlaps the row wins, and reach[k] bounds the backwards scan
	ivs := c.src.Intervals()
	reach := make([]timeframe.Index, len(ivs))
	for k, iv := range ivs {
		reach[k] = iv.End
		if k > 0 {
			reach[k] = max(reach[k], reach[k-1])
		}
	}
	srcTF := c.src.TimeFrame()
	for i, row := range plan.Intervals() {
		lo, hi := timeframe.ConvertRange(row.Start, row.End, plan.TimeFrame(), srcTF)
		j := sort.Search(len(ivs), func(k int) bool { return ivs[k].Start > hi }) - 1
		for j >= 0 && reach[j] >= lo && ivs[j].End < lo {
			j--
		}
		if j < 0 || ivs[j].End < lo {
			out[i] = -1

			continue
		}
		switch c.op {
		case AssignIDStart:
			out[i] = timeframe.ConvertIndex(ivs[j].Start, srcTF, plan.TimeFrame()).Value()
		case AssignIDEnd:
			out[i] = timeframe.ConvertIndex(ivs[j].End, srcTF, plan.TimeFrame()).Value()
		default:
			out[i] = int64(j)
		}
	}

	return out, nil
}

// IntervalProperty names a property of the row interval.
type IntervalProperty uint8

const (
	PropertyStart IntervalProperty = iota
	PropertyEnd
	PropertyDuration
)

var propertyNames = []string{"start", "end", "duration"}

func (p IntervalProperty) String() string {
	if int(p) < len(propertyNames) {
		return propertyNames[p]
	}

	return fmt.Sprintf("IntervalProperty(%d)", p)
}

// ParseIntervalProperty parses the String form of an IntervalProperty.
func ParseIntervalProperty(s string) (IntervalProperty, error) {
	for i, name := range propertyNames {
		if name == s {
			return IntervalProperty(i), nil
		}
	}

	return 0, fmt.Errorf("%w: interval property %q", errs.ErrInvalidParameter, s)
}

// IntervalProperties reports the start, end or duration of each row interval. Duration is
// End - Start.
type IntervalProperties struct {
	sourceName string
	prop       IntervalProperty
}

var _ table.Computer[int64] = (*IntervalProperties)(nil)

// NewIntervalProperties creates an IntervalProperties computer. The rows are expected to come
// from the interval source named sourceName.
func NewIntervalProperties(sourceName string, prop IntervalProperty) *IntervalProperties {
	return &IntervalProperties{sourceName: sourceName, prop: prop}
}

func (c *IntervalProperties) SourceDependency() string { return c.sourceName }

func (c *IntervalProperties) Compute(_ table.Env, plan *table.ExecutionPlan) ([]int64, error) {
	if !plan.HasIntervals() {
		return nil, fmt.Errorf("%w: interval %s needs interval rows", errs.ErrUnsupportedSelector, c.prop)
	}

	out := make([]int64, plan.Len())
	for i, iv := range plan.Intervals() {
		switch c.prop {
		case PropertyEnd:
			out[i] = iv.End.Value()
		case PropertyDuration:
			out[i] = iv.Duration()
		default:
			out[i] = iv.Start.Value()
		}
	}

	return out, nil
}

// TimestampInInterval reports whether each row timestamp lies inside any source interval.
type TimestampInInterval struct {
	src source.IntervalSource
}

var _ table.Computer[bool] = (*TimestampInInterval)(nil)

// NewTimestampInInterval creates a TimestampInInterval over src.
func NewTimestampInInterval(src source.IntervalSource) *TimestampInInterval {
	return &TimestampInInterval{src: src}
}

func (c *TimestampInInterval) SourceDependency() string { return c.src.Name() }

func (c *TimestampInInterval) Compute(_ table.Env, plan *table.ExecutionPlan) ([]bool, error) {
	if !plan.HasIndices() {
		return nil, fmt.Errorf("%w: timestamp in interval needs timestamp rows", errs.ErrUnsupportedSelector)
	}

	out := make([]bool, plan.Len())
	for i, t := range plan.Indices() {
		out[i] = len(c.src.IntervalsInRange(t, t, plan.TimeFrame(), series.Overlapping)) > 0
	}

	return out, nil
}
