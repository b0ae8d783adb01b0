package compute

import (
	"fmt"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/source"
	"github.com/arloliu/tsview/table"
	"github.com/arloliu/tsview/timeframe"
)

// eventsPerRow returns the source events inside every row interval.
func eventsPerRow(src source.EventSource, plan *table.ExecutionPlan, what string) ([][]timeframe.Index, error) {
	if !plan.HasIntervals() {
		return nil, fmt.Errorf("%w: event %s needs interval rows", errs.ErrUnsupportedSelector, what)
	}

	out := make([][]timeframe.Index, plan.Len())
	for i, iv := range plan.Intervals() {
		out[i] = src.EventsInRange(iv.Start, iv.End, plan.TimeFrame())
	}

	return out, nil
}

// EventPresence reports whether any event falls inside each row interval.
type EventPresence struct {
	src source.EventSource
}

var _ table.Computer[bool] = (*EventPresence)(nil)

// NewEventPresence creates an EventPresence over src.
func NewEventPresence(src source.EventSource) *EventPresence {
	return &EventPresence{src: src}
}

func (c *EventPresence) SourceDependency() string { return c.src.Name() }

func (c *EventPresence) Compute(_ table.Env, plan *table.ExecutionPlan) ([]bool, error) {
	rows, err := eventsPerRow(c.src, plan, "presence")
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(rows))
	for i, events := range rows {
		out[i] = len(events) > 0
	}

	return out, nil
}

// EventCount counts the events inside each row interval.
type EventCount struct {
	src source.EventSource
}

var _ table.Computer[int] = (*EventCount)(nil)

// NewEventCount creates an EventCount over src.
func NewEventCount(src source.EventSource) *EventCount {
	return &EventCount{src: src}
}

func (c *EventCount) SourceDependency() string { return c.src.Name() }

func (c *EventCount) Compute(_ table.Env, plan *table.ExecutionPlan) ([]int, error) {
	rows, err := eventsPerRow(c.src, plan, "count")
	if err != nil {
		return nil, err
	}
	out := make([]int, len(rows))
	for i, events := range rows {
		out[i] = len(events)
	}

	return out, nil
}

// EventGather collects the events inside each row interval, on the source timeline.
//
// When centered, each event is reported relative to the row interval's center converted to
// the source timeline.
type EventGather struct {
	src      source.EventSource
	centered bool
}

var _ table.Computer[[]int64] = (*EventGather)(nil)

// NewEventGather creates an EventGather over src.
func NewEventGather(src source.EventSource, centered bool) *EventGather {
	return &EventGather{src: src, centered: centered}
}

func (c *EventGather) SourceDependency() string { return c.src.Name() }

func (c *EventGather) Compute(_ table.Env, plan *table.ExecutionPlan) ([][]int64, error) {
	rows, err := eventsPerRow(c.src, plan, "gather")
	if err != nil {
		return nil, err
	}

	out := make([][]int64, len(rows))
	for i, events := range rows {
		var ref timeframe.Index
		if c.centered {
			ref = timeframe.ConvertIndex(plan.Intervals()[i].Center(), plan.TimeFrame(), c.src.TimeFrame())
		}
		row := make([]int64, len(events))
		for j, e := range events {
			row[j] = e.Sub(ref)
		}
		out[i] = row
	}

	return out, nil
}
