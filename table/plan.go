package table

import (
	"github.com/arloliu/tsview/internal/intern"
	"github.com/arloliu/tsview/source"
	"github.com/arloliu/tsview/timeframe"
)

// NoEntity marks a row that was not expanded for an entity.
const NoEntity = -1

// RowID identifies one table row under entity expansion.
type RowID struct {
	Time   timeframe.Index
	Entity int
}

type rowSpan struct {
	start, n int
}

// ExecutionPlan is the resolved row set a computer pulls from one named source.
//
// Plans are built once per source name and cached by the TableView until ClearCache. Under a
// TimestampSelector every plan carries one index per table row, so Indices has RowCount
// entries even when rows are expanded per entity. Under an IntervalSelector it carries
// intervals instead.
type ExecutionPlan struct {
	indices   []timeframe.Index
	intervals []timeframe.Interval
	tf        *timeframe.TimeFrame

	rows    []RowID
	spans   map[timeframe.Index]rowSpan
	expands bool

	sourceName string
	sourceID   intern.ID
	sourceKind source.Kind
}

// Indices returns one index per row. The slice must not be modified.
func (p *ExecutionPlan) Indices() []timeframe.Index { return p.indices }

// HasIndices reports whether the plan is index based.
func (p *ExecutionPlan) HasIndices() bool { return p.indices != nil }

// Intervals returns one interval per row. The slice must not be modified.
func (p *ExecutionPlan) Intervals() []timeframe.Interval { return p.intervals }

// HasIntervals reports whether the plan is interval based.
func (p *ExecutionPlan) HasIntervals() bool { return p.intervals != nil }

// Len returns the number of rows the plan covers.
func (p *ExecutionPlan) Len() int {
	if p.intervals != nil {
		return len(p.intervals)
	}

	return len(p.indices)
}

// TimeFrame returns the timeline of the plan's indices and intervals. It is nil for raw index
// rows.
func (p *ExecutionPlan) TimeFrame() *timeframe.TimeFrame { return p.tf }

// Rows returns the entity-expanded row identities, or nil when rows are not expanded.
func (p *ExecutionPlan) Rows() []RowID { return p.rows }

// HasRows reports whether rows are expanded per entity.
func (p *ExecutionPlan) HasRows() bool { return len(p.rows) > 0 }

// Expands reports whether this plan's source defines the entity expansion.
func (p *ExecutionPlan) Expands() bool { return p.expands }

// EntityIndex returns which entity of the plan's source row i reads.
//
// For the expanding source this is the row's own entity, NoEntity for a time without
// entities. Every other source reads its first entity.
func (p *ExecutionPlan) EntityIndex(i int) int {
	if !p.expands {
		return 0
	}

	return p.rows[i].Entity
}

// RowSpan returns the first row and the row count produced for t.
func (p *ExecutionPlan) RowSpan(t timeframe.Index) (int, int, bool) {
	s, ok := p.spans[t]

	return s.start, s.n, ok
}

// SourceName returns the source the plan was built for.
func (p *ExecutionPlan) SourceName() string { return p.sourceName }

// SourceID returns the interned identifier of SourceName.
func (p *ExecutionPlan) SourceID() intern.ID { return p.sourceID }

// SourceKind returns the resolved kind of the source, KindUnknown when it could not be
// resolved.
func (p *ExecutionPlan) SourceKind() source.Kind { return p.sourceKind }

// layout is the row identity of a table, fixed at build time.
type layout struct {
	selector RowSelector
	rows     []RowID // nil unless expanded
	origin   []int   // selector row per table row, parallel to rows
	spans    map[timeframe.Index]rowSpan
	expander string
}

func (l *layout) rowCount() int {
	if l.rows != nil {
		return len(l.rows)
	}

	return l.selector.RowCount()
}

func (l *layout) selectorRow(row int) int {
	if l.origin != nil {
		return l.origin[row]
	}

	return row
}

// expand builds the per-entity rows of a TimestampSelector from the expanding source.
// Times without entities keep a single row only when keepEmpty is set.
func expand(sel *TimestampSelector, src source.RaggedSource, keepEmpty bool) *layout {
	l := &layout{
		selector: sel,
		rows:     make([]RowID, 0, sel.RowCount()),
		origin:   make([]int, 0, sel.RowCount()),
		spans:    make(map[timeframe.Index]rowSpan, sel.RowCount()),
		expander: src.Name(),
	}
	for i, t := range sel.Timestamps() {
		n := src.EntityCountAt(t, sel.TimeFrame())
		start := len(l.rows)
		if n == 0 {
			if !keepEmpty {
				continue
			}
			l.rows = append(l.rows, RowID{Time: t, Entity: NoEntity})
			l.origin = append(l.origin, i)
		}
		for e := range n {
			l.rows = append(l.rows, RowID{Time: t, Entity: e})
			l.origin = append(l.origin, i)
		}
		if _, seen := l.spans[t]; !seen {
			l.spans[t] = rowSpan{start: start, n: len(l.rows) - start}
		}
	}

	return l
}

// plan builds the ExecutionPlan for one source under the layout.
func (l *layout) plan(name string, kind source.Kind) *ExecutionPlan {
	p := &ExecutionPlan{sourceName: name, sourceKind: kind}
	switch sel := l.selector.(type) {
	case *IntervalSelector:
		p.intervals = sel.Intervals()
		if p.intervals == nil {
			p.intervals = []timeframe.Interval{}
		}
		p.tf = sel.TimeFrame()
	case *TimestampSelector:
		p.tf = sel.TimeFrame()
		if l.rows == nil {
			p.indices = sel.Timestamps()
			if p.indices == nil {
				p.indices = []timeframe.Index{}
			}

			break
		}
		p.rows = l.rows
		p.spans = l.spans
		p.expands = name != "" && name == l.expander
		p.indices = make([]timeframe.Index, len(l.rows))
		for i, r := range l.rows {
			p.indices[i] = r.Time
		}
	case *IndexSelector:
		p.indices = make([]timeframe.Index, sel.RowCount())
		for i, v := range sel.Indices() {
			p.indices[i] = timeframe.Index(v)
		}
	}

	return p
}
