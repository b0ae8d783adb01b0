// Package table implements TableView, a lazily computed 2D table over named data sources.
//
// A RowSelector defines the rows once. Columns are added to a Builder together with the
// Computer that produces their values; nothing is computed until a column is read. Computed
// values are cached per column and the ExecutionPlan each computer consumes is cached per
// source name, so reading a column twice never calls its computer twice.
//
// When a TimestampSelector is combined with a line, point or mask source, rows are expanded to
// one row per entity at each timestamp. At most one source holding several entities at a
// single timestamp may feed a table; Build rejects anything else with a *MultiSampleError.
//
// A TableView is not safe for concurrent use.
package table

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/internal/intern"
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/source"
)

// TableView is a built table. Create one with Builder.Build.
type TableView struct {
	res    source.Resolver
	logger *slog.Logger
	layout *layout

	columns []anyColumn
	byName  map[string]anyColumn

	plans      map[intern.ID]*ExecutionPlan // zero holds the plan of columns without a source
	inProgress map[string]bool
	interner   *intern.Interner

	directIDs [][]series.EntityID
}

// RowCount returns the number of rows after entity expansion.
func (tv *TableView) RowCount() int {
	return tv.layout.rowCount()
}

// ColumnCount returns the number of columns.
func (tv *TableView) ColumnCount() int {
	return len(tv.columns)
}

// ColumnNames returns the column names in declaration order.
func (tv *TableView) ColumnNames() []string {
	out := make([]string, len(tv.columns))
	for i, c := range tv.columns {
		out[i] = c.Name()
	}

	return out
}

// HasColumn reports whether the table has a column called name.
func (tv *TableView) HasColumn(name string) bool {
	_, ok := tv.byName[name]

	return ok
}

// ColumnType returns the element type of the named column.
func (tv *TableView) ColumnType(name string) (reflect.Type, error) {
	col, err := tv.column(name)
	if err != nil {
		return nil, err
	}

	return col.Type(), nil
}

// IsMaterialized reports whether the named column holds cached values.
func (tv *TableView) IsMaterialized(name string) bool {
	col, ok := tv.byName[name]

	return ok && col.IsMaterialized()
}

func (tv *TableView) column(name string) (anyColumn, error) {
	col, ok := tv.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrColumnNotFound, name)
	}

	return col, nil
}

// ColumnValues returns the values of the named column, computing them on first access.
//
// Returns errs.ErrColumnNotFound for an unknown name and errs.ErrColumnTypeMismatch when the
// column does not hold T. The returned slice is shared with the cache and must not be
// modified.
func ColumnValues[T any](tv *TableView, name string) ([]T, error) {
	col, err := tv.column(name)
	if err != nil {
		return nil, err
	}
	typed, ok := col.(*Column[T])
	if !ok {
		return nil, fmt.Errorf("%w: column %q holds %s, not %s",
			errs.ErrColumnTypeMismatch, name, col.Type(), reflect.TypeFor[T]())
	}
	if err := tv.materialize(col); err != nil {
		return nil, err
	}
	values, _ := typed.Values()

	return values, nil
}

// ColumnData returns the values of the named column as an untyped []T.
func (tv *TableView) ColumnData(name string) (any, error) {
	col, err := tv.column(name)
	if err != nil {
		return nil, err
	}
	if err := tv.materialize(col); err != nil {
		return nil, err
	}

	return col.data(), nil
}

// MaterializeAll computes every column not yet cached, in declaration order.
func (tv *TableView) MaterializeAll() error {
	for _, col := range tv.columns {
		if err := tv.materialize(col); err != nil {
			return err
		}
	}

	return nil
}

// ClearCache drops every cached column and execution plan. The row layout is kept.
func (tv *TableView) ClearCache() {
	for _, col := range tv.columns {
		col.clear()
	}
	clear(tv.plans)
}

type frame struct {
	col  anyColumn
	next int
}

// materialize computes col after its dependencies. It walks dependencies with an explicit
// stack; a column met again while still on the stack is a cycle. Unknown dependencies are
// skipped.
func (tv *TableView) materialize(col anyColumn) error {
	if col.IsMaterialized() {
		return nil
	}
	if tv.inProgress[col.Name()] {
		return &CycleError{Path: []string{col.Name(), col.Name()}}
	}

	stack := []frame{{col: col}}
	tv.inProgress[col.Name()] = true
	release := func() {
		for _, f := range stack {
			delete(tv.inProgress, f.col.Name())
		}
	}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		deps := top.col.Dependencies()
		if top.next < len(deps) {
			name := deps[top.next]
			top.next++

			dep, ok := tv.byName[name]
			if !ok {
				tv.logger.Warn("column dependency not found, skipping",
					slog.String("column", top.col.Name()), slog.String("dependency", name))

				continue
			}
			if dep.IsMaterialized() {
				continue
			}
			if tv.inProgress[name] {
				err := &CycleError{Path: tv.cyclePath(stack, name)}
				release()

				return err
			}
			tv.inProgress[name] = true
			stack = append(stack, frame{col: dep})

			continue
		}

		plan, err := tv.plan(top.col.SourceDependency())
		if err == nil {
			err = top.col.materialize(Env{tv: tv}, plan)
		}
		if err != nil {
			name := top.col.Name()
			release()

			return fmt.Errorf("materialize column %q: %w", name, err)
		}
		delete(tv.inProgress, top.col.Name())
		stack = stack[:len(stack)-1]
	}

	return nil
}

// cyclePath returns the stack from the first occurrence of name, closed by name. Columns
// materializing through a nested call are not on this stack and only appear as name.
func (tv *TableView) cyclePath(stack []frame, name string) []string {
	start := 0
	for i, f := range stack {
		if f.col.Name() == name {
			start = i

			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.col.Name())
	}

	return append(path, name)
}

// plan returns the cached ExecutionPlan for a source, building it on first use.
func (tv *TableView) plan(name string) (*ExecutionPlan, error) {
	var id intern.ID
	if name != "" {
		var err error
		if id, err = tv.interner.Intern(name); err != nil {
			return nil, err
		}
	}
	if p, ok := tv.plans[id]; ok {
		return p, nil
	}

	kind := source.KindUnknown
	if name != "" {
		src, err := tv.res.Resolve(name)
		if err != nil {
			tv.logger.Warn("source not resolvable, using row selector plan",
				slog.String("source", name), slog.String("error", err.Error()))
		} else {
			kind = src.Kind()
		}
		if _, raw := tv.layout.selector.(*IndexSelector); raw {
			tv.logger.Warn("index selector rows are passed to the source as raw indices",
				slog.String("source", name))
		}
	}

	p := tv.layout.plan(name, kind)
	p.sourceID = id
	tv.plans[id] = p

	return p, nil
}

// SourceID returns the identifier interned for a source name, if any table sharing the
// table's interner has planned it.
func (tv *TableView) SourceID(name string) (intern.ID, bool) {
	return tv.interner.Lookup(name)
}

// RowSelector returns the selector the table was built with.
func (tv *TableView) RowSelector() RowSelector {
	return tv.layout.selector
}

// RowDescriptor returns the selector entry behind a table row.
func (tv *TableView) RowDescriptor(row int) (RowDescriptor, bool) {
	if row < 0 || row >= tv.RowCount() {
		return RowDescriptor{}, false
	}
	d, ok := tv.layout.selector.Descriptor(tv.layout.selectorRow(row))
	if !ok {
		return RowDescriptor{}, false
	}
	if tv.layout.rows != nil {
		d.Entity = tv.layout.rows[row].Entity
	}

	return d, true
}

// FilteredRowSelector returns a selector keeping only the selector entries behind rows.
// Expanded rows of one timestamp map to a single entry.
func (tv *TableView) FilteredRowSelector(rows []int) (RowSelector, error) {
	n := tv.RowCount()
	keep := make([]int, 0, len(rows))
	seen := make(map[int]struct{}, len(rows))
	for _, r := range rows {
		if r < 0 || r >= n {
			return nil, fmt.Errorf("%w: row %d, table has %d rows", errs.ErrRowOutOfRange, r, n)
		}
		sr := tv.layout.selectorRow(r)
		if _, dup := seen[sr]; dup {
			continue
		}
		seen[sr] = struct{}{}
		keep = append(keep, sr)
	}

	return tv.layout.selector.Filtered(keep), nil
}

// HasEntityColumn reports whether any column attributes its rows to entities.
func (tv *TableView) HasEntityColumn() bool {
	for _, col := range tv.columns {
		if col.EntityIDStructure() != EntityIDsNone {
			return true
		}
	}

	return false
}

// SetDirectEntityIDs assigns entity IDs to rows explicitly, overriding the IDs derived from
// columns. Passing nil removes them.
func (tv *TableView) SetDirectEntityIDs(ids [][]series.EntityID) error {
	if ids != nil && len(ids) != tv.RowCount() {
		return fmt.Errorf("%w: %d entity id rows, table has %d rows", errs.ErrRowCountMismatch, len(ids), tv.RowCount())
	}
	tv.directIDs = ids

	return nil
}

// ColumnEntityIDs returns the per-row entity IDs of the named column, nil when the column does
// not attribute rows to entities.
func (tv *TableView) ColumnEntityIDs(name string) ([][]series.EntityID, error) {
	col, err := tv.column(name)
	if err != nil {
		return nil, err
	}
	if col.EntityIDStructure() == EntityIDsNone {
		return nil, nil
	}
	if err := tv.materialize(col); err != nil {
		return nil, err
	}

	return col.entityIDs(), nil
}

// CellEntityIDs returns the entity IDs of one cell.
func (tv *TableView) CellEntityIDs(name string, row int) ([]series.EntityID, error) {
	ids, err := tv.ColumnEntityIDs(name)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= tv.RowCount() {
		return nil, fmt.Errorf("%w: row %d", errs.ErrRowOutOfRange, row)
	}
	if row >= len(ids) {
		return nil, nil
	}

	return ids[row], nil
}

// RowEntityIDs returns the entity IDs of a row: the direct IDs when set, otherwise the sorted
// union of the row's cell IDs across columns.
func (tv *TableView) RowEntityIDs(row int) ([]series.EntityID, error) {
	if row < 0 || row >= tv.RowCount() {
		return nil, fmt.Errorf("%w: row %d", errs.ErrRowOutOfRange, row)
	}
	if tv.directIDs != nil {
		return slices.Clone(tv.directIDs[row]), nil
	}

	var out []series.EntityID
	for _, col := range tv.columns {
		if col.EntityIDStructure() == EntityIDsNone {
			continue
		}
		ids, err := tv.CellEntityIDs(col.Name(), row)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if id != 0 {
				out = append(out, id)
			}
		}
	}
	slices.Sort(out)

	return slices.Compact(out), nil
}

// EntityIDs returns the sorted set of entity IDs over every row.
func (tv *TableView) EntityIDs() ([]series.EntityID, error) {
	var out []series.EntityID
	for row := range tv.RowCount() {
		ids, err := tv.RowEntityIDs(row)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	}
	slices.Sort(out)

	return slices.Compact(out), nil
}
