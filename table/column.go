package table

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/series"
)

// anyColumn is the type-erased view of a Column the table stores.
type anyColumn interface {
	Name() string
	Type() reflect.Type
	Dependencies() []string
	SourceDependency() string
	IsMaterialized() bool
	EntityIDStructure() EntityIDStructure

	materialize(env Env, plan *ExecutionPlan) error
	data() any
	entityIDs() [][]series.EntityID
	clear()
	clone(shared map[any]any) anyColumn
}

// Column is a lazily computed, cached column of T.
type Column[T any] struct {
	name     string
	computer Computer[T]

	values       []T
	ids          [][]series.EntityID
	materialized bool
}

var _ anyColumn = (*Column[float64])(nil)

func newColumn[T any](name string, c Computer[T]) *Column[T] {
	return &Column[T]{name: name, computer: c}
}

func (c *Column[T]) Name() string { return c.name }

// Type returns the element type of the column.
func (c *Column[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

// Dependencies returns the columns that must be materialized first.
func (c *Column[T]) Dependencies() []string {
	if d, ok := c.computer.(Dependent); ok {
		return d.Dependencies()
	}

	return nil
}

func (c *Column[T]) SourceDependency() string { return c.computer.SourceDependency() }

func (c *Column[T]) IsMaterialized() bool { return c.materialized }

func (c *Column[T]) EntityIDStructure() EntityIDStructure {
	if p, ok := c.computer.(EntityIDProvider); ok {
		return p.EntityIDStructure()
	}

	return EntityIDsNone
}

// Values returns the cached values, or false when the column is not materialized.
func (c *Column[T]) Values() ([]T, bool) {
	if !c.materialized {
		return nil, false
	}

	return slices.Clip(c.values), true
}

func (c *Column[T]) materialize(env Env, plan *ExecutionPlan) error {
	if c.materialized {
		return nil
	}
	values, err := c.computer.Compute(env, plan)
	if err != nil {
		return err
	}
	if want := env.RowCount(); len(values) != want {
		return fmt.Errorf("%w: column %q has %d values, table has %d rows", errs.ErrRowCountMismatch, c.name, len(values), want)
	}
	if p, ok := c.computer.(EntityIDProvider); ok && p.EntityIDStructure() != EntityIDsNone {
		c.ids = p.EntityIDs(plan)
	}
	c.values = values
	c.materialized = true

	return nil
}

func (c *Column[T]) data() any {
	return slices.Clip(c.values)
}

func (c *Column[T]) entityIDs() [][]series.EntityID {
	return c.ids
}

func (c *Column[T]) clear() {
	c.values = nil
	c.ids = nil
	c.materialized = false
	if r, ok := c.computer.(interface{ reset() }); ok {
		r.reset()
	}
}

// clone returns an unmaterialized copy. Columns of one MultiComputer keep sharing a single
// computation through shared.
func (c *Column[T]) clone(shared map[any]any) anyColumn {
	mo, ok := c.computer.(*multiOutput[T])
	if !ok {
		return newColumn(c.name, c.computer)
	}
	st, ok := shared[mo.state].(*multiState[T])
	if !ok {
		st = &multiState[T]{mc: mo.state.mc}
		shared[mo.state] = st
	}

	return newColumn[T](c.name, &multiOutput[T]{state: st, index: mo.index})
}
