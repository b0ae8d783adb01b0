package table

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/tsview/series"
)

// EntityIDStructure describes how a computer attributes rows to entities.
type EntityIDStructure uint8

const (
	// EntityIDsNone means the column carries no entity attribution.
	EntityIDsNone EntityIDStructure = iota
	// EntityIDsSimple means at most one entity per row.
	EntityIDsSimple
	// EntityIDsComplex means any number of entities per row.
	EntityIDsComplex
)

func (s EntityIDStructure) String() string {
	switch s {
	case EntityIDsNone:
		return "none"
	case EntityIDsSimple:
		return "simple"
	case EntityIDsComplex:
		return "complex"
	default:
		return fmt.Sprintf("EntityIDStructure(%d)", s)
	}
}

// Computer produces the values of one column.
//
// Compute must return exactly one value per plan row. SourceDependency names the source the
// plan is built for; an empty name yields a plan built from the row selector alone.
type Computer[T any] interface {
	Compute(env Env, plan *ExecutionPlan) ([]T, error)
	SourceDependency() string
}

// MultiComputer produces several columns from one computation.
//
// Compute returns one value slice per output suffix, in OutputSuffixes order.
type MultiComputer[T any] interface {
	Compute(env Env, plan *ExecutionPlan) ([][]T, error)
	OutputSuffixes() []string
	SourceDependency() string
}

// Dependent is implemented by computers that read other columns. The named columns are
// materialized before Compute is called.
type Dependent interface {
	Dependencies() []string
}

// EntityIDProvider is implemented by computers whose rows can be attributed to entities.
// EntityIDs returns one list per plan row.
type EntityIDProvider interface {
	EntityIDStructure() EntityIDStructure
	EntityIDs(plan *ExecutionPlan) [][]series.EntityID
}

// Env gives a computer access to the table it is computing for.
type Env struct {
	tv *TableView
}

// RowCount returns the table's row count.
func (e Env) RowCount() int {
	return e.tv.RowCount()
}

// Logger returns the table's logger.
func (e Env) Logger() *slog.Logger {
	return e.tv.logger
}

// Dependency returns the values of another column, materializing it first if needed.
func Dependency[T any](e Env, name string) ([]T, error) {
	return ColumnValues[T](e.tv, name)
}

// Func adapts a function into a Computer.
type Func[T any] struct {
	Source string
	Deps   []string
	Fn     func(env Env, plan *ExecutionPlan) ([]T, error)
}

var _ Computer[int] = (*Func[int])(nil)

func (f *Func[T]) Compute(env Env, plan *ExecutionPlan) ([]T, error) {
	return f.Fn(env, plan)
}

func (f *Func[T]) SourceDependency() string { return f.Source }

func (f *Func[T]) Dependencies() []string { return f.Deps }

// multiState computes a MultiComputer once and hands out its outputs.
type multiState[T any] struct {
	mc      MultiComputer[T]
	outputs [][]T
	done    bool
}

func (s *multiState[T]) compute(env Env, plan *ExecutionPlan) error {
	if s.done {
		return nil
	}
	outputs, err := s.mc.Compute(env, plan)
	if err != nil {
		return err
	}
	if want := len(s.mc.OutputSuffixes()); len(outputs) != want {
		return fmt.Errorf("multi-output computer returned %d outputs, want %d", len(outputs), want)
	}
	s.outputs = outputs
	s.done = true

	return nil
}

func (s *multiState[T]) reset() {
	s.outputs = nil
	s.done = false
}

// multiOutput is the Computer behind one column of a MultiComputer.
type multiOutput[T any] struct {
	state *multiState[T]
	index int
}

func (m *multiOutput[T]) Compute(env Env, plan *ExecutionPlan) ([]T, error) {
	if err := m.state.compute(env, plan); err != nil {
		return nil, err
	}

	return m.state.outputs[m.index], nil
}

func (m *multiOutput[T]) SourceDependency() string { return m.state.mc.SourceDependency() }

func (m *multiOutput[T]) Dependencies() []string {
	if d, ok := m.state.mc.(Dependent); ok {
		return d.Dependencies()
	}

	return nil
}

func (m *multiOutput[T]) reset() { m.state.reset() }

func (m *multiOutput[T]) EntityIDStructure() EntityIDStructure {
	if p, ok := m.state.mc.(EntityIDProvider); ok {
		return p.EntityIDStructure()
	}

	return EntityIDsNone
}

func (m *multiOutput[T]) EntityIDs(plan *ExecutionPlan) [][]series.EntityID {
	if p, ok := m.state.mc.(EntityIDProvider); ok {
		return p.EntityIDs(plan)
	}

	return nil
}
