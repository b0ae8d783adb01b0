package transform

import (
	"fmt"
	"slices"
	"sync"

	"github.com/arloliu/tsview/errs"
)

// Registry holds operations by name. It is safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// NewDefaultRegistry creates a Registry holding every operation of this package.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, o := range []Operation{NewInvertIntervals(), NewEventWindow(), NewPointDistance(), NewAnalogThreshold()} {
		if err := r.Register(o); err != nil {
			panic(err)
		}
	}

	return r
}

// Register adds o under its name.
func (r *Registry) Register(o Operation) error {
	if o == nil {
		return fmt.Errorf("%w: operation", errs.ErrNilInput)
	}
	name := o.Name()
	if name == "" {
		return fmt.Errorf("%w: operation name must not be empty", errs.ErrInvalidParameter)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.ops[name]; dup {
		return fmt.Errorf("%w: operation %q already registered", errs.ErrInvalidParameter, name)
	}
	r.ops[name] = o

	return nil
}

// Get returns the named operation.
func (r *Registry) Get(name string) (Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.ops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownOperation, name)
	}

	return o, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Applicable returns the sorted names of operations that accept data.
func (r *Registry) Applicable(data any) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, o := range r.ops {
		if o.CanApply(data) {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	return names
}
