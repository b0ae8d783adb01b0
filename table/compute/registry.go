// Package compute provides the column computers of the table engine and a registry that
// creates them by name from text parameters.
package compute

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"sync"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/source"
	"github.com/arloliu/tsview/table"
)

// Instance is a created computer ready to be added to a builder.
type Instance interface {
	// AddTo adds the computer's column, or its columns for a multi-output computer, under name.
	AddTo(b *table.Builder, name string) error
	OutputType() reflect.Type
}

type single[T any] struct {
	c table.Computer[T]
}

// Single wraps a Computer as an Instance.
func Single[T any](c table.Computer[T]) Instance { return single[T]{c: c} }

func (s single[T]) AddTo(b *table.Builder, name string) error {
	return table.AddColumn(b, name, s.c)
}

func (s single[T]) OutputType() reflect.Type { return reflect.TypeFor[T]() }

type multi[T any] struct {
	mc table.MultiComputer[T]
}

// Multi wraps a MultiComputer as an Instance.
func Multi[T any](mc table.MultiComputer[T]) Instance { return multi[T]{mc: mc} }

func (m multi[T]) AddTo(b *table.Builder, name string) error {
	return table.AddColumns(b, name, m.mc)
}

func (m multi[T]) OutputType() reflect.Type { return reflect.TypeFor[T]() }

// Factory creates a computer over src from params.
type Factory func(src source.Source, params Params) (Instance, error)

// ComputerInfo describes a registered computer.
type ComputerInfo struct {
	Name        string
	Description string
	OutputType  reflect.Type
	// Selector is the row selector kind the computer needs.
	Selector table.SelectorKind
	// Source is the kind of source the computer reads.
	Source      source.Kind
	Params      []ParamInfo
	MultiOutput bool
}

// Registry maps computer names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	infos     map[string]ComputerInfo
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		infos:     make(map[string]ComputerInfo),
		factories: make(map[string]Factory),
	}
}

// NewDefaultRegistry creates a Registry holding every computer of this package.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, b := range builtins {
		if err := r.Register(b.info, b.factory); err != nil {
			panic(err)
		}
	}

	return r
}

// Register adds a computer. Returns errs.ErrDuplicateComputer when the name is taken.
func (r *Registry) Register(info ComputerInfo, f Factory) error {
	if info.Name == "" {
		return fmt.Errorf("%w: computer name must not be empty", errs.ErrInvalidParameter)
	}
	if f == nil {
		return fmt.Errorf("%w: factory for %q", errs.ErrNilComputer, info.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.infos[info.Name]; dup {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateComputer, info.Name)
	}
	r.infos[info.Name] = info
	r.factories[info.Name] = f

	return nil
}

// Info returns the description of a computer.
func (r *Registry) Info(name string) (ComputerInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.infos[name]

	return info, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.infos))
	for name := range r.infos {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Available returns the sorted names of computers usable with the given selector and source
// kinds.
func (r *Registry) Available(sel table.SelectorKind, kind source.Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, info := range r.infos {
		if info.Selector == sel && info.Source == kind {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	return names
}

// Create builds the named computer over src.
//
// Returns errs.ErrUnknownComputer for an unregistered name, errs.ErrSourceTypeMismatch when
// src is not of the kind the computer reads and errs.ErrInvalidParameter for bad params.
func (r *Registry) Create(name string, src source.Source, params Params) (Instance, error) {
	r.mu.RLock()
	info, ok := r.infos[name]
	f := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownComputer, name)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: source for computer %q", errs.ErrNilInput, name)
	}
	if info.Source != source.KindUnknown && src.Kind() != info.Source {
		return nil, fmt.Errorf("%w: computer %q reads %s sources, %q is %s",
			errs.ErrSourceTypeMismatch, name, info.Source, src.Name(), src.Kind())
	}

	return f(src, params)
}

type builtin struct {
	info    ComputerInfo
	factory Factory
}

func as[S source.Source](src source.Source) (S, error) {
	s, ok := src.(S)
	if !ok {
		return s, fmt.Errorf("%w: %q is a %s source", errs.ErrSourceTypeMismatch, src.Name(), src.Kind())
	}

	return s, nil
}

var builtins = []builtin{
	{
		info: ComputerInfo{
			Name:        "analog_value",
			Description: "Analog sample at each row timestamp",
			OutputType:  reflect.TypeFor[float64](),
			Selector:    table.SelectorTimestamp,
			Source:      source.KindAnalog,
		},
		factory: func(src source.Source, _ Params) (Instance, error) {
			s, err := as[source.AnalogSource](src)
			if err != nil {
				return nil, err
			}

			return Single(NewAnalogValue(s)), nil
		},
	},
	{
		info: ComputerInfo{
			Name:        "analog_reduction",
			Description: "Summary of the analog samples inside each row interval",
			OutputType:  reflect.TypeFor[float64](),
			Selector:    table.SelectorInterval,
			Source:      source.KindAnalog,
			Params: []ParamInfo{{
				Name: "reduction", Description: "Summary to compute", Default: "mean", Options: reductionNames,
			}},
		},
		factory: func(src source.Source, p Params) (Instance, error) {
			s, err := as[source.AnalogSource](src)
			if err != nil {
				return nil, err
			}
			op, err := ParseReduction(p.String("reduction", ReduceMean.String()))
			if err != nil {
				return nil, err
			}

			return Single(NewAnalogReduction(s, op)), nil
		},
	},
	{
		info: ComputerInfo{
			Name:        "analog_slice",
			Description: "Analog samples inside each row interval",
			OutputType:  reflect.TypeFor[[]float64](),
			Selector:    table.SelectorInterval,
			Source:      source.KindAnalog,
		},
		factory: func(src source.Source, _ Params) (Instance, error) {
			s, err := as[source.AnalogSource](src)
			if err != nil {
				return nil, err
			}

			return Single(NewAnalogSlice(s)), nil
		},
	},
	{
		info: ComputerInfo{
			Name:        "event_presence",
			Description: "Whether any event falls inside each row interval",
			OutputType:  reflect.TypeFor[bool](),
			Selector:    table.SelectorInterval,
			Source:      source.KindEvent,
		},
		factory: func(src source.Source, _ Params) (Instance, error) {
			s, err := as[source.EventSource](src)
			if err != nil {
				return nil, err
			}

			return Single(NewEventPresence(s)), nil
		},
	},
	{
		info: ComputerInfo{
			Name:        "event_count",
			Description: "Number of events inside each row interval",
			OutputType:  reflect.TypeFor[int](),
			Selector:    table.SelectorInterval,
			Source:      source.KindEvent,
		},
		factory: func(src source.Source, _ Params) (Instance, error) {
			s, err := as[source.EventSource](src)
			if err != nil {
				return nil, err
			}

			return Single(NewEventCount(s)), nil
		},
	},
	{
		info: ComputerInfo{
			Name:        "event_gather",
			Description: "Events inside each row interval",
			OutputType:  reflect.TypeFor[[]int64](),
			Selector:    table.SelectorInterval,
			Source:      source.KindEvent,
			Params: []ParamInfo{{
				Name: "mode", Description: "Report events as is or relative to the row center",
				Default: "absolute", Options: []string{"absolute", "centered"},
			}},
		},
		factory: func(src source.Source, p Params) (Instance, error) {
			s, err := as[source.EventSource](src)
			if err != nil {
				return nil, err
			}
			mode, err := p.OneOf("mode", "absolute", "absolute", "centered")
			if err != nil {
				return nil, err
			}

			return Single(NewEventGather(s, mode == "centered")), nil
		},
	},
	{
		info: ComputerInfo{
			Name:        "interval_overlap",
			Description: "Relation between each row interval and the source intervals",
			OutputType:  reflect.TypeFor[int64](),
			Selector:    table.SelectorInterval,
			Source:      source.KindInterval,
			Params: []ParamInfo{{
				Name: "operation", Description: "Relation to report", Default: "count_overlaps", Options: overlapNames,
			}},
		},
		factory: func(src source.Source, p Params) (Instance, error) {
			s, err := as[source.IntervalSource](src)
			if err != nil {
				return nil, err
			}
			op, err := ParseOverlapOperation(p.String("operation", CountOverlaps.String()))
			if err != nil {
				return nil, err
			}

			return Single(NewIntervalOverlap(s, op)), nil
		},
	},
	{
		info: ComputerInfo{
			Name:        "interval_property",
			Description: "Start, end or duration of each row interval",
			OutputType:  reflect.TypeFor[int64](),
			Selector:    table.SelectorInterval,
			Source:      source.KindInterval,
			Params: []ParamInfo{{
				Name: "property", Description: "Property to report", Default: "start", Options: propertyNames,
			}},
		},
		factory: func(src source.Source, p Params) (Instance, error) {
			prop, err := ParseIntervalProperty(p.String("property", PropertyStart.String()))
			if err != nil {
				return nil, err
			}

			return Single(NewIntervalProperties(src.Name(), prop)), nil
		},
	},
	{
		info: ComputerInfo{
			Name:        "timestamp_in_interval",
			Description: "Whether each row timestamp lies inside a source interval",
			OutputType:  reflect.TypeFor[bool](),
			Selector:    table.SelectorTimestamp,
			Source:      source.KindInterval,
		},
		factory: func(src source.Source, _ Params) (Instance, error) {
			s, err := as[source.IntervalSource](src)
			if err != nil {
				return nil, err
			}

			return Single(NewTimestampInInterval(s)), nil
		},
	},
	{
		info: ComputerInfo{
			Name:        "point_component",
			Description: "X or Y of the point on each row",
			OutputType:  reflect.TypeFor[float64](),
			Selector:    table.SelectorTimestamp,
			Source:      source.KindPoint,
			Params: []ParamInfo{{
				Name: "component", Description: "Coordinate to report", Default: "x", Options: []string{"x", "y"},
			}},
		},
		factory: func(src source.Source, p Params) (Instance, error) {
			s, err := as[source.PointSource](src)
			if err != nil {
				return nil, err
			}
			comp, err := ParseComponent(p.String("component", "x"))
			if err != nil {
				return nil, err
			}

			return Single(NewPointComponent(s, comp)), nil
		},
	},
	{
		info: ComputerInfo{
			Name:        "line_sampling",
			Description: "X and Y sampled at evenly spaced positions along the line on each row",
			OutputType:  reflect.TypeFor[float64](),
			Selector:    table.SelectorTimestamp,
			Source:      source.KindLine,
			Params: []ParamInfo{{
				Name: "segments", Description: "Number of segments between samples", Default: strconv.Itoa(2),
			}},
			MultiOutput: true,
		},
		factory: func(src source.Source, p Params) (Instance, error) {
			s, err := as[source.LineSource](src)
			if err != nil {
				return nil, err
			}
			segments, err := p.Int("segments", 2)
			if err != nil {
				return nil, err
			}
			if segments < 1 {
				return nil, fmt.Errorf("%w: segments=%d, want at least 1", errs.ErrInvalidParameter, segments)
			}

			return Multi(NewLineSampling(s, segments)), nil
		},
	},
	{
		info: ComputerInfo{
			Name:        "line_timestamp",
			Description: "Time index of the line on each row, zero where there is none",
			OutputType:  reflect.TypeFor[int64](),
			Selector:    table.SelectorTimestamp,
			Source:      source.KindLine,
		},
		factory: func(src source.Source, _ Params) (Instance, error) {
			s, err := as[source.LineSource](src)
			if err != nil {
				return nil, err
			}

			return Single[int64](NewLineTimestamp(s)), nil
		},
	},
}
