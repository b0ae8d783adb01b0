// Package transform implements data transforms that derive new series from registered ones,
// and a pipeline that runs them in phases over a registry.
//
// A nil input series logs a warning and yields an empty result. Parameters of the wrong type
// fall back to the operation defaults.
package transform

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/progress"
	"github.com/arloliu/tsview/registry"
)

// Env carries the collaborators of one operation run.
type Env struct {
	Logger   *slog.Logger
	Progress progress.Func
	// Data resolves secondary inputs, such as a reference series. It may be nil.
	Data *registry.Registry
}

func (e Env) normalized() Env {
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	e.Progress = progress.OrNoop(e.Progress)

	return e
}

// Operation is a named transform from one series type to another.
type Operation interface {
	Name() string
	// CanApply reports whether data is of the type the operation reads.
	CanApply(data any) bool
	// DefaultParams returns the parameters used when none, or ones of the wrong type, are given.
	DefaultParams() any
	// Execute runs the operation. Data that is nil yields an empty result, not an error.
	Execute(ctx context.Context, data any, params any, env Env) (any, error)
}

type validator interface {
	validate() error
}

// op implements Operation over typed input, output and parameters.
type op[In, Out, P any] struct {
	name     string
	defaults P
	empty    func() Out
	run      func(ctx context.Context, in In, p P, env Env) (Out, error)
}

func (o *op[In, Out, P]) Name() string { return o.name }

func (o *op[In, Out, P]) DefaultParams() any { return o.defaults }

func (o *op[In, Out, P]) CanApply(data any) bool {
	_, ok := data.(In)

	return ok && !isNil(data)
}

func (o *op[In, Out, P]) Execute(ctx context.Context, data any, params any, env Env) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env = env.normalized()

	if isNil(data) {
		env.Logger.Warn("transform input is nil, returning empty result", slog.String("operation", o.name))
		env.Progress(100)

		return o.empty(), nil
	}
	in, ok := data.(In)
	if !ok {
		return nil, fmt.Errorf("%w: %s reads %s, got %T",
			errs.ErrSourceTypeMismatch, o.name, reflect.TypeFor[In](), data)
	}

	p := paramsAs(env.Logger, o.name, params, o.defaults)
	if v, ok := any(p).(validator); ok {
		if err := v.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", o.name, err)
		}
	}

	return o.run(ctx, in, p, env)
}

// paramsAs returns params as P. A nil value yields def silently; a value of another type yields
// def with a warning.
func paramsAs[P any](l *slog.Logger, name string, params any, def P) P {
	switch p := params.(type) {
	case nil:
		return def
	case P:
		return p
	case *P:
		if p != nil {
			return *p
		}

		return def
	}

	l.Warn("transform parameters have the wrong type, using defaults",
		slog.String("operation", name),
		slog.String("got", fmt.Sprintf("%T", params)),
		slog.String("want", reflect.TypeFor[P]().String()))

	return def
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
