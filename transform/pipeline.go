package transform

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/internal/options"
	"github.com/arloliu/tsview/progress"
	"github.com/arloliu/tsview/registry"
)

// Step runs one operation on a registry entry and stores the result under Output.
type Step struct {
	ID        string
	Operation string
	Input     string
	// Output defaults to ID.
	Output string
	Params any
	// Phase orders steps. Phases run in ascending order and the steps of one phase run
	// concurrently.
	Phase    int
	Disabled bool
}

// StepResult reports the outcome of one step.
type StepResult struct {
	ID     string
	Output string
	// Skipped is set for disabled steps.
	Skipped bool
	Err     error
}

// Result reports the outcome of a pipeline run, one entry per step in the order they were added.
type Result struct {
	Steps []StepResult
}

// Failed returns the results of the steps that failed.
func (r *Result) Failed() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}

	return out
}

// OK reports whether every step succeeded or was skipped.
func (r *Result) OK() bool {
	return len(r.Failed()) == 0
}

type pipelineConfig struct {
	logger      *slog.Logger
	report      progress.Func
	concurrency int
}

// PipelineOption configures a Pipeline.
type PipelineOption = options.Option[*pipelineConfig]

// WithLogger sets the logger used for step diagnostics.
func WithLogger(l *slog.Logger) PipelineOption {
	return options.NoError(func(c *pipelineConfig) {
		if l != nil {
			c.logger = l
		}
	})
}

// WithProgress reports the share of finished steps.
func WithProgress(f progress.Func) PipelineOption {
	return options.NoError(func(c *pipelineConfig) {
		c.report = f
	})
}

// WithConcurrency bounds the number of steps of one phase running at once.
func WithConcurrency(n int) PipelineOption {
	return options.New(func(c *pipelineConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: concurrency %d, want at least 1", errs.ErrInvalidParameter, n)
		}
		c.concurrency = n

		return nil
	})
}

// Pipeline runs steps over the entries of a registry.
type Pipeline struct {
	data  *registry.Registry
	ops   *Registry
	cfg   *pipelineConfig
	steps []Step
	ids   map[string]struct{}
}

// NewPipeline creates a pipeline reading and writing data and running operations from ops.
func NewPipeline(data *registry.Registry, ops *Registry, opts ...PipelineOption) (*Pipeline, error) {
	if data == nil || ops == nil {
		return nil, fmt.Errorf("%w: pipeline needs a data registry and an operation registry", errs.ErrNilInput)
	}

	cfg := &pipelineConfig{logger: slog.Default(), concurrency: 4}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	cfg.report = progress.OrNoop(cfg.report)

	return &Pipeline{data: data, ops: ops, cfg: cfg, ids: make(map[string]struct{})}, nil
}

// AddStep validates and appends s.
func (p *Pipeline) AddStep(s Step) error {
	switch {
	case s.ID == "":
		return fmt.Errorf("%w: step id must not be empty", errs.ErrInvalidParameter)
	case s.Input == "":
		return fmt.Errorf("%w: step %q has no input", errs.ErrInvalidParameter, s.ID)
	case s.Phase < 0:
		return fmt.Errorf("%w: step %q has negative phase %d", errs.ErrInvalidParameter, s.ID, s.Phase)
	}
	if _, dup := p.ids[s.ID]; dup {
		return fmt.Errorf("%w: duplicate step id %q", errs.ErrInvalidParameter, s.ID)
	}
	if _, err := p.ops.Get(s.Operation); err != nil {
		return fmt.Errorf("step %q: %w", s.ID, err)
	}
	if s.Output == "" {
		s.Output = s.ID
	}

	p.ids[s.ID] = struct{}{}
	p.steps = append(p.steps, s)

	return nil
}

// Steps returns a copy of the configured steps.
func (p *Pipeline) Steps() []Step {
	return slices.Clone(p.steps)
}

// Run executes every step. A failing step is logged and recorded in the result and the run
// continues; steps reading its output fail in turn. The returned error is non-nil only when ctx
// is done.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{Steps: make([]StepResult, len(p.steps))}
	phases := make(map[int][]int)
	for i, s := range p.steps {
		phases[s.Phase] = append(phases[s.Phase], i)
	}

	var mu sync.Mutex
	done := 0
	p.cfg.report(0)

	for _, phase := range slices.Sorted(maps.Keys(phases)) {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.concurrency)
		for _, i := range phases[phase] {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res.Steps[i] = p.runStep(gctx, p.steps[i])

				mu.Lock()
				done++
				p.cfg.report(done * 100 / len(p.steps))
				mu.Unlock()

				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return res, err
		}
	}
	p.cfg.report(100)

	return res, nil
}

func (p *Pipeline) runStep(ctx context.Context, s Step) StepResult {
	out := StepResult{ID: s.ID, Output: s.Output}
	logger := p.cfg.logger.With(slog.String("step", s.ID), slog.String("operation", s.Operation))
	if s.Disabled {
		out.Skipped = true
		logger.Debug("transform step disabled")

		return out
	}

	out.Err = p.execute(ctx, s, logger)
	if out.Err != nil {
		logger.Error("transform step failed", slog.Any("error", out.Err))
	} else {
		logger.Debug("transform step finished", slog.String("output", s.Output))
	}

	return out
}

func (p *Pipeline) execute(ctx context.Context, s Step, logger *slog.Logger) error {
	o, err := p.ops.Get(s.Operation)
	if err != nil {
		return err
	}
	data, ok := p.data.Lookup(s.Input)
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrSourceNotFound, s.Input)
	}
	if !o.CanApply(data) {
		return fmt.Errorf("%w: %s cannot read %q (%T)", errs.ErrSourceTypeMismatch, s.Operation, s.Input, data)
	}

	out, err := o.Execute(ctx, data, s.Params, Env{Logger: logger, Data: p.data})
	if err != nil {
		return err
	}
	timeKey, _ := p.data.TimeKeyFor(s.Input)

	return p.data.Set(s.Output, out, timeKey)
}
