package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/internal/intern"
	"github.com/arloliu/tsview/internal/options"
	"github.com/arloliu/tsview/source"
	"github.com/arloliu/tsview/table"
	"github.com/arloliu/tsview/table/compute"
	"github.com/arloliu/tsview/timeframe"
)

type executorConfig struct {
	logger      *slog.Logger
	computers   *compute.Registry
	concurrency int
	tag         string
	materialize bool
	sources     *intern.Interner
}

// Option configures an Executor.
type Option = options.Option[*executorConfig]

// WithLogger sets the logger used for table diagnostics. It is also handed to every builder.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *executorConfig) {
		if l != nil {
			c.logger = l
		}
	})
}

// WithComputers sets the computer registry. It defaults to compute.NewDefaultRegistry().
func WithComputers(r *compute.Registry) Option {
	return options.New(func(c *executorConfig) error {
		if r == nil {
			return fmt.Errorf("%w: computer registry", errs.ErrNilInput)
		}
		c.computers = r

		return nil
	})
}

// WithConcurrency bounds the number of tables built at once.
func WithConcurrency(n int) Option {
	return options.New(func(c *executorConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: concurrency %d, want at least 1", errs.ErrInvalidParameter, n)
		}
		c.concurrency = n

		return nil
	})
}

// WithSourceIDs makes every table built by the executor intern its source names into in.
// By default each Executor owns one interner shared by all of its tables.
func WithSourceIDs(in *intern.Interner) Option {
	return options.New(func(c *executorConfig) error {
		if in == nil {
			return fmt.Errorf("%w: source interner", errs.ErrNilInput)
		}
		c.sources = in

		return nil
	})
}

// WithTag restricts execution to tables carrying tag.
func WithTag(tag string) Option {
	return options.NoError(func(c *executorConfig) {
		c.tag = tag
	})
}

// WithLazyColumns leaves columns unmaterialized. By default every column is computed during
// Execute so that computation errors are reported per table.
func WithLazyColumns() Option {
	return options.NoError(func(c *executorConfig) {
		c.materialize = false
	})
}

// Executor builds the tables of a Config against the sources of an Extension.
type Executor struct {
	ext *source.Extension
	cfg *executorConfig
}

// New creates an Executor resolving sources through ext.
func New(ext *source.Extension, opts ...Option) (*Executor, error) {
	if ext == nil {
		return nil, errs.ErrNilExtension
	}

	cfg := &executorConfig{logger: slog.Default(), concurrency: 4, materialize: true}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.computers == nil {
		cfg.computers = compute.NewDefaultRegistry()
	}
	if cfg.sources == nil {
		cfg.sources = intern.New()
	}

	return &Executor{ext: ext, cfg: cfg}, nil
}

// Result holds the outcome of Execute. Every executed table appears in exactly one of the maps.
type Result struct {
	Tables map[string]*table.TableView
	Errors map[string]error
}

// OK reports whether every table was built.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// Execute builds every table of c. A table that fails is recorded in Result.Errors and does not
// affect the others. The returned error is non-nil only for an invalid configuration or when
// ctx is done.
func (e *Executor) Execute(ctx context.Context, c *Config) (*Result, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: config", errs.ErrNilInput)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Tables: make(map[string]*table.TableView), Errors: make(map[string]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.concurrency)
	for _, tc := range c.Tables {
		if e.cfg.tag != "" && !tc.hasTag(e.cfg.tag) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tv, err := e.buildTable(tc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.cfg.logger.Error("table build failed", slog.String("table", tc.ID), slog.Any("error", err))
				res.Errors[tc.ID] = err

				return nil
			}
			e.cfg.logger.Debug("table built", slog.String("table", tc.ID),
				slog.Int("rows", tv.RowCount()), slog.Int("columns", tv.ColumnCount()))
			res.Tables[tc.ID] = tv

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	return res, nil
}

func (e *Executor) buildTable(tc TableConfig) (*table.TableView, error) {
	sel, err := e.selector(tc.Rows)
	if err != nil {
		return nil, err
	}

	b, err := table.NewBuilder(e.ext,
		table.WithLogger(e.cfg.logger.With(slog.String("table", tc.ID))),
		table.WithSourceIDs(e.cfg.sources),
	)
	if err != nil {
		return nil, err
	}
	b.SetRowSelector(sel)

	for _, col := range tc.Columns {
		src, err := e.ext.Resolve(col.Source)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		inst, err := e.cfg.computers.Create(col.Computer, src, col.Params)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		if err := inst.AddTo(b, col.Name); err != nil {
			return nil, err
		}
	}

	tv, err := b.Build()
	if err != nil {
		return nil, err
	}
	if e.cfg.materialize {
		if err := tv.MaterializeAll(); err != nil {
			return nil, err
		}
	}

	return tv, nil
}

func (e *Executor) timeFrame(key string) (*timeframe.TimeFrame, error) {
	if key == "" {
		return nil, nil
	}
	tf, ok := e.ext.Registry().Time(key)
	if !ok {
		return nil, fmt.Errorf("%w: timeline %q is not registered", errs.ErrInvalidConfig, key)
	}

	return tf, nil
}

func (e *Executor) selector(r RowsConfig) (table.RowSelector, error) {
	switch r.Type {
	case RowsIndex:
		return table.NewRangeSelector(r.Count), nil
	case RowsInterval:
		return e.intervalSelector(r)
	case RowsTimestamp:
		return e.timestampSelector(r)
	default:
		return nil, fmt.Errorf("%w: unknown rows type %q", errs.ErrInvalidConfig, r.Type)
	}
}

func (e *Executor) intervalSelector(r RowsConfig) (table.RowSelector, error) {
	if r.Source == "" {
		tf, err := e.timeFrame(r.TimeFrame)
		if err != nil {
			return nil, err
		}
		ivs := make([]timeframe.Interval, len(r.Intervals))
		for i, pair := range r.Intervals {
			ivs[i] = timeframe.NewInterval(pair[0], pair[1])
		}

		return table.NewIntervalSelector(ivs, tf), nil
	}

	src, err := e.ext.IntervalSource(r.Source)
	if err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	ivs := src.Intervals()
	if len(ivs) == 0 {
		return nil, fmt.Errorf("%w: interval source %q holds no intervals", errs.ErrInvalidConfig, r.Source)
	}

	return table.NewIntervalSelector(ivs, src.TimeFrame()), nil
}

func (e *Executor) timestampSelector(r RowsConfig) (table.RowSelector, error) {
	if r.Source == "" {
		tf, err := e.timeFrame(r.TimeFrame)
		if err != nil {
			return nil, err
		}
		times := make([]timeframe.Index, len(r.Timestamps))
		for i, t := range r.Timestamps {
			times[i] = timeframe.Index(t)
		}

		return table.NewTimestampSelector(times, tf), nil
	}

	if src, err := e.ext.EventSource(r.Source); err == nil {
		tf := src.TimeFrame()
		times := src.EventsInRange(timeframe.Index(math.MinInt64), timeframe.Index(math.MaxInt64), nil)
		if len(times) == 0 {
			return nil, fmt.Errorf("%w: event source %q holds no events", errs.ErrInvalidConfig, r.Source)
		}

		return table.NewTimestampSelector(times, tf), nil
	}

	// every index of a registered timeline
	tf, ok := e.ext.Registry().Time(r.Source)
	if !ok || tf.Len() == 0 {
		return nil, fmt.Errorf("%w: %q is neither an event source nor a registered timeline", errs.ErrInvalidConfig, r.Source)
	}
	times := make([]timeframe.Index, tf.Len())
	for i := range times {
		times[i] = timeframe.Index(i)
	}

	return table.NewTimestampSelector(times, tf), nil
}
