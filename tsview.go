// Package tsview builds analysis tables over time-aligned series.
//
// A session holds named series (analog signals, events, intervals, per-frame points and lines)
// together with the timelines they are sampled on. Tables are built by choosing rows (intervals,
// timestamps or plain indices) and attaching columns, each produced by a named computer reading
// one source. Transform pipelines derive new series from existing ones and store them back in
// the session so tables can read them.
//
// # Core Features
//
//   - Timelines with index conversion between differently sampled series
//   - Interval, timestamp and index row selectors
//   - Lazily computed, cached columns with dependency tracking
//   - Entity expansion for per-frame ragged data such as tracked points and lines
//   - Declarative table definitions in HCL
//   - Phased, concurrent transform pipelines
//
// # Basic Usage
//
// Registering data and building a table:
//
//	import "github.com/arloliu/tsview"
//
//	s, _ := tsview.NewSession()
//	defer s.Close()
//
//	s.Data().SetTime("cam", timeframe.NewUniform(1000, 0, 1))
//	s.Data().Set("licks", series.NewEventSeries(licks), "cam")
//	s.Data().Set("trials", series.NewIntervalSeries(trials), "cam")
//
//	b, _ := s.NewTable(table.NewIntervalSelector(trials, nil))
//	s.AddColumn(b, "licks", "event_count", "licks", nil)
//	s.AddColumn(b, "lick_times", "event_gather", "licks", compute.Params{"mode": "centered"})
//	tv, _ := b.Build()
//
//	counts, _ := table.ColumnValues[int](tv, "licks")
//
// Building tables from a configuration:
//
//	res, _ := s.BuildTables(ctx, hclSource, "session.hcl")
//	for id, tv := range res.Tables {
//	    fmt.Println(id, tv.RowCount())
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the registry, source, table,
// table/compute, transform and pipeline packages. For fine-grained control use those packages
// directly.
package tsview

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/internal/intern"
	"github.com/arloliu/tsview/internal/options"
	"github.com/arloliu/tsview/pipeline"
	"github.com/arloliu/tsview/registry"
	"github.com/arloliu/tsview/source"
	"github.com/arloliu/tsview/table"
	"github.com/arloliu/tsview/table/compute"
	"github.com/arloliu/tsview/transform"
)

type sessionConfig struct {
	logger     *slog.Logger
	data       *registry.Registry
	computers  *compute.Registry
	transforms *transform.Registry
}

// SessionOption configures a Session.
type SessionOption = options.Option[*sessionConfig]

// WithLogger sets the logger shared by the session's sources, builders and pipelines.
func WithLogger(l *slog.Logger) SessionOption {
	return options.NoError(func(c *sessionConfig) {
		if l != nil {
			c.logger = l
		}
	})
}

// WithRegistry makes the session operate on an existing data registry.
func WithRegistry(r *registry.Registry) SessionOption {
	return options.New(func(c *sessionConfig) error {
		if r == nil {
			return fmt.Errorf("%w: data registry", errs.ErrNilInput)
		}
		c.data = r

		return nil
	})
}

// WithComputers replaces the default computer registry.
func WithComputers(r *compute.Registry) SessionOption {
	return options.New(func(c *sessionConfig) error {
		if r == nil {
			return fmt.Errorf("%w: computer registry", errs.ErrNilInput)
		}
		c.computers = r

		return nil
	})
}

// WithTransforms replaces the default transform registry.
func WithTransforms(r *transform.Registry) SessionOption {
	return options.New(func(c *sessionConfig) error {
		if r == nil {
			return fmt.Errorf("%w: transform registry", errs.ErrNilInput)
		}
		c.transforms = r

		return nil
	})
}

// Session bundles a data registry with the source extension, computers and transforms that
// operate on it.
type Session struct {
	data       *registry.Registry
	ext        *source.Extension
	computers  *compute.Registry
	transforms *transform.Registry
	sources    *intern.Interner
	logger     *slog.Logger
}

// NewSession creates a session with default computers and transforms.
//
// Without WithRegistry the session starts from an empty registry. Close must be called to
// detach the session from the registry.
//
// Parameters:
//   - opts: Optional configuration functions (see SessionOption)
//
// Returns:
//   - *Session: The created session.
//   - error: An error if an option is invalid.
//
// Example:
//
//	s, err := tsview.NewSession(tsview.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
func NewSession(opts ...SessionOption) (*Session, error) {
	cfg := &sessionConfig{logger: slog.Default()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.data == nil {
		cfg.data = registry.New()
	}
	if cfg.computers == nil {
		cfg.computers = compute.NewDefaultRegistry()
	}
	if cfg.transforms == nil {
		cfg.transforms = transform.NewDefaultRegistry()
	}

	ext, err := source.NewExtension(cfg.data, source.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}

	return &Session{
		data:       cfg.data,
		ext:        ext,
		computers:  cfg.computers,
		transforms: cfg.transforms,
		sources:    intern.New(),
		logger:     cfg.logger,
	}, nil
}

// Close detaches the session's source cache from the registry. The registry itself stays usable.
func (s *Session) Close() {
	s.ext.Close()
}

// Data returns the registry holding the session's series and timelines.
func (s *Session) Data() *registry.Registry { return s.data }

// Extension returns the source extension resolving registry entries for tables.
func (s *Session) Extension() *source.Extension { return s.ext }

// Computers returns the computer registry used by AddColumn and BuildTables.
func (s *Session) Computers() *compute.Registry { return s.computers }

// Transforms returns the transform registry used by NewTransformPipeline.
func (s *Session) Transforms() *transform.Registry { return s.transforms }

// NewTable creates a table builder over the session's sources with sel as its row selector.
//
// Parameters:
//   - sel: The row selector (see table.NewIntervalSelector, table.NewTimestampSelector and
//     table.NewRangeSelector)
//
// Returns:
//   - *table.Builder: The builder, ready for columns.
//   - error: An error if sel is nil.
func (s *Session) NewTable(sel table.RowSelector) (*table.Builder, error) {
	if sel == nil {
		return nil, fmt.Errorf("%w: row selector", errs.ErrNilInput)
	}
	b, err := table.NewBuilder(s.ext, table.WithLogger(s.logger), table.WithSourceIDs(s.sources))
	if err != nil {
		return nil, err
	}
	b.SetRowSelector(sel)

	return b, nil
}

// AddColumn adds a column produced by the named computer reading source src.
//
// Multi-output computers such as line_sampling add one column per output, prefixed by name.
//
// Parameters:
//   - b: The builder returned by NewTable
//   - name: The column name, or the prefix for multi-output computers
//   - computer: The registered computer name (see Computers().Names())
//   - src: The name of the source to read
//   - params: Computer parameters, nil for defaults
//
// Returns:
//   - error: ErrSourceNotFound, ErrUnknownComputer, ErrSourceTypeMismatch or ErrInvalidParameter
//     when the column cannot be created.
//
// Example:
//
//	err := s.AddColumn(b, "peak", "analog_reduction", "lfp", compute.Params{"reduction": "max"})
func (s *Session) AddColumn(b *table.Builder, name, computer, src string, params compute.Params) error {
	resolved, err := s.ext.Resolve(src)
	if err != nil {
		return fmt.Errorf("column %q: %w", name, err)
	}
	inst, err := s.computers.Create(computer, resolved, params)
	if err != nil {
		return fmt.Errorf("column %q: %w", name, err)
	}

	return inst.AddTo(b, name)
}

// BuildTables parses an HCL table configuration and builds every table it declares.
//
// Tables that fail are reported in the result's Errors map; the returned error is non-nil only
// for an invalid configuration or a cancelled context.
//
// Parameters:
//   - ctx: Cancels pending table builds
//   - src: The HCL configuration
//   - filename: The name used in diagnostics
//   - opts: Optional executor configuration (see pipeline.Option)
//
// Returns:
//   - *pipeline.Result: The built tables and per-table errors.
//   - error: An error if the configuration is invalid or ctx is done.
func (s *Session) BuildTables(ctx context.Context, src []byte, filename string, opts ...pipeline.Option) (*pipeline.Result, error) {
	cfg, err := pipeline.Parse(src, filename)
	if err != nil {
		return nil, err
	}

	return s.ExecuteConfig(ctx, cfg, opts...)
}

// BuildTablesFromFile is BuildTables reading the configuration from path.
func (s *Session) BuildTablesFromFile(ctx context.Context, path string, opts ...pipeline.Option) (*pipeline.Result, error) {
	cfg, err := pipeline.ParseFile(path)
	if err != nil {
		return nil, err
	}

	return s.ExecuteConfig(ctx, cfg, opts...)
}

// ExecuteConfig builds the tables of an already parsed configuration.
func (s *Session) ExecuteConfig(ctx context.Context, cfg *pipeline.Config, opts ...pipeline.Option) (*pipeline.Result, error) {
	allOpts := append([]pipeline.Option{
		pipeline.WithLogger(s.logger),
		pipeline.WithComputers(s.computers),
		pipeline.WithSourceIDs(s.sources),
	}, opts...)
	ex, err := pipeline.New(s.ext, allOpts...)
	if err != nil {
		return nil, err
	}

	return ex.Execute(ctx, cfg)
}

// NewTransformPipeline creates a transform pipeline reading and writing the session's registry.
//
// Example:
//
//	p, _ := s.NewTransformPipeline()
//	p.AddStep(transform.Step{ID: "lick_windows", Operation: "event_window", Input: "licks",
//	    Params: transform.EventWindowParams{Before: 5, After: 5}})
//	res, _ := p.Run(ctx)
func (s *Session) NewTransformPipeline(opts ...transform.PipelineOption) (*transform.Pipeline, error) {
	allOpts := append([]transform.PipelineOption{transform.WithLogger(s.logger)}, opts...)

	return transform.NewPipeline(s.data, s.transforms, allOpts...)
}

// SourceID returns a stable 64-bit identifier for a source name, the xxHash64 of the name.
//
// Different names can hash to the same value. The tables of a session share one interner that
// resolves such collisions, so the identifiers reported by its tables may differ from SourceID
// for colliding names.
func SourceID(name string) uint64 {
	return intern.Hash(name)
}
