package table

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/internal/intern"
	"github.com/arloliu/tsview/internal/options"
	"github.com/arloliu/tsview/source"
)

type builderConfig struct {
	logger  *slog.Logger
	sources *intern.Interner
}

// BuilderOption configures a Builder.
type BuilderOption = options.Option[*builderConfig]

// WithLogger sets the logger used by the builder and the tables it builds. It defaults to
// slog.Default().
func WithLogger(l *slog.Logger) BuilderOption {
	return options.NoError(func(c *builderConfig) {
		c.logger = l
	})
}

// WithSourceIDs interns source names into in instead of a private interner, so the tables of
// several builders agree on source identifiers.
func WithSourceIDs(in *intern.Interner) BuilderOption {
	return options.NoError(func(c *builderConfig) {
		c.sources = in
	})
}

// Builder assembles a TableView from a row selector and columns.
//
// Column configuration errors are returned by AddColumn and AddColumns. Source related checks
// run in Validate, which Build calls.
type Builder struct {
	res      source.Resolver
	logger   *slog.Logger
	selector RowSelector
	columns  []anyColumn
	names    map[string]struct{}
	sources  *intern.Interner
}

// NewBuilder creates a Builder resolving sources through res.
// Returns errs.ErrNilExtension when res is nil.
func NewBuilder(res source.Resolver, opts ...BuilderOption) (*Builder, error) {
	if res == nil {
		return nil, errs.ErrNilExtension
	}
	cfg := &builderConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.sources == nil {
		cfg.sources = intern.New()
	}

	return &Builder{
		res:     res,
		logger:  cfg.logger,
		names:   make(map[string]struct{}),
		sources: cfg.sources,
	}, nil
}

// SetRowSelector sets the row definition, replacing any previous one.
func (b *Builder) SetRowSelector(sel RowSelector) *Builder {
	b.selector = sel

	return b
}

// ColumnNames returns the names added so far in declaration order.
func (b *Builder) ColumnNames() []string {
	out := make([]string, len(b.columns))
	for i, c := range b.columns {
		out[i] = c.Name()
	}

	return out
}

func (b *Builder) add(col anyColumn) error {
	if col.Name() == "" {
		return errs.ErrEmptyColumnName
	}
	if _, dup := b.names[col.Name()]; dup {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateColumn, col.Name())
	}
	b.names[col.Name()] = struct{}{}
	b.columns = append(b.columns, col)

	return nil
}

// AddColumn adds a column computed by c.
func AddColumn[T any](b *Builder, name string, c Computer[T]) error {
	if c == nil {
		return fmt.Errorf("%w: column %q", errs.ErrNilComputer, name)
	}

	return b.add(newColumn(name, c))
}

// AddColumns adds one column per output of mc, named base + "." + suffix. All of them share
// a single computation.
func AddColumns[T any](b *Builder, base string, mc MultiComputer[T]) error {
	if mc == nil {
		return fmt.Errorf("%w: columns %q", errs.ErrNilComputer, base)
	}
	if base == "" {
		return errs.ErrEmptyColumnName
	}

	suffixes := mc.OutputSuffixes()
	state := &multiState[T]{mc: mc}
	cols := make([]anyColumn, len(suffixes))
	for i, suffix := range suffixes {
		name := base + "." + suffix
		if _, dup := b.names[name]; dup {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateColumn, name)
		}
		cols[i] = newColumn[T](name, &multiOutput[T]{state: state, index: i})
	}
	for _, col := range cols {
		if err := b.add(col); err != nil {
			return err
		}
	}

	return nil
}

// resolved caches source lookups for one validation or build pass.
type resolved map[intern.ID]source.Source

// sourceID interns name. Columns without a source report false.
func (b *Builder) sourceID(name string) (intern.ID, bool) {
	if name == "" {
		return 0, false
	}
	id, err := b.sources.Intern(name)
	if err != nil {
		b.logger.Warn("source name not interned", slog.String("source", name), slog.Any("error", err))

		return 0, false
	}

	return id, true
}

func (b *Builder) resolve(cache resolved, name string) source.Source {
	id, ok := b.sourceID(name)
	if !ok {
		return nil
	}
	if src, ok := cache[id]; ok {
		return src
	}
	src, err := b.res.Resolve(name)
	if err != nil {
		src = nil
	}
	cache[id] = src

	return src
}

// Validate checks the configuration without building.
//
// It fails when no row selector is set, or when more than one source holding several
// entities at a single index feeds the table.
func (b *Builder) Validate() error {
	_, err := b.validate(make(resolved))

	return err
}

// validate returns the expanding source, if any.
func (b *Builder) validate(cache resolved) (source.RaggedSource, error) {
	if b.selector == nil {
		return nil, errs.ErrNilRowSelector
	}

	var (
		first source.RaggedSource
		multi []source.RaggedSource
		seen  = make(map[intern.ID]struct{})
	)
	for _, col := range b.columns {
		name := col.SourceDependency()
		id, ok := b.sourceID(name)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		rs, ok := b.resolve(cache, name).(source.RaggedSource)
		if !ok {
			continue
		}
		if first == nil {
			first = rs
		}
		if rs.HasMultiSamples() {
			multi = append(multi, rs)
		}
	}

	if len(multi) > 1 {
		names := make([]string, len(multi))
		for i, rs := range multi {
			names[i] = rs.Name()
		}

		return nil, &MultiSampleError{Sources: names}
	}
	if len(multi) == 1 {
		return multi[0], nil
	}

	return first, nil
}

// Build validates the configuration and creates the TableView. Column values are computed
// lazily on first access.
func (b *Builder) Build() (*TableView, error) {
	cache := make(resolved)
	expander, err := b.validate(cache)
	if err != nil {
		return nil, err
	}

	l := &layout{selector: b.selector}
	if ts, ok := b.selector.(*TimestampSelector); ok && expander != nil {
		keepEmpty := false
		for _, col := range b.columns {
			if _, ragged := b.resolve(cache, col.SourceDependency()).(source.RaggedSource); !ragged {
				keepEmpty = true

				break
			}
		}
		l = expand(ts, expander, keepEmpty)
		b.logger.Debug("table rows expanded per entity",
			slog.String("source", expander.Name()),
			slog.Int("selector_rows", ts.RowCount()),
			slog.Int("rows", len(l.rows)))
	}

	tv := &TableView{
		res:        b.res,
		logger:     b.logger,
		layout:     l,
		columns:    make([]anyColumn, 0, len(b.columns)),
		byName:     make(map[string]anyColumn, len(b.columns)),
		plans:      make(map[intern.ID]*ExecutionPlan),
		inProgress: make(map[string]bool),
		interner:   b.sources,
	}
	shared := make(map[any]any)
	for _, col := range b.columns {
		c := col.clone(shared)
		tv.columns = append(tv.columns, c)
		tv.byName[c.Name()] = c
	}

	return tv, nil
}

// IsConfigError reports whether err is a table configuration error.
func IsConfigError(err error) bool {
	for _, target := range []error{
		errs.ErrColumnNotFound,
		errs.ErrColumnTypeMismatch,
		errs.ErrDuplicateColumn,
		errs.ErrEmptyColumnName,
		errs.ErrCircularDependency,
		errs.ErrMultipleMultiSampleSources,
		errs.ErrNilRowSelector,
		errs.ErrNilComputer,
		errs.ErrNilExtension,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
