package source

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/internal/options"
	"github.com/arloliu/tsview/registry"
	"github.com/arloliu/tsview/series"
)

// Resolver finds sources by name.
type Resolver interface {
	Resolve(name string) (Source, error)
}

type extensionConfig struct {
	logger *slog.Logger
}

// ExtensionOption configures an Extension.
type ExtensionOption = options.Option[*extensionConfig]

// WithLogger sets the logger. It defaults to slog.Default().
func WithLogger(l *slog.Logger) ExtensionOption {
	return options.NoError(func(c *extensionConfig) {
		c.logger = l
	})
}

// Extension resolves registry entries into adapters and caches them by name.
//
// Cached adapters are dropped whenever the registry reports a change to their key. Sources
// added with Register take precedence over registry entries.
type Extension struct {
	reg    *registry.Registry
	logger *slog.Logger
	obsID  registry.ObserverID

	mu     sync.Mutex
	cache  map[string]Source
	custom map[string]Source
}

var _ Resolver = (*Extension)(nil)

// NewExtension creates an Extension over reg.
func NewExtension(reg *registry.Registry, opts ...ExtensionOption) (*Extension, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: registry", errs.ErrNilInput)
	}
	cfg := &extensionConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	e := &Extension{
		reg:    reg,
		logger: cfg.logger,
		cache:  make(map[string]Source),
		custom: make(map[string]Source),
	}
	e.obsID = reg.AddObserver(e.invalidate)

	return e, nil
}

// Close stops listening to the registry.
func (e *Extension) Close() {
	e.reg.RemoveObserver(e.obsID)
}

// Registry returns the underlying registry.
func (e *Extension) Registry() *registry.Registry {
	return e.reg
}

// Register makes src resolvable under its name, shadowing any registry entry.
func (e *Extension) Register(src Source) error {
	if src == nil {
		return fmt.Errorf("%w: source", errs.ErrNilInput)
	}
	if src.Name() == "" {
		return errs.ErrInvalidSourceName
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.custom[src.Name()] = src

	return nil
}

func (e *Extension) invalidate(c registry.Change) {
	e.mu.Lock()
	_, cached := e.cache[c.Key]
	delete(e.cache, c.Key)
	e.mu.Unlock()

	if cached {
		e.logger.Debug("source adapter invalidated", slog.String("source", c.Key), slog.String("change", c.Kind.String()))
	}
}

// Resolve returns the adapter for name.
func (e *Extension) Resolve(name string) (Source, error) {
	e.mu.Lock()
	if src, ok := e.custom[name]; ok {
		e.mu.Unlock()

		return src, nil
	}
	if src, ok := e.cache[name]; ok {
		e.mu.Unlock()

		return src, nil
	}
	e.mu.Unlock()

	data, ok := e.reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrSourceNotFound, name)
	}

	tf := e.reg.TimeFrameFor(name)
	var src Source
	switch s := data.(type) {
	case *series.AnalogTimeSeries:
		src = NewAnalogAdapter(name, s, tf)
	case *series.DigitalEventSeries:
		src = NewEventAdapter(name, s, tf)
	case *series.DigitalIntervalSeries:
		src = NewIntervalAdapter(name, s, tf)
	case *series.PointData:
		src = NewPointDataAdapter(name, s, tf)
	case *series.LineData:
		src = NewLineDataAdapter(name, s, tf)
	case *series.MaskData:
		src = NewRaggedAdapter(name, KindMask, s, tf)
	case Source:
		src = s
	default:
		return nil, fmt.Errorf("%w: %q holds %T", errs.ErrSourceTypeMismatch, name, data)
	}

	e.mu.Lock()
	e.cache[name] = src
	e.mu.Unlock()

	return src, nil
}

func resolveAs[S Source](e *Extension, name string) (S, error) {
	var zero S
	src, err := e.Resolve(name)
	if err != nil {
		return zero, err
	}
	typed, ok := src.(S)
	if !ok {
		return zero, fmt.Errorf("%w: %q is a %s source", errs.ErrSourceTypeMismatch, name, src.Kind())
	}

	return typed, nil
}

// AnalogSource resolves name as an analog source.
func (e *Extension) AnalogSource(name string) (AnalogSource, error) {
	return resolveAs[AnalogSource](e, name)
}

// EventSource resolves name as an event source.
func (e *Extension) EventSource(name string) (EventSource, error) {
	return resolveAs[EventSource](e, name)
}

// IntervalSource resolves name as an interval source.
func (e *Extension) IntervalSource(name string) (IntervalSource, error) {
	return resolveAs[IntervalSource](e, name)
}

// RaggedSource resolves name as any ragged source.
func (e *Extension) RaggedSource(name string) (RaggedSource, error) {
	return resolveAs[RaggedSource](e, name)
}

// PointSource resolves name as a point source.
func (e *Extension) PointSource(name string) (PointSource, error) {
	return resolveAs[PointSource](e, name)
}

// LineSource resolves name as a line source.
func (e *Extension) LineSource(name string) (LineSource, error) {
	return resolveAs[LineSource](e, name)
}
