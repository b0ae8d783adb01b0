// Package registry is the process-wide catalogue of named series and the timelines they are
// sampled on.
//
// Every stored series is associated with a time key naming one registered TimeFrame.
// Observers are notified after every change, outside the registry lock, so they may call back
// into the registry.
package registry

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/timeframe"
)

// DefaultTimeKey is the time key used when none is given.
const DefaultTimeKey = "time"

// ChangeKind describes what happened to a key.
type ChangeKind uint8

const (
	Added ChangeKind = iota + 1
	Replaced
	Removed
	TimeChanged
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Replaced:
		return "replaced"
	case Removed:
		return "removed"
	case TimeChanged:
		return "time_changed"
	default:
		return "unknown"
	}
}

// Change is delivered to observers.
type Change struct {
	Key  string
	Kind ChangeKind
}

// Observer receives change notifications.
type Observer func(Change)

// ObserverID identifies a registered observer.
type ObserverID int

type timeAware interface {
	SetTimeFrame(tf *timeframe.TimeFrame)
}

// Registry stores named series. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	data      map[string]any
	timeKeys  map[string]string
	times     map[string]*timeframe.TimeFrame
	observers map[ObserverID]Observer
	perKey    map[string]map[ObserverID]Observer
	nextID    ObserverID
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		data:      make(map[string]any),
		timeKeys:  make(map[string]string),
		times:     make(map[string]*timeframe.TimeFrame),
		observers: make(map[ObserverID]Observer),
		perKey:    make(map[string]map[ObserverID]Observer),
	}
}

// SetTime registers tf under key. Series already associated with key are moved onto tf.
func (r *Registry) SetTime(key string, tf *timeframe.TimeFrame) error {
	if key == "" {
		return fmt.Errorf("%w: time key", errs.ErrInvalidSourceName)
	}

	r.mu.Lock()
	r.times[key] = tf
	var affected []string
	for dataKey, timeKey := range r.timeKeys {
		if timeKey != key {
			continue
		}
		if ta, ok := r.data[dataKey].(timeAware); ok {
			ta.SetTimeFrame(tf)
		}
		affected = append(affected, dataKey)
	}
	r.mu.Unlock()

	slices.Sort(affected)
	for _, k := range affected {
		r.notify(Change{Key: k, Kind: TimeChanged})
	}

	return nil
}

// Time returns the TimeFrame registered under key.
func (r *Registry) Time(key string) (*timeframe.TimeFrame, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tf, ok := r.times[key]

	return tf, ok
}

// TimeKeys returns the registered time keys in sorted order.
func (r *Registry) TimeKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.times))
}

// Set stores data under key on the timeline named timeKey, replacing any previous entry.
// An empty timeKey means DefaultTimeKey. When the timeline is registered and data accepts a
// TimeFrame, the TimeFrame is attached to it.
func (r *Registry) Set(key string, data any, timeKey string) error {
	if key == "" {
		return errs.ErrInvalidSourceName
	}
	if data == nil {
		return fmt.Errorf("%w: %q", errs.ErrNilInput, key)
	}
	if timeKey == "" {
		timeKey = DefaultTimeKey
	}

	r.mu.Lock()
	_, existed := r.data[key]
	r.data[key] = data
	r.timeKeys[key] = timeKey
	if tf, ok := r.times[timeKey]; ok {
		if ta, ok := data.(timeAware); ok {
			ta.SetTimeFrame(tf)
		}
	}
	r.mu.Unlock()

	kind := Added
	if existed {
		kind = Replaced
	}
	r.notify(Change{Key: key, Kind: kind})

	return nil
}

// Lookup returns the untyped data stored under key.
func (r *Registry) Lookup(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.data[key]

	return v, ok
}

// Get returns the data stored under key as T.
func Get[T any](r *Registry, key string) (T, error) {
	var zero T
	v, ok := r.Lookup(key)
	if !ok {
		return zero, fmt.Errorf("%w: %q", errs.ErrSourceNotFound, key)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T, want %T", errs.ErrSourceTypeMismatch, key, v, zero)
	}

	return typed, nil
}

// KeysOf returns the sorted keys whose data is a T.
func KeysOf[T any](r *Registry) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for k, v := range r.data {
		if _, ok := v.(T); ok {
			out = append(out, k)
		}
	}
	slices.Sort(out)

	return out
}

// TimeKeyFor returns the time key of the data stored under key.
func (r *Registry) TimeKeyFor(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tk, ok := r.timeKeys[key]

	return tk, ok
}

// TimeFrameFor returns the TimeFrame of the data stored under key, or nil.
func (r *Registry) TimeFrameFor(key string) *timeframe.TimeFrame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.times[r.timeKeys[key]]
}

// Delete removes key and its per-key observers.
func (r *Registry) Delete(key string) bool {
	r.mu.Lock()
	_, ok := r.data[key]
	delete(r.data, key)
	delete(r.timeKeys, key)
	r.mu.Unlock()

	if ok {
		r.notify(Change{Key: key, Kind: Removed})
		r.mu.Lock()
		delete(r.perKey, key)
		r.mu.Unlock()
	}

	return ok
}

// Keys returns every data key in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.data))
}

// AddObserver registers fn for every change.
func (r *Registry) AddObserver(fn Observer) ObserverID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.observers[r.nextID] = fn

	return r.nextID
}

// AddKeyObserver registers fn for changes of a single key.
func (r *Registry) AddKeyObserver(key string, fn Observer) ObserverID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	if r.perKey[key] == nil {
		r.perKey[key] = make(map[ObserverID]Observer)
	}
	r.perKey[key][r.nextID] = fn

	return r.nextID
}

// RemoveObserver unregisters an observer added with AddObserver or AddKeyObserver.
func (r *Registry) RemoveObserver(id ObserverID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.observers[id]; ok {
		delete(r.observers, id)

		return true
	}
	for _, obs := range r.perKey {
		if _, ok := obs[id]; ok {
			delete(obs, id)

			return true
		}
	}

	return false
}

func (r *Registry) notify(c Change) {
	r.mu.RLock()
	ids := slices.Sorted(maps.Keys(r.observers))
	fns := make([]Observer, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, r.observers[id])
	}
	keyed := r.perKey[c.Key]
	for _, id := range slices.Sorted(maps.Keys(keyed)) {
		fns = append(fns, keyed[id])
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
