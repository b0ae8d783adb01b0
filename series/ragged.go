package series

import (
	"iter"
	"maps"
	"slices"

	"github.com/arloliu/tsview/timeframe"
)

// Entry is one entity stored in a ragged series.
type Entry[T any] struct {
	ID    EntityID
	Value T
}

// RaggedSeries holds zero or more entities per time index, each tagged with an EntityID.
//
// Times without entities are not stored. Unlike the analog series, range extraction produces
// owned copies (CreateTimeRangeCopy) rather than views.
type RaggedSeries[T any] struct {
	col       timeColumn[[]Entry[T]]
	tf        *timeframe.TimeFrame
	imageSize ImageSize
}

type (
	// PointData stores tracked points.
	PointData = RaggedSeries[Point2D]
	// LineData stores tracked polylines.
	LineData = RaggedSeries[Line2D]
	// MaskData stores pixel masks.
	MaskData = RaggedSeries[Mask2D]
)

// NewRagged creates an empty ragged series.
func NewRagged[T any]() *RaggedSeries[T] {
	return &RaggedSeries[T]{col: newTimeColumn[[]Entry[T]]()}
}

// NewPointData creates an empty point series.
func NewPointData() *PointData { return NewRagged[Point2D]() }

// NewLineData creates an empty line series.
func NewLineData() *LineData { return NewRagged[Line2D]() }

// NewMaskData creates an empty mask series.
func NewMaskData() *MaskData { return NewRagged[Mask2D]() }

// NewRaggedFromMap creates a series from a time to values map, assigning fresh entity IDs in
// time order. Empty value lists are skipped.
func NewRaggedFromMap[T any](m map[timeframe.Index][]T) *RaggedSeries[T] {
	s := NewRagged[T]()
	for _, t := range slices.Sorted(maps.Keys(m)) {
		for _, v := range m[t] {
			s.AddAtTime(t, v)
		}
	}

	return s
}

// AddAtTime appends v at t, keeping any entities already there, and returns its new ID.
func (s *RaggedSeries[T]) AddAtTime(t timeframe.Index, v T) EntityID {
	id := NewEntityID()
	s.appendEntries(t, Entry[T]{ID: id, Value: v})

	return id
}

func (s *RaggedSeries[T]) appendEntries(t timeframe.Index, es ...Entry[T]) {
	if len(es) == 0 {
		return
	}
	slot := s.col.upsert(t)
	s.col.data[slot] = append(s.col.data[slot], es...)
}

// OverwriteAtTime replaces every entity at t with vs and returns the new IDs.
// Passing no values clears t.
func (s *RaggedSeries[T]) OverwriteAtTime(t timeframe.Index, vs ...T) []EntityID {
	s.ClearAtTime(t)
	ids := make([]EntityID, len(vs))
	for i, v := range vs {
		ids[i] = s.AddAtTime(t, v)
	}

	return ids
}

// OverwriteAtTimeIndex replaces the value of the i-th entity at t, keeping its ID.
func (s *RaggedSeries[T]) OverwriteAtTimeIndex(t timeframe.Index, i int, v T) bool {
	slot, ok := s.col.find(t)
	if !ok || i < 0 || i >= len(s.col.data[slot]) {
		return false
	}
	s.col.data[slot][i].Value = v

	return true
}

// ClearAtTime removes every entity at t.
func (s *RaggedSeries[T]) ClearAtTime(t timeframe.Index) bool {
	return s.col.remove(t)
}

// ClearAtTimeIndex removes the i-th entity at t. Removing the last entity removes t.
func (s *RaggedSeries[T]) ClearAtTimeIndex(t timeframe.Index, i int) bool {
	slot, ok := s.col.find(t)
	if !ok || i < 0 || i >= len(s.col.data[slot]) {
		return false
	}
	if len(s.col.data[slot]) == 1 {
		return s.col.remove(t)
	}
	s.col.data[slot] = slices.Delete(s.col.data[slot], i, i+1)

	return true
}

// Len returns the number of time indices holding at least one entity.
func (s *RaggedSeries[T]) Len() int {
	if s == nil {
		return 0
	}

	return s.col.len()
}

// TotalEntities returns the number of entities across all times.
func (s *RaggedSeries[T]) TotalEntities() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, es := range s.col.data {
		n += len(es)
	}

	return n
}

// Times returns the time indices holding entities.
func (s *RaggedSeries[T]) Times() TimeIndexRange {
	if s == nil {
		return TimeIndexRange{}
	}

	return TimeIndexRange{keys: s.col.layout()}
}

// At returns the time and entities of slot i without copying.
func (s *RaggedSeries[T]) At(i int) (timeframe.Index, []Entry[T]) {
	es := s.col.data[i]

	return s.col.layout().At(i), es[:len(es):len(es)]
}

// EntriesAt returns the entities at t without copying.
func (s *RaggedSeries[T]) EntriesAt(t timeframe.Index) []Entry[T] {
	if s == nil {
		return nil
	}
	slot, ok := s.col.find(t)
	if !ok {
		return nil
	}
	es := s.col.data[slot]

	return es[:len(es):len(es)]
}

// ValuesAt returns a copy of the entity values at t.
func (s *RaggedSeries[T]) ValuesAt(t timeframe.Index) []T {
	es := s.EntriesAt(t)
	out := make([]T, len(es))
	for i, e := range es {
		out[i] = e.Value
	}

	return out
}

// EntityCountAt returns the number of entities at t.
func (s *RaggedSeries[T]) EntityCountAt(t timeframe.Index) int {
	return len(s.EntriesAt(t))
}

// EntityAt returns the value of the i-th entity at t.
func (s *RaggedSeries[T]) EntityAt(t timeframe.Index, i int) (T, bool) {
	es := s.EntriesAt(t)
	if i < 0 || i >= len(es) {
		var zero T

		return zero, false
	}

	return es[i].Value, true
}

// EntityIDAt returns the ID of the i-th entity at t.
func (s *RaggedSeries[T]) EntityIDAt(t timeframe.Index, i int) (EntityID, bool) {
	es := s.EntriesAt(t)
	if i < 0 || i >= len(es) {
		return 0, false
	}

	return es[i].ID, true
}

// FindEntity returns the time and position of the entity with the given ID.
func (s *RaggedSeries[T]) FindEntity(id EntityID) (timeframe.Index, int, bool) {
	for slot, es := range s.col.data {
		for i, e := range es {
			if e.ID == id {
				return s.col.layout().At(slot), i, true
			}
		}
	}

	return 0, 0, false
}

// HasMultiSamples reports whether any time holds more than one entity.
func (s *RaggedSeries[T]) HasMultiSamples() bool {
	if s == nil {
		return false
	}
	for _, es := range s.col.data {
		if len(es) > 1 {
			return true
		}
	}

	return false
}

// All iterates times and their entities in time order.
func (s *RaggedSeries[T]) All() iter.Seq2[timeframe.Index, []Entry[T]] {
	return RaggedRange[T]{col: s.col}.All()
}

// Range returns the times in [lo, hi] and their entities as a lazy range over the series'
// storage.
func (s *RaggedSeries[T]) Range(lo, hi timeframe.Index) RaggedRange[T] {
	if s == nil {
		return RaggedRange[T]{}
	}
	start, end := s.col.bounds(lo, hi)

	return RaggedRange[T]{col: s.col.sub(start, end)}
}

// CreateTimeRangeCopy returns an independent series holding the entities in [lo, hi].
// Entities keep their IDs; values are deep-copied.
func (s *RaggedSeries[T]) CreateTimeRangeCopy(lo, hi timeframe.Index) *RaggedSeries[T] {
	out := NewRagged[T]()
	if s == nil {
		return out
	}
	out.tf = s.tf
	out.imageSize = s.imageSize
	for t, es := range s.Range(lo, hi).All() {
		cp := make([]Entry[T], len(es))
		for i, e := range es {
			cp[i] = Entry[T]{ID: e.ID, Value: cloneValue(e.Value)}
		}
		out.appendEntries(t, cp...)
	}

	return out
}

// ImageSize returns the image extent of the geometry.
func (s *RaggedSeries[T]) ImageSize() ImageSize {
	return s.imageSize
}

// SetImageSize sets the image extent of the geometry.
func (s *RaggedSeries[T]) SetImageSize(size ImageSize) {
	s.imageSize = size
}

// SetTimeFrame associates the series with a timeline.
func (s *RaggedSeries[T]) SetTimeFrame(tf *timeframe.TimeFrame) {
	s.tf = tf
}

// TimeFrame returns the associated timeline, or nil.
func (s *RaggedSeries[T]) TimeFrame() *timeframe.TimeFrame {
	if s == nil {
		return nil
	}

	return s.tf
}

// RaggedRange is a lazy, restartable view over consecutive times of a ragged series.
type RaggedRange[T any] struct {
	col timeColumn[[]Entry[T]]
}

// Len returns the number of times in O(1).
func (r RaggedRange[T]) Len() int {
	return len(r.col.data)
}

// Empty reports whether the range holds no times.
func (r RaggedRange[T]) Empty() bool {
	return r.Len() == 0
}

// Times returns the time indices.
func (r RaggedRange[T]) Times() TimeIndexRange {
	return TimeIndexRange{keys: r.col.keys}
}

// EntityCount returns the number of entities. It walks every time in the range.
func (r RaggedRange[T]) EntityCount() int {
	n := 0
	for _, es := range r.col.data {
		n += len(es)
	}

	return n
}

// All iterates times and their entities.
func (r RaggedRange[T]) All() iter.Seq2[timeframe.Index, []Entry[T]] {
	return func(yield func(timeframe.Index, []Entry[T]) bool) {
		for i, es := range r.col.data {
			if !yield(r.col.layout().At(i), es[:len(es):len(es)]) {
				return
			}
		}
	}
}

// Entities iterates every entity with its time, flattened.
func (r RaggedRange[T]) Entities() iter.Seq2[timeframe.Index, Entry[T]] {
	return func(yield func(timeframe.Index, Entry[T]) bool) {
		for t, es := range r.All() {
			for _, e := range es {
				if !yield(t, e) {
					return
				}
			}
		}
	}
}
