package series

import (
	"slices"

	"github.com/arloliu/tsview/timeframe"
)

// CopyTo appends copies of the entities in [lo, hi] to dst and returns how many were copied.
// Copies receive new entity IDs.
func (s *RaggedSeries[T]) CopyTo(dst *RaggedSeries[T], lo, hi timeframe.Index) int {
	return s.CopyTimesTo(dst, s.Range(lo, hi).Times().Collect())
}

// CopyTimesTo appends copies of the entities at each listed time to dst. A time listed twice
// is copied twice.
func (s *RaggedSeries[T]) CopyTimesTo(dst *RaggedSeries[T], times []timeframe.Index) int {
	n := 0
	for _, t := range times {
		es := s.EntriesAt(t)
		cp := make([]Entry[T], len(es))
		for i, e := range es {
			cp[i] = Entry[T]{ID: NewEntityID(), Value: cloneValue(e.Value)}
		}
		dst.appendEntries(t, cp...)
		n += len(cp)
	}

	return n
}

// MoveTo moves the entities in [lo, hi] to dst and returns how many were moved.
// Moved entities keep their IDs.
func (s *RaggedSeries[T]) MoveTo(dst *RaggedSeries[T], lo, hi timeframe.Index) int {
	return s.MoveTimesTo(dst, s.Range(lo, hi).Times().Collect())
}

// MoveTimesTo moves the entities at each listed time to dst. Every listed time is appended to
// dst before the source times are cleared, so a time listed twice is moved twice.
func (s *RaggedSeries[T]) MoveTimesTo(dst *RaggedSeries[T], times []timeframe.Index) int {
	n := 0
	for _, t := range times {
		es := slices.Clone(s.EntriesAt(t))
		dst.appendEntries(t, es...)
		n += len(es)
	}
	for _, t := range times {
		s.ClearAtTime(t)
	}

	return n
}

// CopyEntities appends copies of the entities with the given IDs to dst at their original
// times. Unknown IDs are ignored.
func (s *RaggedSeries[T]) CopyEntities(dst *RaggedSeries[T], ids []EntityID) int {
	n := 0
	for _, id := range ids {
		t, i, ok := s.FindEntity(id)
		if !ok {
			continue
		}
		v, _ := s.EntityAt(t, i)
		dst.appendEntries(t, Entry[T]{ID: NewEntityID(), Value: cloneValue(v)})
		n++
	}

	return n
}

// MoveEntities moves the entities with the given IDs to dst, keeping their IDs.
// Unknown IDs are ignored.
func (s *RaggedSeries[T]) MoveEntities(dst *RaggedSeries[T], ids []EntityID) int {
	n := 0
	for _, id := range ids {
		t, i, ok := s.FindEntity(id)
		if !ok {
			continue
		}
		e := s.EntriesAt(t)[i]
		s.ClearAtTimeIndex(t, i)
		dst.appendEntries(t, e)
		n++
	}

	return n
}
