package series

import (
	"slices"

	"github.com/arloliu/tsview/timeframe"
)

// timeColumn is a time-keyed column of T: a key layout paired with a parallel data slice.
// Analog and ragged series both store their samples in one.
type timeColumn[T any] struct {
	keys keys
	data []T
}

func newTimeColumn[T any]() timeColumn[T] {
	return timeColumn[T]{keys: denseKeys{}}
}

// layout returns the key layout, treating a zero column as empty dense.
func (c *timeColumn[T]) layout() keys {
	if c.keys == nil {
		return denseKeys{}
	}

	return c.keys
}

func (c *timeColumn[T]) len() int {
	return len(c.data)
}

func (c *timeColumn[T]) dense() bool {
	_, ok := c.layout().(denseKeys)

	return ok
}

func (c *timeColumn[T]) find(t timeframe.Index) (int, bool) {
	return c.layout().Find(t)
}

func (c *timeColumn[T]) bounds(lo, hi timeframe.Index) (int, int) {
	return c.layout().Bounds(lo, hi)
}

// sub returns slots [start, end) sharing the column's memory. The data slice is capped so
// appends by a holder never write into the column.
func (c *timeColumn[T]) sub(start, end int) timeColumn[T] {
	return timeColumn[T]{keys: c.layout().Sub(start, end), data: c.data[start:end:end]}
}

// upsert returns the slot for t, inserting a zero value if t is not stored yet.
// A dense layout stays dense while t extends it at the end; any other insertion converts it
// to sparse.
func (c *timeColumn[T]) upsert(t timeframe.Index) int {
	c.keys = c.layout()
	if slot, ok := c.keys.Find(t); ok {
		return slot
	}

	var zero T
	if d, ok := c.keys.(denseKeys); ok {
		switch {
		case d.n == 0:
			c.keys = denseKeys{base: t, n: 1}
			c.data = append(c.data[:0], zero)

			return 0
		case t == d.base.Add(int64(d.n)):
			c.keys = denseKeys{base: d.base, n: d.n + 1}
			c.data = append(c.data, zero)

			return d.n
		}
		c.toSparse()
	}

	sk := c.keys.(sparseKeys)
	slot, _ := slices.BinarySearch(sk.keys, t)
	c.keys = sparseKeys{keys: slices.Insert(sk.keys, slot, t)}
	c.data = slices.Insert(c.data, slot, zero)

	return slot
}

// remove deletes the sample at t.
func (c *timeColumn[T]) remove(t timeframe.Index) bool {
	c.keys = c.layout()
	slot, ok := c.keys.Find(t)
	if !ok {
		return false
	}

	if d, ok := c.keys.(denseKeys); ok {
		switch slot {
		case d.n - 1:
			c.keys = denseKeys{base: d.base, n: d.n - 1}
			c.data = c.data[:slot]

			return true
		case 0:
			c.keys = denseKeys{base: d.base + 1, n: d.n - 1}
			c.data = c.data[1:]

			return true
		}
		c.toSparse()
	}

	sk := c.keys.(sparseKeys)
	ks := slices.Delete(sk.keys, slot, slot+1)
	c.data = slices.Delete(c.data, slot, slot+1)
	if len(ks) == 0 {
		c.keys = denseKeys{}
	} else {
		c.keys = sparseKeys{keys: ks}
	}

	return true
}

func (c *timeColumn[T]) toSparse() {
	d := c.keys.(denseKeys)
	ks := make([]timeframe.Index, d.n)
	for i := range ks {
		ks[i] = d.base.Add(int64(i))
	}
	c.keys = sparseKeys{keys: ks}
}

// clone copies keys and data; elements are copied with cloneValue.
func (c *timeColumn[T]) clone() timeColumn[T] {
	out := timeColumn[T]{keys: c.layout(), data: make([]T, len(c.data))}
	if sk, ok := c.keys.(sparseKeys); ok {
		out.keys = sparseKeys{keys: slices.Clone(sk.keys)}
	}
	for i, v := range c.data {
		out.data[i] = cloneValue(v)
	}

	return out
}

// cloneValue returns a deep copy of v when its type knows how to clone itself.
func cloneValue[T any](v T) T {
	if c, ok := any(v).(interface{ Clone() T }); ok {
		return c.Clone()
	}

	return v
}
