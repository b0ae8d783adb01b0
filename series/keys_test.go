package series

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tsview/timeframe"
)

const (
	minIndex = timeframe.Index(math.MinInt64)
	maxIndex = timeframe.Index(math.MaxInt64)
)

func TestKeys_Bounds(t *testing.T) {
	dense := denseKeys{base: 10, n: 5} // 10..14
	sparse := sparseKeys{keys: idx(0, 10, 20, 30)}

	tests := []struct {
		name       string
		k          keys
		lo, hi     timeframe.Index
		start, end int
	}{
		{"dense inside", dense, 11, 13, 1, 4},
		{"dense covering", dense, 0, 100, 0, 5},
		{"dense below", dense, 0, 9, 0, 0},
		{"dense above", dense, 15, 20, 5, 5},
		{"dense inverted", dense, 13, 11, 0, 0},
		{"sparse exact", sparse, 10, 20, 1, 3},
		{"sparse approximate", sparse, 5, 25, 1, 3},
		{"sparse between", sparse, 11, 19, 2, 2},
		{"sparse inverted", sparse, 20, 10, 0, 0},
		{"empty dense", denseKeys{}, 0, 10, 0, 0},
		{"dense full range", dense, minIndex, maxIndex, 0, 5},
		{"dense negative base full range", denseKeys{base: -5, n: 3}, minIndex, maxIndex, 0, 3},
		{"dense from min", dense, minIndex, 12, 0, 3},
		{"dense to max", dense, 12, maxIndex, 2, 5},
		{"sparse full range", sparse, minIndex, maxIndex, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.k.Bounds(tt.lo, tt.hi)
			require.Equal(t, tt.start, start)
			require.Equal(t, tt.end, end)
		})
	}
}

func TestKeys_FindAndSub(t *testing.T) {
	dense := denseKeys{base: -5, n: 10}
	slot, ok := dense.Find(-3)
	require.True(t, ok)
	require.Equal(t, 2, slot)
	_, ok = dense.Find(5)
	require.False(t, ok)

	sub := dense.Sub(2, 4)
	require.Equal(t, 2, sub.Len())
	require.Equal(t, timeframe.Index(-3), sub.At(0))

	sparse := sparseKeys{keys: idx(1, 4, 9)}
	slot, ok = sparse.Find(9)
	require.True(t, ok)
	require.Equal(t, 2, slot)
	require.Equal(t, timeframe.Index(4), sparse.Sub(1, 3).At(0))

	require.Panics(t, func() { dense.At(10) })

	_, ok = dense.Find(minIndex)
	require.False(t, ok)
	_, ok = dense.Find(maxIndex)
	require.False(t, ok)
}

func TestFullRangeQueries(t *testing.T) {
	for _, base := range []timeframe.Index{0, 5, -5} {
		dense := NewDenseAnalog(base, []float32{1, 2, 3})
		require.Equal(t, []float32{1, 2, 3}, dense.ValuesInRange(minIndex, maxIndex), "base %d", base)
	}

	sparse, err := NewAnalog([]float32{1, 2, 3}, idx(0, 5, 9))
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3}, sparse.ValuesInRange(minIndex, maxIndex))

	intervals := NewIntervalSeries(ivs([2]int64{math.MinInt64, -10}, [2]int64{0, 4}, [2]int64{8, 9}))
	require.Equal(t, 3, intervals.CreateView(minIndex, maxIndex).Len())
	require.Equal(t, 1, intervals.CreateView(minIndex, minIndex).Len())
	require.Equal(t, 2, intervals.CreateView(0, maxIndex).Len())

	events := NewEventSeries(idx(-3, 0, 7))
	require.Equal(t, idx(-3, 0, 7), events.EventsInRange(minIndex, maxIndex))
}

func TestKeysFor(t *testing.T) {
	require.IsType(t, denseKeys{}, keysFor(idx(3, 4, 5)))
	require.IsType(t, sparseKeys{}, keysFor(idx(3, 5)))
	require.Equal(t, 0, keysFor(nil).Len())
}

func TestTimeIndexRange(t *testing.T) {
	r := TimeIndexRange{keys: denseKeys{base: 7, n: 3}}
	first, ok := r.First()
	require.True(t, ok)
	require.Equal(t, timeframe.Index(7), first)
	last, _ := r.Last()
	require.Equal(t, timeframe.Index(9), last)
	require.Equal(t, idx(7, 8, 9), r.Collect())

	var empty TimeIndexRange
	require.True(t, empty.Empty())
	_, ok = empty.First()
	require.False(t, ok)
}
