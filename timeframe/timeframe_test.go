package timeframe

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexArithmetic(t *testing.T) {
	i := Index(10)
	require.Equal(t, Index(15), i.Add(5))
	require.Equal(t, Index(7), i.Add(-3))
	require.Equal(t, int64(4), i.Sub(Index(6)))
	require.Equal(t, int64(10), i.Value())
	require.Equal(t, "10", i.String())
	require.Less(t, Index(-1), Index(0))
}

func TestInterval(t *testing.T) {
	iv := NewInterval(5, 10)

	require.True(t, iv.Valid())
	require.True(t, iv.Contains(5))
	require.True(t, iv.Contains(10))
	require.False(t, iv.Contains(11))
	require.Equal(t, int64(5), iv.Duration())
	require.Equal(t, Index(7), iv.Center())
	require.Equal(t, "[5, 10]", iv.String())

	require.True(t, iv.Overlaps(NewInterval(10, 20)))
	require.False(t, iv.Overlaps(NewInterval(11, 20)))
	require.False(t, NewInterval(3, 1).Valid())

	clipped, ok := iv.Clip(7, 20)
	require.True(t, ok)
	require.Equal(t, NewInterval(7, 10), clipped)

	_, ok = iv.Clip(11, 20)
	require.False(t, ok)
}

func TestCompareIntervals(t *testing.T) {
	ivs := []Interval{NewInterval(5, 9), NewInterval(1, 4), NewInterval(5, 6)}
	slices.SortFunc(ivs, CompareIntervals)
	require.Equal(t, []Interval{NewInterval(1, 4), NewInterval(5, 6), NewInterval(5, 9)}, ivs)
}

func TestTimeFrame_IndexAt(t *testing.T) {
	tf := New([]int64{0, 10, 20, 30, 40})

	tests := []struct {
		name      string
		time      int64
		preceding bool
		want      Index
	}{
		{"exact", 20, false, 2},
		{"nearest lower", 24, false, 2},
		{"nearest upper", 26, false, 3},
		{"tie goes to earlier", 25, false, 2},
		{"preceding", 29, true, 2},
		{"before start", -5, false, 0},
		{"after end", 100, false, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tf.IndexAt(tt.time, tt.preceding))
		})
	}
}

func TestTimeFrame_TimeAt(t *testing.T) {
	tf := NewUniform(4, 100, 5)
	require.Equal(t, 4, tf.Len())
	require.Equal(t, int64(110), tf.TimeAt(2))
	require.Equal(t, int64(100), tf.TimeAt(-3))
	require.Equal(t, int64(115), tf.TimeAt(99))

	var empty *TimeFrame
	require.Equal(t, 0, empty.Len())
	require.Equal(t, int64(7), empty.TimeAt(7))
	require.Equal(t, Index(7), empty.IndexAt(7, false))
}

func TestNew_SortsAndCopies(t *testing.T) {
	in := []int64{30, 10, 20}
	tf := New(in)
	require.Equal(t, int64(10), tf.TimeAt(0))
	require.Equal(t, []int64{30, 10, 20}, in)
}

func TestConvertIndex(t *testing.T) {
	fast := NewUniform(100, 0, 1) // 1 tick per index
	slow := NewUniform(10, 0, 10) // 10 ticks per index

	require.Equal(t, Index(5), ConvertIndex(50, fast, slow))
	require.Equal(t, Index(50), ConvertIndex(5, slow, fast))
	require.Equal(t, Index(42), ConvertIndex(42, fast, fast))
	require.Equal(t, Index(42), ConvertIndex(42, nil, slow))
}

func TestConvertRange(t *testing.T) {
	fast := NewUniform(100, 0, 1)
	slow := NewUniform(10, 0, 10)

	t.Run("slow to fast covers every fast index", func(t *testing.T) {
		lo, hi := ConvertRange(2, 3, slow, fast)
		require.Equal(t, Index(20), lo)
		require.Equal(t, Index(30), hi)
	})

	t.Run("fast to slow keeps only indices inside", func(t *testing.T) {
		lo, hi := ConvertRange(15, 35, fast, slow)
		require.Equal(t, Index(2), lo)
		require.Equal(t, Index(3), hi)
	})

	t.Run("range between samples is inverted", func(t *testing.T) {
		lo, hi := ConvertRange(11, 19, fast, slow)
		require.Greater(t, lo, hi)
	})

	t.Run("same frame is identity", func(t *testing.T) {
		lo, hi := ConvertRange(3, 8, slow, slow)
		require.Equal(t, Index(3), lo)
		require.Equal(t, Index(8), hi)
	})
}
