package series

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/internal/options"
	"github.com/arloliu/tsview/timeframe"
)

func ivs(pairs ...[2]int64) []timeframe.Interval {
	out := make([]timeframe.Interval, len(pairs))
	for i, p := range pairs {
		out[i] = timeframe.NewInterval(p[0], p[1])
	}

	return out
}

func TestInvertIntervals(t *testing.T) {
	input := ivs([2]int64{5, 10}, [2]int64{13, 20}, [2]int64{23, 40}, [2]int64{56, 70}, [2]int64{72, 91})

	tests := []struct {
		name   string
		input  []timeframe.Interval
		domain Domain
		want   []timeframe.Interval
	}{
		{
			name:   "unbounded",
			input:  input,
			domain: Unbounded(),
			want:   ivs([2]int64{10, 13}, [2]int64{20, 23}, [2]int64{40, 56}, [2]int64{70, 72}),
		},
		{
			name:   "bounded",
			input:  input,
			domain: Bounded(0, 100),
			want: ivs([2]int64{0, 5}, [2]int64{10, 13}, [2]int64{20, 23}, [2]int64{40, 56},
				[2]int64{70, 72}, [2]int64{91, 100}),
		},
		{
			name:   "empty bounded",
			domain: Bounded(0, 100),
			want:   ivs([2]int64{0, 100}),
		},
		{
			name:   "empty unbounded",
			domain: Unbounded(),
			want:   []timeframe.Interval{},
		},
		{
			name:   "touching intervals",
			input:  ivs([2]int64{5, 10}, [2]int64{10, 20}),
			domain: Unbounded(),
			want:   []timeframe.Interval{},
		},
		{
			name:   "unsorted input",
			input:  ivs([2]int64{13, 20}, [2]int64{5, 10}),
			domain: Unbounded(),
			want:   ivs([2]int64{10, 13}),
		},
		{
			name:   "overlapping input",
			input:  ivs([2]int64{0, 50}, [2]int64{10, 20}, [2]int64{60, 70}),
			domain: Unbounded(),
			want:   ivs([2]int64{50, 60}),
		},
		{
			name:   "bounds equal to edges",
			input:  ivs([2]int64{0, 10}, [2]int64{20, 100}),
			domain: Bounded(0, 100),
			want:   ivs([2]int64{10, 20}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, InvertIntervals(tt.input, tt.domain))
		})
	}
}

func TestInvertIntervals_DoubleInversion(t *testing.T) {
	input := ivs([2]int64{5, 10}, [2]int64{13, 20}, [2]int64{23, 40}, [2]int64{56, 70}, [2]int64{72, 91})
	once := InvertIntervals(input, Bounded(0, 100))
	twice := InvertIntervals(once, Bounded(0, 100))
	require.Equal(t, input, twice)
}

func TestInvertIntervals_Progress(t *testing.T) {
	input := ivs([2]int64{5, 10}, [2]int64{13, 20}, [2]int64{23, 40}, [2]int64{56, 70})
	var got []int
	InvertIntervals(input, Unbounded(), WithInvertProgress(func(p int) { got = append(got, p) }))
	require.Equal(t, []int{0, 10, 20, 40, 80, 100}, got)

	got = nil
	InvertIntervals(ivs([2]int64{1, 2}), Unbounded(), WithInvertProgress(func(p int) { got = append(got, p) }))
	require.Equal(t, []int{0, 10, 20, 40, 80, 100}, got)
}

func TestInvertIntervals_RejectedOptionIsLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	reject := options.New(func(*invertConfig) error { return errs.ErrInvalidParameter })
	var got []int
	out := InvertIntervals(ivs([2]int64{1, 2}, [2]int64{5, 6}), Unbounded(), reject,
		WithInvertProgress(func(p int) { got = append(got, p) }))

	require.Equal(t, ivs([2]int64{2, 5}), out)
	require.NotEmpty(t, got)
	require.Contains(t, buf.String(), "interval inversion option rejected")
}

func TestIntervalSeries_Construction(t *testing.T) {
	s := NewIntervalSeries(ivs([2]int64{20, 30}, [2]int64{9, 3}, [2]int64{1, 5}))
	require.Equal(t, ivs([2]int64{1, 5}, [2]int64{20, 30}), s.Intervals())

	b := IntervalsFromBool([]bool{false, true, true, false, true})
	require.Equal(t, ivs([2]int64{1, 2}, [2]int64{4, 4}), b.Intervals())
}

func TestIntervalSeries_AddInterval(t *testing.T) {
	s := NewIntervalSeries(ivs([2]int64{0, 5}, [2]int64{10, 15}, [2]int64{30, 40}))

	require.True(t, s.AddInterval(timeframe.NewInterval(4, 12)))
	require.Equal(t, ivs([2]int64{0, 15}, [2]int64{30, 40}), s.Intervals())

	require.True(t, s.AddInterval(timeframe.NewInterval(20, 25)))
	require.Equal(t, ivs([2]int64{0, 15}, [2]int64{20, 25}, [2]int64{30, 40}), s.Intervals())

	require.False(t, s.AddInterval(timeframe.NewInterval(9, 1)))
	require.Equal(t, 3, s.Len())
}

func TestIntervalSeries_SetEventAtTime(t *testing.T) {
	t.Run("on joins neighbours", func(t *testing.T) {
		s := NewIntervalSeries(ivs([2]int64{0, 4}, [2]int64{6, 9}))
		s.SetEventAtTime(5, true)
		require.Equal(t, ivs([2]int64{0, 9}), s.Intervals())
	})

	t.Run("on isolated", func(t *testing.T) {
		s := NewIntervalSeries(ivs([2]int64{0, 4}))
		s.SetEventAtTime(10, true)
		require.Equal(t, ivs([2]int64{0, 4}, [2]int64{10, 10}), s.Intervals())
	})

	t.Run("off splits", func(t *testing.T) {
		s := NewIntervalSeries(ivs([2]int64{0, 10}))
		s.SetEventAtTime(4, false)
		require.Equal(t, ivs([2]int64{0, 3}, [2]int64{5, 10}), s.Intervals())
		s.SetEventAtTime(0, false)
		require.Equal(t, ivs([2]int64{1, 3}, [2]int64{5, 10}), s.Intervals())
		require.False(t, s.HasEventAt(4))
		require.True(t, s.HasEventAt(7))
	})
}

func TestIntervalSeries_RangeModes(t *testing.T) {
	s := NewIntervalSeries(ivs([2]int64{0, 5}, [2]int64{10, 20}, [2]int64{18, 30}, [2]int64{40, 50}))

	require.Equal(t, ivs([2]int64{10, 20}), s.IntervalsInRange(8, 25, Contained))
	require.Equal(t, ivs([2]int64{10, 20}, [2]int64{18, 30}), s.IntervalsInRange(8, 25, Overlapping))
	require.Equal(t, ivs([2]int64{10, 20}, [2]int64{18, 25}), s.IntervalsInRange(8, 25, Clip))
	require.Equal(t, ivs([2]int64{0, 5}), s.IntervalsInRange(3, 7, Overlapping))
	require.Empty(t, s.IntervalsInRange(25, 8, Overlapping))
	require.Equal(t, "Clip", Clip.String())
}

func TestIntervalSeries_RemoveAndView(t *testing.T) {
	s := NewIntervalSeries(ivs([2]int64{0, 5}, [2]int64{10, 20}, [2]int64{30, 40}))

	view := s.CreateView(5, 30)
	require.Equal(t, ivs([2]int64{10, 20}, [2]int64{30, 40}), view.Intervals())
	require.Same(t, &s.Intervals()[1], &view.Intervals()[0])
	require.Same(t, s, view.Source())

	owned := view.Materialize()
	require.True(t, owned.RemoveInterval(timeframe.NewInterval(10, 20)))
	require.False(t, owned.RemoveInterval(timeframe.NewInterval(10, 20)))
	require.Equal(t, 3, s.Len())

	require.True(t, s.CreateView(41, 100).Empty())
	require.True(t, s.CreateView(30, 5).Empty())
}

func TestIntervalSeries_Invert(t *testing.T) {
	s := NewIntervalSeries(ivs([2]int64{5, 10}, [2]int64{20, 30}))
	tf := timeframe.NewUniform(100, 0, 1)
	s.SetTimeFrame(tf)

	inv := s.Invert(Bounded(0, 50))
	require.Equal(t, ivs([2]int64{0, 5}, [2]int64{10, 20}, [2]int64{30, 50}), inv.Intervals())
	require.Same(t, tf, inv.TimeFrame())
}
