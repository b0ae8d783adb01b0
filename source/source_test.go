package source

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/registry"
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/timeframe"
)

func TestAnalogAdapter(t *testing.T) {
	s := series.NewDenseAnalog(0, []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	slow := timeframe.NewUniform(10, 0, 10)
	fast := timeframe.NewUniform(100, 0, 1)

	a := NewAnalogAdapter("lfp", s, slow)
	require.Equal(t, "lfp", a.Name())
	require.Equal(t, KindAnalog, a.Kind())
	require.Same(t, slow, a.TimeFrame())
	require.Equal(t, 10, a.Len())

	require.Equal(t, []float32{2, 3}, a.DataInRange(2, 3, nil))
	require.Equal(t, []float32{2, 3, 4}, a.DataInRange(15, 45, fast))

	v, ok := a.ValueAt(41, fast)
	require.True(t, ok)
	require.Equal(t, float32(4), v)
}

func TestEventAndIntervalAdapters(t *testing.T) {
	ev := NewEventAdapter("licks", series.NewEventSeries([]timeframe.Index{1, 5, 9}), nil)
	require.Equal(t, []timeframe.Index{5, 9}, ev.EventsInRange(4, 10, nil))
	require.Equal(t, 3, ev.Len())

	iv := NewIntervalAdapter("trials", series.NewIntervalSeries([]timeframe.Interval{
		timeframe.NewInterval(0, 10), timeframe.NewInterval(20, 30),
	}), nil)
	require.Equal(t, KindInterval, iv.Kind())
	require.Equal(t, []timeframe.Interval{timeframe.NewInterval(20, 25)}, iv.IntervalsInRange(15, 25, nil, series.Clip))
	require.Len(t, iv.Intervals(), 2)
}

func TestPointDataAdapter(t *testing.T) {
	pts := series.NewPointData()
	pts.AddAtTime(1, series.Point2D{X: 1})
	id := pts.AddAtTime(1, series.Point2D{X: 2})
	pts.AddAtTime(3, series.Point2D{X: 3})

	a := NewPointDataAdapter("nose", pts, nil)
	require.Equal(t, KindPoint, a.Kind())
	require.True(t, a.Kind().IsRagged())
	require.Equal(t, 3, a.TotalEntities())
	require.True(t, a.HasMultiSamples())
	require.Equal(t, 2, a.EntityCountAt(1, nil))
	require.Equal(t, 0, a.EntityCountAt(2, nil))

	got, ok := a.EntityIDAt(1, 1, nil)
	require.True(t, ok)
	require.Equal(t, id, got)

	p, ok := a.PointAt(3, 0, nil)
	require.True(t, ok)
	require.Equal(t, float32(3), p.X)

	require.Len(t, a.Points(), 3)
	require.Equal(t, []series.Point2D{{X: 3}}, a.PointsInRange(2, 5, nil))
}

func TestLineDataAdapter(t *testing.T) {
	lines := series.NewLineData()
	lines.AddAtTime(4, series.Line2D{{X: 0}, {X: 1}})

	a := NewLineDataAdapter("whisker", lines, nil)
	require.False(t, a.HasMultiSamples())
	l, ok := a.LineAt(4, 0, nil)
	require.True(t, ok)
	require.Len(t, l, 2)
	require.Len(t, a.Lines(), 1)
	require.Empty(t, a.LinesInRange(5, 9, nil))
}

func TestExtension(t *testing.T) {
	reg := registry.New()
	cam := timeframe.NewUniform(100, 0, 33)
	require.NoError(t, reg.SetTime("camera", cam))
	require.NoError(t, reg.Set("lfp", series.NewDenseAnalog(0, []float32{1, 2}), ""))
	require.NoError(t, reg.Set("whisker", series.NewLineData(), "camera"))
	require.NoError(t, reg.Set("mask", series.NewMaskData(), "camera"))
	require.NoError(t, reg.Set("bogus", 42, ""))

	ext, err := NewExtension(reg)
	require.NoError(t, err)
	defer ext.Close()

	lfp, err := ext.AnalogSource("lfp")
	require.NoError(t, err)
	require.Equal(t, 2, lfp.Len())

	again, err := ext.AnalogSource("lfp")
	require.NoError(t, err)
	require.Same(t, lfp, again)

	line, err := ext.LineSource("whisker")
	require.NoError(t, err)
	require.Same(t, cam, line.TimeFrame())

	mask, err := ext.RaggedSource("mask")
	require.NoError(t, err)
	require.Equal(t, KindMask, mask.Kind())

	_, err = ext.PointSource("whisker")
	require.ErrorIs(t, err, errs.ErrSourceTypeMismatch)
	_, err = ext.Resolve("bogus")
	require.ErrorIs(t, err, errs.ErrSourceTypeMismatch)
	_, err = ext.Resolve("nope")
	require.ErrorIs(t, err, errs.ErrSourceNotFound)

	t.Run("registry change invalidates cache", func(t *testing.T) {
		require.NoError(t, reg.Set("lfp", series.NewDenseAnalog(0, []float32{1, 2, 3}), ""))
		fresh, err := ext.AnalogSource("lfp")
		require.NoError(t, err)
		require.NotSame(t, lfp, fresh)
		require.Equal(t, 3, fresh.Len())
	})

	t.Run("registered sources shadow the registry", func(t *testing.T) {
		custom := NewAnalogAdapter("lfp", series.NewDenseAnalog(0, nil), nil)
		require.NoError(t, ext.Register(custom))
		got, err := ext.Resolve("lfp")
		require.NoError(t, err)
		require.Same(t, custom, got)
		require.ErrorIs(t, ext.Register(nil), errs.ErrNilInput)
	})

	_, err = NewExtension(nil)
	require.ErrorIs(t, err, errs.ErrNilInput)
}
