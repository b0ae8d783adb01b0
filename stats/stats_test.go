package stats

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/internal/options"
	"github.com/arloliu/tsview/series"
)

func TestExact(t *testing.T) {
	s := series.NewDenseAnalog(0, []float32{2, 4, 4, 4, 5, 5, 7, 9})

	require.InDelta(t, 5.0, Mean(s), 1e-9)
	require.Equal(t, 2.0, Min(s))
	require.Equal(t, 9.0, Max(s))
	require.InDelta(t, 2.0, StdDev(s), 1e-9)

	require.InDelta(t, 4.0, MeanInRange(s, 1, 3), 1e-9)
	require.Equal(t, 5.0, MinInRange(s, 4, 6))
	require.Equal(t, 7.0, MaxInRange(s, 4, 6))
	require.InDelta(t, 0.0, StdDevInRange(s, 1, 3), 1e-9)
	require.InDelta(t, 40.0, SumOf(s.Values()), 1e-9)
}

func TestSentinels(t *testing.T) {
	empty := series.NewDenseAnalog(0, nil)
	s := series.NewDenseAnalog(0, []float32{1, 2, 3})

	fns := map[string]func() float64{
		"mean":            func() float64 { return Mean(empty) },
		"min":             func() float64 { return Min(empty) },
		"max":             func() float64 { return Max(empty) },
		"stddev":          func() float64 { return StdDev(empty) },
		"mean range":      func() float64 { return MeanInRange(s, 10, 20) },
		"stddev inverted": func() float64 { return StdDevInRange(s, 2, 0) },
		"approx":          func() float64 { return StdDevApproximate(empty) },
		"adaptive":        func() float64 { return StdDevAdaptive(empty) },
	}
	for name, fn := range fns {
		t.Run(name, func(t *testing.T) {
			require.True(t, math.IsNaN(fn()))
		})
	}

	one := series.NewDenseAnalog(0, []float32{42})
	require.Equal(t, 0.0, StdDev(one))
}

func uniformSeries(n int, seed uint64) *series.AnalogTimeSeries {
	rng := rand.New(rand.NewPCG(seed, seed))
	values := make([]float32, n)
	for i := range values {
		values[i] = rng.Float32() * 100
	}

	return series.NewDenseAnalog(0, values)
}

func TestApproximate(t *testing.T) {
	s := uniformSeries(200_000, 1)
	exact := StdDev(s)

	t.Run("close to exact", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(7, 7))
		got := StdDevApproximate(s, WithPercentage(5), WithMinCount(100), WithRand(rng))
		require.InEpsilon(t, exact, got, 0.05)

		mean := MeanApproximate(s, WithPercentage(5), WithMinCount(100), WithRand(rng))
		require.InEpsilon(t, Mean(s), mean, 0.05)
	})

	t.Run("falls back to exact below threshold", func(t *testing.T) {
		got := StdDevApproximate(s, WithPercentage(0.1), WithMinCount(1000))
		require.Equal(t, exact, got)
	})

	t.Run("in range", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(3, 3))
		want := StdDevInRange(s, 10_000, 110_000)
		got := StdDevApproximateInRange(s, 10_000, 110_000, WithPercentage(10), WithMinCount(10), WithRand(rng))
		require.InEpsilon(t, want, got, 0.05)

		require.True(t, math.IsNaN(MeanApproximateInRange(s, 5, 1)))
	})

	t.Run("deterministic with seeded source", func(t *testing.T) {
		a := StdDevApproximate(s, WithPercentage(1), WithMinCount(1), WithRand(rand.New(rand.NewPCG(9, 9))))
		b := StdDevApproximate(s, WithPercentage(1), WithMinCount(1), WithRand(rand.New(rand.NewPCG(9, 9))))
		require.Equal(t, a, b)
	})
}

func captureDefaultLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	return &buf
}

func TestRejectedOptionsAreLogged(t *testing.T) {
	s := uniformSeries(5000, 4)

	t.Run("approximate", func(t *testing.T) {
		buf := captureDefaultLog(t)
		reject := options.New(func(*approxConfig) error { return errs.ErrInvalidParameter })

		got := StdDevApproximate(s, reject, WithPercentage(100), WithMinCount(1))
		require.InEpsilon(t, StdDev(s), got, 1e-6)
		require.Contains(t, buf.String(), "approximate statistics option rejected")
	})

	t.Run("adaptive", func(t *testing.T) {
		buf := captureDefaultLog(t)
		reject := options.New(func(*adaptiveConfig) error { return errs.ErrInvalidParameter })

		require.Equal(t, StdDev(s), StdDevAdaptive(s, reject))
		require.Contains(t, buf.String(), "adaptive statistics option rejected")
	})
}

func TestStdDevAdaptive(t *testing.T) {
	t.Run("exact when small", func(t *testing.T) {
		s := uniformSeries(5000, 2)
		require.Equal(t, StdDev(s), StdDevAdaptive(s))
	})

	t.Run("converges on large series", func(t *testing.T) {
		s := uniformSeries(500_000, 4)
		got := StdDevAdaptive(s,
			WithSampleSizes(500, 50_000),
			WithTolerance(0.01),
			WithAdaptiveRand(rand.New(rand.NewPCG(5, 5))),
		)
		require.InEpsilon(t, StdDev(s), got, 0.05)
	})

	t.Run("constant series", func(t *testing.T) {
		values := make([]float32, 20_000)
		for i := range values {
			values[i] = 3
		}
		s := series.NewDenseAnalog(0, values)
		require.Equal(t, 0.0, StdDevAdaptive(s, WithSampleSizes(10, 1000)))
	})
}

func TestSamplerDistinct(t *testing.T) {
	values := make([]float32, 100)
	for i := range values {
		values[i] = float32(i)
	}
	smp := sampler{rng: rand.New(rand.NewPCG(1, 2))}
	smp.sample(values, 100, func(picked []float32) float64 {
		require.Len(t, picked, 100)
		for i, v := range picked {
			require.Equal(t, float32(i), v)
		}

		return 0
	})
}
