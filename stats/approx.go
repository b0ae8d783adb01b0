package stats

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/arloliu/tsview/internal/options"
	"github.com/arloliu/tsview/internal/pool"
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/timeframe"
)

const (
	// DefaultSamplePercentage is the share of a range sampled by approximate statistics, in percent.
	DefaultSamplePercentage = 0.1
	// DefaultMinSampleCount is the sample size below which approximate statistics fall back to
	// the exact computation.
	DefaultMinSampleCount = 1000

	// DefaultInitialSampleSize is the first sample size tried by adaptive statistics.
	DefaultInitialSampleSize = 100
	// DefaultMaxSampleSize caps the sample size of adaptive statistics.
	DefaultMaxSampleSize = 10000
	// DefaultTolerance is the relative change between successive adaptive estimates accepted as
	// converged.
	DefaultTolerance = 0.01
)

type approxConfig struct {
	percentage float64
	minCount   int
	rng        *rand.Rand
}

// ApproxOption configures the approximate statistics.
type ApproxOption = options.Option[*approxConfig]

// WithPercentage sets the sampled share of the range, in percent (0.1 means 0.1%).
func WithPercentage(p float64) ApproxOption {
	return options.NoError(func(c *approxConfig) {
		c.percentage = p
	})
}

// WithMinCount sets the sample size below which the exact computation is used.
func WithMinCount(n int) ApproxOption {
	return options.NoError(func(c *approxConfig) {
		c.minCount = n
	})
}

// WithRand sets the random source. It defaults to the math/rand/v2 global source.
func WithRand(r *rand.Rand) ApproxOption {
	return options.NoError(func(c *approxConfig) {
		c.rng = r
	})
}

func newApproxConfig(opts []ApproxOption) *approxConfig {
	cfg := &approxConfig{percentage: DefaultSamplePercentage, minCount: DefaultMinSampleCount}
	if err := options.ApplyAll(cfg, opts...); err != nil {
		slog.Default().Warn("approximate statistics option rejected", slog.Any("error", err))
	}

	return cfg
}

// sampler draws uniform random subsets without replacement.
type sampler struct {
	rng *rand.Rand
}

func (s sampler) intN(n int) int {
	if s.rng == nil {
		return rand.IntN(n)
	}

	return s.rng.IntN(n)
}

// sample calls fn with k values drawn from values without replacement, in storage order.
// The scratch buffers come from the pool and are released when fn returns.
func (s sampler) sample(values []float32, k int, fn func([]float32) float64) float64 {
	n := len(values)
	k = min(k, n)

	// Floyd's algorithm: k distinct indices in O(k).
	chosen := make(map[int]struct{}, k)
	for j := n - k; j < n; j++ {
		t := s.intN(j + 1)
		if _, dup := chosen[t]; dup {
			t = j
		}
		chosen[t] = struct{}{}
	}

	indices, releaseIdx := pool.GetIntSlice(k)
	defer releaseIdx()
	indices = indices[:0]
	for i := range chosen {
		indices = append(indices, i)
	}
	slices.Sort(indices)

	picked, releaseVals := pool.GetFloat32Slice(k)
	defer releaseVals()
	for i, at := range indices {
		picked[i] = values[at]
	}

	return fn(picked)
}

func approximate(values []float32, cfg *approxConfig, exact func([]float32) float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	k := int(float64(len(values)) * cfg.percentage / 100)
	if k < cfg.minCount || k >= len(values) {
		return exact(values)
	}

	return sampler{rng: cfg.rng}.sample(values, k, exact)
}

// MeanApproximate estimates the mean of s from a random sample.
func MeanApproximate(s *series.AnalogTimeSeries, opts ...ApproxOption) float64 {
	return approximate(s.Values(), newApproxConfig(opts), MeanOf)
}

// MeanApproximateInRange estimates the mean of the samples in [lo, hi].
func MeanApproximateInRange(s *series.AnalogTimeSeries, lo, hi timeframe.Index, opts ...ApproxOption) float64 {
	return approximate(s.ValuesInRange(lo, hi), newApproxConfig(opts), MeanOf)
}

// StdDevApproximate estimates the standard deviation of s from a random sample.
//
// When the sample would hold fewer than the minimum count, the exact value is returned.
func StdDevApproximate(s *series.AnalogTimeSeries, opts ...ApproxOption) float64 {
	return approximate(s.Values(), newApproxConfig(opts), StdDevOf)
}

// StdDevApproximateInRange estimates the standard deviation of the samples in [lo, hi].
func StdDevApproximateInRange(s *series.AnalogTimeSeries, lo, hi timeframe.Index, opts ...ApproxOption) float64 {
	return approximate(s.ValuesInRange(lo, hi), newApproxConfig(opts), StdDevOf)
}

type adaptiveConfig struct {
	initial   int
	maxSize   int
	tolerance float64
	rng       *rand.Rand
}

// AdaptiveOption configures StdDevAdaptive.
type AdaptiveOption = options.Option[*adaptiveConfig]

// WithSampleSizes sets the first and the largest sample size.
func WithSampleSizes(initial, maxSize int) AdaptiveOption {
	return options.NoError(func(c *adaptiveConfig) {
		c.initial = max(1, initial)
		c.maxSize = max(c.initial, maxSize)
	})
}

// WithTolerance sets the relative change accepted as converged.
func WithTolerance(tol float64) AdaptiveOption {
	return options.NoError(func(c *adaptiveConfig) {
		c.tolerance = tol
	})
}

// WithAdaptiveRand sets the random source.
func WithAdaptiveRand(r *rand.Rand) AdaptiveOption {
	return options.NoError(func(c *adaptiveConfig) {
		c.rng = r
	})
}

// StdDevAdaptive estimates the standard deviation of s, doubling the sample size until two
// successive estimates differ by less than the tolerance or the maximum size is reached.
// Series no larger than the maximum size are computed exactly.
func StdDevAdaptive(s *series.AnalogTimeSeries, opts ...AdaptiveOption) float64 {
	cfg := &adaptiveConfig{
		initial:   DefaultInitialSampleSize,
		maxSize:   DefaultMaxSampleSize,
		tolerance: DefaultTolerance,
	}
	if err := options.ApplyAll(cfg, opts...); err != nil {
		slog.Default().Warn("adaptive statistics option rejected", slog.Any("error", err))
	}

	values := s.Values()
	if len(values) <= cfg.maxSize {
		return StdDevOf(values)
	}

	smp := sampler{rng: cfg.rng}
	size := cfg.initial
	prev := smp.sample(values, size, StdDevOf)
	for size < cfg.maxSize {
		size = min(size*2, cfg.maxSize)
		cur := smp.sample(values, size, StdDevOf)
		if converged(prev, cur, cfg.tolerance) {
			return cur
		}
		prev = cur
	}

	return prev
}

func converged(prev, cur, tol float64) bool {
	if prev == 0 {
		return cur == 0
	}

	return math.Abs(cur-prev)/math.Abs(prev) < tol
}
