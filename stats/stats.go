// Package stats computes summary statistics over analog series.
//
// Every function returns NaN for an empty series or an empty range. Results are accumulated in
// float64 regardless of the float32 storage.
package stats

import (
	"math"

	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/timeframe"
)

// MeanOf returns the arithmetic mean of values.
func MeanOf(values []float32) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}

	return sum / float64(len(values))
}

// MinOf returns the smallest of values.
func MinOf(values []float32) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	m := values[0]
	for _, v := range values[1:] {
		m = min(m, v)
	}

	return float64(m)
}

// MaxOf returns the largest of values.
func MaxOf(values []float32) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	m := values[0]
	for _, v := range values[1:] {
		m = max(m, v)
	}

	return float64(m)
}

// StdDevOf returns the population standard deviation of values. A single value yields 0.
func StdDevOf(values []float32) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	// Welford
	var mean, m2 float64
	for i, v := range values {
		x := float64(v)
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}

	return math.Sqrt(m2 / float64(len(values)))
}

// SumOf returns the sum of values, or 0 when empty.
func SumOf(values []float32) float64 {
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}

	return sum
}

// Mean returns the mean of every sample in s.
func Mean(s *series.AnalogTimeSeries) float64 {
	return MeanOf(s.Values())
}

// MeanInRange returns the mean of the samples with time in [lo, hi].
func MeanInRange(s *series.AnalogTimeSeries, lo, hi timeframe.Index) float64 {
	return MeanOf(s.ValuesInRange(lo, hi))
}

// Min returns the smallest sample in s.
func Min(s *series.AnalogTimeSeries) float64 {
	return MinOf(s.Values())
}

// MinInRange returns the smallest sample with time in [lo, hi].
func MinInRange(s *series.AnalogTimeSeries, lo, hi timeframe.Index) float64 {
	return MinOf(s.ValuesInRange(lo, hi))
}

// Max returns the largest sample in s.
func Max(s *series.AnalogTimeSeries) float64 {
	return MaxOf(s.Values())
}

// MaxInRange returns the largest sample with time in [lo, hi].
func MaxInRange(s *series.AnalogTimeSeries, lo, hi timeframe.Index) float64 {
	return MaxOf(s.ValuesInRange(lo, hi))
}

// StdDev returns the population standard deviation of s.
func StdDev(s *series.AnalogTimeSeries) float64 {
	return StdDevOf(s.Values())
}

// StdDevInRange returns the population standard deviation of the samples in [lo, hi].
func StdDevInRange(s *series.AnalogTimeSeries, lo, hi timeframe.Index) float64 {
	return StdDevOf(s.ValuesInRange(lo, hi))
}
