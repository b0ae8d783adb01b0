package series

import (
	"testing"

	"github.com/arloliu/tsview/timeframe"
)

func BenchmarkAnalog_ValuesInRange(b *testing.B) {
	const n = 1_000_000
	values := make([]float32, n)
	times := make([]timeframe.Index, n)
	for i := range values {
		values[i] = float32(i)
		times[i] = timeframe.Index(i * 3)
	}
	dense := NewDenseAnalog(0, values)
	sparse, err := NewAnalog(values, times)
	if err != nil {
		b.Fatal(err)
	}

	b.Run("dense", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = dense.ValuesInRange(250_000, 750_000)
		}
	})

	b.Run("sparse", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_ = sparse.ValuesInRange(750_000, 2_250_000)
		}
	})
}

func BenchmarkInvertIntervals(b *testing.B) {
	ivs := make([]timeframe.Interval, 10_000)
	for i := range ivs {
		ivs[i] = timeframe.NewInterval(int64(i*10), int64(i*10+5))
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = InvertIntervals(ivs, Bounded(0, 200_000))
	}
}
