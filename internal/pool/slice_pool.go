// Package pool provides pooled scratch slices for hot paths that need temporary buffers,
// such as drawing random sample indices for approximate statistics.
package pool

import "sync"

var (
	intSlicePool = sync.Pool{
		New: func() any { return &[]int{} },
	}
	float32SlicePool = sync.Pool{
		New: func() any { return &[]float32{} },
	}
)

// GetIntSlice retrieves an int slice of exactly size elements from the pool.
//
// The contents of the returned slice are unspecified. The caller must invoke the returned
// cleanup function (typically with defer) once the slice is no longer referenced.
//
// Example:
//
//	idx, release := pool.GetIntSlice(n)
//	defer release()
func GetIntSlice(size int) ([]int, func()) {
	ptr, _ := intSlicePool.Get().(*[]int)
	*ptr = resize(*ptr, size)

	return *ptr, func() { intSlicePool.Put(ptr) }
}

// GetFloat32Slice retrieves a float32 slice of exactly size elements from the pool.
//
// The contents of the returned slice are unspecified. The caller must invoke the returned
// cleanup function once the slice is no longer referenced.
func GetFloat32Slice(size int) ([]float32, func()) {
	ptr, _ := float32SlicePool.Get().(*[]float32)
	*ptr = resize(*ptr, size)

	return *ptr, func() { float32SlicePool.Put(ptr) }
}

func resize[T any](s []T, size int) []T {
	if size < 0 {
		size = 0
	}
	if cap(s) < size {
		return make([]T, size)
	}

	return s[:size]
}
