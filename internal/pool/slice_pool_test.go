package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetIntSlice(t *testing.T) {
	t.Run("returns slice with requested length", func(t *testing.T) {
		s, release := GetIntSlice(128)
		defer release()

		require.Len(t, s, 128)
		require.GreaterOrEqual(t, cap(s), 128)
	})

	t.Run("grows when pooled capacity is insufficient", func(t *testing.T) {
		_, release := GetIntSlice(4)
		release()

		s, release2 := GetIntSlice(4096)
		defer release2()
		require.Len(t, s, 4096)
	})

	t.Run("negative size yields empty slice", func(t *testing.T) {
		s, release := GetIntSlice(-3)
		defer release()
		require.Empty(t, s)
	})

	t.Run("slice is writable", func(t *testing.T) {
		s, release := GetIntSlice(10)
		defer release()
		for i := range s {
			s[i] = i * 2
		}
		require.Equal(t, 18, s[9])
	})
}

func TestGetFloat32Slice(t *testing.T) {
	s, release := GetFloat32Slice(64)
	require.Len(t, s, 64)
	s[63] = 1.5
	require.InDelta(t, 1.5, s[63], 0)
	release()

	s2, release2 := GetFloat32Slice(0)
	defer release2()
	require.Empty(t, s2)
}
