package intern

import (
	"sync"
	"testing"

	"github.com/arloliu/tsview/errs"
	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	require.Equal(t, xxhash.Sum64String("LFP"), Hash("LFP"))
	require.NotEqual(t, Hash("LFP"), Hash("Spikes"))
}

func TestInterner_Intern(t *testing.T) {
	in := New()

	id1, err := in.Intern("whisker_angle")
	require.NoError(t, err)
	require.Equal(t, ID(Hash("whisker_angle")), id1)

	id2, err := in.Intern("whisker_angle")
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	id3, err := in.Intern("trials")
	require.NoError(t, err)
	require.NotEqual(t, id1, id3)

	require.Equal(t, 2, in.Count())
	require.Equal(t, []string{"whisker_angle", "trials"}, in.Names())
	require.False(t, in.HasCollision())

	name, ok := in.Name(id3)
	require.True(t, ok)
	require.Equal(t, "trials", name)

	got, ok := in.Lookup("trials")
	require.True(t, ok)
	require.Equal(t, id3, got)

	_, ok = in.Lookup("missing")
	require.False(t, ok)
}

func TestInterner_EmptyName(t *testing.T) {
	in := New()
	_, err := in.Intern("")
	require.ErrorIs(t, err, errs.ErrInvalidSourceName)
	require.Equal(t, 0, in.Count())
}

func TestInterner_Collision(t *testing.T) {
	in := New()

	// Occupy the slot a name would hash to with a different name.
	target := ID(Hash("lines"))
	in.byID[target] = "squatter"
	in.byName["squatter"] = target
	in.names = append(in.names, "squatter")

	id, err := in.Intern("lines")
	require.NoError(t, err)
	require.Equal(t, target+1, id)
	require.True(t, in.HasCollision())

	name, ok := in.Name(id)
	require.True(t, ok)
	require.Equal(t, "lines", name)
}

func TestInterner_Reset(t *testing.T) {
	in := New()
	_, err := in.Intern("a")
	require.NoError(t, err)

	in.Reset()
	require.Equal(t, 0, in.Count())
	require.Empty(t, in.Names())
	_, ok := in.Lookup("a")
	require.False(t, ok)
}

func TestInterner_Concurrent(t *testing.T) {
	in := New()
	names := []string{"a", "b", "c", "d"}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, n := range names {
				if _, err := in.Intern(n); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, len(names), in.Count())
}
