package refcount

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOwnerLifecycle(t *testing.T) {
	tbl := NewTable(4)
	require.Equal(t, 4, tbl.Len())
	require.Equal(t, 0, tbl.Count(2))

	tbl.ForceSet(2, 1)
	require.Equal(t, 1, tbl.Count(2))

	tbl.Increment(2)
	tbl.Increment(2)
	require.Equal(t, 3, tbl.Count(2))

	require.Equal(t, 2, tbl.Decrement(2))
	require.Equal(t, 1, tbl.Decrement(2))
	require.Equal(t, 0, tbl.Decrement(2))
	require.Equal(t, 0, tbl.Count(2))
}

func TestForceSetOverwritesStaleCount(t *testing.T) {
	tbl := NewTable(1)
	tbl.ForceSet(0, 7)
	require.Equal(t, 7, tbl.Count(0))
	tbl.ForceSet(0, 1)
	require.Equal(t, 1, tbl.Count(0))
}

func TestDoubleFreePanics(t *testing.T) {
	tbl := NewTable(1)
	tbl.ForceSet(0, 1)
	require.Equal(t, 0, tbl.Decrement(0))
	require.Panics(t, func() { tbl.Decrement(0) })
}

func TestIncrementOnFreeFramePanics(t *testing.T) {
	tbl := NewTable(1)
	require.Panics(t, func() { tbl.Increment(0) })
}

func TestOutOfRangeIndexPanics(t *testing.T) {
	tbl := NewTable(2)
	require.Panics(t, func() { tbl.Count(-1) })
	require.Panics(t, func() { tbl.Count(2) })
	require.Panics(t, func() { tbl.ForceSet(5, 1) })
}

func TestConcurrentIncrementDecrement(t *testing.T) {
	const workers = 8
	const rounds = 1000

	tbl := NewTable(1)
	tbl.ForceSet(0, 1)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				tbl.Increment(0)
				tbl.Decrement(0)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, tbl.Count(0))
}
