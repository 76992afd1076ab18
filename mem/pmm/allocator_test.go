package pmm

import (
	"bytes"
	"log/slog"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TheHostEagle/SO-FinalProyect/mem"
)

const testBase = mem.PhysAddr(0x8000_0000)

func newTestAllocator(t *testing.T, frames int, opts ...Option) *Allocator {
	t.Helper()
	region, err := mem.NewRegion(testBase, frames)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, region.Close()) })
	return New(region, opts...)
}

func TestBootSeeding(t *testing.T) {
	const frames = 8
	a := newTestAllocator(t, frames)

	require.Equal(t, frames, a.FreeFrames())

	// Every seeded frame went through the normal recycle path, so it must
	// carry the release fill and zero owners.
	for i := 0; i < frames; i++ {
		pa := testBase + mem.PhysAddr(i*mem.FrameSize)
		require.Equal(t, 0, a.Owners(pa))
		for _, b := range a.Bytes(pa) {
			require.Equal(t, byte(freeFill), b)
		}
	}
}

func TestAllocateFreeRoundTrip(t *testing.T) {
	a := newTestAllocator(t, 4)
	before := a.FreeFrames()

	pa, err := a.Allocate()
	require.NoError(t, err)
	require.True(t, pa.IsFrameAligned())
	require.Equal(t, before-1, a.FreeFrames())
	require.Equal(t, 1, a.Owners(pa))

	a.Free(pa)
	require.Equal(t, before, a.FreeFrames())
	require.Equal(t, 0, a.Owners(pa))

	// The frame must be allocatable again.
	again, err := a.Allocate()
	require.NoError(t, err)
	require.Equal(t, pa, again, "LIFO recycling hands the frame straight back")
}

func TestFillPatterns(t *testing.T) {
	a := newTestAllocator(t, 2)

	pa, err := a.Allocate()
	require.NoError(t, err)
	for _, b := range a.Bytes(pa) {
		require.Equal(t, byte(allocFill), b)
	}

	a.Free(pa)
	for _, b := range a.Bytes(pa) {
		require.Equal(t, byte(freeFill), b)
	}
}

func TestSharedFrameNotRecycledUntilLastOwner(t *testing.T) {
	a := newTestAllocator(t, 4)
	start := a.FreeFrames()

	pa, err := a.Allocate()
	require.NoError(t, err)

	a.IncrementOwner(pa)
	a.IncrementOwner(pa)
	require.Equal(t, 3, a.Owners(pa))

	a.Free(pa)
	a.Free(pa)
	require.Equal(t, 1, a.Owners(pa), "frame still has an owner")
	require.Equal(t, start-1, a.FreeFrames(), "shared frame must stay off the free list")

	a.Free(pa)
	require.Equal(t, 0, a.Owners(pa))
	require.Equal(t, start, a.FreeFrames())
}

func TestSharedFrameContentsSurviveNonFinalFree(t *testing.T) {
	a := newTestAllocator(t, 2)

	pa, err := a.Allocate()
	require.NoError(t, err)
	a.IncrementOwner(pa)

	copy(a.Bytes(pa), []byte("still shared"))
	a.Free(pa)

	// One owner remains; the frame must not have been overwritten.
	require.Equal(t, []byte("still shared"), a.Bytes(pa)[:12])

	a.Free(pa)
	require.Equal(t, byte(freeFill), a.Bytes(pa)[0])
}

func TestExhaustion(t *testing.T) {
	const frames = 5
	a := newTestAllocator(t, frames)

	seen := make(map[mem.PhysAddr]bool)
	for i := 0; i < frames; i++ {
		pa, err := a.Allocate()
		require.NoError(t, err)
		require.False(t, seen[pa], "allocations must return distinct frames")
		seen[pa] = true
	}
	require.Equal(t, 0, a.FreeFrames())

	_, err := a.Allocate()
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Equal(t, 0, a.FreeFrames(), "failed allocation must not disturb the counter")

	// Failure is recoverable: freeing a frame makes allocation work again.
	for pa := range seen {
		a.Free(pa)
		break
	}
	_, err = a.Allocate()
	require.NoError(t, err)
}

// TestThreeFrameScenario walks the full lifecycle over a minimal range:
// drain the pool, fail, release, share, and recycle.
func TestThreeFrameScenario(t *testing.T) {
	a := newTestAllocator(t, 3)
	require.Equal(t, 3, a.FreeFrames())

	f1, err := a.Allocate()
	require.NoError(t, err)
	require.Equal(t, 2, a.FreeFrames())

	_, err = a.Allocate()
	require.NoError(t, err)
	require.Equal(t, 1, a.FreeFrames())

	_, err = a.Allocate()
	require.NoError(t, err)
	require.Equal(t, 0, a.FreeFrames())

	_, err = a.Allocate()
	require.ErrorIs(t, err, ErrOutOfMemory)

	a.Free(f1)
	require.Equal(t, 1, a.FreeFrames())

	f1, err = a.Allocate()
	require.NoError(t, err)
	require.Equal(t, 0, a.FreeFrames())

	a.IncrementOwner(f1)
	a.Free(f1)
	require.Equal(t, 0, a.FreeFrames(), "count 2 -> 1, frame stays allocated")
	require.Equal(t, 1, a.Owners(f1))

	a.Free(f1)
	require.Equal(t, 1, a.FreeFrames(), "count 1 -> 0, frame recycled")
}

func TestFreeInvalidAddressPanics(t *testing.T) {
	a := newTestAllocator(t, 2)

	require.Panics(t, func() { a.Free(testBase + 1) }, "misaligned address")
	require.Panics(t, func() { a.Free(testBase - mem.FrameSize) }, "below managed range")
	require.Panics(t, func() { a.Free(testBase + 2*mem.FrameSize) }, "at range top")
}

func TestDoubleFreePanics(t *testing.T) {
	a := newTestAllocator(t, 2)

	pa, err := a.Allocate()
	require.NoError(t, err)
	a.Free(pa)
	require.Panics(t, func() { a.Free(pa) })
}

func TestIncrementOwnerOnFreeFramePanics(t *testing.T) {
	a := newTestAllocator(t, 2)

	pa, err := a.Allocate()
	require.NoError(t, err)
	a.Free(pa)
	require.Panics(t, func() { a.IncrementOwner(pa) })
}

func TestAllocateEmitsPressureRecord(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	a := newTestAllocator(t, 3, WithLogger(log))

	_, err := a.Allocate()
	require.NoError(t, err)

	require.Contains(t, buf.String(), "available memory")
	require.Contains(t, buf.String(), "freeFrames=2")
}

func TestStats(t *testing.T) {
	a := newTestAllocator(t, 2)

	p1, err := a.Allocate()
	require.NoError(t, err)
	p2, err := a.Allocate()
	require.NoError(t, err)
	_, err = a.Allocate()
	require.ErrorIs(t, err, ErrOutOfMemory)

	a.IncrementOwner(p1)
	a.Free(p1) // shared release
	a.Free(p1) // recycle
	a.Free(p2) // recycle

	s := a.Stats()
	require.Equal(t, int64(2), s.AllocCalls)
	require.Equal(t, int64(1), s.FailedAllocs)
	require.Equal(t, int64(3), s.FreeCalls)
	require.Equal(t, int64(1), s.SharedReleases)
	require.Equal(t, int64(2), s.Recycled)
	require.Equal(t, int64(1), s.OwnerIncrements)
}

// TestConcurrentChurn hammers allocate/free from many goroutines and checks
// that every frame comes back. Run with -race to exercise the dual-lock
// paths.
func TestConcurrentChurn(t *testing.T) {
	const frames = 32
	const workers = 8
	const rounds = 500

	a := newTestAllocator(t, frames)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			held := make([]mem.PhysAddr, 0, frames)
			for i := 0; i < rounds; i++ {
				if len(held) == 0 || r.Intn(2) == 0 {
					pa, err := a.Allocate()
					if err == nil {
						held = append(held, pa)
					}
					continue
				}
				n := r.Intn(len(held))
				a.Free(held[n])
				held = append(held[:n], held[n+1:]...)
			}
			for _, pa := range held {
				a.Free(pa)
			}
		}(int64(w))
	}
	wg.Wait()

	require.Equal(t, frames, a.FreeFrames())
}

func BenchmarkAllocateFree(b *testing.B) {
	region, err := mem.NewRegion(testBase, 64)
	if err != nil {
		b.Fatal(err)
	}
	defer region.Close()
	a := New(region)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pa, err := a.Allocate()
		if err != nil {
			b.Fatal(err)
		}
		a.Free(pa)
	}
}
