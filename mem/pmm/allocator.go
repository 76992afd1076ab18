package pmm

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/TheHostEagle/SO-FinalProyect/mem"
	"github.com/TheHostEagle/SO-FinalProyect/mem/refcount"
)

// Fill patterns written over a frame's contents. Distinct values on the two
// paths make it possible to tell, while debugging, whether garbage came from
// a fresh allocation (allocFill) or from a dangling reference to a recycled
// frame (freeFill).
const (
	allocFill = 0x05
	freeFill  = 0x01
)

// Allocator hands out fixed-size physical frames from a managed region and
// tracks per-frame ownership, so frames shared copy-on-write are recycled
// only when their last owner releases them.
//
// The ownership table and the free stack each guard their own state with
// their own lock; no Allocator operation ever holds both at once. See the
// package documentation for why that discipline matters.
type Allocator struct {
	region *mem.Region
	refs   *refcount.Table
	free   *frameStack
	log    *slog.Logger

	stats statCounters
}

// New builds an allocator over region and seeds the free list: every frame
// is force-charged to a single owner and then released through the normal
// recycle path, reusing the release logic instead of duplicating free-list
// insertion. Afterwards FreeFrames() == region.Frames().
func New(region *mem.Region, opts ...Option) *Allocator {
	a := &Allocator{
		region: region,
		refs:   refcount.NewTable(region.Frames()),
		free:   newFrameStack(region.Frames()),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	base := region.Start().Frame()
	for i := 0; i < region.Frames(); i++ {
		a.refs.ForceSet(i, 1)
		a.releaseOwner(base + mem.Frame(i))
	}
	return a
}

// Allocate hands out one frame with exactly one owner and returns its base
// address. It never blocks: an empty free list fails immediately with
// ErrOutOfMemory.
func (a *Allocator) Allocate() (mem.PhysAddr, error) {
	f, ok := a.free.pop()
	if !ok {
		a.stats.failedAllocs.Add(1)
		return 0, ErrOutOfMemory
	}
	buf := a.region.FrameBytes(f)
	for i := range buf {
		buf[i] = allocFill
	}
	// A fresh allocation has exactly one owner, whatever stale count the
	// frame carried before it was freed.
	a.refs.ForceSet(a.region.Index(f), 1)
	a.stats.allocCalls.Add(1)
	a.log.Info("available memory", "freeFrames", a.free.size())
	return f.Address(), nil
}

// Free releases the caller's ownership of the frame at pa. The frame is
// recycled only when no other owner remains; while owners remain its
// contents are left untouched. A misaligned address or one outside the
// managed range means caller-held state is corrupt, and Free panics rather
// than continue past it.
func (a *Allocator) Free(pa mem.PhysAddr) {
	if !pa.IsFrameAligned() || !a.region.Contains(pa) {
		panic(fmt.Sprintf("pmm: free of invalid address %#x (managed range [%#x, %#x))",
			uint64(pa), uint64(a.region.Start()), uint64(a.region.Top())))
	}
	a.stats.freeCalls.Add(1)
	if a.releaseOwner(pa.Frame()) {
		a.stats.recycled.Add(1)
	} else {
		a.stats.sharedReleases.Add(1)
	}
}

// IncrementOwner registers one more owner of an allocated frame. This is the
// hook address-space duplication uses to share a frame copy-on-write instead
// of copying its contents. The frame must currently have at least one owner.
func (a *Allocator) IncrementOwner(pa mem.PhysAddr) {
	a.refs.Increment(a.region.Index(pa.Frame()))
	a.stats.ownerIncrements.Add(1)
}

// releaseOwner drops one owner of f and recycles the frame when the last
// owner is gone, reporting whether it did. The table lock is released before
// the stack is touched; the two are never held together.
func (a *Allocator) releaseOwner(f mem.Frame) bool {
	if a.refs.Decrement(a.region.Index(f)) > 0 {
		return false
	}
	buf := a.region.FrameBytes(f)
	for i := range buf {
		buf[i] = freeFill
	}
	a.free.push(f)
	return true
}

// FreeFrames returns the number of frames currently in the free list.
func (a *Allocator) FreeFrames() int { return a.free.size() }

// Owners returns the current owner count of the frame at pa.
func (a *Allocator) Owners(pa mem.PhysAddr) int {
	return a.refs.Count(a.region.Index(pa.Frame()))
}

// Bytes exposes the contents of the frame at pa.
func (a *Allocator) Bytes(pa mem.PhysAddr) []byte {
	return a.region.FrameBytes(pa.Frame())
}

// Region returns the managed physical range.
func (a *Allocator) Region() *mem.Region { return a.region }

// Stats returns a snapshot of the cumulative allocator counters.
func (a *Allocator) Stats() Stats { return a.stats.snapshot() }
