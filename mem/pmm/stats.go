package pmm

import "sync/atomic"

// Stats holds cumulative allocator counters for instrumentation.
type Stats struct {
	AllocCalls      int64 // successful Allocate calls
	FailedAllocs    int64 // Allocate calls that found no free frame
	FreeCalls       int64 // Free calls
	SharedReleases  int64 // frees that left the frame with remaining owners
	Recycled        int64 // frees that returned the frame to the free list
	OwnerIncrements int64 // IncrementOwner calls
}

// statCounters is the live, concurrency-safe form of Stats.
type statCounters struct {
	allocCalls      atomic.Int64
	failedAllocs    atomic.Int64
	freeCalls       atomic.Int64
	sharedReleases  atomic.Int64
	recycled        atomic.Int64
	ownerIncrements atomic.Int64
}

func (c *statCounters) snapshot() Stats {
	return Stats{
		AllocCalls:      c.allocCalls.Load(),
		FailedAllocs:    c.failedAllocs.Load(),
		FreeCalls:       c.freeCalls.Load(),
		SharedReleases:  c.sharedReleases.Load(),
		Recycled:        c.recycled.Load(),
		OwnerIncrements: c.ownerIncrements.Load(),
	}
}
