// Package pmm implements the physical page-frame allocator.
//
// # Overview
//
// The allocator hands out fixed 4KB frames from a managed region and tracks,
// per frame, how many owners currently reference it. Frames shared through
// copy-on-write address-space duplication carry a count above one and are
// returned to the free pool only when their last owner releases them.
//
// # Operations
//
//	a := pmm.New(region)                 // seeds every frame into the free list
//	pa, err := a.Allocate()              // one frame, exactly one owner
//	a.IncrementOwner(pa)                 // register a sharing owner (fork/COW)
//	a.Free(pa)                           // drop one owner; recycle at zero
//	n := a.FreeFrames()                  // O(1) memory-pressure reading
//
// Allocate never blocks: an empty free list fails immediately with
// ErrOutOfMemory, a normal recoverable outcome. Free with a misaligned
// address or one outside the managed range panics; that indicates memory
// corruption elsewhere, not a condition the allocator can continue past.
//
// # Debug fill patterns
//
// Every allocated frame is filled with 0x05 and every recycled frame with
// 0x01, so reading stale data from a previous owner or through a dangling
// reference shows up as recognizable garbage instead of silently working.
//
// # Locking
//
// Two locks exist, one inside the ownership table and one inside the free
// stack. Every critical section is O(1) and calls into nothing else, and no
// operation ever holds both locks at once: Allocate pops, releases the stack
// lock, then touches the table; Free decrements, releases the table lock,
// then pushes only if the frame is actually recyclable. With the two
// critical sections always disjoint in time, a wait cycle between the locks
// cannot form regardless of how many goroutines run these operations
// concurrently.
package pmm
