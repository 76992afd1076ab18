// Package refcount tracks how many owners currently hold each physical frame.
//
// A count of zero means the frame is free; copy-on-write sharing raises the
// count above one, and the frame allocator recycles a frame only when the
// count returns to zero. The table does O(1) work under its own lock and
// never calls into other allocator components while holding it.
package refcount

import (
	"fmt"
	"sync"
)

// Table is a direct-mapped table from frame index to owner count.
type Table struct {
	mu     sync.Mutex
	counts []int32
}

// NewTable returns a table for frames entries, all starting with zero owners.
func NewTable(frames int) *Table {
	return &Table{counts: make([]int32, frames)}
}

// Len returns the number of tracked frames.
func (t *Table) Len() int { return len(t.counts) }

// Increment registers an additional owner of an allocated frame.
// Registering an owner on a free frame means the caller's bookkeeping is
// corrupt; the table panics instead of letting the corruption propagate.
func (t *Table) Increment(idx int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.check(idx)
	if t.counts[idx] == 0 {
		panic(fmt.Sprintf("refcount: increment on free frame index %d", idx))
	}
	t.counts[idx]++
}

// Decrement removes one owner and returns the remaining owner count.
// Decrementing a frame that already has zero owners is a double free and
// panics for the same reason Increment does.
func (t *Table) Decrement(idx int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.check(idx)
	if t.counts[idx] == 0 {
		panic(fmt.Sprintf("refcount: double free of frame index %d", idx))
	}
	t.counts[idx]--
	return int(t.counts[idx])
}

// ForceSet overwrites the owner count unconditionally. Only allocation and
// boot seeding use it; whatever stale count the frame carried before it was
// freed is irrelevant at those points.
func (t *Table) ForceSet(idx, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.check(idx)
	t.counts[idx] = int32(n)
}

// Count returns the current owner count of a frame.
func (t *Table) Count(idx int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.check(idx)
	return int(t.counts[idx])
}

func (t *Table) check(idx int) {
	if idx < 0 || idx >= len(t.counts) {
		panic(fmt.Sprintf("refcount: frame index %d out of range [0, %d)", idx, len(t.counts)))
	}
}
