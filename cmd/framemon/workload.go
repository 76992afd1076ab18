package main

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/TheHostEagle/SO-FinalProyect/mem"
	"github.com/TheHostEagle/SO-FinalProyect/mem/pmm"
)

// driver generates a randomized allocate/free/share workload against the
// allocator so the monitor has live pressure to display. Each entry in held
// stands for exactly one ownership reference; an address appears once per
// owner.
type driver struct {
	alloc    *pmm.Allocator
	r        *rand.Rand
	held     []mem.PhysAddr
	sharePct int
}

func newDriver(alloc *pmm.Allocator, sharePct int, seed int64) *driver {
	return &driver{
		alloc:    alloc,
		r:        rand.New(rand.NewSource(seed)),
		sharePct: sharePct,
	}
}

// step performs one random operation and describes it for the event log.
func (d *driver) step() string {
	roll := d.r.Intn(100)
	switch {
	case roll < d.sharePct && len(d.held) > 0:
		pa := d.held[d.r.Intn(len(d.held))]
		d.alloc.IncrementOwner(pa)
		d.held = append(d.held, pa)
		return fmt.Sprintf("share %#x  owners=%d", uint64(pa), d.alloc.Owners(pa))
	case roll < 55+d.sharePct/2 || len(d.held) == 0:
		pa, err := d.alloc.Allocate()
		if errors.Is(err, pmm.ErrOutOfMemory) {
			return "alloc failed: out of frames"
		}
		d.held = append(d.held, pa)
		return fmt.Sprintf("alloc %#x  free=%d", uint64(pa), d.alloc.FreeFrames())
	default:
		n := d.r.Intn(len(d.held))
		pa := d.held[n]
		d.held[n] = d.held[len(d.held)-1]
		d.held = d.held[:len(d.held)-1]
		d.alloc.Free(pa)
		return fmt.Sprintf("free  %#x  free=%d", uint64(pa), d.alloc.FreeFrames())
	}
}

// drain releases every reference the driver still holds.
func (d *driver) drain() {
	for _, pa := range d.held {
		d.alloc.Free(pa)
	}
	d.held = nil
}
