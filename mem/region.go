package mem

import (
	"fmt"

	"github.com/TheHostEagle/SO-FinalProyect/internal/physmem"
)

// Region is a managed physical range [Start, Top), backed by an anonymous
// memory mapping (unix) or a byte slice (others). Frame contents are real
// bytes so fill patterns and stale-data checks have something to observe.
type Region struct {
	start   PhysAddr
	data    []byte
	release func() error
}

// NewRegion reserves backing storage for frames page frames starting at the
// frame-aligned address start.
func NewRegion(start PhysAddr, frames int) (*Region, error) {
	if !start.IsFrameAligned() {
		return nil, fmt.Errorf("mem: region start %#x is not frame-aligned", uint64(start))
	}
	if frames <= 0 {
		return nil, fmt.Errorf("mem: region needs at least one frame, got %d", frames)
	}
	data, release, err := physmem.Reserve(frames * FrameSize)
	if err != nil {
		return nil, fmt.Errorf("mem: reserving %d frames: %w", frames, err)
	}
	return &Region{start: start, data: data, release: release}, nil
}

// Start returns the first managed address.
func (r *Region) Start() PhysAddr { return r.start }

// Top returns the first address past the managed range.
func (r *Region) Top() PhysAddr { return r.start + PhysAddr(len(r.data)) }

// Frames returns the number of frames in the region.
func (r *Region) Frames() int { return len(r.data) / FrameSize }

// Contains reports whether the address falls inside [Start, Top).
func (r *Region) Contains(pa PhysAddr) bool { return pa >= r.start && pa < r.Top() }

// Index returns the zero-based index of f within the region.
// A frame outside the managed range panics: such a frame number can only
// come from corrupted caller state, and continuing would index arbitrary
// memory.
func (r *Region) Index(f Frame) int {
	base := r.start.Frame()
	if f < base || f >= base+Frame(r.Frames()) {
		panic(fmt.Sprintf("mem: frame %#x outside managed range [%#x, %#x)",
			uint64(f), uint64(base), uint64(base)+uint64(r.Frames())))
	}
	return int(f - base)
}

// FrameBytes returns the full contents of a frame. The slice is capped so
// writes cannot spill into the neighboring frame.
func (r *Region) FrameBytes(f Frame) []byte {
	idx := r.Index(f)
	off := idx * FrameSize
	return r.data[off : off+FrameSize : off+FrameSize]
}

// Close releases the backing storage. The region must not be used afterwards.
func (r *Region) Close() error {
	if r.release == nil {
		return nil
	}
	release := r.release
	r.release = nil
	r.data = nil
	return release()
}
