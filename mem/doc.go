// Package mem defines the geometry of physical page frames and the managed
// physical range they live in.
//
// # Frames and addresses
//
// Physical memory is handed out in fixed 4KB frames. A PhysAddr is a byte
// address; a Frame is the frame number addr >> FrameShift. The two convert
// losslessly for frame-aligned addresses:
//
//	pa := mem.PhysAddr(0x8000_2000)
//	f := pa.Frame()      // frame 0x80002
//	f.Address() == pa    // true
//
// # Regions
//
// A Region is the half-open managed range [Start, Top), created once at boot
// with a frame-aligned start. Frame contents are real bytes backed by an
// anonymous memory mapping, so debug fill patterns written by the allocator
// are observable by tests and tooling. All frame access is bounds-checked by
// frame index; an address can never reach outside the region through this
// package.
//
// Related packages:
//
//   - github.com/TheHostEagle/SO-FinalProyect/mem/refcount: per-frame owner counts
//   - github.com/TheHostEagle/SO-FinalProyect/mem/pmm: the frame allocator itself
package mem
