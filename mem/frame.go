package mem

const (
	// FrameSize is the size in bytes of a physical page frame.
	FrameSize = 4096

	// FrameShift is log2(FrameSize); addr >> FrameShift yields the frame number.
	FrameShift = 12

	// frameMask selects the offset-within-frame bits of an address.
	frameMask = FrameSize - 1
)

// PhysAddr is a physical byte address.
type PhysAddr uint64

// Frame is a physical frame number (PhysAddr >> FrameShift).
type Frame uint64

// Frame returns the number of the frame containing the address.
func (p PhysAddr) Frame() Frame { return Frame(p >> FrameShift) }

// IsFrameAligned reports whether the address sits on a frame boundary.
func (p PhysAddr) IsFrameAligned() bool { return p&frameMask == 0 }

// AlignDown returns the base address of the frame containing p.
func (p PhysAddr) AlignDown() PhysAddr { return p &^ PhysAddr(frameMask) }

// AlignUp returns p rounded up to the next frame boundary.
// Already-aligned addresses are returned unchanged.
func (p PhysAddr) AlignUp() PhysAddr { return (p + frameMask) &^ PhysAddr(frameMask) }

// Address returns the base address of the frame.
func (f Frame) Address() PhysAddr { return PhysAddr(f) << FrameShift }
