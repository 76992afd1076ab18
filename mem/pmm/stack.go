package pmm

import (
	"sync"

	"github.com/TheHostEagle/SO-FinalProyect/mem"
)

// frameStack is the free list: a LIFO stack of free frame numbers guarded by
// its own lock. Push and pop are O(1); the recycling order carries no
// fairness guarantee. Keeping frame numbers in a separate slice, rather than
// threading a link through the freed frame's own bytes, means frame contents
// are never doubling as list metadata.
type frameStack struct {
	mu   sync.Mutex
	free []mem.Frame
}

func newFrameStack(capacity int) *frameStack {
	return &frameStack{free: make([]mem.Frame, 0, capacity)}
}

// pop detaches the most recently freed frame. ok is false when the stack is
// empty.
func (s *frameStack) pop() (f mem.Frame, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.free)
	if n == 0 {
		return 0, false
	}
	f = s.free[n-1]
	s.free = s.free[:n-1]
	return f, true
}

// push prepends the frame to the free list.
func (s *frameStack) push(f mem.Frame) {
	s.mu.Lock()
	s.free = append(s.free, f)
	s.mu.Unlock()
}

// size returns the current number of free frames.
func (s *frameStack) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.free)
}
