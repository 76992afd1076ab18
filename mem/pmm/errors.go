package pmm

import "errors"

// ErrOutOfMemory indicates the free list is empty. Exhaustion is a normal,
// recoverable outcome; the caller decides whether to retry, evict, or abort.
var ErrOutOfMemory = errors.New("pmm: out of physical frames")
