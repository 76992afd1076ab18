package pmm

import "log/slog"

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger sets the diagnostic sink. Every successful Allocate emits one
// record carrying the current free-frame count so operators can watch memory
// pressure in real time. The default logger discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(a *Allocator) { a.log = log }
}
