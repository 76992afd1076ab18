//go:build !unix

// Package physmem reserves the zeroed memory that backs a managed physical range.
package physmem

// Reserve allocates zeroed heap memory when mmap is not available.
func Reserve(size int) ([]byte, func() error, error) {
	return make([]byte, size), func() error { return nil }, nil
}
