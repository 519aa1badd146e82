// File: alloc/typed.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Typed helpers over the raw allocation capability. Arena memory is
// invisible to the garbage collector: values placed there must not be
// the sole reference to Go-heap objects.

package alloc

import (
	"unsafe"

	"github.com/momentics/hioload-rtl/api"
)

// New allocates and zeroes a single T. Returns nil on exhaustion.
func New[T any](a api.Allocator) *T {
	var zero T
	p := a.Alloc(unsafe.Sizeof(zero))
	if p == nil {
		return nil
	}
	t := (*T)(p)
	*t = zero
	return t
}

// NewSlice allocates and zeroes a []T of length n. Returns nil on
// exhaustion.
func NewSlice[T any](a api.Allocator, n int) []T {
	if n < 0 {
		return nil
	}
	if n == 0 {
		return []T{}
	}
	var zero T
	p := a.Alloc(uintptr(n) * unsafe.Sizeof(zero))
	if p == nil {
		return nil
	}
	s := unsafe.Slice((*T)(p), n)
	for i := range s {
		s[i] = zero
	}
	return s
}

// Dispose frees a value obtained from New. Nil is a no-op.
func Dispose[T any](a api.Allocator, p *T) {
	if p == nil {
		return
	}
	a.Free(unsafe.Pointer(p))
}

// DisposeSlice frees a slice obtained from NewSlice. Empty slices are
// a no-op.
func DisposeSlice[T any](a api.Allocator, s []T) {
	if len(s) == 0 {
		return
	}
	a.Free(unsafe.Pointer(&s[0]))
}
