// File: rc/slice.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package rc

import (
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-rtl/alloc"
	"github.com/momentics/hioload-rtl/api"
)

type sliceControl[T any] struct {
	payload *T
	n       int
	strong  atomic.Int64
	a       api.Allocator
	destroy func([]T)
}

// SharedSlice is a strong handle over an allocator-backed []T
// payload. The zero value is empty.
type SharedSlice[T any] struct {
	ctrl *sliceControl[T]
}

// SliceOption tunes shared slice construction.
type SliceOption[T any] func(*sliceControl[T])

// WithSliceDestructor runs fn on the payload right before its memory
// is returned to the allocator.
func WithSliceDestructor[T any](fn func([]T)) SliceOption[T] {
	return func(c *sliceControl[T]) { c.destroy = fn }
}

// NewSharedSlice allocates a zeroed []T of length n and returns the
// first strong handle to it.
func NewSharedSlice[T any](a api.Allocator, n int, opts ...SliceOption[T]) (SharedSlice[T], error) {
	if a == nil || n < 1 {
		return SharedSlice[T]{}, errors.Wrap(api.ErrInvalidArgument, "shared slice")
	}
	payload := alloc.NewSlice[T](a, n)
	if payload == nil {
		return SharedSlice[T]{}, errors.Wrap(api.ErrOutOfMemory, "shared slice payload")
	}
	ctrl := alloc.New[sliceControl[T]](a)
	if ctrl == nil {
		alloc.DisposeSlice(a, payload)
		return SharedSlice[T]{}, errors.Wrap(api.ErrOutOfMemory, "shared slice control block")
	}
	ctrl.payload = &payload[0]
	ctrl.n = n
	ctrl.a = a
	ctrl.strong.Store(1)
	for _, o := range opts {
		o(ctrl)
	}
	return SharedSlice[T]{ctrl: ctrl}, nil
}

// Get returns the payload slice, nil for an empty handle.
func (s *SharedSlice[T]) Get() []T {
	if s.ctrl == nil {
		return nil
	}
	return unsafe.Slice(s.ctrl.payload, s.ctrl.n)
}

// Len returns the payload length, zero for an empty handle.
func (s *SharedSlice[T]) Len() int {
	if s.ctrl == nil {
		return 0
	}
	return s.ctrl.n
}

// UseCount returns the live strong owner count.
func (s *SharedSlice[T]) UseCount() int {
	if s.ctrl == nil {
		return 0
	}
	return int(s.ctrl.strong.Load())
}

// Clone returns an additional strong handle.
func (s *SharedSlice[T]) Clone() SharedSlice[T] {
	if s.ctrl == nil {
		return SharedSlice[T]{}
	}
	s.ctrl.strong.Add(1)
	return SharedSlice[T]{ctrl: s.ctrl}
}

// Release drops this strong reference and empties the handle. The
// last release destroys the payload and frees the control block.
func (s *SharedSlice[T]) Release() {
	ctrl := s.ctrl
	if ctrl == nil {
		return
	}
	s.ctrl = nil
	if ctrl.strong.Add(-1) != 0 {
		return
	}
	payload := unsafe.Slice(ctrl.payload, ctrl.n)
	if ctrl.destroy != nil {
		ctrl.destroy(payload)
	}
	alloc.DisposeSlice(ctrl.a, payload)
	alloc.Dispose(ctrl.a, ctrl)
}
