// File: rc/shared.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Refcounted ownership over allocator-backed payloads. A control
// block carries the payload pointer and two atomic counts: strong
// owners keep the payload alive, weak observers keep the control
// block alive. The strong count holds one implicit weak reference, so
// the block outlives the last strong owner for as long as any weak
// handle remains.
//
// Control blocks live in arena memory, which the garbage collector
// does not scan. The caller must keep the allocator and any destroy
// hook reachable for the lifetime of the handles.

package rc

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-rtl/alloc"
	"github.com/momentics/hioload-rtl/api"
)

type control[T any] struct {
	payload *T
	strong  atomic.Int64
	weak    atomic.Int64
	a       api.Allocator
	destroy func(*T)
}

// Shared is a strong handle. The zero value is empty; handles are
// single-owner values, call Clone for an additional owner and Release
// exactly once per handle.
type Shared[T any] struct {
	ctrl *control[T]
}

// Option tunes shared construction.
type Option[T any] func(*control[T])

// WithDestructor runs fn on the payload right before its memory is
// returned to the allocator.
func WithDestructor[T any](fn func(*T)) Option[T] {
	return func(c *control[T]) { c.destroy = fn }
}

// NewShared allocates a payload holding val and returns the first
// strong handle to it.
func NewShared[T any](a api.Allocator, val T, opts ...Option[T]) (Shared[T], error) {
	if a == nil {
		return Shared[T]{}, errors.Wrap(api.ErrInvalidArgument, "nil allocator")
	}
	payload := alloc.New[T](a)
	if payload == nil {
		return Shared[T]{}, errors.Wrap(api.ErrOutOfMemory, "shared payload")
	}
	*payload = val
	ctrl := alloc.New[control[T]](a)
	if ctrl == nil {
		alloc.Dispose(a, payload)
		return Shared[T]{}, errors.Wrap(api.ErrOutOfMemory, "shared control block")
	}
	ctrl.payload = payload
	ctrl.a = a
	ctrl.strong.Store(1)
	ctrl.weak.Store(1)
	for _, o := range opts {
		o(ctrl)
	}
	return Shared[T]{ctrl: ctrl}, nil
}

// Get returns the payload pointer, nil for an empty handle.
func (s *Shared[T]) Get() *T {
	if s.ctrl == nil {
		return nil
	}
	return s.ctrl.payload
}

// UseCount returns the live strong owner count, zero for an empty
// handle.
func (s *Shared[T]) UseCount() int {
	if s.ctrl == nil {
		return 0
	}
	return int(s.ctrl.strong.Load())
}

// Clone returns an additional strong handle.
func (s *Shared[T]) Clone() Shared[T] {
	if s.ctrl == nil {
		return Shared[T]{}
	}
	s.ctrl.strong.Add(1)
	return Shared[T]{ctrl: s.ctrl}
}

// Weak returns a weak observer of the payload.
func (s *Shared[T]) Weak() Weak[T] {
	if s.ctrl == nil {
		return Weak[T]{}
	}
	s.ctrl.weak.Add(1)
	return Weak[T]{ctrl: s.ctrl}
}

// Release drops this strong reference and empties the handle. The
// last strong release destroys the payload; the control block goes
// when the weak count drains too. Releasing an empty handle is a
// no-op.
func (s *Shared[T]) Release() {
	ctrl := s.ctrl
	if ctrl == nil {
		return
	}
	s.ctrl = nil
	if ctrl.strong.Add(-1) != 0 {
		return
	}
	if ctrl.destroy != nil {
		ctrl.destroy(ctrl.payload)
	}
	alloc.Dispose(ctrl.a, ctrl.payload)
	ctrl.payload = nil
	releaseWeak(ctrl)
}

func releaseWeak[T any](ctrl *control[T]) {
	if ctrl.weak.Add(-1) == 0 {
		alloc.Dispose(ctrl.a, ctrl)
	}
}
