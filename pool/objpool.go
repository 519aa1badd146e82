// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: Apache-2.0
//
// Pre-sized object pool over an allocator. Raw slots wait in a
// free-list vector; Get constructs in place, Put destroys and returns
// the slot. When the free list runs dry the pool refills by its
// elasticity, never by less than one slot.

package pool

import (
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-rtl/api"
	"github.com/momentics/hioload-rtl/container/vector"
)

// Pool hands out constructed *T values backed by allocator slots.
// Closing the pool frees idle slots only; live objects must be
// returned first.
type Pool[T any] struct {
	a          api.Allocator
	free       *vector.Vector[unsafe.Pointer]
	elasticity int
	construct  func(*T)
	destroy    func(*T)

	gets    atomic.Uint64
	puts    atomic.Uint64
	refills atomic.Uint64
}

// Option tunes pool construction.
type Option[T any] func(*Pool[T])

// WithConstructor runs fn on every slot handed out by Get.
func WithConstructor[T any](fn func(*T)) Option[T] {
	return func(p *Pool[T]) { p.construct = fn }
}

// WithDestructor runs fn on every object returned through Put.
func WithDestructor[T any](fn func(*T)) Option[T] {
	return func(p *Pool[T]) { p.destroy = fn }
}

// New builds a pool with initial pre-allocated slots. Elasticity is
// how many slots a refill adds; values below one are clamped to one.
func New[T any](a api.Allocator, initial, elasticity int, opts ...Option[T]) (*Pool[T], error) {
	if a == nil {
		return nil, errors.Wrap(api.ErrInvalidArgument, "nil allocator")
	}
	if elasticity < 1 {
		elasticity = 1
	}
	p := &Pool[T]{
		a:          a,
		free:       vector.New[unsafe.Pointer](a),
		elasticity: elasticity,
	}
	for _, o := range opts {
		o(p)
	}
	if initial > 0 && !p.refill(initial) {
		p.Close()
		return nil, errors.Wrap(api.ErrOutOfMemory, "pool prealloc")
	}
	return p, nil
}

func (p *Pool[T]) refill(n int) bool {
	var zero T
	sz := unsafe.Sizeof(zero)
	for i := 0; i < n; i++ {
		slot := p.a.Alloc(sz)
		if slot == nil {
			return i > 0
		}
		if !p.free.PushBack(slot) {
			p.a.Free(slot)
			return i > 0
		}
	}
	p.refills.Add(1)
	return true
}

// Get pops a slot and constructs a T in it. Returns nil when the
// allocator is exhausted.
func (p *Pool[T]) Get() *T {
	if p.free.Len() == 0 && !p.refill(p.elasticity) {
		return nil
	}
	slot, _ := p.free.PopBack()
	obj := (*T)(slot)
	var zero T
	*obj = zero
	if p.construct != nil {
		p.construct(obj)
	}
	p.gets.Add(1)
	return obj
}

// Put destroys obj and parks its slot. Nil is a no-op.
func (p *Pool[T]) Put(obj *T) {
	if obj == nil {
		return
	}
	if p.destroy != nil {
		p.destroy(obj)
	}
	p.puts.Add(1)
	if !p.free.PushBack(unsafe.Pointer(obj)) {
		// free list cannot grow, give the slot back to the allocator
		p.a.Free(unsafe.Pointer(obj))
	}
}

// Idle returns the count of parked slots.
func (p *Pool[T]) Idle() int {
	return p.free.Len()
}

// Close frees every idle slot and the free list itself. Objects still
// held by callers are not destroyed.
func (p *Pool[T]) Close() {
	for {
		slot, ok := p.free.PopBack()
		if !ok {
			break
		}
		p.a.Free(slot)
	}
	p.free.Free()
}

// StatsSnapshot implements api.StatsSource.
func (p *Pool[T]) StatsSnapshot() map[string]uint64 {
	return map[string]uint64{
		"gets":    p.gets.Load(),
		"puts":    p.puts.Load(),
		"refills": p.refills.Load(),
		"idle":    uint64(p.free.Len()),
	}
}

// Acquire wraps Get in a Handle that returns the object on Close.
func (p *Pool[T]) Acquire() (*Handle[T], bool) {
	obj := p.Get()
	if obj == nil {
		return nil, false
	}
	return &Handle[T]{pool: p, obj: obj}, true
}

// Handle owns one pooled object and returns it exactly once.
type Handle[T any] struct {
	pool *Pool[T]
	obj  *T
}

// Object returns the held object, nil after Close.
func (h *Handle[T]) Object() *T {
	return h.obj
}

// Close returns the object to its pool. Safe to call more than once.
func (h *Handle[T]) Close() error {
	if h.obj == nil {
		return nil
	}
	h.pool.Put(h.obj)
	h.obj = nil
	return nil
}
