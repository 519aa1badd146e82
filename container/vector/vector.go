// File: container/vector/vector.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Contiguous growable sequence backed by an allocator. Growth doubles
// capacity starting from one slot. The vector never owns its
// allocator. Element types must not be the sole reference to Go-heap
// objects, arena storage is invisible to the garbage collector.

package vector

import (
	"github.com/momentics/hioload-rtl/alloc"
	"github.com/momentics/hioload-rtl/api"
)

// Vector is an allocator-aware dynamic array.
type Vector[T any] struct {
	a     api.Allocator
	items []T
	n     int
}

// New builds an empty vector on a.
func New[T any](a api.Allocator) *Vector[T] {
	return &Vector[T]{a: a}
}

// Init rebinds an existing value, dropping any previous storage
// without freeing it. Intended for vectors embedded in other
// structures.
func (v *Vector[T]) Init(a api.Allocator) {
	v.a = a
	v.items = nil
	v.n = 0
}

// Len returns the element count.
func (v *Vector[T]) Len() int { return v.n }

// Cap returns the slot count.
func (v *Vector[T]) Cap() int { return len(v.items) }

// At returns the element at i. Bounds are the caller's contract.
func (v *Vector[T]) At(i int) T { return v.items[i] }

// Ptr returns the address of the element at i. The pointer is
// invalidated by any growth.
func (v *Vector[T]) Ptr(i int) *T { return &v.items[i] }

// Set overwrites the element at i.
func (v *Vector[T]) Set(i int, val T) { v.items[i] = val }

// Reserve grows capacity to at least want slots. Shrinking requests
// are no-ops. Returns false on allocation failure.
func (v *Vector[T]) Reserve(want int) bool {
	if want <= len(v.items) {
		return true
	}
	next := alloc.NewSlice[T](v.a, want)
	if next == nil {
		return false
	}
	copy(next, v.items[:v.n])
	old := v.items
	v.items = next
	alloc.DisposeSlice(v.a, old)
	return true
}

// PushBack appends val. Returns false on allocation failure.
func (v *Vector[T]) PushBack(val T) bool {
	if v.n == len(v.items) {
		want := 1
		if len(v.items) > 0 {
			want = len(v.items) * 2
		}
		if !v.Reserve(want) {
			return false
		}
	}
	v.items[v.n] = val
	v.n++
	return true
}

// PopBack removes and returns the final element.
func (v *Vector[T]) PopBack() (T, bool) {
	var zero T
	if v.n == 0 {
		return zero, false
	}
	v.n--
	out := v.items[v.n]
	v.items[v.n] = zero
	return out, true
}

// Back returns the final element without removing it.
func (v *Vector[T]) Back() (T, bool) {
	var zero T
	if v.n == 0 {
		return zero, false
	}
	return v.items[v.n-1], true
}

// RemoveFast removes the element at i by swapping the final element
// into its place. Order is not preserved.
func (v *Vector[T]) RemoveFast(i int) {
	var zero T
	v.n--
	v.items[i] = v.items[v.n]
	v.items[v.n] = zero
}

// RemoveStable removes the element at i preserving order.
func (v *Vector[T]) RemoveStable(i int) {
	var zero T
	copy(v.items[i:v.n-1], v.items[i+1:v.n])
	v.n--
	v.items[v.n] = zero
}

// Clear drops all elements but keeps the storage.
func (v *Vector[T]) Clear() {
	var zero T
	for i := 0; i < v.n; i++ {
		v.items[i] = zero
	}
	v.n = 0
}

// Free returns the storage to the allocator. The vector is reusable
// afterwards.
func (v *Vector[T]) Free() {
	alloc.DisposeSlice(v.a, v.items)
	v.items = nil
	v.n = 0
}
