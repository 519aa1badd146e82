// File: alloc/allocator.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Allocator facade binding a TLSF arena to a locking strategy. The
// arena itself is not thread safe; the facade is the only supported
// way to share one arena between goroutines.

package alloc

import (
	"unsafe"

	"github.com/momentics/hioload-rtl/api"
	"github.com/momentics/hioload-rtl/concurrency"
	"github.com/momentics/hioload-rtl/core/tlsf"
)

// Allocator adapts a TLSF arena to the api.Allocator capability.
type Allocator struct {
	arena *tlsf.Arena
	lk    api.Locker
}

// NewAllocator builds an arena over region and guards it with lk. A
// nil lk selects NullMutex.
func NewAllocator(region []byte, lk api.Locker) (*Allocator, error) {
	if lk == nil {
		lk = concurrency.NullMutex{}
	}
	arena, err := tlsf.MakeArena(region)
	if err != nil {
		return nil, err
	}
	return &Allocator{arena: arena, lk: lk}, nil
}

// NewST builds a single-threaded allocator with no locking.
func NewST(region []byte) (*Allocator, error) {
	return NewAllocator(region, concurrency.NullMutex{})
}

// NewMT builds an allocator safe for shared use, guarded by a spin
// lock with progressive backoff.
func NewMT(region []byte) (*Allocator, error) {
	return NewAllocator(region, concurrency.NewSpinLock(nil))
}

// Alloc returns at least size bytes of word-aligned memory, or nil.
func (a *Allocator) Alloc(size uintptr) unsafe.Pointer {
	a.lk.Lock()
	p := a.arena.Alloc(size)
	a.lk.Unlock()
	return p
}

// Free returns memory obtained from Alloc. Nil is a no-op.
func (a *Allocator) Free(ptr unsafe.Pointer) {
	a.lk.Lock()
	a.arena.Free(ptr)
	a.lk.Unlock()
}

// Stats returns the arena counter snapshot.
func (a *Allocator) Stats() api.AllocatorStats {
	return a.arena.Stats()
}

// StatsSnapshot implements api.StatsSource.
func (a *Allocator) StatsSnapshot() map[string]uint64 {
	return a.arena.StatsSnapshot()
}

var (
	_ api.Allocator   = (*Allocator)(nil)
	_ api.StatsSource = (*Allocator)(nil)
)
