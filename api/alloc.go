// File: api/alloc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Allocation capability shared by every container in the library.

package api

import "unsafe"

// Allocator is the narrow allocation capability handed to containers.
// Implementations return nil from Alloc when the request cannot be
// served. Free accepts nil as a no-op. Containers never own the
// allocator they are given.
type Allocator interface {
	Alloc(size uintptr) unsafe.Pointer
	Free(ptr unsafe.Pointer)
}

// AllocatorStats is a point-in-time snapshot of allocator activity.
type AllocatorStats struct {
	Allocs     uint64
	Frees      uint64
	Failures   uint64
	BytesInUse uint64
}

// StatsSource is implemented by components that expose live counters
// for inspection through the control registry.
type StatsSource interface {
	StatsSnapshot() map[string]uint64
}

// Locker is the locking capability used to guard allocator critical
// sections.
type Locker interface {
	Lock()
	TryLock() bool
	Unlock()
}

// Slumber is a pluggable backoff strategy for spinning waiters. Wait
// is called with the current spin iteration count.
type Slumber interface {
	Wait(iteration uint32)
}
