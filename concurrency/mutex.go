// File: concurrency/mutex.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Locking strategies for the allocator facade. NullMutex serves
// single-threaded arenas, SpinLock serves shared arenas where critical
// sections are short enough that parking a goroutine costs more than
// spinning.

package concurrency

import (
	"sync/atomic"

	"github.com/momentics/hioload-rtl/api"
)

// NullMutex satisfies api.Locker with no-ops.
type NullMutex struct{}

func (NullMutex) Lock()         {}
func (NullMutex) TryLock() bool { return true }
func (NullMutex) Unlock()       {}

// SpinLock is a test-and-set lock with a pluggable backoff strategy.
type SpinLock struct {
	flag    atomic.Uint32
	slumber api.Slumber
}

// NewSpinLock builds a SpinLock. A nil slumber selects the progressive
// strategy.
func NewSpinLock(s api.Slumber) *SpinLock {
	if s == nil {
		s = NewProgressiveSlumber()
	}
	return &SpinLock{slumber: s}
}

func (l *SpinLock) Lock() {
	var i uint32
	for !l.TryLock() {
		l.slumber.Wait(i)
		i++
	}
}

func (l *SpinLock) TryLock() bool {
	return l.flag.CompareAndSwap(0, 1)
}

func (l *SpinLock) Unlock() {
	l.flag.Store(0)
}

var (
	_ api.Locker = NullMutex{}
	_ api.Locker = (*SpinLock)(nil)
)
