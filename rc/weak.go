// File: rc/weak.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package rc

// Weak observes a payload without keeping it alive. The zero value is
// empty.
type Weak[T any] struct {
	ctrl *control[T]
}

// Clone returns an additional weak observer.
func (w *Weak[T]) Clone() Weak[T] {
	if w.ctrl == nil {
		return Weak[T]{}
	}
	w.ctrl.weak.Add(1)
	return Weak[T]{ctrl: w.ctrl}
}

// Lock upgrades to a strong handle when the payload is still alive.
// The strong count is raised from its observed non-zero value, a
// payload mid-destruction can not be resurrected.
func (w *Weak[T]) Lock() (Shared[T], bool) {
	ctrl := w.ctrl
	if ctrl == nil {
		return Shared[T]{}, false
	}
	for {
		n := ctrl.strong.Load()
		if n == 0 {
			return Shared[T]{}, false
		}
		if ctrl.strong.CompareAndSwap(n, n+1) {
			return Shared[T]{ctrl: ctrl}, true
		}
	}
}

// Expired reports whether the payload is gone. A false result is
// advisory under concurrency, use Lock to act on it.
func (w *Weak[T]) Expired() bool {
	return w.ctrl == nil || w.ctrl.strong.Load() == 0
}

// Release drops this weak reference and empties the handle. The last
// reference overall frees the control block.
func (w *Weak[T]) Release() {
	ctrl := w.ctrl
	if ctrl == nil {
		return
	}
	w.ctrl = nil
	releaseWeak(ctrl)
}
