// File: task/periodic.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PeriodicTask runs a callback on its own goroutine, once per wake.
// Wakes come from the tick interval, an external Notify, or a
// submitted work item. Submitted items queue in a FIFO and drain at
// the start of the next pass, ahead of the callback.

package task

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/pkg/errors"

	"github.com/momentics/hioload-rtl/api"
)

// Callback is the periodic body. Returning true stops the task.
type Callback func() bool

// PeriodicTask drives a Callback. Create with New, then Start once.
type PeriodicTask struct {
	fn       Callback
	interval time.Duration

	mu      sync.Mutex
	pending *queue.Queue

	wake *Notification
	stop chan struct{}
	done chan struct{}

	started bool
	stopped bool

	passes  atomic.Uint64
	drained atomic.Uint64
}

// TaskOption tunes task construction.
type TaskOption func(*PeriodicTask)

// WithInterval makes the task tick every d even without
// notifications. Zero, the default, means the task only runs when
// notified.
func WithInterval(d time.Duration) TaskOption {
	return func(t *PeriodicTask) { t.interval = d }
}

// New builds a stopped task around fn.
func New(fn Callback, opts ...TaskOption) (*PeriodicTask, error) {
	if fn == nil {
		return nil, errors.Wrap(api.ErrInvalidArgument, "nil callback")
	}
	t := &PeriodicTask{
		fn:      fn,
		pending: queue.New(),
		wake:    NewNotification(),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Start launches the task goroutine. A task starts at most once.
func (t *PeriodicTask) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return api.ErrClosed
	}
	if t.started {
		return api.ErrAlreadyRunning
	}
	t.started = true
	go t.run()
	return nil
}

// Notify wakes the task for an extra pass.
func (t *PeriodicTask) Notify() {
	t.wake.Notify()
}

// Submit queues item to run on the task goroutine before the next
// callback pass, then wakes the task.
func (t *PeriodicTask) Submit(item func()) {
	if item == nil {
		return
	}
	t.mu.Lock()
	t.pending.Add(item)
	t.mu.Unlock()
	t.wake.Notify()
}

// Stop shuts the task down and waits for the goroutine to exit. Safe
// to call more than once and before Start.
func (t *PeriodicTask) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		<-t.done
		return
	}
	t.stopped = true
	close(t.stop)
	started := t.started
	t.mu.Unlock()
	if !started {
		close(t.done)
		return
	}
	<-t.done
}

func (t *PeriodicTask) run() {
	defer close(t.done)
	for {
		t.drainPending()
		t.passes.Add(1)
		if t.fn() {
			return
		}
		select {
		case <-t.stop:
			return
		default:
		}
		if !t.waitForWake() {
			return
		}
	}
}

// waitForWake blocks until a notification, a tick, or shutdown.
// Returns false on shutdown.
func (t *PeriodicTask) waitForWake() bool {
	if t.interval > 0 {
		timer := time.NewTimer(t.interval)
		defer timer.Stop()
		select {
		case <-t.stop:
			return false
		case <-t.wake.ch:
			return true
		case <-timer.C:
			return true
		}
	}
	select {
	case <-t.stop:
		return false
	case <-t.wake.ch:
		return true
	}
}

func (t *PeriodicTask) drainPending() {
	for {
		t.mu.Lock()
		if t.pending.Length() == 0 {
			t.mu.Unlock()
			return
		}
		item := t.pending.Remove().(func())
		t.mu.Unlock()
		item()
		t.drained.Add(1)
	}
}

// StatsSnapshot implements api.StatsSource.
func (t *PeriodicTask) StatsSnapshot() map[string]uint64 {
	t.mu.Lock()
	pending := t.pending.Length()
	t.mu.Unlock()
	return map[string]uint64{
		"passes":  t.passes.Load(),
		"drained": t.drained.Load(),
		"pending": uint64(pending),
	}
}

var _ api.StatsSource = (*PeriodicTask)(nil)
