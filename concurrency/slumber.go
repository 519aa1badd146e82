// File: concurrency/slumber.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Backoff strategies for spinning waiters.

package concurrency

import (
	"runtime"
	"time"

	"github.com/momentics/hioload-rtl/api"
)

// DefaultSleepInterval is the parking interval of the sleep based
// strategies.
const DefaultSleepInterval = 200 * time.Microsecond

// DefaultSpinThreshold is how many iterations ProgressiveSlumber spins
// before it starts sleeping.
const DefaultSpinThreshold = 3500

// YieldSlumber yields the processor on every wait.
type YieldSlumber struct{}

func (YieldSlumber) Wait(uint32) {
	runtime.Gosched()
}

// SleepSlumber parks for a fixed interval on every wait.
type SleepSlumber struct {
	Interval time.Duration
}

// NewSleepSlumber builds a SleepSlumber with the default interval.
func NewSleepSlumber() SleepSlumber {
	return SleepSlumber{Interval: DefaultSleepInterval}
}

func (s SleepSlumber) Wait(uint32) {
	d := s.Interval
	if d <= 0 {
		d = DefaultSleepInterval
	}
	time.Sleep(d)
}

// ProgressiveSlumber spins for a threshold of iterations and then
// degrades to sleeping.
type ProgressiveSlumber struct {
	Threshold uint32
	Interval  time.Duration
}

// NewProgressiveSlumber builds a ProgressiveSlumber with the default
// threshold and interval.
func NewProgressiveSlumber() ProgressiveSlumber {
	return ProgressiveSlumber{
		Threshold: DefaultSpinThreshold,
		Interval:  DefaultSleepInterval,
	}
}

func (p ProgressiveSlumber) Wait(iteration uint32) {
	if iteration < p.Threshold {
		runtime.Gosched()
		return
	}
	d := p.Interval
	if d <= 0 {
		d = DefaultSleepInterval
	}
	time.Sleep(d)
}

var (
	_ api.Slumber = YieldSlumber{}
	_ api.Slumber = SleepSlumber{}
	_ api.Slumber = ProgressiveSlumber{}
)
