// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Probe registry for live introspection. A probe is a named sampling
// closure; arenas, pools, maps and tasks install probes for whatever
// state is worth reading out of a running process.

package control

import (
	"sort"
	"sync"

	"github.com/momentics/hioload-rtl/api"
)

// Probe samples one piece of component state.
type Probe func() any

// DebugProbes is a concurrent-safe registry of named probes.
type DebugProbes struct {
	mu     sync.RWMutex
	byName map[string]Probe
}

// NewDebugProbes returns an empty probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{byName: make(map[string]Probe)}
}

// RegisterProbe installs p under name, replacing any previous probe
// with that name.
func (dp *DebugProbes) RegisterProbe(name string, p Probe) {
	dp.mu.Lock()
	dp.byName[name] = p
	dp.mu.Unlock()
}

// RegisterSource installs a probe that samples src's counters.
func (dp *DebugProbes) RegisterSource(name string, src api.StatsSource) {
	dp.RegisterProbe(name, func() any { return src.StatsSnapshot() })
}

// UnregisterProbe removes the probe under name.
func (dp *DebugProbes) UnregisterProbe(name string) {
	dp.mu.Lock()
	delete(dp.byName, name)
	dp.mu.Unlock()
}

// Names returns the registered probe names, sorted.
func (dp *DebugProbes) Names() []string {
	dp.mu.RLock()
	out := make([]string, 0, len(dp.byName))
	for name := range dp.byName {
		out = append(out, name)
	}
	dp.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Sample runs the probe under name. The second return is false when
// no such probe exists.
func (dp *DebugProbes) Sample(name string) (any, bool) {
	dp.mu.RLock()
	p, ok := dp.byName[name]
	dp.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return p(), true
}

// DumpState samples every probe.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.byName))
	for name, p := range dp.byName {
		out[name] = p()
	}
	return out
}
