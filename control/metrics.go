// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Stats aggregation for library components. Sources register by name
// and the registry pulls a fresh counter snapshot from each on demand.

package control

import (
	"sync"
	"time"

	"github.com/momentics/hioload-rtl/api"
)

// StatsRegistry binds named stat sources, arenas, pools, maps, tasks.
type StatsRegistry struct {
	mu      sync.RWMutex
	sources map[string]api.StatsSource
	updated time.Time
}

// NewStatsRegistry creates an empty registry.
func NewStatsRegistry() *StatsRegistry {
	return &StatsRegistry{
		sources: make(map[string]api.StatsSource),
	}
}

// Register binds src under name, replacing any previous binding.
func (sr *StatsRegistry) Register(name string, src api.StatsSource) {
	sr.mu.Lock()
	sr.sources[name] = src
	sr.updated = time.Now()
	sr.mu.Unlock()
}

// Unregister removes the binding for name.
func (sr *StatsRegistry) Unregister(name string) {
	sr.mu.Lock()
	delete(sr.sources, name)
	sr.updated = time.Now()
	sr.mu.Unlock()
}

// Snapshot pulls current counters from every registered source.
func (sr *StatsRegistry) Snapshot() map[string]map[string]uint64 {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	out := make(map[string]map[string]uint64, len(sr.sources))
	for name, src := range sr.sources {
		out[name] = src.StatsSnapshot()
	}
	return out
}

// Updated returns the time of the last registry mutation.
func (sr *StatsRegistry) Updated() time.Time {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return sr.updated
}

// AttachProbes exposes every registered source through dp, one probe
// per source named "stats.<name>".
func (sr *StatsRegistry) AttachProbes(dp *DebugProbes) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	for name, src := range sr.sources {
		dp.RegisterSource("stats."+name, src)
	}
}
