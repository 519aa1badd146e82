// control/control_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-rtl/api"
)

type fakeSource map[string]uint64

func (f fakeSource) StatsSnapshot() map[string]uint64 {
	out := make(map[string]uint64, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

var _ api.StatsSource = fakeSource(nil)

func TestDebugProbes(t *testing.T) {
	dp := NewDebugProbes()

	dp.RegisterProbe("answer", func() any { return 42 })
	dp.RegisterProbe("name", func() any { return "arena" })

	state := dp.DumpState()
	assert.Equal(t, 42, state["answer"])
	assert.Equal(t, "arena", state["name"])

	assert.Equal(t, []string{"answer", "name"}, dp.Names())

	v, ok := dp.Sample("answer")
	require.True(t, ok)
	assert.Equal(t, 42, v)
	_, ok = dp.Sample("missing")
	assert.False(t, ok)

	dp.UnregisterProbe("answer")
	state = dp.DumpState()
	assert.NotContains(t, state, "answer")
	assert.Contains(t, state, "name")
	assert.Equal(t, []string{"name"}, dp.Names())
}

func TestRegisterSource(t *testing.T) {
	dp := NewDebugProbes()
	dp.RegisterSource("arena", fakeSource{"allocs": 9})

	v, ok := dp.Sample("arena")
	require.True(t, ok)
	assert.Equal(t, uint64(9), v.(map[string]uint64)["allocs"])
}

func TestProbeReplacement(t *testing.T) {
	dp := NewDebugProbes()
	dp.RegisterProbe("v", func() any { return 1 })
	dp.RegisterProbe("v", func() any { return 2 })
	assert.Equal(t, 2, dp.DumpState()["v"])
}

func TestStatsRegistrySnapshot(t *testing.T) {
	sr := NewStatsRegistry()
	assert.True(t, sr.Updated().IsZero())

	sr.Register("ring", fakeSource{"writes": 7, "reads": 3})
	sr.Register("map", fakeSource{"puts": 11})
	assert.False(t, sr.Updated().IsZero())

	snap := sr.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, uint64(7), snap["ring"]["writes"])
	assert.Equal(t, uint64(11), snap["map"]["puts"])

	sr.Unregister("ring")
	snap = sr.Snapshot()
	require.Len(t, snap, 1)
	assert.NotContains(t, snap, "ring")
}

func TestStatsRegistryReplaces(t *testing.T) {
	sr := NewStatsRegistry()
	sr.Register("pool", fakeSource{"gets": 1})
	sr.Register("pool", fakeSource{"gets": 5})
	assert.Equal(t, uint64(5), sr.Snapshot()["pool"]["gets"])
}

func TestAttachProbes(t *testing.T) {
	sr := NewStatsRegistry()
	sr.Register("task", fakeSource{"passes": 4})

	dp := NewDebugProbes()
	sr.AttachProbes(dp)

	state := dp.DumpState()
	require.Contains(t, state, "stats.task")
	got, ok := state["stats.task"].(map[string]uint64)
	require.True(t, ok)
	assert.Equal(t, uint64(4), got["passes"])
}

func TestRegisterPlatformProbes(t *testing.T) {
	dp := NewDebugProbes()
	RegisterPlatformProbes(dp)

	state := dp.DumpState()
	require.Contains(t, state, "platform.cpus")
	assert.Greater(t, state["platform.cpus"].(int), 0)
	require.Contains(t, state, "platform.pagesize")
	assert.Greater(t, state["platform.pagesize"].(int), 0)
}
