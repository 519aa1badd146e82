// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-rtl/alloc"
)

type widget struct {
	ID    int
	State int
}

func testAllocator(t *testing.T) *alloc.Allocator {
	t.Helper()
	r, err := alloc.AcquireRegion(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Release() })
	a, err := alloc.NewST(r.Bytes())
	require.NoError(t, err)
	return a
}

func TestGetPutCycle(t *testing.T) {
	a := testAllocator(t)

	constructed := 0
	destroyed := 0
	p, err := New[widget](a, 4, 2,
		WithConstructor(func(w *widget) { w.State = 1; constructed++ }),
		WithDestructor(func(w *widget) { destroyed++ }),
	)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 4, p.Idle())

	w := p.Get()
	require.NotNil(t, w)
	assert.Equal(t, 1, w.State)
	assert.Equal(t, 3, p.Idle())

	w.ID = 42
	p.Put(w)
	assert.Equal(t, 4, p.Idle())
	assert.Equal(t, 1, constructed)
	assert.Equal(t, 1, destroyed)

	// returned slots are zeroed on the next Get
	w2 := p.Get()
	require.NotNil(t, w2)
	assert.Equal(t, 0, w2.ID)
	p.Put(w2)
}

func TestElasticityRefill(t *testing.T) {
	a := testAllocator(t)
	p, err := New[widget](a, 1, 3)
	require.NoError(t, err)
	defer p.Close()

	w1 := p.Get()
	require.NotNil(t, w1)
	assert.Equal(t, 0, p.Idle())

	// empty free list triggers a refill of elasticity slots
	w2 := p.Get()
	require.NotNil(t, w2)
	assert.Equal(t, 2, p.Idle())

	p.Put(w1)
	p.Put(w2)
}

func TestElasticityClampedToOne(t *testing.T) {
	a := testAllocator(t)
	p, err := New[widget](a, 0, 0)
	require.NoError(t, err)
	defer p.Close()

	w := p.Get()
	require.NotNil(t, w)
	assert.Equal(t, 0, p.Idle())
	p.Put(w)
}

func TestHandle(t *testing.T) {
	a := testAllocator(t)
	p, err := New[widget](a, 2, 1)
	require.NoError(t, err)
	defer p.Close()

	h, ok := p.Acquire()
	require.True(t, ok)
	require.NotNil(t, h.Object())

	require.NoError(t, h.Close())
	assert.Nil(t, h.Object())
	require.NoError(t, h.Close())
	assert.Equal(t, 2, p.Idle())
}

func TestExhaustion(t *testing.T) {
	r, err := alloc.AcquireRegion(70 * 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Release() })
	a, err := alloc.NewST(r.Bytes())
	require.NoError(t, err)

	type big struct{ buf [2048]byte }
	p, perr := New[big](a, 0, 1)
	require.NoError(t, perr)
	defer p.Close()

	var live []*big
	for {
		w := p.Get()
		if w == nil {
			break
		}
		live = append(live, w)
	}
	require.NotEmpty(t, live)

	p.Put(live[0])
	assert.NotNil(t, p.Get())

	for _, w := range live[1:] {
		p.Put(w)
	}
}

func TestCloseFreesIdleSlots(t *testing.T) {
	a := testAllocator(t)
	p, err := New[widget](a, 8, 1)
	require.NoError(t, err)
	p.Close()
	assert.Equal(t, uint64(0), a.Stats().BytesInUse)
}

func TestStatsSnapshot(t *testing.T) {
	a := testAllocator(t)
	p, err := New[widget](a, 1, 1)
	require.NoError(t, err)
	defer p.Close()

	w := p.Get()
	p.Put(w)
	st := p.StatsSnapshot()
	assert.Equal(t, uint64(1), st["gets"])
	assert.Equal(t, uint64(1), st["puts"])
}
