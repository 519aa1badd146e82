// File: container/lru/lru_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package lru

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-rtl/alloc"
	"github.com/momentics/hioload-rtl/container/hashmap"
)

func testAllocator(t *testing.T) *alloc.Allocator {
	t.Helper()
	r, err := alloc.AcquireRegion(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Release() })
	a, err := alloc.NewST(r.Bytes())
	require.NoError(t, err)
	return a
}

func TestSmoke(t *testing.T) {
	a := testAllocator(t)
	c := New[int, int](a, hashmap.IntHasher, 2)
	require.NotNil(t, c)
	defer c.Close()

	assert.False(t, c.Contains(2))
	require.True(t, c.Put(2, 3))
	assert.True(t, c.Contains(2))

	v, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = c.Get(1)
	assert.False(t, ok)

	require.True(t, c.Put(1, 1))
	require.True(t, c.Put(1, 5))

	v, ok = c.Get(1)
	require.True(t, ok)
	assert.Equal(t, 5, v)

	v, ok = c.Get(2)
	require.True(t, ok)
	assert.Equal(t, 3, v)

	// 1 is now least recently used and gets evicted
	require.True(t, c.Put(9, 10))
	_, ok = c.Get(1)
	assert.False(t, ok)

	v, ok = c.Get(9)
	require.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestReset(t *testing.T) {
	a := testAllocator(t)
	c := New[int, int](a, hashmap.IntHasher, 100)
	require.NotNil(t, c)
	defer c.Close()

	for i := 0; i < 10; i++ {
		require.True(t, c.Put(i, i))
	}
	for i := 0; i < 10; i++ {
		assert.True(t, c.Contains(i))
	}

	assert.Equal(t, 10, c.Len())
	c.Reset()
	assert.Equal(t, 0, c.Len())
	for i := 0; i < 10; i++ {
		assert.False(t, c.Contains(i))
	}

	for i := 0; i < 10; i++ {
		require.True(t, c.Put(i, i+1))
	}
	for i := 0; i < 10; i++ {
		p := c.GetPtr(i)
		require.NotNil(t, p)
		assert.Equal(t, i+1, *p)
	}
}

func TestEvictionOrder(t *testing.T) {
	a := testAllocator(t)
	c := New[int, string](a, hashmap.IntHasher, 3)
	require.NotNil(t, c)
	defer c.Close()

	require.True(t, c.Put(1, "a"))
	require.True(t, c.Put(2, "b"))
	require.True(t, c.Put(3, "c"))

	// touching 1 makes 2 the eviction candidate
	_, ok := c.Get(1)
	require.True(t, ok)
	require.True(t, c.Put(4, "d"))

	assert.False(t, c.Contains(2))
	assert.True(t, c.Contains(1))
	assert.True(t, c.Contains(3))
	assert.True(t, c.Contains(4))
	assert.Equal(t, 3, c.Len())
}

func TestContainsKeepsOrder(t *testing.T) {
	a := testAllocator(t)
	c := New[int, int](a, hashmap.IntHasher, 2)
	require.NotNil(t, c)
	defer c.Close()

	require.True(t, c.Put(1, 1))
	require.True(t, c.Put(2, 2))

	// Contains must not promote key 1
	assert.True(t, c.Contains(1))
	require.True(t, c.Put(3, 3))
	assert.False(t, c.Contains(1))
	assert.True(t, c.Contains(2))
}

func TestRemove(t *testing.T) {
	a := testAllocator(t)
	c := New[int, int](a, hashmap.IntHasher, 4)
	require.NotNil(t, c)
	defer c.Close()

	for i := 1; i <= 4; i++ {
		require.True(t, c.Put(i, i))
	}
	assert.False(t, c.Remove(99))

	// removing head, middle and tail leaves the list consistent
	require.True(t, c.Remove(4))
	require.True(t, c.Remove(2))
	require.True(t, c.Remove(1))
	assert.Equal(t, 1, c.Len())

	v, ok := c.Get(3)
	require.True(t, ok)
	assert.Equal(t, 3, v)

	require.True(t, c.Put(5, 5))
	require.True(t, c.Put(6, 6))
	assert.Equal(t, 3, c.Len())
}

func TestHitPathDoesNotAllocate(t *testing.T) {
	a := testAllocator(t)
	c := New[int, int](a, hashmap.IntHasher, 8)
	require.NotNil(t, c)
	defer c.Close()

	for i := 0; i < 8; i++ {
		require.True(t, c.Put(i, i))
	}
	allocs := a.Stats().Allocs
	for round := 0; round < 100; round++ {
		for i := 0; i < 8; i++ {
			_, ok := c.Get(i)
			require.True(t, ok)
			require.True(t, c.Put(i, i*2))
		}
	}
	assert.Equal(t, allocs, a.Stats().Allocs)
}

func TestCloseReturnsMemory(t *testing.T) {
	a := testAllocator(t)
	c := New[int, int](a, hashmap.IntHasher, 16)
	require.NotNil(t, c)
	for i := 0; i < 16; i++ {
		require.True(t, c.Put(i, i))
	}
	c.Close()
	assert.Equal(t, uint64(0), a.Stats().BytesInUse)
}

func TestBadArguments(t *testing.T) {
	a := testAllocator(t)
	assert.Nil(t, New[int, int](nil, hashmap.IntHasher, 4))
	assert.Nil(t, New[int, int](a, nil, 4))
	assert.Nil(t, New[int, int](a, hashmap.IntHasher, 0))
}
