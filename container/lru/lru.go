// File: container/lru/lru.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Least-recently-used cache over pooled list nodes. Nodes come from an
// object pool sized to the cache capacity and the key index is a hash
// map with a locked table size, so Get, and Put on a key already
// cached, perform no allocator calls. Inserting a new key allocates
// the index's value slot, and an eviction frees one.

package lru

import (
	"github.com/momentics/hioload-rtl/api"
	"github.com/momentics/hioload-rtl/container/hashmap"
	"github.com/momentics/hioload-rtl/pool"
)

type node[K comparable, V any] struct {
	key  K
	val  V
	prev *node[K, V]
	next *node[K, V]
}

// Cache is a fixed-capacity LRU cache. Not safe for concurrent use.
type Cache[K comparable, V any] struct {
	head     *node[K, V]
	tail     *node[K, V]
	index    *hashmap.Map[K, *node[K, V]]
	nodes    *pool.Pool[node[K, V]]
	capacity int
	size     int
}

// New builds a cache holding at most capacity entries. The key index
// is pre-sized for that many entries and its table size locked, so
// inserts never trigger a rehash. Returns nil when capacity is not
// positive or the backing structures cannot be allocated.
func New[K comparable, V any](a api.Allocator, hash hashmap.Hasher[K], capacity int) *Cache[K, V] {
	if a == nil || hash == nil || capacity < 1 {
		return nil
	}
	want := uint32(capacity/5 + 1)
	idx := hashmap.New[K, *node[K, V]](a, hash, hashmap.WithInitialBuckets(want))
	if idx == nil {
		return nil
	}
	idx.LockTableSize()
	nodes, err := pool.New[node[K, V]](a, capacity, 1)
	if err != nil {
		idx.Close()
		return nil
	}
	return &Cache[K, V]{index: idx, nodes: nodes, capacity: capacity}
}

// Cap returns the maximum entry count.
func (c *Cache[K, V]) Cap() int { return c.capacity }

// Len returns the current entry count.
func (c *Cache[K, V]) Len() int { return c.size }

// Contains reports presence without touching the usage order.
func (c *Cache[K, V]) Contains(key K) bool {
	return c.index.Contains(key)
}

// Get copies the cached value for key and promotes its entry to most
// recently used. The usage order is untouched on a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	pn := c.index.Get(key)
	if pn == nil {
		return zero, false
	}
	n := *pn
	c.takeNode(n)
	c.pushFront(n)
	return n.val, true
}

// GetPtr returns the address of the cached value and promotes its
// entry. The pointer is invalidated by any later call on the cache,
// callers must not hold it across operations.
func (c *Cache[K, V]) GetPtr(key K) *V {
	pn := c.index.Get(key)
	if pn == nil {
		return nil
	}
	n := *pn
	c.takeNode(n)
	c.pushFront(n)
	return &n.val
}

// Put inserts or overwrites the value for key as the most recently
// used entry, evicting the least recently used one at capacity.
// Returns false when a node or index slot cannot be allocated.
func (c *Cache[K, V]) Put(key K, val V) bool {
	if pn := c.index.Get(key); pn != nil {
		n := *pn
		c.takeNode(n)
		n.val = val
		c.pushFront(n)
		return true
	}

	if c.size == c.capacity {
		c.index.Delete(c.tail.key)
		c.popBack()
	}

	n := c.nodes.Get()
	if n == nil {
		return false
	}
	n.key = key
	n.val = val
	if c.index.Put(key, n) == nil {
		c.nodes.Put(n)
		return false
	}
	c.pushFront(n)
	return true
}

// Remove drops the entry for key. Returns false when absent.
func (c *Cache[K, V]) Remove(key K) bool {
	pn := c.index.Get(key)
	if pn == nil {
		return false
	}
	n := *pn
	c.takeNode(n)
	c.index.Delete(key)
	c.nodes.Put(n)
	return true
}

// Reset drops every entry but keeps the cache usable.
func (c *Cache[K, V]) Reset() {
	for c.head != nil {
		c.popBack()
	}
	c.index.Clear()
}

// Close releases the node pool and key index. The cache is unusable
// afterwards.
func (c *Cache[K, V]) Close() {
	c.Reset()
	c.nodes.Close()
	c.index.Close()
}

func (c *Cache[K, V]) popBack() {
	switch c.size {
	case 0:
		return
	case 1:
		n := c.head
		c.head = nil
		c.tail = nil
		c.nodes.Put(n)
	default:
		n := c.tail
		c.tail = n.prev
		c.tail.next = nil
		c.nodes.Put(n)
	}
	c.size--
}

func (c *Cache[K, V]) pushFront(n *node[K, V]) {
	if c.size == 0 {
		c.head = n
		c.tail = n
		n.prev = nil
		n.next = nil
	} else {
		n.next = c.head
		n.prev = nil
		c.head.prev = n
		c.head = n
	}
	c.size++
}

// takeNode unlinks n from the usage list.
func (c *Cache[K, V]) takeNode(n *node[K, V]) {
	prev := n.prev
	next := n.next
	n.prev = nil
	n.next = nil

	switch c.size {
	case 0:
		return
	case 1:
		c.head = nil
		c.tail = nil
	default:
		switch n {
		case c.head:
			c.head = next
			next.prev = nil
		case c.tail:
			c.tail = prev
			prev.next = nil
		default:
			prev.next = next
			next.prev = prev
		}
	}
	c.size--
}
