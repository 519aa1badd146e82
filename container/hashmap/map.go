// File: container/hashmap/map.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Chained hash table with amortized incremental resize. During a
// resize two tables are live: entries migrate from main to secondary
// in bounded steps piggybacked on regular operations, so no single
// call rehashes the whole table. Values live behind allocator-owned
// pointers; a migration moves the pointer, never the value, so
// addresses handed out by Get stay valid across resizes.

package hashmap

import (
	"github.com/momentics/hioload-rtl/alloc"
	"github.com/momentics/hioload-rtl/api"
	"github.com/momentics/hioload-rtl/container/vector"
)

// State is the map life-cycle phase.
type State int

const (
	// StateError latches after an allocation failure inside resize
	// bookkeeping. Every later operation fails fast.
	StateError State = iota
	// StateStable means a single live table.
	StateStable
	// StateTransfer means a resize is in flight and both tables hold
	// entries.
	StateTransfer
)

const (
	// defaultLoadPct is the resize threshold as entries per hundred
	// buckets, a maximum load factor of 5.0.
	defaultLoadPct = 500

	// transferBudget bounds how many entries one operation migrates.
	transferBudget = 512
)

type entry[K comparable, V any] struct {
	key K
	val *V
}

type table[K comparable, V any] struct {
	buckets []vector.Vector[entry[K, V]]
	count   int
	power   int
}

// Map is a single-writer chained hash table. Contains and Range are
// the read-only lookups; Get drives resize progress and mutates state.
type Map[K comparable, V any] struct {
	a      api.Allocator
	hash   Hasher[K]
	state  State
	main   table[K, V]
	second table[K, V]

	loadPct uint32
	locked  bool
	cursor  int

	gets      uint64
	puts      uint64
	deletes   uint64
	transfers uint64
	resizes   uint64
}

// Option tunes map construction.
type Option func(*config)

type config struct {
	loadPct      uint32
	initialPower int
}

// WithLoadFactor sets the maximum load factor in percent, 500 means
// 5.0 entries per bucket. Values below one are clamped to one.
func WithLoadFactor(pct uint32) Option {
	return func(c *config) {
		if pct < 1 {
			pct = 1
		}
		c.loadPct = pct
	}
}

// WithInitialBuckets pre-sizes the first table to the smallest prime
// bucket count >= want.
func WithInitialBuckets(want uint32) Option {
	return func(c *config) { c.initialPower = powerForBuckets(want) }
}

// New builds a map on a with the given hasher. Returns nil when the
// initial bucket array cannot be allocated.
func New[K comparable, V any](a api.Allocator, hash Hasher[K], opts ...Option) *Map[K, V] {
	if a == nil || hash == nil {
		return nil
	}
	cfg := config{loadPct: defaultLoadPct, initialPower: minTablePower}
	for _, o := range opts {
		o(&cfg)
	}
	m := &Map[K, V]{a: a, hash: hash, loadPct: cfg.loadPct}
	if !m.makeTable(&m.main, cfg.initialPower) {
		return nil
	}
	m.state = StateStable
	return m
}

func (m *Map[K, V]) makeTable(t *table[K, V], power int) bool {
	n := int(primeForPower(power))
	buckets := alloc.NewSlice[vector.Vector[entry[K, V]]](m.a, n)
	if buckets == nil {
		return false
	}
	for i := range buckets {
		buckets[i].Init(m.a)
	}
	t.buckets = buckets
	t.count = 0
	t.power = power
	return true
}

func (m *Map[K, V]) freeTable(t *table[K, V]) {
	for i := range t.buckets {
		t.buckets[i].Free()
	}
	alloc.DisposeSlice(m.a, t.buckets)
	t.buckets = nil
	t.count = 0
}

func (t *table[K, V]) bucketFor(h uint32) *vector.Vector[entry[K, V]] {
	return &t.buckets[h%uint32(len(t.buckets))]
}

// find returns the chain and position of key, or position -1.
func (t *table[K, V]) find(h uint32, key K) (*vector.Vector[entry[K, V]], int) {
	b := t.bucketFor(h)
	for i := 0; i < b.Len(); i++ {
		if b.Ptr(i).key == key {
			return b, i
		}
	}
	return b, -1
}

// Len returns the total entry count across both tables.
func (m *Map[K, V]) Len() int {
	return m.main.count + m.second.count
}

// Buckets returns the live bucket count. During a transfer this is
// the secondary table's count since that is where new entries land.
func (m *Map[K, V]) Buckets() int {
	if m.state == StateTransfer {
		return len(m.second.buckets)
	}
	return len(m.main.buckets)
}

// State reports the current phase.
func (m *Map[K, V]) State() State { return m.state }

// LockTableSize prevents further automatic resizes. Callers that have
// pre-sized the table and bound the entry count use this to keep
// bucket addresses stable.
func (m *Map[K, V]) LockTableSize() { m.locked = true }

// UnlockTableSize re-enables automatic resizes.
func (m *Map[K, V]) UnlockTableSize() { m.locked = false }

// Get returns the value pointer for key, nil when absent. A call in
// transfer state also migrates a bounded batch of entries.
func (m *Map[K, V]) Get(key K) *V {
	h := m.hash(key)
	switch m.state {
	case StateStable:
		m.gets++
		b, i := m.main.find(h, key)
		var out *V
		if i >= 0 {
			out = b.Ptr(i).val
		}
		m.maybeResize()
		return out
	case StateTransfer:
		m.gets++
		if b, i := m.second.find(h, key); i >= 0 {
			out := b.Ptr(i).val
			m.partialTransfer()
			return out
		}
		b, i := m.main.find(h, key)
		var out *V
		if i >= 0 {
			out = b.Ptr(i).val
		}
		m.partialTransfer()
		return out
	default:
		return nil
	}
}

// Contains reports presence without mutating map state.
func (m *Map[K, V]) Contains(key K) bool {
	if m.state == StateError {
		return false
	}
	h := m.hash(key)
	if m.state == StateTransfer {
		if _, i := m.second.find(h, key); i >= 0 {
			return true
		}
	}
	_, i := m.main.find(h, key)
	return i >= 0
}

// Range calls fn for every live entry until fn returns false. Entries
// are visited exactly once even mid-transfer: a key parked in main
// moves to secondary before any insert under the same key lands
// there, so the tables never share a key. Like Contains, Range does
// not drive the transfer.
func (m *Map[K, V]) Range(fn func(key K, val *V) bool) {
	if m.state == StateError {
		return
	}
	if m.state == StateTransfer {
		if !m.second.visit(fn) {
			return
		}
	}
	m.main.visit(fn)
}

func (t *table[K, V]) visit(fn func(key K, val *V) bool) bool {
	for b := range t.buckets {
		chain := &t.buckets[b]
		for i := 0; i < chain.Len(); i++ {
			e := chain.Ptr(i)
			if !fn(e.key, e.val) {
				return false
			}
		}
	}
	return true
}

// Put stores val under key, overwriting any previous value. Returns
// the live value pointer, nil on allocation failure or in error
// state.
func (m *Map[K, V]) Put(key K, val V) *V {
	h := m.hash(key)
	switch m.state {
	case StateStable:
		m.puts++
		out := m.upsert(&m.main, h, key, val)
		m.maybeResize()
		return out
	case StateTransfer:
		m.puts++
		// An entry still parked in main must move first so the key
		// never lives in both tables.
		if b, i := m.main.find(h, key); i >= 0 {
			moved := b.At(i)
			b.RemoveFast(i)
			m.main.count--
			*moved.val = val
			if !m.second.bucketFor(h).PushBack(moved) {
				alloc.Dispose(m.a, moved.val)
				m.fail()
				return nil
			}
			m.second.count++
			out := moved.val
			m.partialTransfer()
			return out
		}
		out := m.upsert(&m.second, h, key, val)
		m.partialTransfer()
		return out
	default:
		return nil
	}
}

func (m *Map[K, V]) upsert(t *table[K, V], h uint32, key K, val V) *V {
	b, i := t.find(h, key)
	if i >= 0 {
		p := b.Ptr(i).val
		*p = val
		return p
	}
	vp := alloc.New[V](m.a)
	if vp == nil {
		return nil
	}
	*vp = val
	if !b.PushBack(entry[K, V]{key: key, val: vp}) {
		alloc.Dispose(m.a, vp)
		return nil
	}
	t.count++
	return vp
}

// Delete removes key and frees its value. Returns false when the key
// was absent.
func (m *Map[K, V]) Delete(key K) bool {
	h := m.hash(key)
	switch m.state {
	case StateStable:
		m.deletes++
		ok := m.removeFrom(&m.main, h, key)
		m.maybeResize()
		return ok
	case StateTransfer:
		m.deletes++
		ok := m.removeFrom(&m.main, h, key)
		if !ok {
			ok = m.removeFrom(&m.second, h, key)
		}
		m.partialTransfer()
		return ok
	default:
		return false
	}
}

func (m *Map[K, V]) removeFrom(t *table[K, V], h uint32, key K) bool {
	b, i := t.find(h, key)
	if i < 0 {
		return false
	}
	alloc.Dispose(m.a, b.Ptr(i).val)
	b.RemoveFast(i)
	t.count--
	return true
}

func (m *Map[K, V]) maybeResize() {
	if m.locked {
		return
	}
	threshold := len(m.main.buckets) * int(m.loadPct) / 100
	if m.main.count < threshold {
		return
	}
	m.beginTransfer(m.main.power + 1)
}

func (m *Map[K, V]) beginTransfer(power int) {
	if !m.makeTable(&m.second, power) {
		m.fail()
		return
	}
	m.state = StateTransfer
	m.cursor = 0
	m.resizes++
}

// partialTransfer migrates up to transferBudget entries from main to
// secondary, then finishes the resize once main is drained.
func (m *Map[K, V]) partialTransfer() {
	if m.state != StateTransfer {
		return
	}
	budget := transferBudget
	for budget > 0 && m.main.count > 0 {
		b := &m.main.buckets[m.cursor]
		for budget > 0 {
			e, ok := b.PopBack()
			if !ok {
				break
			}
			m.main.count--
			budget--
			h := m.hash(e.key)
			if _, i := m.second.find(h, e.key); i >= 0 {
				// A put during transfer already created the key in
				// secondary; the parked entry is stale.
				alloc.Dispose(m.a, e.val)
				continue
			}
			if !m.second.bucketFor(h).PushBack(e) {
				alloc.Dispose(m.a, e.val)
				m.fail()
				return
			}
			m.second.count++
		}
		if b.Len() == 0 {
			m.cursor++
			if m.cursor >= len(m.main.buckets) {
				m.cursor = 0
			}
		}
	}
	m.transfers++
	if m.main.count == 0 {
		m.finishTransfer()
	}
}

func (m *Map[K, V]) finishTransfer() {
	m.freeTable(&m.main)
	m.main = m.second
	m.second = table[K, V]{}
	m.state = StateStable
	m.cursor = 0
}

// Finalize drains any in-flight transfer completely. No-op in stable
// state, false in error state.
func (m *Map[K, V]) Finalize() bool {
	for m.state == StateTransfer {
		m.partialTransfer()
	}
	return m.state == StateStable
}

// Reserve resizes to the smallest prime bucket count >= want in one
// non-amortized step. The table never shrinks. Returns false on
// allocation failure, which latches the error state.
func (m *Map[K, V]) Reserve(want uint32) bool {
	if m.state == StateError {
		return false
	}
	if !m.Finalize() {
		return false
	}
	power := powerForBuckets(want)
	if power <= m.main.power {
		return true
	}
	m.beginTransfer(power)
	return m.Finalize()
}

// Clear drops every entry from both tables and returns to stable
// state. Main's bucket storage is kept.
func (m *Map[K, V]) Clear() {
	if m.state == StateError {
		return
	}
	m.dropEntries(&m.main)
	if m.state == StateTransfer {
		m.dropEntries(&m.second)
		m.freeTable(&m.second)
		m.second = table[K, V]{}
	}
	m.state = StateStable
	m.cursor = 0
}

func (m *Map[K, V]) dropEntries(t *table[K, V]) {
	for i := range t.buckets {
		b := &t.buckets[i]
		for {
			e, ok := b.PopBack()
			if !ok {
				break
			}
			alloc.Dispose(m.a, e.val)
		}
	}
	t.count = 0
}

// Close frees all entries and both tables. The map is unusable
// afterwards.
func (m *Map[K, V]) Close() {
	if m.main.buckets != nil {
		m.dropEntries(&m.main)
		m.freeTable(&m.main)
	}
	if m.second.buckets != nil {
		m.dropEntries(&m.second)
		m.freeTable(&m.second)
	}
	m.state = StateError
}

func (m *Map[K, V]) fail() {
	m.state = StateError
}

// StatsSnapshot implements api.StatsSource.
func (m *Map[K, V]) StatsSnapshot() map[string]uint64 {
	return map[string]uint64{
		"gets":      m.gets,
		"puts":      m.puts,
		"deletes":   m.deletes,
		"transfers": m.transfers,
		"resizes":   m.resizes,
		"entries":   uint64(m.Len()),
		"buckets":   uint64(m.Buckets()),
	}
}

var _ api.StatsSource = (*Map[string, int])(nil)
