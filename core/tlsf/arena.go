// File: core/tlsf/arena.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Constant-time two-level segregated-fit arena over a caller-provided
// byte region. The arena index lives at the start of the region; the
// remainder is carved into physically chained blocks. The arena itself
// is not thread safe, callers serialize through the alloc facade.

package tlsf

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/momentics/hioload-rtl/api"
	"github.com/momentics/hioload-rtl/core/bits"
)

// arenaHeader is the in-region index: one first-level bitmap, one
// second-level bitmap per row, and the free-list heads.
type arenaHeader struct {
	flBitmap  uint
	slBitmap  [fliRows][slWords]uint
	freeLists [fliRows][slCount]*blockHeader
}

const headerSize = unsafe.Sizeof(arenaHeader{})

// Arena manages a single memory region. Counters are kept on the Go
// side so the in-region index stays byte-stable across a full
// allocate/free cycle.
type Arena struct {
	hdr    *arenaHeader
	region []byte

	allocs     atomic.Uint64
	frees      atomic.Uint64
	failures   atomic.Uint64
	bytesInUse atomic.Uint64
}

// MinimumArenaSize returns the smallest region MakeArena accepts.
func MinimumArenaSize() uintptr {
	return headerSize + minBlockSize
}

// MaximumArenaSize returns the largest region MakeArena accepts.
// Regions beyond 4 GiB - 1 are out of contract regardless of word
// size.
func MaximumArenaSize() uintptr {
	limit := uint64(1)<<(maxFLI+1) - 1
	if limit > math.MaxUint32 {
		limit = math.MaxUint32
	}
	return uintptr(limit)
}

// MakeArena initializes an arena over region. The region must be word
// aligned and between MinimumArenaSize and MaximumArenaSize bytes. On
// failure the region is left untouched.
func MakeArena(region []byte) (*Arena, error) {
	if len(region) == 0 {
		return nil, errors.WithStack(api.ErrNilRegion)
	}
	base := uintptr(unsafe.Pointer(&region[0]))
	if base%uintptr(wordBytes) != 0 {
		return nil, errors.WithStack(api.ErrMisaligned)
	}
	if uintptr(len(region)) < MinimumArenaSize() {
		return nil, errors.Wrapf(api.ErrRegionTooSmall, "%d < %d", len(region), MinimumArenaSize())
	}
	if uintptr(len(region)) > MaximumArenaSize() {
		return nil, errors.Wrapf(api.ErrRegionTooLarge, "%d > %d", len(region), MaximumArenaSize())
	}

	hdr := (*arenaHeader)(unsafe.Pointer(&region[0]))
	*hdr = arenaHeader{}

	a := &Arena{hdr: hdr, region: region}

	first := (*blockHeader)(unsafe.Add(unsafe.Pointer(hdr), headerSize))
	space := (uintptr(len(region)) - headerSize) &^ (uintptr(wordBytes) - 1)
	first.sizeFlags = 0
	first.setSize(space)
	first.prevPhysical = nil
	first.nextFree = nil
	first.prevFree = nil
	first.setFree()
	first.setLast()
	a.insertBlock(first)

	return a, nil
}

// Capacity returns the byte count managed as blocks, excluding the
// in-region index.
func (a *Arena) Capacity() uintptr {
	return (uintptr(len(a.region)) - headerSize) &^ (uintptr(wordBytes) - 1)
}

// Alloc returns a word-aligned payload of at least sz bytes, or nil
// when no block can serve the request. A zero-size request is clamped
// to the minimum payload.
func (a *Arena) Alloc(sz uintptr) unsafe.Pointer {
	if sz > MaximumArenaSize() {
		a.failures.Add(1)
		return nil
	}
	need := bits.Align(uintptr(wordBytes), sz) + payloadOffset
	if need < minBlockSize {
		need = minBlockSize
	}

	fli, sli := mappingSearch(need)
	blk := a.findSuitable(fli, sli)
	if blk == nil {
		a.failures.Add(1)
		return nil
	}
	a.unlinkBlock(blk)

	if blk.size()-need >= minBlockSize {
		tail := split(blk, need)
		tail.setFree()
		a.insertBlock(tail)
	}

	blk.setBusy()
	a.allocs.Add(1)
	a.bytesInUse.Add(uint64(blk.size()))
	return blk.payload()
}

// Free returns a payload previously obtained from Alloc. Nil is a
// no-op. Adjacent free neighbours coalesce eagerly.
func (a *Arena) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	blk := headerOf(p)
	a.frees.Add(1)
	a.bytesInUse.Add(^(uint64(blk.size()) - 1))

	blk.setFree()
	blk = a.mergePrev(blk)
	blk = a.mergeNext(blk)
	a.insertBlock(blk)
}

// StatsSnapshot implements api.StatsSource.
func (a *Arena) StatsSnapshot() map[string]uint64 {
	return map[string]uint64{
		"allocs":       a.allocs.Load(),
		"frees":        a.frees.Load(),
		"failures":     a.failures.Load(),
		"bytes_in_use": a.bytesInUse.Load(),
	}
}

// Stats returns the counter snapshot as a typed struct.
func (a *Arena) Stats() api.AllocatorStats {
	return api.AllocatorStats{
		Allocs:     a.allocs.Load(),
		Frees:      a.frees.Load(),
		Failures:   a.failures.Load(),
		BytesInUse: a.bytesInUse.Load(),
	}
}

var _ api.StatsSource = (*Arena)(nil)

func (a *Arena) insertBlock(b *blockHeader) {
	fli, sli := mappingInsert(b.size())
	row := rowOf(fli)
	head := a.hdr.freeLists[row][sli]
	b.nextFree = head
	b.prevFree = nil
	if head != nil {
		head.prevFree = b
	}
	a.hdr.freeLists[row][sli] = b
	a.hdr.slBitmap[row][sli/wordBits] |= uint(1) << (sli % wordBits)
	a.hdr.flBitmap |= uint(1) << row
}

func (a *Arena) unlinkBlock(b *blockHeader) {
	fli, sli := mappingInsert(b.size())
	row := rowOf(fli)
	if b.prevFree != nil {
		b.prevFree.nextFree = b.nextFree
	} else {
		a.hdr.freeLists[row][sli] = b.nextFree
	}
	if b.nextFree != nil {
		b.nextFree.prevFree = b.prevFree
	}
	b.nextFree = nil
	b.prevFree = nil

	if a.hdr.freeLists[row][sli] == nil {
		a.hdr.slBitmap[row][sli/wordBits] &^= uint(1) << (sli % wordBits)
		empty := true
		for _, w := range a.hdr.slBitmap[row] {
			if w != 0 {
				empty = false
				break
			}
		}
		if empty {
			a.hdr.flBitmap &^= uint(1) << row
		}
	}
}

// findSuitable locates the head of the first populated class at or
// above (fli, sli).
func (a *Arena) findSuitable(fli, sli int) *blockHeader {
	row := rowOf(fli)
	if row >= fliRows {
		return nil
	}
	if s := slSearchFrom(&a.hdr.slBitmap[row], sli); s >= 0 {
		return a.hdr.freeLists[row][s]
	}
	mask := a.hdr.flBitmap &^ ((uint(1) << (row + 1)) - 1)
	if mask == 0 {
		return nil
	}
	r := bits.FfsUint(mask)
	s := slSearchFrom(&a.hdr.slBitmap[r], 0)
	if s < 0 {
		return nil
	}
	return a.hdr.freeLists[r][s]
}

func (a *Arena) mergePrev(b *blockHeader) *blockHeader {
	prev := b.prevPhysical
	if prev == nil || !prev.isFree() {
		return b
	}
	a.unlinkBlock(prev)
	prev.setSize(prev.size() + b.size())
	if b.isLast() {
		b.clearLast()
		prev.setLast()
	} else {
		prev.nextPhysical().prevPhysical = prev
	}
	return prev
}

func (a *Arena) mergeNext(b *blockHeader) *blockHeader {
	if b.isLast() {
		return b
	}
	next := b.nextPhysical()
	if !next.isFree() {
		return b
	}
	a.unlinkBlock(next)
	wasLast := next.isLast()
	next.clearLast()
	b.setSize(b.size() + next.size())
	if wasLast {
		b.setLast()
	} else {
		b.nextPhysical().prevPhysical = b
	}
	return b
}
