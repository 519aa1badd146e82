// File: core/tlsf/block.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Physical block header. The size word keeps the free and last flags
// in its two low bits, which are always zero in the size itself since
// block sizes are word aligned. Busy blocks overlay their payload on
// the free-list link fields, so the busy header overhead is two words.

package tlsf

import "unsafe"

const (
	blockFreeBit = uintptr(1) << 0
	blockLastBit = uintptr(1) << 1
	sizeMask     = ^(blockFreeBit | blockLastBit)
)

type blockHeader struct {
	sizeFlags    uintptr
	prevPhysical *blockHeader
	nextFree     *blockHeader
	prevFree     *blockHeader
}

const (
	payloadOffset = 2 * unsafe.Sizeof(uintptr(0))
	minBlockSize  = unsafe.Sizeof(blockHeader{})
)

func (b *blockHeader) size() uintptr {
	return b.sizeFlags & sizeMask
}

func (b *blockHeader) setSize(sz uintptr) {
	b.sizeFlags = sz | (b.sizeFlags &^ sizeMask)
}

func (b *blockHeader) isFree() bool {
	return b.sizeFlags&blockFreeBit != 0
}

func (b *blockHeader) setFree() {
	b.sizeFlags |= blockFreeBit
}

func (b *blockHeader) setBusy() {
	b.sizeFlags &^= blockFreeBit
}

func (b *blockHeader) isLast() bool {
	return b.sizeFlags&blockLastBit != 0
}

func (b *blockHeader) setLast() {
	b.sizeFlags |= blockLastBit
}

func (b *blockHeader) clearLast() {
	b.sizeFlags &^= blockLastBit
}

func (b *blockHeader) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(b), payloadOffset)
}

func headerOf(p unsafe.Pointer) *blockHeader {
	return (*blockHeader)(unsafe.Add(p, -int(payloadOffset)))
}

// nextPhysical is valid only when the block is not last.
func (b *blockHeader) nextPhysical() *blockHeader {
	return (*blockHeader)(unsafe.Add(unsafe.Pointer(b), b.size()))
}

// split carves a free tail block off b at offset sz. The caller marks
// the tail free and inserts it. The last flag moves to the tail, and
// the physical back pointers of both the tail and its successor stay
// consistent.
func split(b *blockHeader, sz uintptr) *blockHeader {
	tail := (*blockHeader)(unsafe.Add(unsafe.Pointer(b), sz))
	tail.sizeFlags = 0
	tail.setSize(b.size() - sz)
	tail.prevPhysical = b
	tail.nextFree = nil
	tail.prevFree = nil
	if b.isLast() {
		tail.setLast()
		b.clearLast()
	} else {
		tail.nextPhysical().prevPhysical = tail
	}
	b.setSize(sz)
	return tail
}
