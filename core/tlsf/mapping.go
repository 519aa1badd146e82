// File: core/tlsf/mapping.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Two-level size-class mapping. The first level partitions block sizes
// by power of two, the second by linear subdivisions inside each power.
// Sizes below minFLIAllocation collapse into row 0 where every class
// holds exactly one word-aligned size.

package tlsf

import (
	mathbits "math/bits"

	"github.com/momentics/hioload-rtl/core/bits"
)

const (
	wordBits  = mathbits.UintSize
	wordBytes = wordBits / 8

	minFLI           = 6 + wordBits/32
	maxFLI           = wordBits - 2
	fliShift         = 5 + wordBits/32
	fliCount         = maxFLI - minFLI + 1
	minFLIAllocation = 1 << minFLI

	slCount = 1 << fliShift
	slWords = slCount / wordBits

	// Row 0 holds the sub-minimum classes at fli == minFLI-1.
	fliRows = fliCount + 1
)

// mappingInsert computes the class a block of the given size belongs
// to.
func mappingInsert(sz uintptr) (fli, sli int) {
	if sz < minFLIAllocation {
		return minFLI - 1, int(sz / wordBytes)
	}
	fli = bits.FlsUint(uint(sz))
	sli = int((sz >> (uintptr(fli) - fliShift)) & (slCount - 1))
	return fli, sli
}

// mappingSearch computes a class guaranteed to hold only blocks at
// least as large as sz. The request is rounded up so that the chosen
// class cannot contain smaller blocks.
func mappingSearch(sz uintptr) (fli, sli int) {
	if sz < minFLIAllocation {
		return minFLI - 1, int(sz / wordBytes)
	}
	f := bits.FlsUint(uint(sz))
	sz += (uintptr(1) << (uintptr(f) - fliShift)) - 1
	return mappingInsert(sz)
}

func rowOf(fli int) int {
	return fli - (minFLI - 1)
}

// slSearchFrom scans a second-level bitmap for the first populated
// class at index >= from. Returns -1 when the row is empty above from.
func slSearchFrom(bm *[slWords]uint, from int) int {
	w := from / wordBits
	m := bm[w] &^ ((uint(1) << (from % wordBits)) - 1)
	for {
		if m != 0 {
			return w*wordBits + bits.FfsUint(m)
		}
		w++
		if w >= slWords {
			return -1
		}
		m = bm[w]
	}
}
