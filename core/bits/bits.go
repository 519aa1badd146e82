// File: core/bits/bits.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bit scans and word alignment backing the allocator size-class
// mapping.

package bits

import mathbits "math/bits"

// Fls32 returns the index of the most significant set bit of x.
// Fls32(0) and Fls32(1) both return 0.
func Fls32(x uint32) int {
	if x == 0 {
		return 0
	}
	return 31 - mathbits.LeadingZeros32(x)
}

// Fls64 is the 64-bit counterpart of Fls32.
func Fls64(x uint64) int {
	if x == 0 {
		return 0
	}
	return 63 - mathbits.LeadingZeros64(x)
}

// Ffs32 returns the index of the least significant set bit of x.
// Ffs32(0) returns 0.
func Ffs32(x uint32) int {
	if x == 0 {
		return 0
	}
	return mathbits.TrailingZeros32(x)
}

// Ffs64 is the 64-bit counterpart of Ffs32.
func Ffs64(x uint64) int {
	if x == 0 {
		return 0
	}
	return mathbits.TrailingZeros64(x)
}

// FlsUint returns the index of the most significant set bit of a
// native word.
func FlsUint(x uint) int {
	if x == 0 {
		return 0
	}
	return mathbits.UintSize - 1 - mathbits.LeadingZeros(x)
}

// FfsUint returns the index of the least significant set bit of a
// native word.
func FfsUint(x uint) int {
	if x == 0 {
		return 0
	}
	return mathbits.TrailingZeros(x)
}

// ValidWordSize reports whether w is a non-zero power of two.
func ValidWordSize(w uintptr) bool {
	return w != 0 && w&(w-1) == 0
}

// Align rounds sz up to the next multiple of wordSize. wordSize must
// be a non-zero power of two.
func Align(wordSize, sz uintptr) uintptr {
	return (sz + wordSize - 1) &^ (wordSize - 1)
}
