// File: core/bits/bits_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFls32(t *testing.T) {
	assert.Equal(t, 0, Fls32(0))
	assert.Equal(t, 0, Fls32(1))
	assert.Equal(t, 31, Fls32(0x80000000))
	assert.Equal(t, 30, Fls32(0x7FFFFFFF))
	assert.Equal(t, 31, Fls32(0x80008000))
	assert.Equal(t, 6, Fls32(74))
}

func TestFls64(t *testing.T) {
	assert.Equal(t, 0, Fls64(0))
	assert.Equal(t, 0, Fls64(1))
	assert.Equal(t, 31, Fls64(0x80000000))
	assert.Equal(t, 30, Fls64(0x7FFFFFFF))
	assert.Equal(t, 6, Fls64(74))

	assert.Equal(t, 63, Fls64(0x8000000080000000))
	assert.Equal(t, 59, Fls64(0x0800000080000000))
	assert.Equal(t, 62, Fls64(0x7FFFFFFF7FFFFFFF))
	assert.Equal(t, 63, Fls64(0x8000800080008000))
}

func TestFfs32(t *testing.T) {
	assert.Equal(t, 15, Ffs32(0x8000))
	assert.Equal(t, 0, Ffs32(0xFFFF))

	assert.Equal(t, 0, Ffs32(0))
	assert.Equal(t, 0, Ffs32(1))
	assert.Equal(t, 31, Ffs32(0x80000000))
	assert.Equal(t, 0, Ffs32(0x7FFFFFFF))
	assert.Equal(t, 15, Ffs32(0x80008000))
}

func TestFfs64(t *testing.T) {
	assert.Equal(t, 0, Ffs64(0))
	assert.Equal(t, 0, Ffs64(1))
	assert.Equal(t, 31, Ffs64(0x80000000))
	assert.Equal(t, 0, Ffs64(0x7FFFFFFF))
	assert.Equal(t, 15, Ffs64(0x80008000))

	assert.Equal(t, 31, Ffs64(0x8000000080000000))
	assert.Equal(t, 0, Ffs64(0x7FFFFFFF7FFFFFFF))
	assert.Equal(t, 15, Ffs64(0x8000800080008000))
	assert.Equal(t, 31, Ffs64(0x0800000080000000))
}

func TestAlign(t *testing.T) {
	cases := []struct {
		word, in, out uintptr
	}{
		{8, 2, 8}, {8, 3, 8}, {8, 4, 8}, {8, 8, 8},
		{8, 12, 16}, {8, 13, 16}, {8, 16, 16}, {8, 32, 32},
		{4, 12, 12}, {4, 13, 16}, {4, 60, 60},
		{2, 4, 4},
	}
	for _, c := range cases {
		assert.Equal(t, c.out, Align(c.word, c.in), "align(%d, %d)", c.word, c.in)
	}
}

func TestValidWordSize(t *testing.T) {
	assert.True(t, ValidWordSize(2))
	assert.True(t, ValidWordSize(8))
	assert.False(t, ValidWordSize(0))
	assert.False(t, ValidWordSize(3))
	assert.False(t, ValidWordSize(12))
}
