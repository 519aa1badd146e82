// File: alloc/region.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Page-backed memory regions used to host arenas. On Linux the bytes
// come straight from mmap; elsewhere a heap slice stands in.

package alloc

import (
	"github.com/pkg/errors"

	"github.com/momentics/hioload-rtl/api"
)

// Region is one contiguous byte range suitable for MakeArena.
type Region struct {
	buf    []byte
	mapped bool
}

type regionConfig struct {
	hugePages bool
}

// RegionOption tunes region acquisition.
type RegionOption func(*regionConfig)

// WithHugePages asks for huge pages first, falling back to standard
// pages when the kernel refuses.
func WithHugePages() RegionOption {
	return func(c *regionConfig) { c.hugePages = true }
}

// AcquireRegion maps a region of capacity bytes.
func AcquireRegion(capacity int, opts ...RegionOption) (*Region, error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "region capacity %d", capacity)
	}
	var cfg regionConfig
	for _, o := range opts {
		o(&cfg)
	}
	return acquireRegion(capacity, cfg)
}

// Bytes returns the backing slice, nil after Release.
func (r *Region) Bytes() []byte {
	return r.buf
}

// Capacity returns the region length in bytes.
func (r *Region) Capacity() int {
	return len(r.buf)
}

// Release unmaps the region. Safe to call more than once.
func (r *Region) Release() error {
	if r.buf == nil {
		return nil
	}
	err := releaseRegion(r)
	r.buf = nil
	r.mapped = false
	return err
}
