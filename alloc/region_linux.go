//go:build linux
// +build linux

// Package alloc
// Author: momentics <momentics@gmail.com>
//
// Linux region acquisition via anonymous private mappings.

package alloc

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func acquireRegion(capacity int, cfg regionConfig) (*Region, error) {
	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_PRIVATE | unix.MAP_ANONYMOUS

	if cfg.hugePages {
		buf, err := unix.Mmap(-1, 0, capacity, prot, flags|unix.MAP_HUGETLB)
		if err == nil {
			return &Region{buf: buf, mapped: true}, nil
		}
		// no hugepage backing available, use standard pages
	}

	buf, err := unix.Mmap(-1, 0, capacity, prot, flags)
	if err != nil {
		return nil, errors.Wrap(err, "mmap region")
	}
	return &Region{buf: buf, mapped: true}, nil
}

func releaseRegion(r *Region) error {
	if !r.mapped {
		return nil
	}
	// advisory only; the munmap below reclaims the pages either way
	_ = unix.Madvise(r.buf, unix.MADV_DONTNEED)
	if err := unix.Munmap(r.buf); err != nil {
		return errors.Wrap(err, "munmap region")
	}
	return nil
}
