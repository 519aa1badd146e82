//go:build !linux && !windows
// +build !linux,!windows

// control/platform_stub.go
// Author: momentics <momentics@gmail.com>
//
// Portable platform probes for the remaining targets.

package control

import (
	"os"
	"runtime"
)

// RegisterPlatformProbes installs portable platform probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.pagesize", func() any {
		return os.Getpagesize()
	})
	dp.RegisterProbe("platform.goroutines", func() any {
		return runtime.NumGoroutine()
	})
}
