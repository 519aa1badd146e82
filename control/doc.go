// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection layer for the runtime
// library: arenas, pools, maps and tasks publish their counters here.
//
// Provides concurrent-safe state handling primitives including:
//   - Named stat source registration and aggregated snapshots
//   - State export, debug hooks, and probe registration
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
