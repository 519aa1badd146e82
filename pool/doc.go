// Package pool
// Author: momentics <momentics@gmail.com>
//
// Typed object pooling over library allocators. Slots are carved from
// an arena up front and recycled through a free list, so steady-state
// Get/Put cycles touch the allocator only when the pool grows by its
// elasticity step.
package pool
