// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package keyslot maps virtual key-slot identifiers onto a small fixed set of
// physical key-slot registers.
package keyslot

// Cache resolves virtual key slots to physical key slots.
//
// Every method reorders the recency list, including the lookups, so a Cache
// must be owned by exactly one caller at a time. Implementations do not lock.
type Cache interface {
	// Allocate binds the least recently used physical slot to virtual and
	// returns its index. Any previous binding of that slot is overwritten.
	Allocate(virtual int32) int32

	// Find returns the physical slot bound to virtual, if any, and marks it
	// most recently used.
	Find(virtual int32) (int32, bool)

	// Release unbinds virtual and returns the physical slot it held. The
	// slot becomes the next one handed out by Allocate.
	Release(virtual int32) (int32, bool)

	// FindPhysical marks the physical slot most recently used and reports
	// whether it was still bound to its own index. If it was not, the slot
	// is rebound to physical.
	FindPhysical(physical int32) bool

	// Len returns the number of registered physical slots.
	Len() int
}
