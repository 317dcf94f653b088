// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package manager

import "errors"

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid key slot config")

	// ErrInvalidSlot is returned for a slot id that is neither a physical
	// slot nor inside the virtual range.
	ErrInvalidSlot = errors.New("invalid key slot")

	// ErrNoFreeSlot is returned when every virtual slot is allocated.
	ErrNoFreeSlot = errors.New("no free virtual key slot")

	// ErrSlotNotAllocated is returned when a virtual slot is used before
	// AllocateSlot handed it out.
	ErrSlotNotAllocated = errors.New("virtual key slot not allocated")

	// ErrKeyNotLoaded is returned when a virtual slot must be loaded into
	// hardware but no key was ever set for it.
	ErrKeyNotLoaded = errors.New("no key loaded for virtual key slot")
)
