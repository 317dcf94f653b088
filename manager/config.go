// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package manager

import (
	"fmt"
	"math"
)

// Default slot space sizes.
const (
	// DefaultPhysicalSlots is the number of hardware registers.
	DefaultPhysicalSlots = 6
	// DefaultVirtualSlots is the number of virtual slots.
	DefaultVirtualSlots = 16
	// DefaultVirtualBase is the first virtual slot id.
	DefaultVirtualBase = 16
)

// Config sizes the physical and virtual key slot spaces.
type Config struct {
	// PhysicalSlots is the number of hardware registers. Slot ids in
	// [0, PhysicalSlots) address a register directly.
	PhysicalSlots int `long:"physicalslots" description:"Number of physical key slot registers"`

	// VirtualSlots is the number of virtual slots handed out by
	// AllocateSlot.
	VirtualSlots int `long:"virtualslots" description:"Number of virtual key slots"`

	// VirtualBase is the first virtual slot id. It must not overlap the
	// physical range.
	VirtualBase int32 `long:"virtualbase" description:"First virtual key slot id"`
}

// DefaultConfig returns a Config with the default slot space sizes.
func DefaultConfig() Config {
	return Config{
		PhysicalSlots: DefaultPhysicalSlots,
		VirtualSlots:  DefaultVirtualSlots,
		VirtualBase:   DefaultVirtualBase,
	}
}

// Validate checks that the slot spaces are non-empty and disjoint.
func (c Config) Validate() error {
	switch {
	case c.PhysicalSlots <= 0:
		return fmt.Errorf("%w: physical slots must be positive, got %d",
			ErrInvalidConfig, c.PhysicalSlots)
	case c.VirtualSlots <= 0:
		return fmt.Errorf("%w: virtual slots must be positive, got %d",
			ErrInvalidConfig, c.VirtualSlots)
	case int64(c.VirtualBase) < int64(c.PhysicalSlots):
		return fmt.Errorf("%w: virtual base %d overlaps physical slots [0, %d)",
			ErrInvalidConfig, c.VirtualBase, c.PhysicalSlots)
	case int64(c.VirtualBase)+int64(c.VirtualSlots) > math.MaxInt32:
		return fmt.Errorf("%w: virtual range overflows int32", ErrInvalidConfig)
	}
	return nil
}

// isPhysical reports whether slot addresses a register directly.
func (c Config) isPhysical(slot int32) bool {
	return slot >= 0 && int(slot) < c.PhysicalSlots
}

// virtualIndex maps slot into [0, VirtualSlots).
func (c Config) virtualIndex(slot int32) (int, bool) {
	i := int64(slot) - int64(c.VirtualBase)
	if i < 0 || i >= int64(c.VirtualSlots) {
		return 0, false
	}
	return int(i), true
}
