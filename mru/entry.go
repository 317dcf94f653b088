// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mru

// Entry is one physical key slot and the virtual slot currently bound to it.
//
// Entries are created by the owner of the hardware slots and handed to a
// Cache with Register. The Cache only ever changes the binding.
type Entry struct {
	physical int32
	virtual  int32
	bound    bool
}

// NewEntry returns an unbound entry for the physical slot.
func NewEntry(physical int32) *Entry {
	return &Entry{physical: physical}
}

// Contains reports whether virtual is bound to this entry. An unbound entry
// contains nothing.
func (e *Entry) Contains(virtual int32) bool {
	return e.bound && e.virtual == virtual
}

// Bind overwrites the current binding.
func (e *Entry) Bind(virtual int32) {
	e.virtual = virtual
	e.bound = true
}

// Unbind clears the binding.
func (e *Entry) Unbind() {
	e.virtual = 0
	e.bound = false
}

// Physical returns the physical slot index.
func (e *Entry) Physical() int32 {
	return e.physical
}

// Virtual returns the bound virtual slot, if any.
func (e *Entry) Virtual() (int32, bool) {
	return e.virtual, e.bound
}
