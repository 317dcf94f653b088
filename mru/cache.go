// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mru implements keyslot.Cache over a most-recently-used ordering of
// physical slot entries.
package mru

import (
	"fmt"

	"github.com/luxfi/keyslot"
)

var _ keyslot.Cache = (*Cache)(nil)

// none terminates the recency list.
const none = -1

// Cache orders registered entries from most recently used (head) to least
// recently used (tail).
//
// Entries live in an arena and the ordering is a doubly linked list of arena
// indices. Cache does no locking: the owner must serialize every call,
// lookups included.
type Cache struct {
	entries    []*Entry
	prev, next []int
	head, tail int
}

// New returns an empty cache with room for size entries. size is only a hint.
func New(size int) *Cache {
	if size < 0 {
		size = 0
	}
	return &Cache{
		entries: make([]*Entry, 0, size),
		prev:    make([]int, 0, size),
		next:    make([]int, 0, size),
		head:    none,
		tail:    none,
	}
}

// Register adds e behind every entry registered before it, so slots
// registered first are the last to be allocated. It must only be called
// while the owner is initializing the cache.
func (c *Cache) Register(e *Entry) {
	if e == nil {
		panic("mru: register of nil entry")
	}
	for _, existing := range c.entries {
		if existing == e || existing.physical == e.physical {
			panic(fmt.Sprintf("mru: physical slot %d registered twice", e.physical))
		}
	}

	c.entries = append(c.entries, e)
	c.prev = append(c.prev, none)
	c.next = append(c.next, none)
	c.pushBack(len(c.entries) - 1)
}

// Allocate binds the tail entry to virtual, promotes it and returns its
// physical index. The previous binding is dropped without notice.
func (c *Cache) Allocate(virtual int32) int32 {
	if c.tail == none {
		panic("mru: allocate from empty cache")
	}

	i := c.tail
	c.entries[i].Bind(virtual)
	c.moveToFront(i)
	return c.entries[i].physical
}

// Find returns the physical slot bound to virtual and promotes it. A miss
// leaves the ordering untouched.
func (c *Cache) Find(virtual int32) (int32, bool) {
	for i := c.head; i != none; i = c.next[i] {
		if c.entries[i].Contains(virtual) {
			c.moveToFront(i)
			return c.entries[i].physical, true
		}
	}
	return 0, false
}

// Release unbinds virtual and demotes its entry to the tail so it is the next
// one allocated.
func (c *Cache) Release(virtual int32) (int32, bool) {
	for i := c.head; i != none; i = c.next[i] {
		if c.entries[i].Contains(virtual) {
			c.entries[i].Unbind()
			c.moveToBack(i)
			return c.entries[i].physical, true
		}
	}
	return 0, false
}

// FindPhysical promotes the entry for physical. It returns true if the entry
// was bound to the virtual slot numerically equal to physical; otherwise the
// entry is rebound to that value and false is returned. physical must have
// been registered.
func (c *Cache) FindPhysical(physical int32) bool {
	for i := c.head; i != none; i = c.next[i] {
		e := c.entries[i]
		if e.physical != physical {
			continue
		}

		c.moveToFront(i)
		if e.Contains(physical) {
			return true
		}
		e.Bind(physical)
		return false
	}
	panic(fmt.Sprintf("mru: physical slot %d is not registered", physical))
}

// Victim returns the binding Allocate would overwrite next.
func (c *Cache) Victim() (int32, bool) {
	if c.tail == none {
		return 0, false
	}
	return c.entries[c.tail].Virtual()
}

// Len returns the number of registered entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Bound returns the number of entries holding a virtual slot.
func (c *Cache) Bound() int {
	n := 0
	for _, e := range c.entries {
		if e.bound {
			n++
		}
	}
	return n
}

// Order returns the physical indices from most to least recently used.
func (c *Cache) Order() []int32 {
	order := make([]int32, 0, len(c.entries))
	for i := c.head; i != none; i = c.next[i] {
		order = append(order, c.entries[i].physical)
	}
	return order
}

// Doubly-linked list operations over arena indices

func (c *Cache) pushFront(i int) {
	c.prev[i] = none
	c.next[i] = c.head
	if c.head != none {
		c.prev[c.head] = i
	}
	c.head = i
	if c.tail == none {
		c.tail = i
	}
}

func (c *Cache) pushBack(i int) {
	c.next[i] = none
	c.prev[i] = c.tail
	if c.tail != none {
		c.next[c.tail] = i
	}
	c.tail = i
	if c.head == none {
		c.head = i
	}
}

func (c *Cache) unlink(i int) {
	if p := c.prev[i]; p != none {
		c.next[p] = c.next[i]
	} else {
		c.head = c.next[i]
	}
	if n := c.next[i]; n != none {
		c.prev[n] = c.prev[i]
	} else {
		c.tail = c.prev[i]
	}
	c.prev[i], c.next[i] = none, none
}

func (c *Cache) moveToFront(i int) {
	if c.head == i {
		return
	}
	c.unlink(i)
	c.pushFront(i)
}

func (c *Cache) moveToBack(i int) {
	if c.tail == i {
		return
	}
	c.unlink(i)
	c.pushBack(i)
}
