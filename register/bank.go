// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package register simulates a bank of hardware AES key-slot registers.
package register

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaolacci/murmur3"
)

// KeySize is the size of an AES-128 key held by one register.
const KeySize = 16

// ErrInvalidRegister is returned for a register index outside the bank.
var ErrInvalidRegister = errors.New("invalid key slot register")

// Key is the content of one register.
type Key [KeySize]byte

// Bank is a fixed set of key registers. It is safe for concurrent use.
type Bank struct {
	mu     sync.Mutex
	keys   []Key
	loaded []bool
}

// NewBank returns a bank of size cleared registers.
func NewBank(size int) *Bank {
	if size < 0 {
		size = 0
	}
	return &Bank{
		keys:   make([]Key, size),
		loaded: make([]bool, size),
	}
}

// Size returns the number of registers.
func (b *Bank) Size() int {
	return len(b.keys)
}

// Load writes key into the register.
func (b *Bank) Load(physical int32, key Key) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(physical); err != nil {
		return err
	}
	b.keys[physical] = key
	b.loaded[physical] = true
	return nil
}

// Clear wipes the register.
func (b *Bank) Clear(physical int32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(physical); err != nil {
		return err
	}
	b.keys[physical] = Key{}
	b.loaded[physical] = false
	return nil
}

// Key returns the register content, if a key is loaded.
func (b *Bank) Key(physical int32) (Key, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.check(physical) != nil || !b.loaded[physical] {
		return Key{}, false
	}
	return b.keys[physical], true
}

func (b *Bank) check(physical int32) error {
	if physical < 0 || int(physical) >= len(b.keys) {
		return fmt.Errorf("%w: %d", ErrInvalidRegister, physical)
	}
	return nil
}

// Fingerprint identifies key in logs without revealing it.
func Fingerprint(key Key) uint32 {
	return murmur3.Sum32(key[:])
}
