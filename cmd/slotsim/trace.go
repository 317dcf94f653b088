// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tailscale/hujson"

	"github.com/luxfi/keyslot/manager"
	"github.com/luxfi/keyslot/mru"
	"github.com/luxfi/keyslot/register"
)

// Ops replayed directly against the slot cache.
const (
	opAllocate     = "allocate"
	opFind         = "find"
	opRelease      = "release"
	opFindPhysical = "find_physical"
)

// Ops replayed against the key slot manager.
const (
	opAllocSlot   = "alloc_slot"
	opDeallocSlot = "dealloc_slot"
	opLoadKey     = "load_key"
	opPhysical    = "physical"
)

var errUnknownOp = errors.New("unknown trace op")

// trace is the top level of a trace file.
type trace struct {
	Steps []step `json:"steps"`
}

type step struct {
	Op   string `json:"op"`
	Slot int32  `json:"slot"`
	Key  string `json:"key,omitempty"`
}

// result is the outcome of one step. Physical and Found are only set by ops
// that produce them.
type result struct {
	Step     int     `json:"step"`
	Op       string  `json:"op"`
	Slot     int32   `json:"slot"`
	Physical *int32  `json:"physical,omitempty"`
	Found    *bool   `json:"found,omitempty"`
	Error    string  `json:"error,omitempty"`
	Order    []int32 `json:"order"`
}

func (r result) String() string {
	s := fmt.Sprintf("%3d %-13s slot=%-4d", r.Step, r.Op, r.Slot)
	if r.Physical != nil {
		s += fmt.Sprintf(" physical=%d", *r.Physical)
	}
	if r.Found != nil {
		s += fmt.Sprintf(" found=%t", *r.Found)
	}
	if r.Error != "" {
		s += " error=" + r.Error
	}
	return s + fmt.Sprintf(" order=%v", r.Order)
}

// parseTrace reads a trace in HuJSON, so comments and trailing commas are
// allowed.
func parseTrace(data []byte) (*trace, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid HuJSON: %w", err)
	}

	var t trace
	if err := json.Unmarshal(standardized, &t); err != nil {
		return nil, fmt.Errorf("invalid trace: %w", err)
	}
	for i, s := range t.Steps {
		switch s.Op {
		case opAllocate, opFind, opRelease, opFindPhysical,
			opAllocSlot, opDeallocSlot, opPhysical:
		case opLoadKey:
			if _, err := parseKey(s.Key); err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("step %d: %w %q", i, errUnknownOp, s.Op)
		}
	}
	return &t, nil
}

func parseKey(s string) (register.Key, error) {
	var key register.Key
	b, err := hex.DecodeString(s)
	if err != nil {
		return key, fmt.Errorf("invalid key: %w", err)
	}
	if len(b) != register.KeySize {
		return key, fmt.Errorf("invalid key: want %d bytes, got %d",
			register.KeySize, len(b))
	}
	copy(key[:], b)
	return key, nil
}

// simulator replays cache ops against a bare slot cache and manager ops
// against a manager backed by a simulated register bank.
type simulator struct {
	cache   *mru.Cache
	manager *manager.Manager
}

func newSimulator(cfg manager.Config) (*simulator, error) {
	cache := mru.New(cfg.PhysicalSlots)
	for i := 0; i < cfg.PhysicalSlots; i++ {
		cache.Register(mru.NewEntry(int32(i)))
	}

	m, err := manager.New(cfg, register.NewBank(cfg.PhysicalSlots))
	if err != nil {
		return nil, err
	}
	return &simulator{cache: cache, manager: m}, nil
}

func (s *simulator) run(t *trace) []result {
	results := make([]result, 0, len(t.Steps))
	for i, st := range t.Steps {
		results = append(results, s.step(i, st))
	}
	return results
}

func (s *simulator) step(i int, st step) result {
	r := result{Step: i, Op: st.Op, Slot: st.Slot}
	setPhysical := func(p int32) { r.Physical = &p }
	setFound := func(ok bool) { r.Found = &ok }
	setErr := func(err error) {
		if err != nil {
			r.Error = err.Error()
		}
	}

	switch st.Op {
	case opAllocate:
		setPhysical(s.cache.Allocate(st.Slot))
	case opFind:
		p, ok := s.cache.Find(st.Slot)
		setFound(ok)
		if ok {
			setPhysical(p)
		}
	case opRelease:
		p, ok := s.cache.Release(st.Slot)
		setFound(ok)
		if ok {
			setPhysical(p)
		}
	case opFindPhysical:
		if st.Slot < 0 || int(st.Slot) >= s.cache.Len() {
			r.Error = fmt.Sprintf("physical slot %d is not registered", st.Slot)
			break
		}
		setFound(s.cache.FindPhysical(st.Slot))

	case opAllocSlot:
		slot, err := s.manager.AllocateSlot()
		r.Slot = slot
		setErr(err)
	case opDeallocSlot:
		setErr(s.manager.DeallocateSlot(st.Slot))
	case opLoadKey:
		key, err := parseKey(st.Key)
		if err == nil {
			err = s.manager.LoadKey(st.Slot, key)
		}
		setErr(err)
	case opPhysical:
		p, err := s.manager.Physical(st.Slot)
		if err == nil {
			setPhysical(p)
		}
		setErr(err)
	}

	switch st.Op {
	case opAllocate, opFind, opRelease, opFindPhysical:
		r.Order = s.cache.Order()
	default:
		r.Order = s.manager.Order()
	}
	return r
}
