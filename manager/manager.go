// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package manager owns the physical key slot registers and shares them
// between virtual key slots.
//
// Slot ids below Config.PhysicalSlots name a register directly. Slot ids in
// the virtual range are handed out by AllocateSlot and are mapped onto
// registers on demand; when a virtual slot was evicted from its register the
// saved key is loaded again.
package manager

import (
	"fmt"
	"sync"

	"github.com/luxfi/metric"

	"github.com/luxfi/keyslot"
	"github.com/luxfi/keyslot/metercacher"
	"github.com/luxfi/keyslot/mru"
	"github.com/luxfi/keyslot/register"
)

// Backend writes key material into the hardware registers.
type Backend interface {
	Load(physical int32, key register.Key) error
	Clear(physical int32) error
}

var _ Backend = (*register.Bank)(nil)

// Option configures a Manager.
type Option func(*options)

type options struct {
	namespace  string
	registerer metric.Registerer
}

// WithMetrics records cache metrics under namespace.
func WithMetrics(namespace string, registerer metric.Registerer) Option {
	return func(o *options) {
		o.namespace = namespace
		o.registerer = registerer
	}
}

// virtualSlot is the saved state of one virtual slot. Direct physical slots
// use the same record with allocated always false.
type virtualSlot struct {
	allocated bool
	loaded    bool
	key       register.Key
}

// Manager is safe for concurrent use. A single mutex is held across every
// cache call.
type Manager struct {
	cfg     Config
	backend Backend

	mu       sync.Mutex
	entries  []*mru.Entry
	ordering *mru.Cache
	cache    keyslot.Cache
	virtual  []virtualSlot
	direct   []virtualSlot
}

// New registers one entry per physical slot, in index order.
func New(cfg Config, backend Backend, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrInvalidConfig)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		cfg:      cfg,
		backend:  backend,
		entries:  make([]*mru.Entry, cfg.PhysicalSlots),
		ordering: mru.New(cfg.PhysicalSlots),
		virtual:  make([]virtualSlot, cfg.VirtualSlots),
		direct:   make([]virtualSlot, cfg.PhysicalSlots),
	}
	for i := range m.entries {
		m.entries[i] = mru.NewEntry(int32(i))
		m.ordering.Register(m.entries[i])
	}

	m.cache = m.ordering
	if o.registerer != nil {
		metered, err := metercacher.New(o.namespace, o.registerer, m.ordering)
		if err != nil {
			return nil, fmt.Errorf("registering key slot metrics: %w", err)
		}
		m.cache = metered
	}

	log.Infof("Key slot manager started with %d physical and %d virtual "+
		"slots (virtual base %d)", cfg.PhysicalSlots, cfg.VirtualSlots,
		cfg.VirtualBase)

	return m, nil
}

// AllocateSlot reserves the lowest free virtual slot.
func (m *Manager) AllocateSlot() (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.virtual {
		if m.virtual[i].allocated {
			continue
		}
		m.virtual[i] = virtualSlot{allocated: true}
		slot := m.cfg.VirtualBase + int32(i)

		log.Debugf("Allocated virtual key slot %d", slot)
		return slot, nil
	}
	return 0, ErrNoFreeSlot
}

// DeallocateSlot frees a virtual slot and wipes the register it occupied. If
// the register cannot be wiped the slot stays allocated and resident.
func (m *Manager) DeallocateSlot(slot int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	vs, err := m.allocatedSlot(slot)
	if err != nil {
		return err
	}

	physical, ok := m.cache.Find(slot)
	if !ok {
		*vs = virtualSlot{}
		log.Debugf("Deallocated virtual key slot %d, not resident", slot)
		return nil
	}

	if err := m.backend.Clear(physical); err != nil {
		return fmt.Errorf("clearing physical slot %d: %w", physical, err)
	}
	m.cache.Release(slot)
	*vs = virtualSlot{}

	log.Debugf("Deallocated virtual key slot %d, cleared physical slot %d",
		slot, physical)
	return nil
}

// LoadKey writes key into the register backing slot. For a virtual slot the
// key is also saved so it can be reloaded after eviction.
func (m *Manager) LoadKey(slot int32, key register.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.isPhysical(slot) {
		m.cache.FindPhysical(slot)
		if err := m.load(slot, slot, key); err != nil {
			m.direct[slot] = virtualSlot{}
			m.cache.Release(slot)
			return err
		}
		m.direct[slot] = virtualSlot{loaded: true, key: key}
		return nil
	}

	vs, err := m.allocatedSlot(slot)
	if err != nil {
		return err
	}
	vs.key = key
	vs.loaded = true

	physical, ok := m.cache.Find(slot)
	if !ok {
		physical = m.allocate(slot)
	}
	if err := m.load(slot, physical, key); err != nil {
		m.cache.Release(slot)
		return err
	}
	return nil
}

// Physical resolves slot to the register holding its key. A virtual slot
// that lost its register is given the least recently used one and its saved
// key is loaded again. A direct physical slot that was taken by a virtual
// slot gets its own key back.
func (m *Manager) Physical(slot int32) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.isPhysical(slot) {
		if err := m.resolveDirect(slot); err != nil {
			return 0, err
		}
		return slot, nil
	}

	vs, err := m.allocatedSlot(slot)
	if err != nil {
		return 0, err
	}
	if physical, ok := m.cache.Find(slot); ok {
		return physical, nil
	}
	if !vs.loaded {
		return 0, fmt.Errorf("%w: %d", ErrKeyNotLoaded, slot)
	}

	physical := m.allocate(slot)
	if err := m.load(slot, physical, vs.key); err != nil {
		// The register no longer holds a valid key for slot.
		m.cache.Release(slot)
		return 0, err
	}
	return physical, nil
}

// Order returns the physical slots from most to least recently used.
func (m *Manager) Order() []int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ordering.Order()
}

// Binding returns the slot id currently bound to the physical register.
func (m *Manager) Binding(physical int32) (int32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cfg.isPhysical(physical) {
		return 0, false
	}
	return m.entries[physical].Virtual()
}

// allocatedSlot returns the state of an allocated virtual slot. m.mu must be
// held.
func (m *Manager) allocatedSlot(slot int32) (*virtualSlot, error) {
	i, ok := m.cfg.virtualIndex(slot)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	if !m.virtual[i].allocated {
		return nil, fmt.Errorf("%w: %d", ErrSlotNotAllocated, slot)
	}
	return &m.virtual[i], nil
}

// allocate takes the least recently used register for slot. m.mu must be
// held.
func (m *Manager) allocate(slot int32) int32 {
	victim, evicted := m.ordering.Victim()
	physical := m.cache.Allocate(slot)
	if evicted {
		log.Debugf("Evicted key slot %d from physical slot %d for "+
			"virtual key slot %d", victim, physical, slot)
	}
	return physical
}

// resolveDirect claims a register addressed by its own index. If a virtual
// slot held it in the meantime, the direct key is loaded again, or the
// register is wiped when there is none. On failure the register is left
// unbound. m.mu must be held.
func (m *Manager) resolveDirect(physical int32) error {
	if m.cache.FindPhysical(physical) {
		return nil
	}

	saved := m.direct[physical]
	if saved.loaded {
		log.Debugf("Physical slot %d reclaimed for direct use, reloading "+
			"its key", physical)
		if err := m.load(physical, physical, saved.key); err != nil {
			m.cache.Release(physical)
			return err
		}
		return nil
	}

	log.Debugf("Physical slot %d reclaimed for direct use, no key to "+
		"reload", physical)
	m.cache.Release(physical)
	if err := m.backend.Clear(physical); err != nil {
		return fmt.Errorf("clearing physical slot %d: %w", physical, err)
	}
	return fmt.Errorf("%w: %d", ErrKeyNotLoaded, physical)
}

func (m *Manager) load(slot, physical int32, key register.Key) error {
	if err := m.backend.Load(physical, key); err != nil {
		return fmt.Errorf("loading key slot %d into physical slot %d: %w",
			slot, physical, err)
	}
	log.Tracef("Loaded key %08x for key slot %d into physical slot %d",
		register.Fingerprint(key), slot, physical)
	return nil
}
