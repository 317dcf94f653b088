// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metercacher provides a metered keyslot.Cache.
package metercacher

import (
	"time"

	"github.com/luxfi/metric"

	"github.com/luxfi/keyslot"
)

var _ keyslot.Cache = (*Cache)(nil)

// victimer is implemented by caches that can report the binding the next
// Allocate overwrites.
type victimer interface {
	Victim() (int32, bool)
}

// bounder is implemented by caches that can count their bound slots.
type bounder interface {
	Bound() int
}

// Cache wraps a keyslot.Cache with metrics.
//
// Cache adds no locking of its own; the wrapped cache's ownership rules
// apply unchanged.
type Cache struct {
	keyslot.Cache
	metrics *cacheMetrics
}

// New creates a new metered cache wrapper.
func New(
	namespace string,
	registry metric.Registerer,
	c keyslot.Cache,
) (*Cache, error) {
	metrics, err := newMetrics(namespace, registry)
	mc := &Cache{
		Cache:   c,
		metrics: metrics,
	}
	mc.updateGauges()
	return mc, err
}

func (c *Cache) Allocate(virtual int32) int32 {
	if v, ok := c.Cache.(victimer); ok {
		if _, bound := v.Victim(); bound {
			c.metrics.allocateEvictions.Inc()
		}
	}

	start := time.Now()
	physical := c.Cache.Allocate(virtual)
	allocateDuration := time.Since(start)

	c.metrics.allocateCount.Inc()
	c.metrics.allocateTime.Add(float64(allocateDuration))
	c.updateGauges()
	return physical
}

func (c *Cache) Find(virtual int32) (int32, bool) {
	start := time.Now()
	physical, has := c.Cache.Find(virtual)
	findDuration := time.Since(start)

	labels := missLabels
	if has {
		labels = hitLabels
	}
	c.metrics.findCount.With(labels).Inc()
	c.metrics.findTime.With(labels).Add(float64(findDuration))
	return physical, has
}

func (c *Cache) Release(virtual int32) (int32, bool) {
	start := time.Now()
	physical, has := c.Cache.Release(virtual)
	releaseDuration := time.Since(start)

	labels := missLabels
	if has {
		labels = hitLabels
	}
	c.metrics.releaseCount.With(labels).Inc()
	c.metrics.releaseTime.With(labels).Add(float64(releaseDuration))
	c.updateGauges()
	return physical, has
}

func (c *Cache) FindPhysical(physical int32) bool {
	start := time.Now()
	identity := c.Cache.FindPhysical(physical)
	findDuration := time.Since(start)

	labels := rebindLabels
	if identity {
		labels = identityLabels
	}
	c.metrics.findPhysicalCount.With(labels).Inc()
	c.metrics.findPhysicalTime.With(labels).Add(float64(findDuration))
	c.updateGauges()
	return identity
}

func (c *Cache) updateGauges() {
	c.metrics.len.Set(float64(c.Cache.Len()))
	if b, ok := c.Cache.(bounder); ok {
		c.metrics.bound.Set(float64(b.Bound()))
	}
}
