// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metercacher

import (
	"errors"

	"github.com/luxfi/metric"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultLabel = "result"
	hitResult   = "hit"
	missResult  = "miss"

	identityResult = "identity"
	rebindResult   = "rebind"
)

var (
	resultLabels = []string{resultLabel}
	hitLabels    = prometheus.Labels{resultLabel: hitResult}
	missLabels   = prometheus.Labels{resultLabel: missResult}

	identityLabels = prometheus.Labels{resultLabel: identityResult}
	rebindLabels   = prometheus.Labels{resultLabel: rebindResult}
)

type cacheMetrics struct {
	allocateCount     prometheus.Counter
	allocateTime      prometheus.Counter
	allocateEvictions prometheus.Counter

	findCount *prometheus.CounterVec
	findTime  *prometheus.CounterVec

	releaseCount *prometheus.CounterVec
	releaseTime  *prometheus.CounterVec

	findPhysicalCount *prometheus.CounterVec
	findPhysicalTime  *prometheus.CounterVec

	len   prometheus.Gauge
	bound prometheus.Gauge
}

func newMetrics(
	namespace string,
	reg metric.Registerer,
) (*cacheMetrics, error) {
	m := &cacheMetrics{
		allocateCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocate_count",
			Help:      "number of physical slot allocations",
		}),
		allocateTime: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocate_time",
			Help:      "time spent (ns) in allocate calls",
		}),
		allocateEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocate_evictions",
			Help:      "number of allocations that overwrote a live binding",
		}),
		findCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "find_count",
				Help:      "number of find calls",
			},
			resultLabels,
		),
		findTime: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "find_time",
				Help:      "time spent (ns) in find calls",
			},
			resultLabels,
		),
		releaseCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "release_count",
				Help:      "number of release calls",
			},
			resultLabels,
		),
		releaseTime: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "release_time",
				Help:      "time spent (ns) in release calls",
			},
			resultLabels,
		),
		findPhysicalCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "find_physical_count",
				Help:      "number of find physical calls",
			},
			resultLabels,
		),
		findPhysicalTime: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "find_physical_time",
				Help:      "time spent (ns) in find physical calls",
			},
			resultLabels,
		),
		len: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "len",
			Help:      "number of registered physical slots",
		}),
		bound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bound",
			Help:      "number of physical slots bound to a virtual slot",
		}),
	}
	err := errors.Join(
		reg.Register(m.allocateCount),
		reg.Register(m.allocateTime),
		reg.Register(m.allocateEvictions),
		reg.Register(m.findCount),
		reg.Register(m.findTime),
		reg.Register(m.releaseCount),
		reg.Register(m.releaseTime),
		reg.Register(m.findPhysicalCount),
		reg.Register(m.findPhysicalTime),
		reg.Register(m.len),
		reg.Register(m.bound),
	)
	return m, err
}
