// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metercacher

import (
	"testing"

	"github.com/luxfi/metric"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/keyslot/mru"
)

func newMeteredCache(t *testing.T, n int) *Cache {
	t.Helper()

	inner := mru.New(n)
	for i := 0; i < n; i++ {
		inner.Register(mru.NewEntry(int32(i)))
	}
	c, err := New("keyslot", metric.NewRegistry(), inner)
	require.NoError(t, err)
	return c
}

func TestMeteredCache(t *testing.T) {
	require := require.New(t)

	c := newMeteredCache(t, 2)
	require.Equal(2.0, testutil.ToFloat64(c.metrics.len))
	require.Zero(testutil.ToFloat64(c.metrics.bound))

	require.Equal(int32(1), c.Allocate(10))
	require.Equal(int32(0), c.Allocate(20))
	require.Equal(2.0, testutil.ToFloat64(c.metrics.allocateCount))
	require.Zero(testutil.ToFloat64(c.metrics.allocateEvictions))
	require.Equal(2.0, testutil.ToFloat64(c.metrics.bound))

	// Evicts virtual slot 10.
	require.Equal(int32(1), c.Allocate(30))
	require.Equal(1.0, testutil.ToFloat64(c.metrics.allocateEvictions))

	_, ok := c.Find(10)
	require.False(ok)
	physical, ok := c.Find(20)
	require.True(ok)
	require.Equal(int32(0), physical)
	require.Equal(1.0, testutil.ToFloat64(c.metrics.findCount.With(hitLabels)))
	require.Equal(1.0, testutil.ToFloat64(c.metrics.findCount.With(missLabels)))

	physical, ok = c.Release(30)
	require.True(ok)
	require.Equal(int32(1), physical)
	_, ok = c.Release(30)
	require.False(ok)
	require.Equal(1.0, testutil.ToFloat64(c.metrics.releaseCount.With(hitLabels)))
	require.Equal(1.0, testutil.ToFloat64(c.metrics.releaseCount.With(missLabels)))
	require.Equal(1.0, testutil.ToFloat64(c.metrics.bound))

	require.False(c.FindPhysical(1))
	require.True(c.FindPhysical(1))
	require.Equal(1.0, testutil.ToFloat64(c.metrics.findPhysicalCount.With(rebindLabels)))
	require.Equal(1.0, testutil.ToFloat64(c.metrics.findPhysicalCount.With(identityLabels)))
	require.Equal(2.0, testutil.ToFloat64(c.metrics.bound))
}

func TestDuplicateRegistration(t *testing.T) {
	require := require.New(t)

	reg := metric.NewRegistry()
	_, err := New("keyslot", reg, mru.New(0))
	require.NoError(err)

	_, err = New("keyslot", reg, mru.New(0))
	require.Error(err)
}
