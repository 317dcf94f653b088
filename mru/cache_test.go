// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mru

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// newCache registers physical slots 0..n-1 in index order.
func newCache(n int) *Cache {
	c := New(n)
	for i := 0; i < n; i++ {
		c.Register(NewEntry(int32(i)))
	}
	return c
}

func requireOrder(t *testing.T, c *Cache, want ...int32) {
	t.Helper()
	if diff := cmp.Diff(want, c.Order()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestEntry(t *testing.T) {
	require := require.New(t)

	e := NewEntry(3)
	require.Equal(int32(3), e.Physical())
	require.False(e.Contains(0))
	_, bound := e.Virtual()
	require.False(bound)

	e.Bind(0)
	require.True(e.Contains(0))
	require.False(e.Contains(3))

	e.Bind(42)
	require.False(e.Contains(0))
	v, bound := e.Virtual()
	require.True(bound)
	require.Equal(int32(42), v)

	e.Unbind()
	require.False(e.Contains(42))
	require.False(e.Contains(0))
	require.Equal(int32(3), e.Physical())
}

func TestRegisterOrder(t *testing.T) {
	c := newCache(3)
	require.Equal(t, 3, c.Len())
	requireOrder(t, c, 0, 1, 2)
}

func TestRegisterTwicePanics(t *testing.T) {
	c := New(2)
	e := NewEntry(0)
	c.Register(e)

	require.Panics(t, func() { c.Register(e) })
	require.Panics(t, func() { c.Register(NewEntry(0)) })
	require.Panics(t, func() { c.Register(nil) })
}

func TestRoundTrip(t *testing.T) {
	require := require.New(t)

	c := newCache(4)
	p := c.Allocate(77)

	got, ok := c.Find(77)
	require.True(ok)
	require.Equal(p, got)

	got, ok = c.Release(77)
	require.True(ok)
	require.Equal(p, got)

	_, ok = c.Find(77)
	require.False(ok)
	_, ok = c.Release(77)
	require.False(ok)
}

func TestInitialEvictionOrder(t *testing.T) {
	require := require.New(t)

	const n = 5
	c := newCache(n)
	for i := 0; i < n; i++ {
		require.Equal(int32(n-1-i), c.Allocate(int32(1000+i)))
	}
	require.Equal(n, c.Bound())
}

func TestPromotionProtectsFromEviction(t *testing.T) {
	require := require.New(t)

	c := newCache(2)
	p1 := c.Allocate(1)
	p2 := c.Allocate(2)

	got, ok := c.Find(1)
	require.True(ok)
	require.Equal(p1, got)

	require.Equal(p2, c.Allocate(3))

	_, ok = c.Find(2)
	require.False(ok)
	got, ok = c.Find(1)
	require.True(ok)
	require.Equal(p1, got)
}

func TestReleasePreemptsEviction(t *testing.T) {
	require := require.New(t)

	c := newCache(3)
	c.Allocate(10)
	p := c.Allocate(20)
	c.Allocate(30)

	got, ok := c.Release(20)
	require.True(ok)
	require.Equal(p, got)

	v, bound := c.Victim()
	require.False(bound)
	require.Zero(v)

	require.Equal(p, c.Allocate(40))
	for _, v := range []int32{10, 30, 40} {
		_, ok := c.Find(v)
		require.True(ok, "virtual slot %d evicted", v)
	}
}

func TestFindMissDoesNotReorder(t *testing.T) {
	c := newCache(3)
	c.Allocate(5)
	before := c.Order()

	_, ok := c.Find(6)
	require.False(t, ok)
	_, ok = c.Release(6)
	require.False(t, ok)
	requireOrder(t, c, before...)
}

func TestFindPhysicalIdentity(t *testing.T) {
	require := require.New(t)

	c := newCache(3)
	// Bind physical slot 0 to virtual 0.
	require.False(c.FindPhysical(0))
	require.Equal(int32(2), c.Allocate(9))
	requireOrder(t, c, 2, 0, 1)

	require.True(c.FindPhysical(0))
	requireOrder(t, c, 0, 2, 1)

	got, ok := c.Find(0)
	require.True(ok)
	require.Equal(int32(0), got)
}

func TestFindPhysicalRebind(t *testing.T) {
	require := require.New(t)

	c := newCache(3)
	p := c.Allocate(100)
	require.Equal(int32(2), p)
	c.Allocate(200)

	require.False(c.FindPhysical(p))
	requireOrder(t, c, 2, 1, 0)

	_, ok := c.Find(100)
	require.False(ok)
	got, ok := c.Find(p)
	require.True(ok)
	require.Equal(p, got)

	// Now an identity binding.
	require.True(c.FindPhysical(p))
}

func TestFindPhysicalUnbound(t *testing.T) {
	c := newCache(2)
	require.False(t, c.FindPhysical(1))
	v, bound := c.entries[1].Virtual()
	require.True(t, bound)
	require.Equal(t, int32(1), v)
}

func TestFatalContractViolations(t *testing.T) {
	require.Panics(t, func() { New(0).Allocate(1) })
	require.Panics(t, func() { newCache(3).FindPhysical(3) })
	require.Panics(t, func() { newCache(3).FindPhysical(-1) })
}

func TestScenario(t *testing.T) {
	require := require.New(t)

	c := newCache(3)
	requireOrder(t, c, 0, 1, 2)

	require.Equal(int32(2), c.Allocate(100))
	requireOrder(t, c, 2, 0, 1)

	require.Equal(int32(1), c.Allocate(200))
	requireOrder(t, c, 1, 2, 0)

	got, ok := c.Find(100)
	require.True(ok)
	require.Equal(int32(2), got)
	requireOrder(t, c, 2, 1, 0)

	got, ok = c.Release(100)
	require.True(ok)
	require.Equal(int32(2), got)
	requireOrder(t, c, 1, 0, 2)

	require.Equal(int32(2), c.Allocate(300))
	requireOrder(t, c, 2, 1, 0)
}

func TestSingleSlot(t *testing.T) {
	require := require.New(t)

	c := newCache(1)
	require.Equal(int32(0), c.Allocate(1))
	require.Equal(int32(0), c.Allocate(2))

	_, ok := c.Find(1)
	require.False(ok)
	got, ok := c.Release(2)
	require.True(ok)
	require.Equal(int32(0), got)
	requireOrder(t, c, 0)
}
