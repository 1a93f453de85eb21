package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3)
	assert.Equal(t, 2, c.Size())

	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestLRUExpiry(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute).WithClock(clk.now)

	c.Set("k", "v")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	clk.t = clk.t.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestLRUSetOverwritesAndRefreshesTTL(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Minute).WithClock(clk.now)

	c.Set("k", 1)
	clk.t = clk.t.Add(50 * time.Second)
	c.Set("k", 2)
	clk.t = clk.t.Add(50 * time.Second)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Size())
}

func TestLRUDelete(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("k", 1)
	c.Delete("k")
	c.Delete("missing")
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestManagerCleanAll(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC)}
	a := NewLRUCache[int](10, time.Minute).WithClock(clk.now)
	b := NewLRUCache[int](10, time.Hour).WithClock(clk.now)
	a.Set("x", 1)
	a.Set("y", 2)
	b.Set("z", 3)

	m := NewManager()
	m.Register(a)
	m.Register(b)

	clk.t = clk.t.Add(5 * time.Minute)
	assert.Equal(t, 2, m.CleanAll())
	assert.Equal(t, 0, a.Size())
	assert.Equal(t, 1, b.Size())
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager()
	m.StartCleanup(time.Millisecond)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()
}
