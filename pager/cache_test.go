package pager

import (
	"testing"

	"github.com/mvarga/slotdex/page"
	"github.com/stretchr/testify/require"
)

func TestCachePutGet(t *testing.T) {
	c := newCache()
	p := page.New(9, page.TypeData)

	_, ok := c.get(9)
	require.False(t, ok)

	c.put(p)
	got, ok := c.get(9)
	require.True(t, ok)
	require.Same(t, p, got)
}

func TestCacheRemoveAndClear(t *testing.T) {
	c := newCache()
	c.put(page.New(1, page.TypeData))
	c.put(page.New(2, page.TypeData))

	c.remove(1)
	_, ok := c.get(1)
	require.False(t, ok)
	_, ok = c.get(2)
	require.True(t, ok)

	c.clear()
	_, ok = c.get(2)
	require.False(t, ok)
}
