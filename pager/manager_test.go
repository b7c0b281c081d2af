package pager

import (
	"bytes"
	"testing"

	"github.com/mvarga/slotdex/page"
	"github.com/stretchr/testify/require"
)

func newMemManager(t *testing.T) *Manager {
	t.Helper()
	s, err := NewStore(WithMemoryBackend())
	require.NoError(t, err)
	return NewManager(s, nil)
}

func TestAllocateLeafSinglePage(t *testing.T) {
	m := newMemManager(t)

	id, err := m.AllocateLeaf([]byte("key"), page.TypeStr, []byte("value"), page.TypeStr)
	require.NoError(t, err)
	require.Equal(t, uint16(1), id)

	got, err := m.ReadPayload(id, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("value"), got)
}

func TestAllocateLeafIDsStartAtOne(t *testing.T) {
	m := newMemManager(t)

	id1, err := m.AllocateLeaf([]byte("a"), page.TypeStr, []byte("1"), page.TypeStr)
	require.NoError(t, err)
	id2, err := m.AllocateLeaf([]byte("b"), page.TypeStr, []byte("2"), page.TypeStr)
	require.NoError(t, err)

	require.Equal(t, uint16(1), id1)
	require.Equal(t, uint16(2), id2)
	require.NotEqual(t, page.NullPageID, id1)
}

func TestAllocateLeafWithOverflowChain(t *testing.T) {
	m := newMemManager(t)

	payload := bytes.Repeat([]byte("q"), page.Size*2)
	id, err := m.AllocateLeaf([]byte("big"), page.TypeStr, payload, page.TypeStr)
	require.NoError(t, err)

	got, err := m.ReadPayload(id, 0)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestReadPayloadCorruptChain(t *testing.T) {
	m := newMemManager(t)

	payload := bytes.Repeat([]byte("q"), page.Size*2)
	id, err := m.AllocateLeaf([]byte("big"), page.TypeStr, payload, page.TypeStr)
	require.NoError(t, err)

	head, err := m.Load(id)
	require.NoError(t, err)
	head.SetRightSibling(page.NullPageID)
	require.NoError(t, m.Flush(head))

	_, err = m.ReadPayload(id, 0)
	require.ErrorIs(t, err, page.ErrCorruptChain)
}

func TestAllocateInnerAndInsert(t *testing.T) {
	m := newMemManager(t)

	innerID, err := m.AllocateInner()
	require.NoError(t, err)

	require.NoError(t, m.InsertInner(innerID, []byte("m"), page.TypeStr, 42))

	p, err := m.Load(innerID)
	require.NoError(t, err)
	rec, err := p.ReadSlot(0)
	require.NoError(t, err)
	require.Equal(t, []byte("m"), rec.Key)
	require.Equal(t, []byte{42, 0}, rec.PayloadHead)
}

func TestChildPageIDRoundTrip(t *testing.T) {
	m := newMemManager(t)

	innerID, err := m.AllocateInner()
	require.NoError(t, err)
	require.NoError(t, m.InsertInner(innerID, []byte("m"), page.TypeStr, 42))
	require.NoError(t, m.InsertInner(innerID, []byte("z"), page.TypeStr, 99))

	child, err := m.ChildPageID(innerID, 0)
	require.NoError(t, err)
	require.Equal(t, uint16(42), child)

	child, err = m.ChildPageID(innerID, 1)
	require.NoError(t, err)
	require.Equal(t, uint16(99), child)
}

func TestLinkSetsPointers(t *testing.T) {
	m := newMemManager(t)

	id, err := m.AllocateInner()
	require.NoError(t, err)
	require.NoError(t, m.Link(id, 10, 11, 12, 13))

	p, err := m.Load(id)
	require.NoError(t, err)
	require.Equal(t, uint16(10), p.LeftMostPageID())
	require.Equal(t, uint16(11), p.LeftSibling())
	require.Equal(t, uint16(12), p.RightSibling())
	require.Equal(t, uint16(13), p.ParentPageID())
}
