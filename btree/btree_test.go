package btree

import (
	"testing"

	"github.com/mvarga/slotdex/pager"
	"github.com/stretchr/testify/require"
)

func newMemIndex(t *testing.T) *Index {
	t.Helper()
	s, err := pager.NewStore(pager.WithMemoryBackend())
	require.NoError(t, err)
	return Open(pager.NewManager(s, nil), nil)
}

func TestPutGet(t *testing.T) {
	idx := newMemIndex(t)

	require.NoError(t, idx.Put([]byte("a"), []byte("apple")))
	require.NoError(t, idx.Put([]byte("b"), []byte("banana")))

	got, err := idx.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("apple"), got)

	got, err = idx.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("banana"), got)
}

func TestGetMissing(t *testing.T) {
	idx := newMemIndex(t)
	require.NoError(t, idx.Put([]byte("a"), []byte("apple")))

	_, err := idx.Get([]byte("nope"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestLeavesTracksInsertionOrder(t *testing.T) {
	idx := newMemIndex(t)
	require.NoError(t, idx.Put([]byte("a"), []byte("1")))
	require.NoError(t, idx.Put([]byte("b"), []byte("2")))

	require.Equal(t, []uint16{1, 2}, idx.Leaves())
}
