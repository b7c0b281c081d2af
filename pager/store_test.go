package pager

import (
	"testing"

	"github.com/mvarga/slotdex/page"
	"github.com/stretchr/testify/require"
)

func TestStoreWriteReadMemory(t *testing.T) {
	s, err := NewStore(WithMemoryBackend())
	require.NoError(t, err)

	p := page.New(1, page.TypeData)
	_, err = p.AppendRecord([]byte("k"), page.TypeStr, []byte("v"), 1, page.TypeStr)
	require.NoError(t, err)
	require.NoError(t, s.Write(p))

	got, err := s.Read(1)
	require.NoError(t, err)
	require.Equal(t, p.Bytes(), got.Bytes())
}

func TestStoreReadMissIsNotFound(t *testing.T) {
	s, err := NewStore(WithMemoryBackend())
	require.NoError(t, err)

	_, err = s.Read(77)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreReadHitsCacheBeforeBackend(t *testing.T) {
	s, err := NewStore(WithMemoryBackend())
	require.NoError(t, err)

	p := page.New(2, page.TypeData)
	require.NoError(t, s.Write(p))

	// Mutate the backend directly underneath the store; a cache hit
	// should still return the page the store wrote, not this garbage.
	mb := s.backend.(*memoryBackend)
	region := mb.buf[2*page.Size : 3*page.Size]
	for i := range region {
		region[i] = 0xFF
	}

	got, err := s.Read(2)
	require.NoError(t, err)
	require.Equal(t, uint16(2), got.PageID())
}

func TestStoreFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(WithDir(dir))
	require.NoError(t, err)

	p := page.New(3, page.TypeData)
	_, err = p.AppendRecord([]byte("x"), page.TypeStr, []byte("y"), 1, page.TypeStr)
	require.NoError(t, err)
	require.NoError(t, s.Write(p))

	s2, err := NewStore(WithDir(dir))
	require.NoError(t, err)
	got, err := s2.Read(3)
	require.NoError(t, err)
	require.Equal(t, p.Bytes(), got.Bytes())

	require.NoError(t, s2.DeleteIndex())
}
