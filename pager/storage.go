// storage.go implements the Page Store's byte-level transport: writing
// and reading fixed PAGE_SIZE regions of a single backing file (or, for
// tests, an in-memory buffer standing in for one). This is the lowest
// layer described in spec.md §4.3; Store in store.go is the component
// that knows about page identifiers, offsets and the cache.
package pager

import (
	"fmt"
	"io"
	"os"

	"github.com/mvarga/slotdex/page"
)

// backend is the minimal positional I/O surface the store needs.
// Splitting it out (as teacher's storage interface does) lets tests run
// against an in-memory buffer instead of a real file.
type backend interface {
	io.ReaderAt
	io.WriterAt
	fd() (uintptr, bool)
	Close() error
}

type memoryBackend struct {
	buf []byte
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{buf: make([]byte, page.Size)}
}

func (m *memoryBackend) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	for len(m.buf) < end {
		m.buf = append(m.buf, make([]byte, page.Size)...)
	}
	copy(m.buf[off:end], p)
	return len(p), nil
}

func (m *memoryBackend) ReadAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(m.buf) {
		return 0, io.EOF
	}
	copy(p, m.buf[off:end])
	return len(p), nil
}

func (m *memoryBackend) fd() (uintptr, bool) { return 0, false }
func (m *memoryBackend) Close() error        { return nil }

// IndexFileName is the fixed backing file name, per spec.md §4.3/§6.
const IndexFileName = "index.000"

type fileBackend struct {
	file *os.File
}

func newFileBackend(dir string) (*fileBackend, error) {
	path := dir + string(os.PathSeparator) + IndexFileName
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("pager: error opening %s: %w", IndexFileName, err)
	}
	return &fileBackend{file: f}, nil
}

func (f *fileBackend) WriteAt(p []byte, off int64) (int, error) {
	return f.file.WriteAt(p, off)
}

func (f *fileBackend) ReadAt(p []byte, off int64) (int, error) {
	return f.file.ReadAt(p, off)
}

func (f *fileBackend) fd() (uintptr, bool) { return f.file.Fd(), true }
func (f *fileBackend) Close() error        { return f.file.Close() }
