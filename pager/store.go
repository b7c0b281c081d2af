package pager

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mvarga/slotdex/page"
	"go.uber.org/zap"
)

// ErrNotFound means a requested page id is neither in the cache nor
// present in the backing file (spec.md §7).
var ErrNotFound = errors.New("pager: page not found")

// ErrIO wraps an underlying file operation failure (spec.md §7). The
// originating cause is included in the error's message text; it is not
// wrapped, so errors.Is/errors.As reach ErrIO but not the cause.
var ErrIO = errors.New("pager: io error")

// Store persists a page's bytes to a fixed offset in a single backing
// file (index.000) and fetches them back on cache miss, per spec.md
// §4.3. File offset of page k is k * PAGE_SIZE.
type Store struct {
	dir     string
	backend backend
	guard   guard
	cache   *cache
	log     *zap.Logger
}

// StoreOption configures a Store at construction time.
type StoreOption func(*storeConfig)

type storeConfig struct {
	dir       string
	useMemory bool
	logger    *zap.Logger
}

// WithDir overrides the directory index.000 lives in. Defaults to the
// process working directory, matching spec.md §6's "fixed as index.000
// in cwd" -- this is a test/embedding affordance, not a config surface:
// cmd/slotdex passes its -dir flag here, and no env var sets it.
func WithDir(dir string) StoreOption {
	return func(c *storeConfig) { c.dir = dir }
}

// WithMemoryBackend makes the store hold its bytes in memory instead of
// opening a real file. Used by tests; never touches the filesystem.
func WithMemoryBackend() StoreOption {
	return func(c *storeConfig) { c.useMemory = true }
}

// WithLogger attaches a structured logger. A nil logger (the default)
// is replaced with zap.NewNop(), so callers that do not care about
// observability pay nothing for it.
func WithLogger(l *zap.Logger) StoreOption {
	return func(c *storeConfig) { c.logger = l }
}

// NewStore opens (creating if necessary) the backing file and returns a
// Store ready to serve Write/Read/DeleteIndex.
func NewStore(opts ...StoreOption) (*Store, error) {
	cfg := storeConfig{dir: "."}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	var b backend
	var g guard
	if cfg.useMemory {
		b = newMemoryBackend()
		g = &memoryGuard{}
	} else {
		fb, err := newFileBackend(cfg.dir)
		if err != nil {
			return nil, err
		}
		b = fb
		fd, _ := fb.fd()
		g = newFileGuard(fd)
	}

	return &Store{
		dir:     cfg.dir,
		backend: b,
		guard:   g,
		cache:   newCache(),
		log:     cfg.logger,
	}, nil
}

// Write flushes page bytes to the file offset page_id * PAGE_SIZE. On
// any I/O failure the cache is left untouched and ErrIO is returned.
func (s *Store) Write(p *page.Page) error {
	if err := s.guard.Lock(); err != nil {
		return fmt.Errorf("%w: acquiring write lock: %v", ErrIO, err)
	}
	defer s.guard.Unlock()

	offset := int64(p.PageID()) * page.Size
	if _, err := s.backend.WriteAt(p.Bytes(), offset); err != nil {
		s.log.Error("page write failed", zap.Uint16("page_id", p.PageID()), zap.Error(err))
		return fmt.Errorf("%w: writing page %d: %v", ErrIO, p.PageID(), err)
	}
	s.cache.put(p)
	s.log.Debug("page written", zap.Uint16("page_id", p.PageID()))
	return nil
}

// Read consults the cache first; on a miss it seeks into the backing
// file at id * PAGE_SIZE and reads exactly PAGE_SIZE bytes. A read that
// would pass end of file returns ErrNotFound.
func (s *Store) Read(id uint16) (*page.Page, error) {
	if p, hit := s.cache.get(id); hit {
		return p, nil
	}

	if err := s.guard.RLock(); err != nil {
		return nil, fmt.Errorf("%w: acquiring read lock: %v", ErrIO, err)
	}
	defer s.guard.RUnlock()

	buf := make([]byte, page.Size)
	offset := int64(id) * page.Size
	if _, err := s.backend.ReadAt(buf, offset); err != nil {
		if errors.Is(err, os.ErrNotExist) || isEOF(err) {
			return nil, ErrNotFound
		}
		s.log.Error("page read failed", zap.Uint16("page_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: reading page %d: %v", ErrIO, id, err)
	}

	p, err := page.FromBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: reading page %d: %v", ErrIO, id, err)
	}
	s.cache.put(p)
	s.log.Debug("page loaded from disk", zap.Uint16("page_id", id))
	return p, nil
}

// DeleteIndex removes the backing file and clears the cache. Intended
// for tests and cold-start, per spec.md §4.3.
func (s *Store) DeleteIndex() error {
	s.cache.clear()
	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("%w: closing backing file: %v", ErrIO, err)
	}
	if mb, ok := s.backend.(*memoryBackend); ok {
		mb.buf = mb.buf[:0]
		return nil
	}
	path := s.dir + string(os.PathSeparator) + IndexFileName
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing %s: %v", ErrIO, IndexFileName, err)
	}
	return nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
