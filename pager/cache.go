package pager

import (
	"sync"

	"github.com/mvarga/slotdex/page"
)

// cache is the process-wide page_id -> owned page mapping described in
// spec.md §3 and §4.2: a page is created when the manager allocates it,
// mutated only through page codec operations, and destroyed when
// evicted. Eviction is explicitly not implemented in this core (spec.md
// §4.2 "Cache discipline": "The current core does not implement
// eviction; pages remain resident for the process lifetime") so unlike
// teacher's pager/cache.lruPageCache this is a plain unbounded map, not
// an LRU. A bounding/eviction policy is an external concern layered on
// top, per spec.md §3's Cache definition.
//
// spec.md §5 requires the cache itself, not just the backing file, to
// be "shared by all callers in the process; protected by a single
// mutex" -- so the map is guarded here directly rather than relying on
// Store's outer file lock, which exists for a different reason (see
// guard.go).
type cache struct {
	mu    sync.Mutex
	pages map[uint16]*page.Page
}

func newCache() *cache {
	return &cache{pages: make(map[uint16]*page.Page)}
}

func (c *cache) get(id uint16) (*page.Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pages[id]
	return p, ok
}

func (c *cache) put(p *page.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[p.PageID()] = p
}

func (c *cache) remove(id uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, id)
}

func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = make(map[uint16]*page.Page)
}
