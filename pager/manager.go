package pager

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mvarga/slotdex/byteconv"
	"github.com/mvarga/slotdex/page"
	"go.uber.org/zap"
)

// ErrOutOfSpace is returned when the page codec rejects a record the
// manager tries to place: AllocateLeaf's head record (for example a key
// too long for an empty page), one of its overflow records, or an
// InsertInner entry on a full inner page. The codec's own error is kept
// in the message text only; it is not wrapped.
var ErrOutOfSpace = errors.New("pager: page has no room for record")

// Manager is the Page Manager of spec.md §4.2: it owns page identifier
// allocation and the mechanics of threading a record across a chain of
// overflow pages. It does not know about keys beyond passing them
// through to the codec; ordering and splitting are the B-tree's job
// (spec.md §1's "out of scope").
//
// Like teacher's pager.Pager, state lives on the struct rather than in
// package globals: nextPageID and the mutex are both fields, not
// process-wide variables (spec.md design note "global mutable state").
type Manager struct {
	mu         sync.Mutex
	nextPageID uint16
	store      *Store
	log        *zap.Logger
}

// NewManager wraps a Store with id allocation. Page id 0 is reserved as
// the "no link" sentinel (spec.md design note on id 0), so the first id
// handed out is 1.
func NewManager(store *Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		nextPageID: 0,
		store:      store,
		log:        logger,
	}
}

func (m *Manager) allocateID() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPageID++
	return m.nextPageID
}

// AllocateLeaf writes key/payload into one or more TypeData pages,
// chaining overflow pages via RightSibling as needed, and returns the
// id of the head page. This implements the chain construction state
// machine of spec.md §4.4: WritingHead -> WritingOverflow* -> Done.
func (m *Manager) AllocateLeaf(key []byte, keyType page.PayloadType, payload []byte, payloadType page.PayloadType) (uint16, error) {
	headID := m.allocateID()
	head := page.New(headID, page.TypeData)

	consumed, err := head.AppendRecord(key, keyType, payload, len(payload), payloadType)
	if err != nil {
		return 0, fmt.Errorf("%w: allocating leaf %d: %v", ErrOutOfSpace, headID, err)
	}
	if err := m.store.Write(head); err != nil {
		return 0, err
	}

	remaining := payload[consumed:]
	prev := head
	for len(remaining) > 0 {
		overflowID := m.allocateID()
		overflow := page.New(overflowID, page.TypeData)

		n, err := overflow.AppendOverflow(remaining, len(remaining))
		if err != nil {
			return 0, fmt.Errorf("%w: allocating overflow %d for leaf %d: %v", ErrOutOfSpace, overflowID, headID, err)
		}
		prev.SetRightSibling(overflowID)
		if err := m.store.Write(prev); err != nil {
			return 0, err
		}
		if err := m.store.Write(overflow); err != nil {
			return 0, err
		}

		remaining = remaining[n:]
		prev = overflow
	}

	m.log.Debug("leaf allocated",
		zap.Uint16("head_page_id", headID),
		zap.Int("payload_len", len(payload)),
		zap.String("payload_type", byteconv.PayloadTypeLabel(payloadType)),
	)
	return headID, nil
}

// AllocateInner creates an empty TypeInner page and returns its id.
// Callers populate it via InsertInner and Link.
func (m *Manager) AllocateInner() (uint16, error) {
	id := m.allocateID()
	p := page.New(id, page.TypeInner)
	if err := m.store.Write(p); err != nil {
		return 0, err
	}
	m.log.Debug("inner page allocated", zap.Uint16("page_id", id))
	return id, nil
}

// InsertInner appends a (key, child page id) routing entry into the
// inner page identified by pageID. Per SPEC_FULL.md's open-question
// decision, inner pages reuse the leaf record format bit-for-bit: the
// child id is encoded as a 2-byte little-endian payload of type
// page.TypeU16, via byteconv.PageIDToBytes.
func (m *Manager) InsertInner(pageID uint16, key []byte, keyType page.PayloadType, childPageID uint16) error {
	p, err := m.store.Read(pageID)
	if err != nil {
		return err
	}
	childBytes := byteconv.PageIDToBytes(childPageID)
	if _, err := p.AppendRecord(key, keyType, childBytes, len(childBytes), page.TypeU16); err != nil {
		return fmt.Errorf("%w: inserting into inner page %d: %v", ErrOutOfSpace, pageID, err)
	}
	return m.store.Write(p)
}

// ChildPageID decodes the routing entry at slotIndex on the inner page
// identified by pageID, returning the child page id a caller should
// descend into for keys at or beyond this entry's key. The inverse of
// the encoding InsertInner performs.
func (m *Manager) ChildPageID(pageID uint16, slotIndex int) (uint16, error) {
	p, err := m.store.Read(pageID)
	if err != nil {
		return 0, err
	}
	rec, err := p.ReadSlot(slotIndex)
	if err != nil {
		return 0, err
	}
	if len(rec.PayloadHead) != 2 {
		return 0, fmt.Errorf("%w: inner page %d slot %d has a %d-byte payload, want 2", page.ErrCorruptChain, pageID, slotIndex, len(rec.PayloadHead))
	}
	return byteconv.BytesToPageID(rec.PayloadHead), nil
}

// ReadPayload walks the overflow chain starting at headPageID and
// reassembles the full payload bytes recorded at slotIndex of the head
// page. Only the head page's own slot is addressed by slotIndex: a
// page's right_sibling is a single pointer, so at most the last record
// written to a page may continue into an overflow chain. A chain whose
// accumulated bytes never reach the declared payload_len, or that
// terminates (RightSibling == NullPageID) early, is reported as
// page.ErrCorruptChain.
func (m *Manager) ReadPayload(headPageID uint16, slotIndex int) ([]byte, error) {
	head, err := m.store.Read(headPageID)
	if err != nil {
		return nil, err
	}
	rec, err := head.ReadSlot(slotIndex)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, rec.PayloadLen)
	out = append(out, rec.PayloadHead...)

	next := head.RightSibling()
	for len(out) < rec.PayloadLen {
		if next == page.NullPageID {
			return nil, fmt.Errorf("%w: chain for page %d ended after %d of %d bytes", page.ErrCorruptChain, headPageID, len(out), rec.PayloadLen)
		}
		op, err := m.store.Read(next)
		if err != nil {
			return nil, err
		}
		chunk, err := op.ReadOverflowSlot(0)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		next = op.RightSibling()
	}

	if len(out) != rec.PayloadLen {
		return nil, fmt.Errorf("%w: chain for page %d produced %d bytes, want %d", page.ErrCorruptChain, headPageID, len(out), rec.PayloadLen)
	}
	return out, nil
}

// Link sets the sibling/parent pointers used to thread pages into a
// B-tree level, per spec.md §4.2's allocate_inner contract, then
// persists the page.
func (m *Manager) Link(pageID uint16, leftMost, left, right, parent uint16) error {
	p, err := m.store.Read(pageID)
	if err != nil {
		return err
	}
	p.SetLeftMostPageID(leftMost)
	p.SetLeftSibling(left)
	p.SetRightSibling(right)
	p.SetParentPageID(parent)
	return m.store.Write(p)
}

// Load fetches a page by id, going through the Store's cache.
func (m *Manager) Load(pageID uint16) (*page.Page, error) {
	return m.store.Read(pageID)
}

// Flush persists a page the caller has mutated directly.
func (m *Manager) Flush(p *page.Page) error {
	return m.store.Write(p)
}
