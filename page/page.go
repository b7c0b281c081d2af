// Package page implements the slotted-page codec: a pure in-memory
// encoder/decoder over a fixed-size byte buffer. It owns the header
// layout, the growing slot directory at the low end, the shrinking
// record heap at the high end, and the payload-size/type tagging of
// each slot. It does no I/O; persistence is the pager package's job.
package page

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Size is the fixed page size in bytes. Compiled in, not configurable,
	// per the storage format this package encodes.
	Size = 4096

	// HeaderSize is TOTAL_HEADER_SIZE: the 20-byte header is fixed
	// inclusive of freeStart and freeEnd (resolves the open question
	// in spec.md's DESIGN NOTES about where those two fields are counted).
	HeaderSize = 20

	offsetNumOfSlots     = 0
	offsetPageID         = offsetNumOfSlots + 2
	offsetPageType       = offsetPageID + 2
	offsetFlags          = offsetPageType + 1
	offsetLeftMostPageID = offsetFlags + 1
	offsetLeftSibling    = offsetLeftMostPageID + 2
	offsetRightSibling   = offsetLeftSibling + 2
	offsetParentPageID   = offsetRightSibling + 2
	offsetFreeStart      = offsetParentPageID + 2
	offsetFreeEnd        = offsetFreeStart + 2

	slotEntrySize = 2

	// recordHeaderSize is H in spec.md §4.1: payload_len(2) + pl_type(1) +
	// key_len(2) + key_type(1).
	recordHeaderSize = 2 + 1 + 2 + 1

	// NullPageID is the sentinel meaning "no link". Page id 0 is never
	// allocated to a live page.
	NullPageID uint16 = 0
)

// Type identifies whether a page is a leaf/data page or an inner page.
type Type uint8

const (
	TypeData  Type = 0
	TypeInner Type = 1
)

// PayloadType tags the closed set of value kinds a record's key or
// payload may carry on the wire.
type PayloadType uint8

const (
	TypeStr PayloadType = 1
	TypeU32 PayloadType = 2
	TypeU16 PayloadType = 3
	TypeI64 PayloadType = 4
	TypeU8  PayloadType = 5
)

var (
	// ErrNoSpace means there isn't enough free space on the page for the
	// record header, key, slot entry and at least one payload byte. The
	// caller (a B-tree layer) is expected to recover via a page split;
	// this package never surfaces it as fatal.
	ErrNoSpace = errors.New("page: not enough free space")

	// ErrOutOfRange means an offset or length would not fit in the page's
	// 16-bit address space. Always a programming bug.
	ErrOutOfRange = errors.New("page: offset out of range")

	// ErrCorruptChain means a payload-type or key-type tag read back from
	// the buffer is outside the closed {Str,U32,U16,I64,U8} set. The
	// pager package also returns it (wrapped) when an overflow chain's
	// bytes disagree with the recorded payload_len, or when an inner
	// page's routing entry does not carry a 2-byte child id.
	ErrCorruptChain = errors.New("page: unknown type tag")
)

// Page is a fixed-size contiguous byte buffer laid out per spec.md §3:
// a 20-byte header, a slot table growing low to high, a free gap, and a
// record heap growing high to low.
type Page struct {
	buf [Size]byte
}

// New zeroes a fresh page and writes the header so that the slot table
// is empty and the record heap spans the full page. id is the page
// identifier assigned by the caller (normally the page manager's
// monotonic counter); New never allocates ids itself.
func New(id uint16, typ Type) *Page {
	p := &Page{}
	p.setNumOfSlots(0)
	p.setPageID(id)
	p.setPageType(typ)
	p.setFlags(0)
	p.SetLeftMostPageID(NullPageID)
	p.SetLeftSibling(NullPageID)
	p.SetRightSibling(NullPageID)
	p.SetParentPageID(NullPageID)
	p.setFreeStart(HeaderSize)
	p.setFreeEnd(Size)
	return p
}

// Bytes returns the page's raw buffer. The returned slice aliases the
// page's storage; callers in this module use it only for I/O transfer.
func (p *Page) Bytes() []byte { return p.buf[:] }

// FromBytes copies an existing PAGE_SIZE buffer (as read from the
// backing file) into a new Page; the Page does not alias b.
func FromBytes(b []byte) (*Page, error) {
	if len(b) != Size {
		return nil, fmt.Errorf("page: buffer must be %d bytes, got %d", Size, len(b))
	}
	p := &Page{}
	copy(p.buf[:], b)
	return p, nil
}

// --- header accessors ---

func (p *Page) numOfSlots() uint16 { return p.u16(offsetNumOfSlots) }
func (p *Page) setNumOfSlots(n uint16) { p.putU16(offsetNumOfSlots, n) }

// NumSlots returns the count of occupied slots on the page.
func (p *Page) NumSlots() int { return int(p.numOfSlots()) }

// PageID returns this page's own identifier.
func (p *Page) PageID() uint16 { return p.u16(offsetPageID) }
func (p *Page) setPageID(id uint16) { p.putU16(offsetPageID, id) }

// PageType reports whether the page is a data/leaf page or an inner page.
func (p *Page) PageType() Type { return Type(p.buf[offsetPageType]) }
func (p *Page) setPageType(t Type) { p.buf[offsetPageType] = byte(t) }

func (p *Page) flags() uint8 { return p.buf[offsetFlags] }
func (p *Page) setFlags(f uint8) { p.buf[offsetFlags] = f }

// LeftMostPageID is, for inner pages, the id of the subtree holding
// keys less than the first separator.
func (p *Page) LeftMostPageID() uint16 { return p.u16(offsetLeftMostPageID) }
func (p *Page) SetLeftMostPageID(id uint16) { p.putU16(offsetLeftMostPageID, id) }

// LeftSibling is the sibling pointer at the same tree level.
func (p *Page) LeftSibling() uint16 { return p.u16(offsetLeftSibling) }
func (p *Page) SetLeftSibling(id uint16) { p.putU16(offsetLeftSibling, id) }

// RightSibling is the sibling pointer at the same tree level, or for a
// data page the head of this page's overflow continuation.
func (p *Page) RightSibling() uint16 { return p.u16(offsetRightSibling) }
func (p *Page) SetRightSibling(id uint16) { p.putU16(offsetRightSibling, id) }

// ParentPageID is the upward pointer toward the page's parent in the tree.
func (p *Page) ParentPageID() uint16 { return p.u16(offsetParentPageID) }
func (p *Page) SetParentPageID(id uint16) { p.putU16(offsetParentPageID, id) }

func (p *Page) freeStart() uint16 { return p.u16(offsetFreeStart) }
func (p *Page) setFreeStart(v uint16) { p.putU16(offsetFreeStart, v) }

func (p *Page) freeEnd() uint16 { return p.u16(offsetFreeEnd) }
func (p *Page) setFreeEnd(v uint16) { p.putU16(offsetFreeEnd, v) }

// FreeSize returns the number of bytes available in the free gap
// between the slot table and the record heap. Saturates at zero; a
// debug assertion in mutating operations catches the invariant
// violation before this would ever need to saturate.
func (p *Page) FreeSize() uint16 {
	fs, fe := p.freeStart(), p.freeEnd()
	if fs > fe {
		return 0
	}
	return fe - fs
}

func (p *Page) u16(off int) uint16 {
	return binary.LittleEndian.Uint16(p.buf[off : off+2])
}

func (p *Page) putU16(off int, v uint16) {
	binary.LittleEndian.PutUint16(p.buf[off:off+2], v)
}

func (p *Page) assertInvariant() {
	if p.freeStart() > p.freeEnd() {
		panic(fmt.Sprintf("page %d: free_start %d > free_end %d", p.PageID(), p.freeStart(), p.freeEnd()))
	}
}

// slotAddr returns the byte offset of the index-th slot table entry.
func slotAddr(index int) int {
	return HeaderSize + index*slotEntrySize
}
