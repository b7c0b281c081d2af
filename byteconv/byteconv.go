// Package byteconv holds the small, page-format-agnostic byte
// conversions used at the edges of the pager package: page id <-> bytes
// for inner-page routing entries, and a human label for a
// page.PayloadType tag. Kept separate from page.Page's codec (spec.md
// §1 names this "byte conversion helpers" as out of scope for the core
// codec itself) so that callers outside the page package do not need to
// hand-roll little-endian arithmetic.
package byteconv

import (
	"encoding/binary"

	"github.com/mvarga/slotdex/page"
)

// PageIDToBytes encodes a page id as 2 little-endian bytes, matching
// every multi-byte header field in page.Page. pager.Manager.InsertInner
// uses this to build a routing entry's payload.
func PageIDToBytes(id uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, id)
	return b
}

// BytesToPageID decodes a 2-byte little-endian page id, the inverse of
// PageIDToBytes. pager.Manager.ChildPageID uses this to recover a
// routing entry's target page. Panics if b is shorter than 2 bytes,
// since a malformed call site is a programming bug, not a runtime
// condition to recover from.
func BytesToPageID(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// PayloadTypeLabel renders a page.PayloadType tag as a short name, for
// logging and debug output. Returns "unknown" for any value outside
// the closed tag set page.ReadSlot already validates against.
func PayloadTypeLabel(t page.PayloadType) string {
	switch t {
	case page.TypeStr:
		return "str"
	case page.TypeU32:
		return "u32"
	case page.TypeU16:
		return "u16"
	case page.TypeI64:
		return "i64"
	case page.TypeU8:
		return "u8"
	default:
		return "unknown"
	}
}
