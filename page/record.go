package page

// Record is the decoded form of one data-page slot: payload_len (2) |
// pl_type (1) | key_len (2) | k_type (1) | key bytes | payload bytes,
// per spec.md §3. payload_len records the record's TOTAL payload
// length, which may exceed the bytes physically present in this page
// when the record was truncated into an overflow chain.
type Record struct {
	Key         []byte
	KeyType     PayloadType
	PayloadHead []byte
	PayloadLen  int
}

// AppendRecord attempts to append one record built from key and as much
// of the payload (read from payload, which has payloadTotalLen bytes
// remaining) as fits. It returns the number of payload bytes actually
// consumed; the caller chains any remainder through overflow pages via
// AppendOverflow. On ErrNoSpace the page is left byte-exact unchanged.
//
// The record's stored payload_len is always payloadTotalLen, not the
// number of bytes copied into this page -- readers use it together with
// the overflow chain to know how many bytes to gather in total.
func (p *Page) AppendRecord(key []byte, keyType PayloadType, payload []byte, payloadTotalLen int, payloadType PayloadType) (int, error) {
	if len(key) > int(^uint16(0)) || payloadTotalLen > int(^uint16(0)) {
		return 0, ErrOutOfRange
	}

	free := p.FreeSize()
	required := recordHeaderSize + slotEntrySize + len(key) + 1
	if int(free) < required {
		return 0, ErrNoSpace
	}

	available := int(free) - recordHeaderSize - slotEntrySize - len(key)
	consumed := payloadTotalLen
	if consumed > available {
		consumed = available
	}
	if consumed > len(payload) {
		consumed = len(payload)
	}

	record := make([]byte, 0, recordHeaderSize+len(key)+consumed)
	record = appendU16(record, uint16(payloadTotalLen))
	record = append(record, byte(payloadType))
	record = appendU16(record, uint16(len(key)))
	record = append(record, byte(keyType))
	record = append(record, key...)
	record = append(record, payload[:consumed]...)

	p.writeSlot(record)
	return consumed, nil
}

// AppendOverflow appends a single overflow record (payload_len u16 |
// payload bytes) to a continuation page, consuming as much of payload
// (which has remainingLen bytes total still to place) as fits.
func (p *Page) AppendOverflow(payload []byte, remainingLen int) (int, error) {
	free := p.FreeSize()
	// H here is just the 2-byte payload_len prefix; there is no key and
	// no slot-table entry cost beyond the one slot for this record.
	const overflowHeaderSize = 2
	required := overflowHeaderSize + slotEntrySize + 1
	if int(free) < required {
		return 0, ErrNoSpace
	}

	available := int(free) - overflowHeaderSize - slotEntrySize
	consumed := remainingLen
	if consumed > available {
		consumed = available
	}
	if consumed > len(payload) {
		consumed = len(payload)
	}

	record := make([]byte, 0, overflowHeaderSize+consumed)
	record = appendU16(record, uint16(consumed))
	record = append(record, payload[:consumed]...)

	p.writeSlot(record)
	return consumed, nil
}

// writeSlot copies record into the record heap (growing it downward
// from free_end) and appends one slot-table entry pointing at it
// (growing the slot table upward from free_start).
func (p *Page) writeSlot(record []byte) {
	freeEnd := p.freeEnd()
	newFreeEnd := freeEnd - uint16(len(record))
	copy(p.buf[newFreeEnd:freeEnd], record)
	p.setFreeEnd(newFreeEnd)

	freeStart := p.freeStart()
	p.putU16(int(freeStart), newFreeEnd)
	p.setFreeStart(freeStart + slotEntrySize)
	p.setNumOfSlots(p.numOfSlots() + 1)

	p.assertInvariant()
}

// ReadSlot decodes the index-th inserted record (zero-based, in
// insertion order) from the data page. The returned payload head is
// only the bytes physically present in this page; if the record's
// PayloadLen exceeds len(PayloadHead) the caller must walk RightSibling
// to gather the remainder (see the pager package).
func (p *Page) ReadSlot(index int) (*Record, error) {
	if index < 0 || index >= p.NumSlots() {
		return nil, ErrOutOfRange
	}
	recordStart := p.u16(slotAddr(index))
	off := int(recordStart)

	payloadLen := int(p.u16(off))
	payloadType := PayloadType(p.buf[off+2])
	keyLen := int(p.u16(off + 3))
	keyType := PayloadType(p.buf[off+5])
	if !validPayloadType(payloadType) || !validPayloadType(keyType) {
		return nil, ErrCorruptChain
	}

	keyStart := off + recordHeaderSize
	key := make([]byte, keyLen)
	copy(key, p.buf[keyStart:keyStart+keyLen])

	payloadStart := keyStart + keyLen
	payloadEnd := Size
	if index > 0 {
		// The previous slot's record starts where this one's heap
		// region ends, since records are packed from the end inward.
	}
	_ = payloadEnd
	headLen := p.recordPhysicalEnd(off) - payloadStart
	head := make([]byte, headLen)
	copy(head, p.buf[payloadStart:payloadStart+headLen])

	return &Record{
		Key:         key,
		KeyType:     keyType,
		PayloadHead: head,
		PayloadLen:  payloadLen,
	}, nil
}

// recordPhysicalEnd returns the byte offset one past the last byte
// physically occupied by the record starting at off. Records are
// packed from the page's end inward in reverse insertion order, so a
// record's physical end is the start address of the previously-written
// (i.e. next-higher-address) record, or Size for the first-written one.
func (p *Page) recordPhysicalEnd(off int) int {
	best := Size
	for i := 0; i < p.NumSlots(); i++ {
		start := int(p.u16(slotAddr(i)))
		if start > off && start < best {
			best = start
		}
	}
	return best
}

// ReadOverflowSlot decodes the index-th record of a continuation page
// written by AppendOverflow: a bare payload_len(2) prefix followed by
// that many payload bytes. This format has no key and no type tag,
// which is why it cannot be read with ReadSlot.
func (p *Page) ReadOverflowSlot(index int) ([]byte, error) {
	if index < 0 || index >= p.NumSlots() {
		return nil, ErrOutOfRange
	}
	recordStart := p.u16(slotAddr(index))
	off := int(recordStart)

	consumed := int(p.u16(off))
	payloadStart := off + 2
	out := make([]byte, consumed)
	copy(out, p.buf[payloadStart:payloadStart+consumed])
	return out, nil
}

func validPayloadType(t PayloadType) bool {
	switch t {
	case TypeStr, TypeU32, TypeU16, TypeI64, TypeU8:
		return true
	default:
		return false
	}
}

func appendU16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}
