// Package btree is a minimal external collaborator over the pager
// package's Page Manager contract. It exists to exercise
// allocate_leaf/read_payload end to end (it does not call Link); it
// deliberately does not
// implement splitting, rebalancing or multi-level traversal, per
// spec.md §1's "out of scope: B-tree logic (key ordering, node
// splitting, tree traversal)".
package btree

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mvarga/slotdex/page"
	"github.com/mvarga/slotdex/pager"
	"go.uber.org/zap"
)

// ErrKeyNotFound means Get scanned every leaf reachable from the index
// and none carried the requested key.
var ErrKeyNotFound = errors.New("btree: key not found")

// Index is a single-leaf-level key/value store built directly on the
// Page Manager. Put always allocates a new leaf chain; Get performs a
// linear scan over the leaves it has seen. A real B-tree would route
// through inner pages and keep them balanced -- this stub exists only
// to prove the manager's contract is usable from above.
type Index struct {
	mgr    *pager.Manager
	leaves []uint16
	log    *zap.Logger
}

// Open wires an Index on top of an already-constructed Page Manager.
func Open(mgr *pager.Manager, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{mgr: mgr, log: logger}
}

// Put stores key/value as a new leaf chain and remembers its head id
// for future Get calls.
func (idx *Index) Put(key []byte, value []byte) error {
	headID, err := idx.mgr.AllocateLeaf(key, page.TypeStr, value, page.TypeStr)
	if err != nil {
		return fmt.Errorf("btree: put: %w", err)
	}
	idx.leaves = append(idx.leaves, headID)
	idx.log.Debug("key stored", zap.ByteString("key", key), zap.Uint16("head_page_id", headID))
	return nil
}

// Get scans every known leaf head for a matching key and returns its
// fully reassembled value.
func (idx *Index) Get(key []byte) ([]byte, error) {
	for _, headID := range idx.leaves {
		p, err := idx.mgr.Load(headID)
		if err != nil {
			return nil, err
		}
		rec, err := p.ReadSlot(0)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(rec.Key, key) {
			continue
		}
		return idx.mgr.ReadPayload(headID, 0)
	}
	return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
}

// Leaves reports the head page ids of every record this Index has
// written, in insertion order. Used by tests and cmd/slotdex to report
// on-disk layout without exposing the manager directly.
func (idx *Index) Leaves() []uint16 {
	out := make([]uint16, len(idx.leaves))
	copy(out, idx.leaves)
	return out
}
