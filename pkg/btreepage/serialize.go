package btreepage

import (
	"encoding/binary"
	"fmt"

	"github.com/Saint-JR/DBHomework/pkg/storage"
)

// Decode reconstructs an InternalPage[K] from a fetched storage page,
// using the header-then-array layout Encode writes: pageID(4) |
// parentPageID(4) | size(2) | maxSize(2) | size * (key | childID(4)).
func Decode[K FixedKey](page *storage.Page, codec Codec[K], cmp Comparator[K]) (*InternalPage[K], error) {
	if len(page.Data) < internalPageHeaderSize {
		return nil, fmt.Errorf("btreepage: page data too small for header")
	}

	pageID := storage.PageID(binary.LittleEndian.Uint32(page.Data[0:4]))
	parentPageID := storage.PageID(binary.LittleEndian.Uint32(page.Data[4:8]))
	size := int(binary.LittleEndian.Uint16(page.Data[8:10]))
	maxSize := int(binary.LittleEndian.Uint16(page.Data[10:12]))

	entrySize := codec.KeySize + 4
	entries := make([]entry[K], 0, maxSize+1)
	for i := 0; i < size; i++ {
		off := internalPageHeaderSize + i*entrySize
		if off+entrySize > len(page.Data) {
			return nil, fmt.Errorf("btreepage: entry %d out of bounds", i)
		}
		key := codec.Decode(page.Data[off : off+codec.KeySize])
		child := storage.PageID(binary.LittleEndian.Uint32(page.Data[off+codec.KeySize : off+entrySize]))
		entries = append(entries, entry[K]{key: key, child: child})
	}

	return &InternalPage[K]{
		pageID:       pageID,
		parentPageID: parentPageID,
		maxSize:      maxSize,
		codec:        codec,
		cmp:          cmp,
		entries:      entries,
	}, nil
}

// Encode writes p's header and entries into page's data buffer and
// marks it dirty.
func Encode[K FixedKey](p *InternalPage[K], page *storage.Page) error {
	entrySize := p.codec.KeySize + 4
	need := internalPageHeaderSize + len(p.entries)*entrySize
	if need > len(page.Data) {
		return fmt.Errorf("btreepage: encoded size %d exceeds page capacity %d", need, len(page.Data))
	}

	binary.LittleEndian.PutUint32(page.Data[0:4], uint32(p.pageID))
	binary.LittleEndian.PutUint32(page.Data[4:8], uint32(p.parentPageID))
	binary.LittleEndian.PutUint16(page.Data[8:10], uint16(len(p.entries)))
	binary.LittleEndian.PutUint16(page.Data[10:12], uint16(p.maxSize))

	for i, e := range p.entries {
		off := internalPageHeaderSize + i*entrySize
		copy(page.Data[off:off+p.codec.KeySize], e.key.Bytes())
		binary.LittleEndian.PutUint32(page.Data[off+p.codec.KeySize:off+entrySize], uint32(e.child))
	}

	page.MarkDirty()
	return nil
}

// setPageParentID rewrites the parent-page-id field of any page that
// follows this package's header layout (byte offset 4, 4 bytes little
// endian). Every page re-parented by a move/merge operation is
// assumed to be another btreepage-managed internal page.
func setPageParentID(page *storage.Page, parentID storage.PageID) {
	binary.LittleEndian.PutUint32(page.Data[4:8], uint32(parentID))
	page.MarkDirty()
}
