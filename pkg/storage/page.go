package storage

import (
	"encoding/binary"
	"fmt"
)

const (
	// PageSize is the size of each page (4KB, typical OS page size)
	PageSize = 4096

	// PageHeaderSize is the size of the on-disk page header
	PageHeaderSize = 16
)

// PageType represents the type of page
type PageType uint8

const (
	PageTypeData PageType = iota
	PageTypeIndex
)

func (t PageType) String() string {
	switch t {
	case PageTypeData:
		return "data"
	case PageTypeIndex:
		return "index"
	default:
		return "unknown"
	}
}

// PageID identifies a page on disk. Zero is reserved: no live page ever
// carries it, so it doubles as the "no page" sentinel.
type PageID uint32

// InvalidPageID is the sentinel value for "no page" / "not yet allocated".
const InvalidPageID PageID = 0

// Bytes returns the little-endian encoding of the page id. Used as the
// key-encoding fed into the extendible hash directory's hash function.
func (id PageID) Bytes() []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(id))
	return b[:]
}

// Page is a fixed-size block of data plus the metadata a frame tracks
// about the page currently resident in it.
//
// Invariants enforced by the buffer pool, not by Page itself: a page
// with PinCount > 0 must not appear in the replacer; a page occupying a
// free-list frame has ID == InvalidPageID and PinCount == 0.
type Page struct {
	ID       PageID
	Type     PageType
	Flags    uint8
	LSN      uint64 // LSN of the last WAL record covering this page
	Data     []byte
	IsDirty  bool
	PinCount int
}

// NewPage creates a new, clean, unpinned page of the given type.
func NewPage(id PageID, pageType PageType) *Page {
	return &Page{
		ID:       id,
		Type:     pageType,
		Data:     make([]byte, PageSize-PageHeaderSize),
		IsDirty:  false,
		PinCount: 0,
	}
}

// Serialize converts the page to its fixed PAGE_SIZE on-disk byte form.
func (p *Page) Serialize() []byte {
	buf := make([]byte, PageSize)

	// Header: [4-byte ID][1-byte Type][1-byte Flags][8-byte LSN][2-byte reserved]
	binary.LittleEndian.PutUint32(buf[0:4], uint32(p.ID))
	buf[4] = byte(p.Type)
	buf[5] = p.Flags
	binary.LittleEndian.PutUint64(buf[6:14], p.LSN)
	// bytes 14-16 reserved

	copy(buf[PageHeaderSize:], p.Data)
	return buf
}

// Deserialize loads page metadata and payload from an exactly
// PAGE_SIZE-byte buffer, as read from disk.
func (p *Page) Deserialize(data []byte) error {
	if len(data) != PageSize {
		return fmt.Errorf("invalid page size: expected %d, got %d", PageSize, len(data))
	}

	p.ID = PageID(binary.LittleEndian.Uint32(data[0:4]))
	p.Type = PageType(data[4])
	p.Flags = data[5]
	p.LSN = binary.LittleEndian.Uint64(data[6:14])

	p.Data = make([]byte, PageSize-PageHeaderSize)
	copy(p.Data, data[PageHeaderSize:])
	return nil
}

// Pin increments the pin count (page is in use).
func (p *Page) Pin() {
	p.PinCount++
}

// Unpin decrements the pin count.
func (p *Page) Unpin() {
	if p.PinCount > 0 {
		p.PinCount--
	}
}

// IsPinned returns true if the page is pinned.
func (p *Page) IsPinned() bool {
	return p.PinCount > 0
}

// MarkDirty marks the page as modified. The dirty bit is sticky: only
// FlushPage or eviction write-back clears it.
func (p *Page) MarkDirty() {
	p.IsDirty = true
}

// Reset clears a page back to the state a free-list frame must present:
// invalid id, unpinned, clean, zeroed payload.
func (p *Page) Reset() {
	p.ID = InvalidPageID
	p.Flags = 0
	p.LSN = 0
	p.IsDirty = false
	p.PinCount = 0
	for i := range p.Data {
		p.Data[i] = 0
	}
}
