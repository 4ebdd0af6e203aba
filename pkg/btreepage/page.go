package btreepage

import (
	"fmt"

	"github.com/Saint-JR/DBHomework/pkg/storage"
)

const internalPageHeaderSize = 12 // pageID(4) + parentPageID(4) + size(2) + maxSize(2)

type entry[K FixedKey] struct {
	key   K
	child storage.PageID
}

// InternalPage is an in-memory view of one B+ tree internal node: a
// sorted array of up to MaxSize+1 (key, child page id) entries plus
// page-id bookkeeping. Entry 0's key is never meaningful on its own;
// it only becomes a real separator once the page stops being the
// tree's leftmost child (see MoveAllTo, MoveFirstToEndOf).
type InternalPage[K FixedKey] struct {
	pageID       storage.PageID
	parentPageID storage.PageID
	maxSize      int
	codec        Codec[K]
	cmp          Comparator[K]
	entries      []entry[K]
}

// capacityFor returns the max number of live entries (maxSize) an
// internal page of this key width can hold, leaving room for the
// transient maxSize+1 overflow state MoveHalfTo splits away.
func capacityFor(keySize int) int {
	entrySize := keySize + 4
	usable := storage.PageSize - storage.PageHeaderSize - internalPageHeaderSize
	capacity := usable / entrySize
	if capacity < 2 {
		capacity = 2
	}
	return capacity - 1
}

// Init creates an empty internal page for pageID with the given
// parent. cmp orders keys the same way the array must stay sorted;
// ByteComparator[K] is the default choice for keys using big-endian
// packed encodings.
func Init[K FixedKey](pageID, parentPageID storage.PageID, codec Codec[K], cmp Comparator[K]) *InternalPage[K] {
	maxSize := capacityFor(codec.KeySize)
	return &InternalPage[K]{
		pageID:       pageID,
		parentPageID: parentPageID,
		maxSize:      maxSize,
		codec:        codec,
		cmp:          cmp,
		entries:      make([]entry[K], 0, maxSize+1),
	}
}

// PageID returns the page id this node occupies.
func (p *InternalPage[K]) PageID() storage.PageID { return p.pageID }

// ParentPageID returns the page id of this node's parent.
func (p *InternalPage[K]) ParentPageID() storage.PageID { return p.parentPageID }

// SetParentPageID rewrites the parent pointer, e.g. after a split
// creates a new root.
func (p *InternalPage[K]) SetParentPageID(id storage.PageID) { p.parentPageID = id }

// Size returns the number of live entries.
func (p *InternalPage[K]) Size() int { return len(p.entries) }

// MaxSize returns the steady-state entry capacity (the transient
// overflow state used mid-split may briefly hold MaxSize()+1).
func (p *InternalPage[K]) MaxSize() int { return p.maxSize }

// KeyAt returns the key stored at index.
func (p *InternalPage[K]) KeyAt(index int) K {
	return p.entries[index].key
}

// SetKeyAt overwrites the key stored at index.
func (p *InternalPage[K]) SetKeyAt(index int, key K) {
	p.entries[index].key = key
}

// ValueAt returns the child page id stored at index.
func (p *InternalPage[K]) ValueAt(index int) storage.PageID {
	return p.entries[index].child
}

// ValueIndex returns the index holding child page id value, or -1 if
// value is not one of this node's children.
func (p *InternalPage[K]) ValueIndex(value storage.PageID) int {
	for i, e := range p.entries {
		if e.child == value {
			return i
		}
	}
	return -1
}

// Lookup returns the child page id responsible for key: the value at
// the largest index i>=1 whose key is <= the search key (or index 0's
// value if no such index exists). Requires Size() > 1.
func (p *InternalPage[K]) Lookup(key K) storage.PageID {
	if len(p.entries) <= 1 {
		panic("btreepage: Lookup requires size > 1")
	}

	start, end := 1, len(p.entries)-1
	for start <= end {
		mid := start + (end-start)/2
		if p.cmp(p.entries[mid].key, key) > 0 {
			end = mid - 1
		} else {
			start = mid + 1
		}
	}
	return p.entries[start-1].child
}

// PopulateNewRoot sets up this page as a brand-new root holding
// oldValue as its leftmost (keyless) child and (newKey, newValue) as
// the first real separator. Only ever called when a split propagates
// all the way past the previous root.
func (p *InternalPage[K]) PopulateNewRoot(oldValue storage.PageID, newKey K, newValue storage.PageID) {
	p.entries = p.entries[:0]
	var zero K
	p.entries = append(p.entries, entry[K]{key: zero, child: oldValue})
	p.entries = append(p.entries, entry[K]{key: newKey, child: newValue})
}

// InsertNodeAfter inserts (newKey, newValue) immediately after the
// entry whose child is oldValue, and returns the resulting size.
func (p *InternalPage[K]) InsertNodeAfter(oldValue storage.PageID, newKey K, newValue storage.PageID) int {
	idx := p.ValueIndex(oldValue)
	if idx < 0 {
		panic("btreepage: InsertNodeAfter: oldValue not found")
	}
	insertAt := idx + 1

	p.entries = append(p.entries, entry[K]{})
	copy(p.entries[insertAt+1:], p.entries[insertAt:len(p.entries)-1])
	p.entries[insertAt] = entry[K]{key: newKey, child: newValue}
	return len(p.entries)
}

// Remove deletes the entry at index, shifting later entries left.
func (p *InternalPage[K]) Remove(index int) {
	p.entries = append(p.entries[:index], p.entries[index+1:]...)
}

// RemoveAndReturnOnlyChild empties a single-entry root page (after its
// last real separator was merged away) and returns its one remaining
// child, which becomes the tree's new root.
func (p *InternalPage[K]) RemoveAndReturnOnlyChild() storage.PageID {
	v := p.entries[0].child
	p.entries = p.entries[:0]
	return v
}

// MoveHalfTo splits this overflowing page (currently holding
// MaxSize()+1 entries) in half, moving the upper half into recipient
// and re-parenting each moved child via pager.
func (p *InternalPage[K]) MoveHalfTo(recipient *InternalPage[K], pager Pager) error {
	total := p.maxSize + 1
	if len(p.entries) != total {
		return fmt.Errorf("btreepage: MoveHalfTo: expected %d entries, have %d", total, len(p.entries))
	}

	copyIdx := total / 2
	recipient.entries = append(recipient.entries[:0], p.entries[copyIdx:]...)
	if err := reparentAll(recipient, pager); err != nil {
		return err
	}
	p.entries = p.entries[:copyIdx]
	return nil
}

// MoveAllTo merges this page entirely into recipient: the separator
// above this page in the parent (at indexInParent) is recovered into
// this page's slot-0 key before the move, every child is re-parented
// to recipient, and this page is left empty.
func (p *InternalPage[K]) MoveAllTo(recipient *InternalPage[K], indexInParent int, pager Pager) error {
	parentPage, err := pager.FetchPage(p.parentPageID)
	if err != nil {
		return fmt.Errorf("btreepage: MoveAllTo: fetch parent: %w", err)
	}
	parent, err := Decode(parentPage, p.codec, p.cmp)
	if err != nil {
		pager.UnpinPage(p.parentPageID, false)
		return fmt.Errorf("btreepage: MoveAllTo: decode parent: %w", err)
	}
	p.entries[0].key = parent.KeyAt(indexInParent)
	if err := pager.UnpinPage(p.parentPageID, false); err != nil {
		return fmt.Errorf("btreepage: MoveAllTo: unpin parent: %w", err)
	}

	recipient.entries = append(recipient.entries, p.entries...)
	if err := reparentRange(recipient, len(recipient.entries)-len(p.entries), len(recipient.entries), pager); err != nil {
		return err
	}
	p.entries = p.entries[:0]
	return nil
}

// MoveFirstToEndOf moves this page's first entry to the end of
// recipient (a redistribution from a right sibling into a left one),
// re-parenting the moved child and rewriting the separator key the
// parent keeps for this page.
func (p *InternalPage[K]) MoveFirstToEndOf(recipient *InternalPage[K], pager Pager) error {
	moved := p.entries[0]
	p.entries = p.entries[1:]

	if err := recipient.CopyLastFrom(moved, pager); err != nil {
		return err
	}
	if err := reparentChild(moved.child, recipient.pageID, pager); err != nil {
		return err
	}
	return p.fixParentSeparator(pager)
}

// CopyLastFrom appends pair as this page's new last entry. Used by
// MoveFirstToEndOf's counterpart side of a redistribution.
func (p *InternalPage[K]) CopyLastFrom(pair entry[K], pager Pager) error {
	if len(p.entries)+1 > p.maxSize {
		return fmt.Errorf("btreepage: CopyLastFrom: page full")
	}
	p.entries = append(p.entries, pair)
	return nil
}

// MoveLastToFrontOf moves this page's last entry to the front of
// recipient (a redistribution from a left sibling into a right one).
func (p *InternalPage[K]) MoveLastToFrontOf(recipient *InternalPage[K], parentIndex int, pager Pager) error {
	last := len(p.entries) - 1
	moved := p.entries[last]
	p.entries = p.entries[:last]

	return recipient.CopyFirstFrom(moved, parentIndex, pager)
}

// CopyFirstFrom prepends pair as this page's new first entry,
// re-parents the moved child to this page, and rewrites the parent's
// separator key at parentIndex to the new slot-0 key.
func (p *InternalPage[K]) CopyFirstFrom(pair entry[K], parentIndex int, pager Pager) error {
	if len(p.entries)+1 > p.maxSize {
		return fmt.Errorf("btreepage: CopyFirstFrom: page full")
	}
	p.entries = append(p.entries, entry[K]{})
	copy(p.entries[1:], p.entries[:len(p.entries)-1])
	p.entries[0] = pair

	if err := reparentChild(pair.child, p.pageID, pager); err != nil {
		return err
	}

	parentPage, err := pager.FetchPage(p.parentPageID)
	if err != nil {
		return fmt.Errorf("btreepage: CopyFirstFrom: fetch parent: %w", err)
	}
	parent, err := Decode(parentPage, p.codec, p.cmp)
	if err != nil {
		pager.UnpinPage(p.parentPageID, false)
		return fmt.Errorf("btreepage: CopyFirstFrom: decode parent: %w", err)
	}
	parent.SetKeyAt(parentIndex, p.entries[0].key)
	if err := Encode(parent, parentPage); err != nil {
		pager.UnpinPage(p.parentPageID, false)
		return err
	}
	return pager.UnpinPage(p.parentPageID, true)
}

// fixParentSeparator rewrites the parent's separator key for this
// page to this page's current slot-0 key, after that key changed.
func (p *InternalPage[K]) fixParentSeparator(pager Pager) error {
	parentPage, err := pager.FetchPage(p.parentPageID)
	if err != nil {
		return fmt.Errorf("btreepage: fix parent separator: fetch parent: %w", err)
	}
	parent, err := Decode(parentPage, p.codec, p.cmp)
	if err != nil {
		pager.UnpinPage(p.parentPageID, false)
		return fmt.Errorf("btreepage: fix parent separator: decode parent: %w", err)
	}
	idx := parent.ValueIndex(p.pageID)
	if idx < 0 {
		pager.UnpinPage(p.parentPageID, false)
		return fmt.Errorf("btreepage: fix parent separator: page %d not found in parent", p.pageID)
	}
	parent.SetKeyAt(idx, p.entries[0].key)
	if err := Encode(parent, parentPage); err != nil {
		pager.UnpinPage(p.parentPageID, false)
		return err
	}
	return pager.UnpinPage(p.parentPageID, true)
}

func reparentChild(childID, newParentID storage.PageID, pager Pager) error {
	childPage, err := pager.FetchPage(childID)
	if err != nil {
		return fmt.Errorf("btreepage: reparent child %d: %w", childID, err)
	}
	setPageParentID(childPage, newParentID)
	return pager.UnpinPage(childID, true)
}

func reparentAll[K FixedKey](p *InternalPage[K], pager Pager) error {
	return reparentRange(p, 0, len(p.entries), pager)
}

func reparentRange[K FixedKey](p *InternalPage[K], start, end int, pager Pager) error {
	for i := start; i < end; i++ {
		if err := reparentChild(p.entries[i].child, p.pageID, pager); err != nil {
			return err
		}
	}
	return nil
}
