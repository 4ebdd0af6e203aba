package storage

import (
	"fmt"
	"sync"

	"github.com/Saint-JR/DBHomework/pkg/hashindex"
	"github.com/Saint-JR/DBHomework/pkg/replacer"
)

// FrameID indexes a buffer pool manager's fixed frame array.
type FrameID int

// Disk is the subset of disk manager behavior the buffer pool manager
// needs: reading, writing, allocating and deallocating whole pages.
// DiskManager satisfies it; tests substitute in-memory fakes.
type Disk interface {
	ReadPage(pageID PageID) (*Page, error)
	WritePage(page *Page) error
	AllocatePage() (PageID, error)
	DeallocatePage(pageID PageID) error
}

const bucketSizeDefault = 4

// BufferPoolManager is a fixed-capacity cache of pages backed by a
// disk manager. It owns PoolSize frames; each frame holds at most one
// page at a time. Frame lookup by page id goes through an extendible
// hash directory; victim selection falls back to an LRU replacer once
// the free list is exhausted.
type BufferPoolManager struct {
	mu        sync.Mutex
	frames    []*Page
	freeList  []FrameID
	pageTable *hashindex.ExtendibleHash[PageID, FrameID]
	replacer  *replacer.LRU[FrameID]
	disk      Disk
	log       LogManager
}

// PoolConfig enumerates the buffer pool manager's construction
// parameters: how many frames it owns and how large each hash
// directory bucket is allowed to grow before splitting.
type PoolConfig struct {
	PoolSize   int
	BucketSize int
}

// NewBufferPoolManager creates a buffer pool manager with cfg.PoolSize
// empty frames backed by disk. log may be nil, in which case dirty
// writebacks are not recorded anywhere.
func NewBufferPoolManager(cfg PoolConfig, disk Disk, log LogManager) *BufferPoolManager {
	if cfg.PoolSize < 1 {
		cfg.PoolSize = 1
	}
	if cfg.BucketSize < 1 {
		cfg.BucketSize = bucketSizeDefault
	}

	frames := make([]*Page, cfg.PoolSize)
	freeList := make([]FrameID, cfg.PoolSize)
	for i := 0; i < cfg.PoolSize; i++ {
		frames[i] = NewPage(InvalidPageID, PageTypeData)
		freeList[i] = FrameID(i)
	}

	return &BufferPoolManager{
		frames:    frames,
		freeList:  freeList,
		pageTable: hashindex.New[PageID, FrameID](cfg.BucketSize, hashindex.NewHasher(PageID.Bytes)),
		replacer:  replacer.New[FrameID](),
		disk:      disk,
		log:       log,
	}
}

// getVictim picks a frame to (re)use: the free list first, then the
// replacer. Caller must hold bp.mu. The bool is false only when both
// are exhausted (every frame is pinned); not an error, just "no room".
func (bp *BufferPoolManager) getVictim() (FrameID, bool) {
	if n := len(bp.freeList); n > 0 {
		id := bp.freeList[n-1]
		bp.freeList = bp.freeList[:n-1]
		return id, true
	}
	return bp.replacer.Victim()
}

// evict prepares frameID for reuse: if it currently holds a dirty
// page, that page is written back (and logged) first; either way the
// occupant is removed from the page table. Caller must hold bp.mu.
// It returns the id of whatever page previously occupied the frame
// (InvalidPageID if the frame was already free), so a caller that
// fails to complete the reuse can restore it via restoreVictim.
func (bp *BufferPoolManager) evict(frameID FrameID) (PageID, error) {
	occupant := bp.frames[frameID]
	if occupant.ID == InvalidPageID {
		return InvalidPageID, nil
	}

	if occupant.IsDirty {
		if err := bp.disk.WritePage(occupant); err != nil {
			return InvalidPageID, fmt.Errorf("flush victim page %d: %w", occupant.ID, err)
		}
		if bp.log != nil {
			if _, err := bp.log.AppendPageWrite(occupant.ID, occupant.Data); err != nil {
				return InvalidPageID, fmt.Errorf("log victim writeback for page %d: %w", occupant.ID, err)
			}
		}
		occupant.IsDirty = false
	}

	prevID := occupant.ID
	bp.pageTable.Remove(prevID)
	return prevID, nil
}

// restoreVictim undoes evict's bookkeeping when the disk operation that
// was about to reuse frameID failed, so the frame does not become
// unreachable: a frame that came from the free list goes back on the
// free list, and a frame whose occupant was just evicted goes back into
// the page table and the replacer, exactly where evict found it.
func (bp *BufferPoolManager) restoreVictim(frameID FrameID, prevOccupant PageID) {
	if prevOccupant == InvalidPageID {
		bp.freeList = append(bp.freeList, frameID)
		return
	}
	bp.pageTable.Insert(prevOccupant, frameID)
	bp.replacer.Insert(frameID)
}

// FetchPage returns the page with the given id, pinned for the
// caller, reading it from disk if it isn't already resident. It
// returns (nil, nil), not an error, when every frame is pinned and
// none can be reused.
func (bp *BufferPoolManager) FetchPage(pageID PageID) (*Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	var frameID FrameID
	if bp.pageTable.Find(pageID, &frameID) {
		page := bp.frames[frameID]
		page.Pin()
		bp.replacer.Erase(frameID)
		return page, nil
	}

	frameID, ok := bp.getVictim()
	if !ok {
		return nil, nil
	}
	prevOccupant, err := bp.evict(frameID)
	if err != nil {
		return nil, err
	}

	page, err := bp.disk.ReadPage(pageID)
	if err != nil {
		bp.restoreVictim(frameID, prevOccupant)
		return nil, fmt.Errorf("read page %d from disk: %w", pageID, err)
	}
	page.Pin()

	bp.frames[frameID] = page
	bp.pageTable.Insert(pageID, frameID)
	return page, nil
}

// NewPage allocates a fresh page on disk, pins it in a frame, and
// returns it. Like FetchPage, it returns (nil, nil) when no frame is
// available.
func (bp *BufferPoolManager) NewPage() (*Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.getVictim()
	if !ok {
		return nil, nil
	}
	prevOccupant, err := bp.evict(frameID)
	if err != nil {
		return nil, err
	}

	pageID, err := bp.disk.AllocatePage()
	if err != nil {
		bp.restoreVictim(frameID, prevOccupant)
		return nil, fmt.Errorf("allocate page on disk: %w", err)
	}

	page := NewPage(pageID, PageTypeData)
	page.Pin()

	bp.frames[frameID] = page
	bp.pageTable.Insert(pageID, frameID)
	return page, nil
}

// UnpinPage decrements the pin count of pageID, marking it dirty if
// requested. Unpinning a page whose pin count is already zero is a
// contract violation: it returns ErrPageNotPinned and otherwise has no
// observable effect (the dirty flag is left untouched even if isDirty
// is true). Once the pin count reaches zero the frame becomes a
// replacer victim candidate.
func (bp *BufferPoolManager) UnpinPage(pageID PageID, isDirty bool) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	var frameID FrameID
	if !bp.pageTable.Find(pageID, &frameID) {
		return fmt.Errorf("unpin page %d: %w", pageID, ErrPageNotInPool)
	}
	page := bp.frames[frameID]
	if !page.IsPinned() {
		return fmt.Errorf("unpin page %d: %w", pageID, ErrPageNotPinned)
	}

	page.Unpin()
	if isDirty {
		page.MarkDirty()
	}
	if !page.IsPinned() {
		bp.replacer.Insert(frameID)
	}
	return nil
}

// FlushPage writes pageID's frame back to disk if dirty, clearing the
// dirty flag on success.
func (bp *BufferPoolManager) FlushPage(pageID PageID) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.flushLocked(pageID)
}

func (bp *BufferPoolManager) flushLocked(pageID PageID) error {
	var frameID FrameID
	if !bp.pageTable.Find(pageID, &frameID) {
		return fmt.Errorf("flush page %d: %w", pageID, ErrPageNotInPool)
	}
	page := bp.frames[frameID]
	if !page.IsDirty {
		return nil
	}
	if err := bp.disk.WritePage(page); err != nil {
		return fmt.Errorf("flush page %d: %w", pageID, err)
	}
	if bp.log != nil {
		if _, err := bp.log.AppendPageWrite(pageID, page.Data); err != nil {
			return fmt.Errorf("log flush of page %d: %w", pageID, err)
		}
	}
	page.IsDirty = false
	return nil
}

// FlushAllPages writes every dirty resident page back to disk.
func (bp *BufferPoolManager) FlushAllPages() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for _, page := range bp.frames {
		if page.ID == InvalidPageID || !page.IsDirty {
			continue
		}
		if err := bp.flushLocked(page.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeletePage removes pageID from the pool (if resident) and frees it
// on disk. It refuses to delete a pinned page.
func (bp *BufferPoolManager) DeletePage(pageID PageID) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	var frameID FrameID
	if bp.pageTable.Find(pageID, &frameID) {
		page := bp.frames[frameID]
		if page.IsPinned() {
			return fmt.Errorf("delete page %d: %w", pageID, ErrPagePinned)
		}
		bp.pageTable.Remove(pageID)
		bp.replacer.Erase(frameID)
		page.Reset()
		bp.freeList = append(bp.freeList, frameID)
	}

	if err := bp.disk.DeallocatePage(pageID); err != nil {
		return fmt.Errorf("deallocate page %d: %w", pageID, err)
	}
	return nil
}

// PoolSize returns the number of frames the pool owns.
func (bp *BufferPoolManager) PoolSize() int {
	return len(bp.frames)
}
