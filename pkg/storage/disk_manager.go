package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// DiskManager performs page-granular I/O against a single data file.
// A page id maps directly to its file offset (id * PageSize).
// Deallocated ids go on an in-memory free list and are handed back out
// by AllocatePage before the file is grown. The free list is not
// persisted; ids freed in one run are not reused after a reopen.
type DiskManager struct {
	mu          sync.Mutex
	file        *os.File
	nextPageID  PageID
	freePages   []PageID
	totalReads  int64
	totalWrites int64
}

// NewDiskManager opens (or creates) the data file at path and resumes
// page id allocation from its current size.
func NewDiskManager(path string) (*DiskManager, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat data file: %w", err)
	}

	nextPageID := PageID(info.Size() / PageSize)
	if nextPageID <= InvalidPageID {
		nextPageID = InvalidPageID + 1
	}

	return &DiskManager{
		file:       file,
		nextPageID: nextPageID,
	}, nil
}

// ReadPage reads the page at pageID. Reading past the end of the file
// returns a fresh zeroed page, since a newly allocated id has no bytes
// on disk until its first write-back.
func (dm *DiskManager) ReadPage(pageID PageID) (*Page, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	data := make([]byte, PageSize)
	n, err := dm.file.ReadAt(data, int64(pageID)*PageSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read page %d: %w", pageID, err)
	}
	if n < PageSize {
		return NewPage(pageID, PageTypeData), nil
	}

	page := NewPage(pageID, PageTypeData)
	if err := page.Deserialize(data); err != nil {
		return nil, fmt.Errorf("failed to deserialize page %d: %w", pageID, err)
	}

	dm.totalReads++
	return page, nil
}

// WritePage writes the page to its slot in the data file.
func (dm *DiskManager) WritePage(page *Page) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if _, err := dm.file.WriteAt(page.Serialize(), int64(page.ID)*PageSize); err != nil {
		return fmt.Errorf("failed to write page %d: %w", page.ID, err)
	}

	dm.totalWrites++
	return nil
}

// AllocatePage hands out a page id, preferring a previously
// deallocated one over growing the file.
func (dm *DiskManager) AllocatePage() (PageID, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if n := len(dm.freePages); n > 0 {
		pageID := dm.freePages[n-1]
		dm.freePages = dm.freePages[:n-1]
		return pageID, nil
	}

	pageID := dm.nextPageID
	dm.nextPageID++
	return pageID, nil
}

// DeallocatePage marks pageID as free for reuse.
func (dm *DiskManager) DeallocatePage(pageID PageID) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if pageID == InvalidPageID || pageID >= dm.nextPageID {
		return fmt.Errorf("invalid page ID: %d (next page ID: %d)", pageID, dm.nextPageID)
	}

	dm.freePages = append(dm.freePages, pageID)
	return nil
}

// Sync flushes all written pages to stable storage.
func (dm *DiskManager) Sync() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	return dm.file.Sync()
}

// Close syncs and closes the data file.
func (dm *DiskManager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if err := dm.file.Sync(); err != nil {
		return err
	}
	return dm.file.Close()
}

// Stats returns disk manager counters.
func (dm *DiskManager) Stats() map[string]interface{} {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	return map[string]interface{}{
		"next_page_id": dm.nextPageID,
		"free_pages":   len(dm.freePages),
		"total_reads":  dm.totalReads,
		"total_writes": dm.totalWrites,
	}
}
