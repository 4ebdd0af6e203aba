package btreepage

import (
	"fmt"

	"github.com/Saint-JR/DBHomework/pkg/storage"
)

// fakePager is an in-memory Pager backed by a plain map, so this
// package's operations can be exercised without a real buffer pool.
type fakePager struct {
	pages  map[storage.PageID]*storage.Page
	nextID storage.PageID
	pins   map[storage.PageID]int
}

func newFakePager() *fakePager {
	return &fakePager{
		pages:  make(map[storage.PageID]*storage.Page),
		nextID: 1,
		pins:   make(map[storage.PageID]int),
	}
}

func (f *fakePager) FetchPage(pageID storage.PageID) (*storage.Page, error) {
	p, ok := f.pages[pageID]
	if !ok {
		return nil, fmt.Errorf("fakePager: page %d not found", pageID)
	}
	f.pins[pageID]++
	p.Pin()
	return p, nil
}

func (f *fakePager) NewPage() (*storage.Page, error) {
	id := f.nextID
	f.nextID++
	p := storage.NewPage(id, storage.PageTypeIndex)
	p.Pin()
	f.pages[id] = p
	f.pins[id]++
	return p, nil
}

func (f *fakePager) UnpinPage(pageID storage.PageID, isDirty bool) error {
	p, ok := f.pages[pageID]
	if !ok {
		return fmt.Errorf("fakePager: page %d not found", pageID)
	}
	if isDirty {
		p.MarkDirty()
	}
	p.Unpin()
	f.pins[pageID]--
	return nil
}
