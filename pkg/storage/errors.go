package storage

import "errors"

var (
	// ErrPageNotInPool is returned by UnpinPage and FlushPage when the
	// requested page id is not currently resident in the pool. DeletePage
	// does not return it: a non-resident page is still deallocated on disk.
	ErrPageNotInPool = errors.New("page not in buffer pool")

	// ErrPageNotPinned is returned by UnpinPage when called against a page
	// whose pin count is already zero. Per contract this is a no-op: the
	// page's dirty flag is left untouched.
	ErrPageNotPinned = errors.New("page is not pinned")

	// ErrPagePinned is returned by DeletePage when the target page still
	// has outstanding pins.
	ErrPagePinned = errors.New("page is pinned")
)
