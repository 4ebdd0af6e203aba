// Package btreepage implements the internal-node algorithmics of a
// disk-backed B+ tree: lookup, insertion, splitting, merging and
// redistribution over a fixed-width (key, child page id) array. Leaf
// pages, the tree driver that walks root-to-leaf, and on-disk user
// records are out of scope here.
package btreepage

import "github.com/Saint-JR/DBHomework/pkg/storage"

// Pager is the narrow page-access contract internal-page operations
// need from a buffer pool manager: fetch a page by id, allocate a new
// one, and release a pin. Depending on this instead of a concrete
// *storage.BufferPoolManager keeps this package testable against a
// fake. The package still imports pkg/storage for Page and PageID, and
// through it the pool's own dependencies (hashindex, replacer).
type Pager interface {
	FetchPage(pageID storage.PageID) (*storage.Page, error)
	NewPage() (*storage.Page, error)
	UnpinPage(pageID storage.PageID, isDirty bool) error
}
