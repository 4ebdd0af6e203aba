// Package hashindex implements an extendible hash directory: a
// constant-time lookup structure from key to value, backed by a
// directory of bucket references that doubles on overflow instead of
// rehashing the whole table.
package hashindex

import (
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// HashFunc maps a key to a 64-bit digest. Build one with NewHasher for
// any key type by supplying a byte-encoding of it.
type HashFunc[K comparable] func(K) uint64

// NewHasher builds a stable, well-distributed HashFunc for key type K
// out of a caller-supplied byte encoding. The digest is the first 8
// bytes of a blake2b-256 sum, which needs no seed/key material for
// this non-adversarial use.
func NewHasher[K comparable](encode func(K) []byte) HashFunc[K] {
	return func(k K) uint64 {
		sum := blake2b.Sum256(encode(k))
		return binary.LittleEndian.Uint64(sum[:8])
	}
}

type bucket[K comparable, V any] struct {
	mu         sync.Mutex
	localDepth int
	entries    map[K]V
}

// ExtendibleHash is a thread-safe, directory-based hash index from K to
// V. The directory never shrinks; deletion only ever removes entries
// from a bucket, never buckets or directory slots.
type ExtendibleHash[K comparable, V any] struct {
	dirMu       sync.RWMutex
	directory   []*bucket[K, V]
	globalDepth int
	bucketNum   int
	bucketSize  int
	hash        HashFunc[K]
}

// New creates an extendible hash with one bucket of the given capacity
// at global depth 0.
func New[K comparable, V any](bucketSize int, hash HashFunc[K]) *ExtendibleHash[K, V] {
	if bucketSize < 1 {
		bucketSize = 1
	}
	root := &bucket[K, V]{localDepth: 0, entries: make(map[K]V, bucketSize)}
	return &ExtendibleHash[K, V]{
		directory:   []*bucket[K, V]{root},
		globalDepth: 0,
		bucketNum:   1,
		bucketSize:  bucketSize,
		hash:        hash,
	}
}

// locate returns the directory index and bucket currently responsible
// for k, under a brief read lock on the directory.
func (h *ExtendibleHash[K, V]) locate(k K) (int, *bucket[K, V]) {
	h.dirMu.RLock()
	idx := int(h.hash(k)) & ((1 << uint(h.globalDepth)) - 1)
	b := h.directory[idx]
	h.dirMu.RUnlock()
	return idx, b
}

// lockBucket returns k's bucket with its lock held. If a concurrent
// split repointed k's directory slot between the lookup and the lock
// acquisition, the stale bucket is released and the lookup retried, so
// the returned bucket is always the one the directory maps k to.
func (h *ExtendibleHash[K, V]) lockBucket(k K) *bucket[K, V] {
	for {
		_, b := h.locate(k)
		b.mu.Lock()
		_, cur := h.locate(k)
		if cur == b {
			return b
		}
		b.mu.Unlock()
	}
}

// Find looks up k and, if present, stores its value in *value.
func (h *ExtendibleHash[K, V]) Find(k K, value *V) bool {
	b := h.lockBucket(k)
	defer b.mu.Unlock()

	v, ok := b.entries[k]
	if ok {
		*value = v
	}
	return ok
}

// Remove deletes k if present. The directory is never shrunk.
func (h *ExtendibleHash[K, V]) Remove(k K) bool {
	b := h.lockBucket(k)
	defer b.mu.Unlock()

	if _, ok := b.entries[k]; !ok {
		return false
	}
	delete(b.entries, k)
	return true
}

// Insert writes k -> v, overwriting any existing value for k and
// splitting buckets (and, if necessary, doubling the directory) as
// many times as needed to make room.
func (h *ExtendibleHash[K, V]) Insert(k K, v V) {
	for {
		b := h.lockBucket(k)

		if _, ok := b.entries[k]; ok {
			b.entries[k] = v
			b.mu.Unlock()
			return
		}
		if len(b.entries) < h.bucketSize {
			b.entries[k] = v
			b.mu.Unlock()
			return
		}

		h.split(b)
		b.mu.Unlock()
		// Retry: k may now land in b or its new sibling.
	}
}

// split grows bucket b by one local-depth level, doubling the
// directory if that exceeds the current global depth. Called with b.mu
// held; acquires the directory lock while holding it, which is the
// declared lock order (bucket before directory). The sibling is fully
// populated before any directory slot points at it, so a reader that
// reaches the sibling through the directory never sees it half-built.
func (h *ExtendibleHash[K, V]) split(b *bucket[K, V]) {
	mask := uint64(1) << uint(b.localDepth)

	sibling := &bucket[K, V]{localDepth: b.localDepth + 1, entries: make(map[K]V, h.bucketSize)}
	for key, val := range b.entries {
		if h.hash(key)&mask != 0 {
			sibling.entries[key] = val
			delete(b.entries, key)
		}
	}
	b.localDepth++

	h.dirMu.Lock()
	if b.localDepth > h.globalDepth {
		h.directory = append(h.directory, h.directory...)
		h.globalDepth++
	}
	h.bucketNum++

	for i := range h.directory {
		if h.directory[i] == b && uint64(i)&mask != 0 {
			h.directory[i] = sibling
		}
	}
	h.dirMu.Unlock()
}

// GetGlobalDepth returns the directory's current global depth.
func (h *ExtendibleHash[K, V]) GetGlobalDepth() int {
	h.dirMu.RLock()
	defer h.dirMu.RUnlock()
	return h.globalDepth
}

// GetLocalDepth returns the local depth of the bucket at directory
// index i, or -1 if the index is out of range or the bucket is empty.
func (h *ExtendibleHash[K, V]) GetLocalDepth(i int) int {
	h.dirMu.RLock()
	if i < 0 || i >= len(h.directory) {
		h.dirMu.RUnlock()
		return -1
	}
	b := h.directory[i]
	h.dirMu.RUnlock()

	if b == nil {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) == 0 {
		return -1
	}
	return b.localDepth
}

// GetNumBuckets returns the number of distinct buckets ever allocated.
func (h *ExtendibleHash[K, V]) GetNumBuckets() int {
	h.dirMu.RLock()
	defer h.dirMu.RUnlock()
	return h.bucketNum
}
