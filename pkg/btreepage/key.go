package btreepage

import "bytes"

// FixedKey is a key type with a stable, fixed-width byte encoding, so
// entries in an internal page can be laid out as a flat array with no
// variable-length indirection.
type FixedKey interface {
	Bytes() []byte
}

// Comparator orders two keys the same way the page's own array is
// kept sorted: negative, zero, or positive as a < b, a == b, a > b.
type Comparator[K FixedKey] func(a, b K) int

// ByteComparator compares any FixedKey by its byte encoding, which is
// correct for any key whose natural ordering matches unsigned
// big-endian byte order (e.g. the generic Key4..Key64 types below used
// with big-endian-packed integer or string payloads).
func ByteComparator[K FixedKey](a, b K) int {
	return bytes.Compare(a.Bytes(), b.Bytes())
}

// Key4 is a 4-byte fixed-width key.
type Key4 [4]byte

// Bytes returns k's raw bytes.
func (k Key4) Bytes() []byte { return k[:] }

// Key8 is an 8-byte fixed-width key.
type Key8 [8]byte

// Bytes returns k's raw bytes.
func (k Key8) Bytes() []byte { return k[:] }

// Key16 is a 16-byte fixed-width key.
type Key16 [16]byte

// Bytes returns k's raw bytes.
func (k Key16) Bytes() []byte { return k[:] }

// Key32 is a 32-byte fixed-width key.
type Key32 [32]byte

// Bytes returns k's raw bytes.
func (k Key32) Bytes() []byte { return k[:] }

// Key64 is a 64-byte fixed-width key.
type Key64 [64]byte

// Bytes returns k's raw bytes.
func (k Key64) Bytes() []byte { return k[:] }
