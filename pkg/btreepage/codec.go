package btreepage

// Codec describes how to serialize and reconstruct a fixed-width key.
// KeySize must match len(K{}.Bytes()) exactly; Decode rebuilds a K
// from a KeySize-byte slice (the counterpart Go has no reflection-free
// way to synthesize generically).
type Codec[K FixedKey] struct {
	KeySize int
	Decode  func([]byte) K
}

// Key4Codec decodes Key4 values.
var Key4Codec = Codec[Key4]{
	KeySize: 4,
	Decode: func(b []byte) Key4 {
		var k Key4
		copy(k[:], b)
		return k
	},
}

// Key8Codec decodes Key8 values.
var Key8Codec = Codec[Key8]{
	KeySize: 8,
	Decode: func(b []byte) Key8 {
		var k Key8
		copy(k[:], b)
		return k
	},
}

// Key16Codec decodes Key16 values.
var Key16Codec = Codec[Key16]{
	KeySize: 16,
	Decode: func(b []byte) Key16 {
		var k Key16
		copy(k[:], b)
		return k
	},
}

// Key32Codec decodes Key32 values.
var Key32Codec = Codec[Key32]{
	KeySize: 32,
	Decode: func(b []byte) Key32 {
		var k Key32
		copy(k[:], b)
		return k
	},
}

// Key64Codec decodes Key64 values.
var Key64Codec = Codec[Key64]{
	KeySize: 64,
	Decode: func(b []byte) Key64 {
		var k Key64
		copy(k[:], b)
		return k
	},
}
