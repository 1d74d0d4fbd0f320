// Package guts implements the BLAKE3 compression primitive, its portable and
// SIMD-width backends, the process-wide backend dispatch table, and the
// transposed chaining-value buffer the incremental hasher drives them
// through. It is a hazmat package: callers that only want to hash bytes
// should use the root blake3 package instead.
package guts

const (
	// BlockLen is the size in bytes of a single compression block.
	BlockLen = 64
	// ChunkLen is the maximum size in bytes of a tree leaf.
	ChunkLen = 1024
	// KeyLen is the size in bytes of a BLAKE3 key.
	KeyLen = 32
	// OutLen is the size in bytes of a chaining value and of the default hash output.
	OutLen = 32
	// UniversalHashLen is the size in bytes of a universal_hash output.
	UniversalHashLen = 16
)

// Flag bits, combined into the 32-bit flags word passed to compress.
const (
	ChunkStart        uint32 = 1 << 0
	ChunkEnd          uint32 = 1 << 1
	Parent            uint32 = 1 << 2
	Root              uint32 = 1 << 3
	KeyedHash         uint32 = 1 << 4
	DeriveKeyContext  uint32 = 1 << 5
	DeriveKeyMaterial uint32 = 1 << 6
)

// IV holds the initial chaining value words, used as the key for unkeyed hashing.
var IV = [8]uint32{
	0x6A09E667, 0xBB67AE85, 0x3C6EF372, 0xA54FF53A,
	0x510E527F, 0x9B05688C, 0x1F83D9AB, 0x5BE0CD19,
}

// MsgSchedule gives, for each of the 7 rounds, the permutation of the
// original 16 message words to feed into that round's G applications.
// Row 0 is the identity permutation.
var MsgSchedule = [7][16]int{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8},
	{3, 4, 10, 12, 13, 2, 7, 14, 6, 5, 9, 0, 11, 15, 8, 1},
	{10, 7, 12, 9, 14, 3, 13, 15, 4, 0, 11, 2, 5, 8, 1, 6},
	{12, 13, 9, 11, 15, 10, 14, 8, 7, 2, 5, 3, 0, 1, 6, 4},
	{9, 14, 11, 5, 8, 12, 15, 1, 13, 3, 0, 10, 2, 6, 4, 7},
	{11, 15, 5, 0, 1, 9, 8, 6, 14, 10, 2, 12, 3, 4, 7, 13},
}

// CVWords is a chaining value in word form.
type CVWords = [8]uint32

// CVBytes is a chaining value in byte form, little-endian.
type CVBytes = [32]byte

// BlockWords is a compression block in word form.
type BlockWords = [16]uint32

// BlockBytes is a compression block in byte form, little-endian, zero-padded.
type BlockBytes = [64]byte

// WordsFromBlock unpacks a little-endian 64-byte block into 16 words.
func WordsFromBlock(block *BlockBytes) BlockWords {
	var m BlockWords
	for i := range m {
		m[i] = uint32(block[4*i]) | uint32(block[4*i+1])<<8 |
			uint32(block[4*i+2])<<16 | uint32(block[4*i+3])<<24
	}
	return m
}

// BlockFromBytes copies up to BlockLen bytes of src into a zero-padded block.
func BlockFromBytes(src []byte) BlockBytes {
	var block BlockBytes
	copy(block[:], src)
	return block
}

// BytesFromCV packs an 8-word chaining value into little-endian bytes.
func BytesFromCV(cv *CVWords) CVBytes {
	var out CVBytes
	for i, w := range cv {
		out[4*i] = byte(w)
		out[4*i+1] = byte(w >> 8)
		out[4*i+2] = byte(w >> 16)
		out[4*i+3] = byte(w >> 24)
	}
	return out
}

// CVFromBytes unpacks a 32-byte little-endian chaining value into words.
func CVFromBytes(b []byte) CVWords {
	var cv CVWords
	for i := range cv {
		cv[i] = uint32(b[4*i]) | uint32(b[4*i+1])<<8 |
			uint32(b[4*i+2])<<16 | uint32(b[4*i+3])<<24
	}
	return cv
}

// putWordsLE writes words into dst in little-endian order. len(dst) must be
// at least 4*len(words).
func putWordsLE(dst []byte, words []uint32) {
	for i, w := range words {
		dst[4*i] = byte(w)
		dst[4*i+1] = byte(w >> 8)
		dst[4*i+2] = byte(w >> 16)
		dst[4*i+3] = byte(w >> 24)
	}
}
