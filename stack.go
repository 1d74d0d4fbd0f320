package blake3

import "github.com/codahale/blake3go/hazmat/guts"

// stackEntry is one completed, not-yet-merged subtree: its chaining value
// and the number of chunks it spans. Entries are kept with the oldest
// (leftmost, largest) subtree at index 0 and the most recently pushed
// (rightmost, smallest) subtree at the end.
type stackEntry struct {
	cv   guts.CVWords
	size uint64
}

// pushCV pushes a new completed subtree of the given size, then merges
// while the top two entries share a size. This only produces the correct
// tree if every push starts at a chunk index that is a multiple of size
// (batchSize's job to guarantee): given that, after N complete chunks the
// stack's sizes are exactly the set bits of N, so equal-sized neighbors
// only ever appear at the top and always carry.
func (h *Hasher) pushCV(cv guts.CVWords, size uint64) {
	h.stack = append(h.stack, stackEntry{cv: cv, size: size})
	for {
		n := len(h.stack)
		if n < 2 || h.stack[n-1].size != h.stack[n-2].size {
			return
		}
		right := h.stack[n-1]
		left := h.stack[n-2]
		h.stack = h.stack[:n-2]
		merged := h.compressParent(left.cv, right.cv, h.flags)
		h.stack = append(h.stack, stackEntry{cv: merged, size: left.size * 2})
	}
}

// compressParent compresses the 64-byte block formed by concatenating
// left's and right's words as a parent node.
func (h *Hasher) compressParent(left, right guts.CVWords, flags uint32) guts.CVWords {
	block := parentBlock(left, right)
	return guts.Compress(&h.key, &block, guts.BlockLen, 0, flags|guts.Parent)
}

// parentBlock assembles the 64-byte parent compression block: left's 8
// words, then right's 8 words, both little-endian.
func parentBlock(left, right guts.CVWords) guts.BlockBytes {
	leftBytes := guts.BytesFromCV(&left)
	rightBytes := guts.BytesFromCV(&right)
	var block guts.BlockBytes
	copy(block[:32], leftBytes[:])
	copy(block[32:], rightBytes[:])
	return block
}
