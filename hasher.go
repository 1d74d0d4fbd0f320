// Package blake3 implements BLAKE3: a cryptographic hash and extendable
// output function built on a SIMD-friendly binary tree of 1024-byte
// chunks. See github.com/codahale/blake3go/hazmat/guts for the
// compression primitive, backend dispatch, and transposed-vector buffer
// this package drives.
package blake3

import (
	"fmt"

	"github.com/codahale/blake3go/hazmat/guts"
)

// Size is the default output length in bytes.
const Size = guts.OutLen

// BlockSize is the compression block size in bytes, exposed for hash.Hash
// conformance.
const BlockSize = guts.BlockLen

// Hasher is an incremental BLAKE3 instance. It implements hash.Hash and
// io.Writer. The zero value is not usable; construct one with New,
// NewKeyed, or NewDeriveKey.
type Hasher struct {
	key   guts.CVWords
	flags uint32

	chunk chunkState
	stack []stackEntry

	// buf is reused scratch space for batched hash_chunks/reduce_parents
	// passes, so update never allocates in its hot path.
	buf guts.TransposedVectors
}

// New returns a Hasher with the standard, unkeyed BLAKE3 mode.
func New() *Hasher {
	h := &Hasher{}
	h.reset(guts.IV, 0)
	return h
}

// NewKeyed returns a Hasher in keyed mode. key must be exactly guts.KeyLen
// (32) bytes.
func NewKeyed(key []byte) (*Hasher, error) {
	if len(key) != guts.KeyLen {
		return nil, fmt.Errorf("blake3: key must be %d bytes, got %d", guts.KeyLen, len(key))
	}
	h := &Hasher{}
	h.reset(guts.CVFromBytes(key), guts.KeyedHash)
	return h, nil
}

// NewDeriveKey returns a Hasher in key-derivation mode: context is hashed
// first (with DERIVE_KEY_CONTEXT) to produce a key, and the returned
// Hasher is keyed with that derived key (with DERIVE_KEY_MATERIAL) ready
// to absorb key material.
func NewDeriveKey(context string) *Hasher {
	ctxHasher := &Hasher{}
	ctxHasher.reset(guts.IV, guts.DeriveKeyContext)
	_, _ = ctxHasher.Write([]byte(context))
	derivedKey := ctxHasher.Finalize()

	h := &Hasher{}
	h.reset(guts.CVFromBytes(derivedKey[:]), guts.DeriveKeyMaterial)
	return h
}

func (h *Hasher) reset(key guts.CVWords, flags uint32) {
	h.key = key
	h.flags = flags
	h.chunk = newChunkState(key, 0, flags)
	h.stack = h.stack[:0]
}

// Reset reinitializes the Hasher to its post-construction state, keeping
// whichever of the unkeyed/keyed/derive-key modes it was built with.
func (h *Hasher) Reset() { h.reset(h.key, h.flags) }

// Clone returns an independent copy of h, sharing no state: writes to one
// never affect the other.
func (h *Hasher) Clone() *Hasher {
	clone := *h
	clone.stack = append([]stackEntry(nil), h.stack...)
	return &clone
}

// Size returns the default output size in bytes.
func (h *Hasher) Size() int { return Size }

// BlockSize returns the compression block size in bytes.
func (h *Hasher) BlockSize() int { return BlockSize }

// Write absorbs p. It never returns an error.
func (h *Hasher) Write(p []byte) (int, error) {
	n := len(p)

	for len(p) > 0 {
		if h.chunk.len() == guts.ChunkLen {
			// More input has arrived, so this chunk is not the last one:
			// it is safe to finalize it as a non-root subtree and merge.
			h.pushCV(h.chunk.finalizeNonRoot(), 1)
			h.chunk = newChunkState(h.key, h.chunk.chunkCounter+1, h.flags)
		}

		if h.chunk.len() == 0 && len(p) > guts.ChunkLen {
			degree := guts.Degree()
			// Leave at least one byte unconsumed so the batch can never
			// include what might turn out to be the final chunk.
			available := (len(p) - 1) / guts.ChunkLen
			if batch := batchSize(degree, available, h.chunk.chunkCounter); batch > 0 {
				h.hashBatch(batch, p[:batch*guts.ChunkLen])
				p = p[batch*guts.ChunkLen:]
				continue
			}
		}

		take := min(guts.ChunkLen-h.chunk.len(), len(p))
		h.chunk.update(p[:take])
		p = p[take:]
	}

	return n, nil
}

// batchSize picks the largest power of two no greater than degree, the
// number of whole chunks available, or the largest power of two dividing
// counter (the number of chunks already completed). The last constraint
// is not an optimization: a batch of B chunks is pushed onto the stack as
// one size-B subtree starting at chunk index counter, and pushCV's merge
// loop only carries correctly when equal-sized subtrees always meet at
// the top of the stack — which requires every subtree's starting index to
// be a multiple of its own size, exactly like a binary counter's carry
// chain. A batch that ignores this can be pushed "early" relative to its
// size and never find its sibling, corrupting the tree. counter == 0 (the
// very first batch) has no alignment constraint, since 0 is a multiple of
// every size.
func batchSize(degree, availableChunks int, counter uint64) int {
	max := degree
	if availableChunks < max {
		max = availableChunks
	}
	if counter != 0 {
		if alignment := counter & -counter; alignment < uint64(max) {
			max = int(alignment)
		}
	}
	b := 1
	for b*2 <= max {
		b *= 2
	}
	if b > max {
		return 0
	}
	return b
}

// hashBatch hashes exactly `batch` complete chunks from input (which must
// be batch*guts.ChunkLen bytes) through the backend's batched hash_chunks
// and reduces the resulting chaining values to one with repeated
// reduce_parents calls, then pushes that one chaining value as a subtree
// of `batch` chunks.
func (h *Hasher) hashBatch(batch int, input []byte) {
	left, _ := h.buf.Split(batch)
	guts.HashChunks(input, &h.key, h.chunk.chunkCounter, h.flags, left)

	numCVs := batch
	for numCVs > 1 {
		numCVs = guts.ReduceParents(&h.buf, numCVs, &h.key, h.flags)
	}

	h.pushCV(h.buf.Column(0), uint64(batch))
	h.chunk.chunkCounter += uint64(batch)
}

// Sum appends the 32-byte BLAKE3 hash of everything written so far to b.
// It does not modify the Hasher's state.
func (h *Hasher) Sum(b []byte) []byte {
	sum := h.Finalize()
	return append(b, sum[:]...)
}

// Finalize returns the 32-byte BLAKE3 hash of everything written so far.
// It does not modify the Hasher's state, so Write may continue afterward.
func (h *Hasher) Finalize() [32]byte {
	return h.rootOutput().chainingValue()
}

// FinalizeXOF returns an XofReader that produces an arbitrary-length
// keystream derived from the current root. It does not modify the
// Hasher's state.
func (h *Hasher) FinalizeXOF() *XofReader {
	return &XofReader{out: h.rootOutput()}
}

// rootOutput computes the (input chaining value, block, block length,
// flags) that the root compression takes as input, without mutating the
// hasher. Per §4.F: a single-chunk input bypasses parent compression
// entirely; otherwise the still-open chunk is merged down through the
// stack, with the final (stack-emptying) merge carrying ROOT.
func (h *Hasher) rootOutput() output {
	if len(h.stack) == 0 {
		return output{
			inputCV:  h.chunk.cv,
			block:    h.chunk.buf,
			blockLen: uint32(h.chunk.bufLen),
			flags:    h.flags | h.chunk.startFlag() | guts.ChunkEnd | guts.Root,
		}
	}

	cv := h.chunk.finalizeNonRoot()
	for i := len(h.stack) - 1; i >= 0; i-- {
		if i == 0 {
			return output{
				inputCV:  h.key,
				block:    parentBlock(h.stack[i].cv, cv),
				blockLen: guts.BlockLen,
				flags:    h.flags | guts.Parent | guts.Root,
			}
		}
		cv = h.compressParent(h.stack[i].cv, cv, h.flags)
	}

	panic("blake3: unreachable: non-empty stack with no entries")
}
