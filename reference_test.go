package blake3

import (
	"bytes"
	"testing"

	"github.com/codahale/blake3go/hazmat/guts"
)

// This file is an independent reference oracle for the tree construction:
// it recomputes the whole output by recursively splitting the message into
// chunks and combining chaining values bottom-up in one pass, the textbook
// way, rather than incrementally through Hasher.Write's buffered/batched
// stack. It shares no code with chunkstate.go, stack.go, or hasher.go's
// batchSize/hashBatch/pushCV, so it cannot be fooled by a bug confined to
// how Write batches and aligns chunks onto the CV stack — exactly the class
// of bug a self-referential "compare against Hash(msg)" test cannot catch.
//
// It does reuse guts.Compress/guts.Xof and the parent-block-assembly shape,
// since those are covered directly by hazmat/guts's own tests.

// prevPowerOfTwo returns the largest power of two strictly less than n.
// n must be at least 2.
func prevPowerOfTwo(n int) int {
	p := 1
	for p*2 < n {
		p *= 2
	}
	return p
}

// refChunkCV computes a single chunk's (at most guts.ChunkLen bytes)
// non-root chaining value.
func refChunkCV(chunk []byte, key guts.CVWords, counter uint64, flags uint32) guts.CVWords {
	cv := key
	chunkFlags := flags | guts.ChunkStart
	off := 0
	for len(chunk)-off > guts.BlockLen {
		block := guts.BlockFromBytes(chunk[off : off+guts.BlockLen])
		cv = guts.Compress(&cv, &block, guts.BlockLen, counter, chunkFlags)
		chunkFlags = flags
		off += guts.BlockLen
	}
	block := guts.BlockFromBytes(chunk[off:])
	blockLen := uint32(len(chunk) - off)
	return guts.Compress(&cv, &block, blockLen, counter, chunkFlags|guts.ChunkEnd)
}

// refParentCV combines two sibling chaining values into their non-root
// parent chaining value.
func refParentCV(left, right guts.CVWords, key guts.CVWords, flags uint32) guts.CVWords {
	leftBytes := guts.BytesFromCV(&left)
	rightBytes := guts.BytesFromCV(&right)
	var block guts.BlockBytes
	copy(block[:32], leftBytes[:])
	copy(block[32:], rightBytes[:])
	return guts.Compress(&key, &block, guts.BlockLen, 0, flags|guts.Parent)
}

// refTreeCV recursively computes the non-root chaining value of an
// arbitrary-length (possibly multi-chunk) span of the message, starting at
// the given chunk counter.
func refTreeCV(msg []byte, key guts.CVWords, counter uint64, flags uint32) guts.CVWords {
	chunks := (len(msg) + guts.ChunkLen - 1) / guts.ChunkLen
	if chunks <= 1 {
		return refChunkCV(msg, key, counter, flags)
	}
	left := prevPowerOfTwo(chunks)
	leftLen := left * guts.ChunkLen
	leftCV := refTreeCV(msg[:leftLen], key, counter, flags)
	rightCV := refTreeCV(msg[leftLen:], key, counter+uint64(left), flags)
	return refParentCV(leftCV, rightCV, key, flags)
}

// refOutput computes the root compression's inputs for msg from scratch:
// the single-chunk case is finalized directly; everything else recurses
// via refTreeCV and merges only at the very top, with ROOT set on that
// final compression.
func refOutput(msg []byte, key guts.CVWords, flags uint32) (guts.CVWords, guts.BlockBytes, uint32, uint32) {
	chunks := (len(msg) + guts.ChunkLen - 1) / guts.ChunkLen
	if chunks <= 1 {
		cv := key
		chunkFlags := flags | guts.ChunkStart
		off := 0
		for len(msg)-off > guts.BlockLen {
			block := guts.BlockFromBytes(msg[off : off+guts.BlockLen])
			cv = guts.Compress(&cv, &block, guts.BlockLen, 0, chunkFlags)
			chunkFlags = flags
			off += guts.BlockLen
		}
		block := guts.BlockFromBytes(msg[off:])
		blockLen := uint32(len(msg) - off)
		return cv, block, blockLen, chunkFlags | guts.ChunkEnd | guts.Root
	}

	left := prevPowerOfTwo(chunks)
	leftLen := left * guts.ChunkLen
	leftCV := refTreeCV(msg[:leftLen], key, 0, flags)
	rightCV := refTreeCV(msg[leftLen:], key, uint64(left), flags)

	leftBytes := guts.BytesFromCV(&leftCV)
	rightBytes := guts.BytesFromCV(&rightCV)
	var block guts.BlockBytes
	copy(block[:32], leftBytes[:])
	copy(block[32:], rightBytes[:])
	return key, block, guts.BlockLen, flags | guts.Parent | guts.Root
}

func refHash(msg []byte, key guts.CVWords, flags uint32) [32]byte {
	inputCV, block, blockLen, outFlags := refOutput(msg, key, flags)
	cv := guts.Compress(&inputCV, &block, blockLen, 0, outFlags)
	return guts.BytesFromCV(&cv)
}

func refXOF(msg []byte, key guts.CVWords, flags uint32, n int) []byte {
	inputCV, block, blockLen, outFlags := refOutput(msg, key, flags)
	out := make([]byte, n)
	guts.Xof(&block, blockLen, &inputCV, 0, outFlags, out)
	return out
}

func refDeriveKey(context string, material []byte) [32]byte {
	ctxHash := refHash([]byte(context), guts.IV, guts.DeriveKeyContext)
	return refHash(material, guts.CVFromBytes(ctxHash[:]), guts.DeriveKeyMaterial)
}

// boundaryLengths covers the 1-, 2-, 4-, 8- and 16-chunk boundaries (and
// their neighbors), plus exactly 64 and 100 chunks' worth of input, which is
// where the backend
// dispatch's batched hash_chunks/reduce_parents path and the CV stack's
// push/merge alignment are exercised hardest.
var boundaryLengths = []int{
	0, 1,
	1023, 1024, 1025,
	2047, 2048, 2049,
	4095, 4096, 4097,
	8191, 8192, 8193,
	16383, 16384, 16385,
	65536,
	102400,
}

// TestReferenceHash checks Hash against the independent recursive oracle
// across every chunk-boundary length.
func TestReferenceHash(t *testing.T) {
	for _, n := range boundaryLengths {
		msg := ptn(n)
		got := Hash(msg)
		want := refHash(msg, guts.IV, 0)
		if got != want {
			t.Errorf("n=%d: got %x, want %x", n, got, want)
		}
	}
}

// TestReferenceKeyedHash checks KeyedHash the same way.
func TestReferenceKeyedHash(t *testing.T) {
	key := bytes.Repeat([]byte("0123456789abcdef"), 2) // 32 bytes
	for _, n := range boundaryLengths {
		msg := ptn(n)
		got, err := KeyedHash(key, msg)
		if err != nil {
			t.Fatal(err)
		}
		want := refHash(msg, guts.CVFromBytes(key), guts.KeyedHash)
		if got != want {
			t.Errorf("n=%d: got %x, want %x", n, got, want)
		}
	}
}

// TestReferenceDeriveKey checks DeriveKey the same way.
func TestReferenceDeriveKey(t *testing.T) {
	const context = "blake3go reference test context"
	for _, n := range boundaryLengths {
		material := ptn(n)
		got := DeriveKey(context, material)
		want := refDeriveKey(context, material)
		if got != want {
			t.Errorf("n=%d: got %x, want %x", n, got, want)
		}
	}
}

// TestReferenceXOF checks FinalizeXOF's extended output against the
// independent oracle, for an output length spanning several 64-byte
// compression blocks.
func TestReferenceXOF(t *testing.T) {
	const outLen = 200
	for _, n := range boundaryLengths {
		msg := ptn(n)

		h := New()
		_, _ = h.Write(msg)
		got := make([]byte, outLen)
		h.FinalizeXOF().Fill(got)

		want := refXOF(msg, guts.IV, 0, outLen)
		if !bytes.Equal(got, want) {
			t.Errorf("n=%d: got %x, want %x", n, got, want)
		}
	}
}

// TestReferenceIncrementalSplits re-checks TestReferenceHash's inputs
// under the exact write pattern the batch-alignment bug required: a
// first Write landing precisely on a chunk boundary, followed by a second
// Write spanning several more chunks in one call, so that any future
// regression in batchSize's counter-alignment constraint fails here
// immediately.
func TestReferenceIncrementalSplits(t *testing.T) {
	for _, n := range boundaryLengths {
		if n < guts.ChunkLen*2 {
			continue
		}
		msg := ptn(n)
		want := refHash(msg, guts.IV, 0)

		for _, firstWrite := range []int{guts.ChunkLen, guts.ChunkLen * 2, guts.ChunkLen*3 + 7} {
			if firstWrite >= n {
				continue
			}
			h := New()
			_, _ = h.Write(msg[:firstWrite])
			_, _ = h.Write(msg[firstWrite:])
			if got := h.Finalize(); got != want {
				t.Errorf("n=%d firstWrite=%d: got %x, want %x", n, firstWrite, got, want)
			}
		}
	}
}
