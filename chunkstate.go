package blake3

import "github.com/codahale/blake3go/hazmat/guts"

// chunkState accumulates one tree leaf's worth of input (up to
// guts.ChunkLen bytes). It keeps a running chaining value over whichever
// blocks have already been compressed and buffers only the block in
// progress, so a chunk never needs its full 1024 bytes resident at once.
//
// The last block of a chunk is never compressed eagerly: whether it
// carries CHUNK_END (and possibly ROOT) depends on what, if anything,
// follows it, which chunkState cannot know on its own.
type chunkState struct {
	cv               guts.CVWords
	chunkCounter     uint64
	buf              guts.BlockBytes
	bufLen           int
	blocksCompressed int
	flags            uint32
}

func newChunkState(key guts.CVWords, counter uint64, flags uint32) chunkState {
	return chunkState{cv: key, chunkCounter: counter, flags: flags}
}

// len reports how many bytes of this chunk have been absorbed so far,
// compressed or still buffered.
func (c *chunkState) len() int {
	return c.blocksCompressed*guts.BlockLen + c.bufLen
}

func (c *chunkState) startFlag() uint32 {
	if c.blocksCompressed == 0 {
		return guts.ChunkStart
	}
	return 0
}

// update absorbs input into the chunk, compressing completed blocks as
// they fill but always leaving the final block buffered.
func (c *chunkState) update(input []byte) {
	for len(input) > 0 {
		if c.bufLen == guts.BlockLen {
			c.cv = guts.Compress(&c.cv, &c.buf, guts.BlockLen, c.chunkCounter, c.flags|c.startFlag())
			c.blocksCompressed++
			c.bufLen = 0
		}
		take := min(guts.BlockLen-c.bufLen, len(input))
		copy(c.buf[c.bufLen:], input[:take])
		c.bufLen += take
		input = input[take:]
	}
}

// finalizeNonRoot compresses this chunk's buffered last block with
// CHUNK_END set (and CHUNK_START if it is also the chunk's only block),
// without mutating the chunk state. The result is a chaining value
// suitable for pushing onto the CV stack; it is never itself a root.
func (c *chunkState) finalizeNonRoot() guts.CVWords {
	block := c.buf
	return guts.Compress(&c.cv, &block, uint32(c.bufLen), c.chunkCounter, c.flags|c.startFlag()|guts.ChunkEnd)
}
