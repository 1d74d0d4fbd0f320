package guts

import "github.com/codahale/blake3go/internal/mem"

// portableDegree is the portable backend's degree: it processes one chunk
// or one parent pair per iteration.
const portableDegree = 1

// portableHashChunks compresses each complete chunk of input (at most
// ChunkLen bytes apiece) into a chaining value, written into consecutive
// columns of out starting at column 0.
func portableHashChunks(input []byte, key *CVWords, counter uint64, flags uint32, out TransposedSplit) {
	chunkIndex := 0
	for len(input) > 0 {
		chunkLen := min(len(input), ChunkLen)
		out.SetColumn(chunkIndex, hashOneChunk(input[:chunkLen], key, counter, flags))
		input = input[chunkLen:]
		counter++
		chunkIndex++
	}
}

// hashOneChunk compresses a single chunk's blocks in sequence, returning
// its chaining value.
func hashOneChunk(chunk []byte, key *CVWords, counter uint64, flags uint32) CVWords {
	cv := *key
	chunkFlags := flags | ChunkStart

	off := 0
	for len(chunk)-off > BlockLen {
		block := BlockFromBytes(chunk[off : off+BlockLen])
		cv = compress(&cv, &block, BlockLen, counter, chunkFlags)
		chunkFlags &^= ChunkStart
		off += BlockLen
	}

	block := BlockFromBytes(chunk[off:])
	blockLen := uint32(len(chunk) - off)
	cv = compress(&cv, &block, blockLen, counter, chunkFlags|ChunkEnd)
	return cv
}

// portableHashParents compresses numParents sibling pairs read from in
// (columns 2*i, 2*i+1) into parent chaining values written to out (column
// i). out may alias in, since each write at column i only follows reads
// of columns >= 2*i, which a forward pass never revisits.
func portableHashParents(in *TransposedVectors, numParents int, key *CVWords, flags uint32, out TransposedSplit) {
	for i := 0; i < numParents; i++ {
		block := in.ParentNode(i)
		out.SetColumn(i, compress(key, &block, BlockLen, 0, flags|Parent))
	}
}

// portableXof emits len(out) pseudorandom bytes by repeatedly compressing
// the same (block, cv, flags) with an incrementing counter, in
// XOF-output form.
func portableXof(block *BlockBytes, blockLen uint32, cv *CVWords, counter uint64, flags uint32, out []byte) {
	for len(out) > 0 {
		full := compressRounds(cv, block, blockLen, counter, flags)
		var keystream [64]byte
		putWordsLE(keystream[:], full[:])
		n := copy(out, keystream[:])
		out = out[n:]
		counter++
	}
}

// portableXofXor is portableXof, but XORs the keystream into out instead
// of overwriting it.
func portableXofXor(block *BlockBytes, blockLen uint32, cv *CVWords, counter uint64, flags uint32, out []byte) {
	for len(out) > 0 {
		full := compressRounds(cv, block, blockLen, counter, flags)
		var keystream [64]byte
		putWordsLE(keystream[:], full[:])
		n := len(out)
		if n > 64 {
			n = 64
		}
		mem.XORInPlace(out[:n], keystream[:n])
		out = out[n:]
		counter++
	}
}

// portableUniversalHash reduces input to a 16-byte authenticator by
// compressing each 64-byte block (last one zero-padded) under key with
// KEYED_HASH|CHUNK_START|CHUNK_END|ROOT and XORing together the low 16
// bytes of every block's CV output.
func portableUniversalHash(input []byte, key *CVWords, counter uint64) [16]byte {
	var acc [16]byte
	flags := KeyedHash | ChunkStart | ChunkEnd | Root

	i := uint64(0)
	for len(input) > 0 {
		n := min(len(input), BlockLen)
		block := BlockFromBytes(input[:n])
		cv := compress(key, &block, uint32(n), counter+i, flags)
		cvBytes := BytesFromCV(&cv)
		mem.XORInPlace(acc[:], cvBytes[:len(acc)])
		input = input[n:]
		i++
	}
	return acc
}
