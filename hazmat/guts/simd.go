package guts

// simdHashChunks is the degree-D hash_chunks operation. Every SIMD backend
// in this module shares the portable per-chunk compression loop (see
// SPEC_FULL.md §4.C): what changes across degrees is how many chunks a
// caller batches into one call, not the arithmetic performed per chunk,
// which keeps every backend byte-identical to the portable oracle by
// construction rather than by a separately-maintained vector kernel.
func simdHashChunks(degree int, input []byte, key *CVWords, counter uint64, flags uint32, out TransposedSplit) {
	if len(input) > degree*ChunkLen {
		panic("guts: hash_chunks input exceeds degree*ChunkLen")
	}
	portableHashChunks(input, key, counter, flags, out)
}

// simdHashParents is the degree-D hash_parents operation, bounded to at
// most degree parent pairs per call.
func simdHashParents(degree int, in *TransposedVectors, numParents int, key *CVWords, flags uint32, out TransposedSplit) {
	if numParents > degree {
		panic("guts: hash_parents numParents exceeds degree")
	}
	portableHashParents(in, numParents, key, flags, out)
}
