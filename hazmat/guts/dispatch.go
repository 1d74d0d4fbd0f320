package guts

import (
	"sync/atomic"

	"github.com/klauspost/cpuid/v2"
)

type (
	compressFn      func(cv *CVWords, block *BlockBytes, blockLen uint32, counter uint64, flags uint32) CVWords
	hashChunksFn    func(input []byte, key *CVWords, counter uint64, flags uint32, out TransposedSplit)
	hashParentsFn   func(in *TransposedVectors, numParents int, key *CVWords, flags uint32, out TransposedSplit)
	xofFn           func(block *BlockBytes, blockLen uint32, cv *CVWords, counter uint64, flags uint32, out []byte)
	universalHashFn func(input []byte, key *CVWords, counter uint64) [16]byte
)

// Implementation is a resolved, self-consistent set of backend operations:
// a degree and the seven operations of §4.D that all assume that degree.
// The zero value is not usable; construct one with Portable or Detect.
type Implementation struct {
	degreeFn        func() int
	compressFn      compressFn
	hashChunksFn    hashChunksFn
	hashParentsFn   hashParentsFn
	xofFn           xofFn
	xofXorFn        xofFn
	universalHashFn universalHashFn
}

// Degree reports how many chunks or parents this implementation processes
// per hash_chunks / hash_parents call.
func (impl *Implementation) Degree() int { return impl.degreeFn() }

// Compress runs the compression primitive, returning its CV-output form.
func (impl *Implementation) Compress(cv *CVWords, block *BlockBytes, blockLen uint32, counter uint64, flags uint32) CVWords {
	return impl.compressFn(cv, block, blockLen, counter, flags)
}

// HashChunks compresses the complete chunks in input into out, starting at
// out's column 0. len(input) must not exceed Degree()*ChunkLen.
func (impl *Implementation) HashChunks(input []byte, key *CVWords, counter uint64, flags uint32, out TransposedSplit) {
	impl.hashChunksFn(input, key, counter, flags, out)
}

// HashParents reduces numCVs sibling chaining values in in to parent
// chaining values in out. If numCVs is odd, the trailing chaining value is
// promoted to out unchanged rather than paired. Returns the number of
// chaining values written to out.
func (impl *Implementation) HashParents(in *TransposedVectors, numCVs int, key *CVWords, flags uint32, out TransposedSplit) int {
	numParents := numCVs / 2
	if numParents > 0 {
		impl.hashParentsFn(in, numParents, key, flags, out)
	}
	if numCVs%2 == 1 {
		out.SetColumn(numParents, in.Column(numCVs-1))
		return numParents + 1
	}
	return numParents
}

// ReduceParents is HashParents with the output aliased onto the input
// buffer, halving (rounding up) its live column count in place.
func (impl *Implementation) ReduceParents(inOut *TransposedVectors, numCVs int, key *CVWords, flags uint32) int {
	out := TransposedSplit{vectors: inOut, offset: 0}
	return impl.HashParents(inOut, numCVs, key, flags, out)
}

// Xof writes len(out) bytes of keystream, starting at block counter
// counter, into out.
func (impl *Implementation) Xof(block *BlockBytes, blockLen uint32, cv *CVWords, counter uint64, flags uint32, out []byte) {
	impl.xofFn(block, blockLen, cv, counter, flags, out)
}

// XofXor is Xof, but XORs the keystream into out instead of overwriting it.
func (impl *Implementation) XofXor(block *BlockBytes, blockLen uint32, cv *CVWords, counter uint64, flags uint32, out []byte) {
	impl.xofXorFn(block, blockLen, cv, counter, flags, out)
}

// UniversalHash computes BLAKE3's keyed, block-wise-XOR 16-byte reduction
// of input.
func (impl *Implementation) UniversalHash(input []byte, key *CVWords, counter uint64) [16]byte {
	return impl.universalHashFn(input, key, counter)
}

// Portable returns the scalar, degree-1 implementation. It bypasses CPU
// detection entirely, for tests that need a fixed correctness oracle and
// for callers that want to pin a backend explicitly.
func Portable() Implementation {
	return Implementation{
		degreeFn:        func() int { return portableDegree },
		compressFn:      compress,
		hashChunksFn:    portableHashChunks,
		hashParentsFn:   portableHashParents,
		xofFn:           portableXof,
		xofXorFn:        portableXofXor,
		universalHashFn: portableUniversalHash,
	}
}

// Detect probes the host's CPU features and returns the widest
// implementation it supports, capped at MaxDegree for the build target.
func Detect() Implementation {
	degree := detectDegree()
	if degree <= 1 {
		return Portable()
	}
	return Implementation{
		degreeFn:   func() int { return degree },
		compressFn: compress,
		hashChunksFn: func(input []byte, key *CVWords, counter uint64, flags uint32, out TransposedSplit) {
			simdHashChunks(degree, input, key, counter, flags, out)
		},
		hashParentsFn: func(in *TransposedVectors, numParents int, key *CVWords, flags uint32, out TransposedSplit) {
			simdHashParents(degree, in, numParents, key, flags, out)
		},
		xofFn:           portableXof,
		xofXorFn:        portableXofXor,
		universalHashFn: portableUniversalHash,
	}
}

// detectDegree picks the widest batch width the host CPU's feature bits
// support, the same cpuid.CPU.Has cascade hazmat/keccak uses to elect its
// own Lanes value, capped at MaxDegree.
func detectDegree() int {
	degree := 1
	switch {
	case cpuid.CPU.Has(cpuid.AVX512F) && cpuid.CPU.Has(cpuid.AVX512VL):
		degree = 16
	case cpuid.CPU.Has(cpuid.AVX2):
		degree = 8
	case cpuid.CPU.Has(cpuid.SSE2):
		degree = 4
	case cpuid.CPU.Has(cpuid.ASIMD):
		degree = 4
	}
	if degree > MaxDegree {
		degree = MaxDegree
	}
	return degree
}

// global is the process-wide dispatch table. It starts out pointing at a
// set of trampolines; the first call through any of them resolves the real
// implementation, stores it here, and forwards the call. The store is
// idempotent, so a race between two first calls is harmless: both
// resolvers compute the same Implementation and store equivalent values.
var global atomic.Pointer[Implementation]

func init() {
	global.Store(&Implementation{
		degreeFn:        trampolineDegree,
		compressFn:      trampolineCompress,
		hashChunksFn:    trampolineHashChunks,
		hashParentsFn:   trampolineHashParents,
		xofFn:           trampolineXof,
		xofXorFn:        trampolineXofXor,
		universalHashFn: trampolineUniversalHash,
	})
}

func resolve() *Implementation {
	impl := Detect()
	global.Store(&impl)
	return &impl
}

func trampolineDegree() int { return resolve().Degree() }

func trampolineCompress(cv *CVWords, block *BlockBytes, blockLen uint32, counter uint64, flags uint32) CVWords {
	return resolve().Compress(cv, block, blockLen, counter, flags)
}

func trampolineHashChunks(input []byte, key *CVWords, counter uint64, flags uint32, out TransposedSplit) {
	resolve().HashChunks(input, key, counter, flags, out)
}

func trampolineHashParents(in *TransposedVectors, numParents int, key *CVWords, flags uint32, out TransposedSplit) {
	resolve().hashParentsFn(in, numParents, key, flags, out)
}

func trampolineXof(block *BlockBytes, blockLen uint32, cv *CVWords, counter uint64, flags uint32, out []byte) {
	resolve().Xof(block, blockLen, cv, counter, flags, out)
}

func trampolineXofXor(block *BlockBytes, blockLen uint32, cv *CVWords, counter uint64, flags uint32, out []byte) {
	resolve().XofXor(block, blockLen, cv, counter, flags, out)
}

func trampolineUniversalHash(input []byte, key *CVWords, counter uint64) [16]byte {
	return resolve().UniversalHash(input, key, counter)
}

// Current returns the process-wide dispatch table. Calling Current does not
// itself run detection: until the first call through one of the table's
// operations, it holds the trampolines, and that first call resolves it.
func Current() *Implementation { return global.Load() }

// Degree reports Current().Degree().
func Degree() int { return Current().Degree() }

// Compress runs Current().Compress.
func Compress(cv *CVWords, block *BlockBytes, blockLen uint32, counter uint64, flags uint32) CVWords {
	return Current().Compress(cv, block, blockLen, counter, flags)
}

// HashChunks runs Current().HashChunks.
func HashChunks(input []byte, key *CVWords, counter uint64, flags uint32, out TransposedSplit) {
	Current().HashChunks(input, key, counter, flags, out)
}

// HashParents runs Current().HashParents.
func HashParents(in *TransposedVectors, numCVs int, key *CVWords, flags uint32, out TransposedSplit) int {
	return Current().HashParents(in, numCVs, key, flags, out)
}

// ReduceParents runs Current().ReduceParents.
func ReduceParents(inOut *TransposedVectors, numCVs int, key *CVWords, flags uint32) int {
	return Current().ReduceParents(inOut, numCVs, key, flags)
}

// Xof runs Current().Xof.
func Xof(block *BlockBytes, blockLen uint32, cv *CVWords, counter uint64, flags uint32, out []byte) {
	Current().Xof(block, blockLen, cv, counter, flags, out)
}

// XofXor runs Current().XofXor.
func XofXor(block *BlockBytes, blockLen uint32, cv *CVWords, counter uint64, flags uint32, out []byte) {
	Current().XofXor(block, blockLen, cv, counter, flags, out)
}

// UniversalHash runs Current().UniversalHash.
func UniversalHash(input []byte, key *CVWords, counter uint64) [16]byte {
	return Current().UniversalHash(input, key, counter)
}
