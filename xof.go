package blake3

import (
	"github.com/codahale/blake3go/hazmat/guts"
	"github.com/codahale/blake3go/internal/mem"
)

// output is the root compression's inputs: the chaining value, block,
// block length, and flags (ROOT already set) that every byte of output,
// whether the 32-byte hash or arbitrarily many XOF bytes, is derived
// from by varying only the compression counter.
type output struct {
	inputCV  guts.CVWords
	block    guts.BlockBytes
	blockLen uint32
	flags    uint32
}

// chainingValue is the root's CV-output form: the default 32-byte hash.
func (o output) chainingValue() [32]byte {
	cv := guts.Compress(&o.inputCV, &o.block, o.blockLen, 0, o.flags)
	return guts.BytesFromCV(&cv)
}

// fill writes len(out) keystream bytes starting at output-byte position
// into out.
func (o output) fill(out []byte, position uint64) {
	counter := position / guts.BlockLen
	skip := int(position % guts.BlockLen)
	if skip == 0 {
		guts.Xof(&o.block, o.blockLen, &o.inputCV, counter, o.flags, out)
		return
	}

	var first [guts.BlockLen]byte
	guts.Xof(&o.block, o.blockLen, &o.inputCV, counter, o.flags, first[:])
	n := copy(out, first[skip:])
	if n < len(out) {
		guts.Xof(&o.block, o.blockLen, &o.inputCV, counter+1, o.flags, out[n:])
	}
}

// fillXor is fill, but XORs the keystream into out instead of overwriting it.
func (o output) fillXor(out []byte, position uint64) {
	counter := position / guts.BlockLen
	skip := int(position % guts.BlockLen)
	if skip == 0 {
		guts.XofXor(&o.block, o.blockLen, &o.inputCV, counter, o.flags, out)
		return
	}

	var first [guts.BlockLen]byte
	guts.Xof(&o.block, o.blockLen, &o.inputCV, counter, o.flags, first[:])
	take := min(guts.BlockLen-skip, len(out))
	mem.XORInPlace(out[:take], first[skip:])
	if take < len(out) {
		guts.XofXor(&o.block, o.blockLen, &o.inputCV, counter+1, o.flags, out[take:])
	}
}

// XofReader produces BLAKE3's extendable output: an arbitrary-length
// pseudorandom keystream derived from a finalized root. It implements
// io.Reader for sequential squeezing, plus Fill/FillXOR for explicit,
// random-access positioning.
type XofReader struct {
	out      output
	position uint64
}

// SetPosition seeks the reader to the given byte offset into the
// keystream. Subsequent Fill/FillXOR/Read calls start from there.
func (r *XofReader) SetPosition(position uint64) {
	r.position = position
}

// Fill writes len(out) keystream bytes at the reader's current position
// into out, then advances the position by len(out).
func (r *XofReader) Fill(out []byte) {
	r.out.fill(out, r.position)
	r.position += uint64(len(out))
}

// FillXOR is Fill, but XORs the keystream into out instead of overwriting it.
func (r *XofReader) FillXOR(out []byte) {
	r.out.fillXor(out, r.position)
	r.position += uint64(len(out))
}

// Read implements io.Reader: it is Fill (which advances the position by
// len(p)), and never returns an error.
func (r *XofReader) Read(p []byte) (int, error) {
	r.Fill(p)
	return len(p), nil
}
