package guts

import "math/bits"

// g applies the BLAKE3 quarter-round mixing function to four words of the
// working state, folding in two message words. Rotation constants match
// those of BLAKE2s (16, 12, 8, 7); only the round count and schedule differ.
func g(v *[16]uint32, a, b, c, d int, mx, my uint32) {
	v[a] = v[a] + v[b] + mx
	v[d] = bits.RotateLeft32(v[d]^v[a], -16)
	v[c] = v[c] + v[d]
	v[b] = bits.RotateLeft32(v[b]^v[c], -12)
	v[a] = v[a] + v[b] + my
	v[d] = bits.RotateLeft32(v[d]^v[a], -8)
	v[c] = v[c] + v[d]
	v[b] = bits.RotateLeft32(v[b]^v[c], -7)
}

// round applies one round of G to the columns, then to the diagonals, of
// the working state, using the message words in schedule order m.
func round(v *[16]uint32, m *BlockWords, schedule *[16]int) {
	var mw [16]uint32
	for i, idx := range schedule {
		mw[i] = m[idx]
	}
	g(v, 0, 4, 8, 12, mw[0], mw[1])
	g(v, 1, 5, 9, 13, mw[2], mw[3])
	g(v, 2, 6, 10, 14, mw[4], mw[5])
	g(v, 3, 7, 11, 15, mw[6], mw[7])
	g(v, 0, 5, 10, 15, mw[8], mw[9])
	g(v, 1, 6, 11, 12, mw[10], mw[11])
	g(v, 2, 7, 8, 13, mw[12], mw[13])
	g(v, 3, 4, 9, 14, mw[14], mw[15])
}

// compressRounds runs the 7-round BLAKE3 compression function and returns
// the full 16-word working state, already combined with the feed-forward
// XOR. The first 8 words are the CV-output form; all 16 are the
// XOF-output form.
func compressRounds(cv *CVWords, block *BlockBytes, blockLen uint32, counter uint64, flags uint32) [16]uint32 {
	m := WordsFromBlock(block)

	v := [16]uint32{
		cv[0], cv[1], cv[2], cv[3], cv[4], cv[5], cv[6], cv[7],
		IV[0], IV[1], IV[2], IV[3],
		uint32(counter), uint32(counter >> 32),
		blockLen, flags,
	}

	for r := range MsgSchedule {
		round(&v, &m, &MsgSchedule[r])
	}

	var out [16]uint32
	for i := 0; i < 8; i++ {
		out[i] = v[i] ^ v[i+8]
		out[i+8] = v[i+8] ^ cv[i]
	}
	return out
}

// compress runs the compression function and returns only the 8-word
// CV-output form.
func compress(cv *CVWords, block *BlockBytes, blockLen uint32, counter uint64, flags uint32) CVWords {
	full := compressRounds(cv, block, blockLen, counter, flags)
	var out CVWords
	copy(out[:], full[:8])
	return out
}
