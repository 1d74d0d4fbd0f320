// Package mem provides small byte-slice helpers with no architecture-specific
// fast path: the corpus's amd64/arm64 variants of these are assembly-backed,
// and no assembly is available here, so only the portable form is kept.
package mem

// XORInPlace sets dst[i] ^= src[i] for each i.
func XORInPlace(dst, src []byte) {
	for i, s := range src[:len(dst)] {
		dst[i] ^= s
	}
}
