package blake3

import (
	"hash"
	"io"
)

var _ hash.Hash = (*Hasher)(nil)

// Hash returns the 32-byte BLAKE3 hash of data.
func Hash(data []byte) [32]byte {
	h := New()
	_, _ = h.Write(data)
	return h.Finalize()
}

// KeyedHash returns the 32-byte BLAKE3 keyed hash of data under key, which
// must be exactly 32 bytes.
func KeyedHash(key, data []byte) ([32]byte, error) {
	h, err := NewKeyed(key)
	if err != nil {
		return [32]byte{}, err
	}
	_, _ = h.Write(data)
	return h.Finalize(), nil
}

// HashReader returns the 32-byte BLAKE3 hash of everything read from r,
// consuming it until EOF.
func HashReader(r io.Reader) ([32]byte, error) {
	h := New()
	if _, err := io.Copy(h, r); err != nil {
		return [32]byte{}, err
	}
	return h.Finalize(), nil
}

// DeriveKey derives a 32-byte key from context and keyMaterial, per
// BLAKE3's two-pass key derivation: context is hashed first to obtain a
// key, which then keys a hash of keyMaterial.
func DeriveKey(context string, keyMaterial []byte) [32]byte {
	h := NewDeriveKey(context)
	_, _ = h.Write(keyMaterial)
	return h.Finalize()
}
