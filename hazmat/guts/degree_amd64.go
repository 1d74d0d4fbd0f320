//go:build amd64

package guts

// MaxDegree is the widest SIMD lane count this target supports (AVX-512).
const MaxDegree = 16
