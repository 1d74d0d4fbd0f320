//go:build arm64

package guts

// MaxDegree is the widest SIMD lane count this target supports (NEON).
const MaxDegree = 4
