//go:build !amd64 && !arm64

package guts

// MaxDegree is the widest lane count this target supports. Detect batches in
// pairs here only when the CPU reports one of the features detectDegree
// checks (AVX-512, AVX2, SSE2 or ASIMD); otherwise it selects the degree-1
// portable backend.
const MaxDegree = 2
