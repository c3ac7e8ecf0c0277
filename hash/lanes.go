package hash

import "github.com/klauspost/cpuid/v2"

var lanes = 1

func init() {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ):
		lanes = 16
	case cpuid.CPU.Supports(cpuid.AVX2):
		lanes = 8
	case cpuid.CPU.Supports(cpuid.SSE2), cpuid.CPU.Supports(cpuid.ASIMD):
		lanes = 4
	}
}

// Lanes reports the recommended number of hashes to compute together on this platform.
// Can't return 0.
func Lanes() int {
	return lanes
}

// Slice computes out[i] = Hash(n[i], s, max) for every i, in blocks of Lanes() values.
// The slices must have equal length.
func Slice(out []uint32, n []uint32, s uint32, max uint32) {
	if len(out) != len(n) {
		panic("hash: slice length mismatch")
	}
	for base := 0; base < len(out); base += lanes {
		end := base + lanes
		if end > len(out) {
			end = len(out)
		}
		block := out[base:end]
		in := n[base:end]
		for i := range block {
			block[i] = Hash(in[i], s, max)
		}
	}
}
