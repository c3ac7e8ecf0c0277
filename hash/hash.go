// Package hash implements the fast modular hash used by the hashtron classifier
package hash

// Hash mixes n with salt s and reduces the result into the range 0 to max-1.
func Hash(n uint32, s uint32, max uint32) uint32 {
	// mixing stage, mix input with salt using subtraction
	var m = n - s

	// hashing stage, use xor shift with prime coefficients
	m ^= m << 2
	m ^= m << 3
	m ^= m >> 5
	m ^= m >> 7
	m ^= m << 11
	m ^= m << 13
	m ^= m >> 17
	m ^= m << 19

	// mixing stage 2, mix input with salt using addition
	m += s

	// modular stage, Lemire's multiply shift instead of a modulo
	// https://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
	return uint32((uint64(m) * uint64(max)) >> 32)
}

// Chain applies Hash for every (salt, modulo) command of program in order.
// An empty program returns n unchanged.
func Chain(n uint32, program [][2]uint32) uint32 {
	for _, cmd := range program {
		n = Hash(n, cmd[0], cmd[1])
	}
	return n
}
