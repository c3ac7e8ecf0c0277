// Package hashtron implements a hashtron (hashed lookup classifier)
package hashtron

import "github.com/neurlang/quaternary"

// Hashtron represents individual hashtron (classifier) in memory. A feature is hashed through
// the (salt, modulo) program into a bucket; the learned quaternary filter answers each bucket.
type Hashtron struct {
	program [][2]uint32
	table   []byte
}

// Get gets the hashing command at position n
func (h Hashtron) Get(n int) (s uint32, max uint32) {
	return h.program[n][0], h.program[n][1]
}

// Len gets the number of hashing commands (size of hashtron program)
func (h Hashtron) Len() int {
	return len(h.program)
}

// LenTable gets the size of learned data in bytes (size of quaternary filter)
func (h Hashtron) LenTable() int {
	return len(h.table)
}

// Buckets reports the number of buckets, which is the modulo of the last command.
func (h Hashtron) Buckets() uint32 {
	if len(h.program) == 0 {
		return 0
	}
	return h.program[len(h.program)-1][1]
}

// At reads the learned answer of bucket b. An untrained hashtron answers false everywhere.
// Buckets the hashtron wasn't trained on answer arbitrarily.
func (h Hashtron) At(b uint32) bool {
	if len(h.table) == 0 {
		return false
	}
	return quaternary.Filter(h.table).GetUint32(b)
}
