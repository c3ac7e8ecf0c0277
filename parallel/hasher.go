package parallel

import "crypto/sha256"
import "encoding/binary"
import "sync"

// Hasher fingerprints n uint16 values which may be written concurrently in any order.
// The sum only depends on the values and their positions.
type Hasher struct {
	mut     sync.Mutex
	data    []uint16
	written []bool
}

// NewUint16Hasher creates a hasher for n values
func NewUint16Hasher(n int) *Hasher {
	return &Hasher{
		data:    make([]uint16, n),
		written: make([]bool, n),
	}
}

// MustPutUint16 stores value at position n. It panics on a duplicate write.
func (h *Hasher) MustPutUint16(n int, value uint16) {
	h.mut.Lock()
	defer h.mut.Unlock()
	if h.written[n] {
		panic("duplicate write")
	}
	h.written[n] = true
	h.data[n] = value
}

// Sum returns the sha256 of all values in position order. Unwritten positions hash as 0xffff.
func (h *Hasher) Sum() (ret [32]byte) {
	h.mut.Lock()
	defer h.mut.Unlock()
	sha := sha256.New()
	var buf [2]byte
	for i, v := range h.data {
		if !h.written[i] {
			v = 0xffff
		}
		binary.LittleEndian.PutUint16(buf[:], v)
		sha.Write(buf[:])
	}
	copy(ret[:], sha.Sum(nil))
	return
}
