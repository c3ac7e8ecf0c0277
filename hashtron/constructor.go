package hashtron

import "errors"
import "math/rand"

import "github.com/neurlang/quaternary"

// New creates a hashtron from a program and a learned quaternary filter. A nil program creates
// a single random salt command with two buckets; a nil table creates an untrained hashtron.
func New(program [][2]uint32, table []byte) (h *Hashtron, err error) {
	h = new(Hashtron)
	if program == nil {
		program = [][2]uint32{{rand.Uint32() >> 1, 2}}
	}
	for _, cmd := range program {
		if cmd[1] == 0 {
			return nil, errors.New("hashtron: zero modulo in program")
		}
	}
	h.program = program
	h.table = table
	return
}

// MustNew is like New but panics on error.
func MustNew(program [][2]uint32, table []byte) *Hashtron {
	h, err := New(program, table)
	if err != nil {
		panic(err.Error())
	}
	return h
}

// Learn creates a hashtron answering answers[b] for every bucket b the program hashes into.
func Learn(program [][2]uint32, answers map[uint32]bool) (*Hashtron, error) {
	return New(program, quaternary.Make(answers))
}
