package hashtron

import "bytes"
import "encoding/json"
import "testing"

import "github.com/neurlang/pneumonia/hash"

func TestLearnAt(t *testing.T) {
	answers := map[uint32]bool{}
	for b := uint32(0); b < 1500; b++ {
		answers[b] = b%3 == 0 || b%7 == 1
	}
	h, err := Learn([][2]uint32{{7, 1500}}, answers)
	if err != nil {
		t.Fatal(err)
	}
	if h.LenTable() == 0 {
		t.Fatalf("empty filter")
	}
	for b, want := range answers {
		if h.At(b) != want {
			t.Errorf("At(%d) = %v", b, h.At(b))
		}
	}
}

func TestUntrained(t *testing.T) {
	h := MustNew([][2]uint32{{7, 20}}, nil)
	for b := uint32(0); b < 20; b++ {
		if h.At(b) {
			t.Errorf("untrained bucket %d answers true", b)
		}
	}
	if h.Forward(5, false) || !h.Forward(5, true) {
		t.Errorf("untrained Forward isn't false")
	}
}

func TestForward(t *testing.T) {
	b := hash.Hash(1000, 7, 64)
	h, err := Learn([][2]uint32{{7, 64}}, map[uint32]bool{b: true, (b + 1) % 64: false})
	if err != nil {
		t.Fatal(err)
	}
	if !h.Forward(1000, false) {
		t.Errorf("Forward(1000) = false")
	}
	if h.Forward(1000, true) {
		t.Errorf("negated Forward(1000) = true")
	}
}

func TestNewRejects(t *testing.T) {
	if _, err := New([][2]uint32{{1, 0}}, nil); err == nil {
		t.Errorf("zero modulo accepted")
	}
}

func FuzzHashtronSerialize(f *testing.F) {
	f.Add([]byte{1, 2, 3, 4}, uint16(9))
	f.Fuzz(func(t *testing.T, buffer []byte, buckets uint16) {
		if buckets == 0 {
			return
		}
		var program [][2]uint32
		for _, v := range buffer {
			program = append(program, [2]uint32{uint32(v) * 16777619, 1 << 16})
		}
		program = append(program, [2]uint32{uint32(len(buffer)), uint32(buckets)})
		answers := map[uint32]bool{}
		for i, v := range buffer {
			answers[uint32(v)*uint32(i+1)%uint32(buckets)] = i%2 == 0
		}
		tron, err := Learn(program, answers)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := tron.WriteJson(&buf); err != nil {
			t.Fatal(err)
		}
		var back Hashtron
		if err := back.ReadJson(json.NewDecoder(&buf)); err != nil {
			t.Fatal(err)
		}
		if back.Len() != tron.Len() {
			t.Fatalf("len mismatch: %d != %d", back.Len(), tron.Len())
		}
		for i := 0; i < tron.Len(); i++ {
			s0, m0 := tron.Get(i)
			s1, m1 := back.Get(i)
			if s0 != s1 || m0 != m1 {
				t.Fatalf("command %d: {%d,%d} != {%d,%d}", i, s1, m1, s0, m0)
			}
		}
		if !bytes.Equal(back.table, tron.table) {
			t.Fatalf("table mismatch")
		}
		for b := range answers {
			if back.At(b) != tron.At(b) {
				t.Fatalf("bucket %d answers differently after reading back", b)
			}
		}
	})
}
