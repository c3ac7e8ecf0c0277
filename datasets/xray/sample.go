package xray

// Side is the width and height of a down-sampled image
const Side = 32

// Levels is the number of grey levels kept after quantisation
const Levels = 16

// patch geometry read by Sample.Feature
const patchW, patchH = 4, 2

// Positions is the number of distinct patch positions a Sample exposes as features
const Positions = (Side - patchW + 1) * (Side - patchH + 1)

// Sample is one quantised image with its class index
type Sample struct {
	Pixels [Side * Side]byte
	Label  uint16
}

// Feature packs the 4x2 patch at position n (modulo Positions) into the low 16 bits,
// two bits per pixel, and the position into the high 16 bits.
func (s *Sample) Feature(n int) uint32 {
	n %= Positions
	if n < 0 {
		n += Positions
	}
	x := n % (Side - patchW + 1)
	y := n / (Side - patchW + 1)
	var o uint32
	for dy := 0; dy < patchH; dy++ {
		for dx := 0; dx < patchW; dx++ {
			o <<= 2
			o |= uint32(s.Pixels[(y+dy)*Side+x+dx] >> 2)
		}
	}
	return o | uint32(n)<<16
}

// Output returns the class index of the sample
func (s *Sample) Output() uint16 {
	return s.Label
}

// Flip returns the horizontally mirrored sample
func (s *Sample) Flip() (o Sample) {
	o.Label = s.Label
	for y := 0; y < Side; y++ {
		for x := 0; x < Side; x++ {
			o.Pixels[y*Side+x] = s.Pixels[y*Side+Side-1-x]
		}
	}
	return
}

// Shift returns the sample moved by dx pixels horizontally, repeating the edge column
func (s *Sample) Shift(dx int) (o Sample) {
	o.Label = s.Label
	for y := 0; y < Side; y++ {
		for x := 0; x < Side; x++ {
			sx := x - dx
			if sx < 0 {
				sx = 0
			}
			if sx >= Side {
				sx = Side - 1
			}
			o.Pixels[y*Side+x] = s.Pixels[y*Side+sx]
		}
	}
	return
}
