package xray

import "fmt"
import "image"
import "image/color"
import "io"
import "os"

import _ "image/jpeg"
import _ "image/png"

// Decode reads a jpeg or png image, converts it to grey, box down-samples it to Side x Side
// and quantises it to Levels grey levels.
func Decode(r io.Reader) (px [Side * Side]byte, err error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return px, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 1 || h < 1 {
		return px, fmt.Errorf("empty image %dx%d", w, h)
	}
	var sums [Side * Side]uint64
	var counts [Side * Side]uint64
	for y := 0; y < h; y++ {
		cy := y * Side / h
		for x := 0; x < w; x++ {
			cx := x * Side / w
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			sums[cy*Side+cx] += uint64(g.Y)
			counts[cy*Side+cx]++
		}
	}
	for i := range px {
		var mean uint64
		if counts[i] > 0 {
			mean = sums[i] / counts[i]
		} else {
			// upsampled image, borrow the source pixel covering this cell
			sx := (i%Side)*w/Side + b.Min.X
			sy := (i/Side)*h/Side + b.Min.Y
			mean = uint64(color.GrayModel.Convert(img.At(sx, sy)).(color.Gray).Y)
		}
		px[i] = byte(mean * Levels / 256)
	}
	return px, nil
}

// DecodeFile decodes the image stored at path
func DecodeFile(path string) ([Side * Side]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [Side * Side]byte{}, err
	}
	defer f.Close()
	px, err := Decode(f)
	if err != nil {
		return px, fmt.Errorf("decode %s: %w", path, err)
	}
	return px, nil
}
