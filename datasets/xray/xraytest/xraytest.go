// Package xraytest writes small synthetic chest_xray style trees for tests
package xraytest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Pattern paints a learnable texture for each class file name token
func Pattern(kind string, variant, x, y int) uint8 {
	switch kind {
	case "bacteria":
		return uint8(200 + (variant*7+x+y)%40)
	case "virus":
		if (x/4+y/4)%2 == 0 {
			return 230
		}
		return 20
	default:
		if x < 16 {
			return uint8(10 + variant%20)
		}
		return 90
	}
}

// Counts holds the number of NORMAL, bacteria and virus files of one split
type Counts [3]int

// Write creates root/<split>/{NORMAL,PNEUMONIA}/ with 32x32 png files
func Write(t testing.TB, root string, splits map[string]Counts) {
	t.Helper()
	for split, c := range splits {
		for kind, n := range map[string]int{"NORMAL": c[0], "bacteria": c[1], "virus": c[2]} {
			folder := "PNEUMONIA"
			if kind == "NORMAL" {
				folder = "NORMAL"
			}
			for i := 0; i < n; i++ {
				name := fmt.Sprintf("%s_person%d_%s_%d.png", split, i, kind, i)
				if kind == "NORMAL" {
					name = fmt.Sprintf("%s-IM-%04d.png", split, i)
				}
				writePNG(t, filepath.Join(root, split, folder, name), kind, i)
			}
		}
	}
}

func writePNG(t testing.TB, path, kind string, variant int) {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: Pattern(kind, variant, x, y)})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}
