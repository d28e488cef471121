package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// ToGray converts img to an 8-bit grayscale plane whose bounds start at
// (0, 0).
//
// Luminance uses the ITU-R BT.601 weights (0.299 R + 0.587 G + 0.114 B) via
// disintegration/imaging. A *image.Gray that already starts at the origin
// is returned as is; callers must not mutate it.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}

	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+b.Dx()*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return out
}

// Matrix copies the gray plane into a row-major [y][x] float matrix on the
// 0–255 scale.
func Matrix(g *image.Gray) [][]float64 {
	b := g.Bounds()
	m := make([][]float64, b.Dy())
	for y := range m {
		m[y] = make([]float64, b.Dx())
		row := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := range m[y] {
			m[y][x] = float64(row[x])
		}
	}
	return m
}

// rgbaToGray keeps the red channel of an RGBA result. bild's filters return
// RGBA even for gray input; the three color channels stay equal.
func rgbaToGray(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src.Pix[off+x*4]
		}
	}
	return out
}
