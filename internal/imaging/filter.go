package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
)

// GaussianBlur smooths g with a ksize×ksize Gaussian kernel of the given
// sigma.
//
// The kernel is separable, so it is applied as a horizontal then a vertical
// 1-D pass through bild's convolution with edge-extended borders. A sigma
// of 0 derives one from the kernel size the same way OpenCV does:
// sigma = 0.3·((ksize−1)·0.5 − 1) + 0.8.
//
// ksize must be odd and positive. A ksize of 1 returns g unchanged.
func GaussianBlur(g *image.Gray, ksize int, sigma float64) (*image.Gray, error) {
	if ksize <= 0 || ksize%2 == 0 {
		return nil, fmt.Errorf("gaussian kernel size must be odd and positive, got %d", ksize)
	}
	if sigma < 0 {
		return nil, fmt.Errorf("gaussian sigma must be >= 0, got %g", sigma)
	}
	if ksize == 1 {
		return g, nil
	}
	if sigma == 0 {
		sigma = 0.3*(float64(ksize-1)*0.5-1) + 0.8
	}

	weights := GaussianKernel(ksize, sigma)
	horizontal := convolution.NewKernel(ksize, 1)
	vertical := convolution.NewKernel(1, ksize)
	copy(horizontal.Matrix, weights)
	copy(vertical.Matrix, weights)

	// A 0.5 bias rounds each pass instead of truncating it.
	opts := &convolution.Options{Bias: 0.5, Wrap: false}
	pass := convolution.Convolve(g, horizontal, opts)
	pass = convolution.Convolve(pass, vertical, opts)
	return rgbaToGray(pass), nil
}

// GaussianKernel returns the normalized 1-D Gaussian weights for an odd
// kernel length.
func GaussianKernel(ksize int, sigma float64) []float64 {
	weights := make([]float64, ksize)
	half := ksize / 2
	var sum float64
	for i := range weights {
		d := float64(i - half)
		weights[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// Close performs a morphological closing (dilation followed by erosion) of a
// binary mask with a square ksize×ksize structuring element. Any non-zero
// pixel counts as set; the result holds only 0 and 255.
//
// Closing fills gaps and notches narrower than the element without growing
// the overall outline, which is what the limb needs where prominences or
// noise break the thresholded disk edge.
//
// A square element is separable, so each operation runs as a horizontal then
// a vertical pass of running counts: linear in the pixel count whatever the
// element size. Borders replicate the edge pixels.
func Close(mask *image.Gray, ksize int) (*image.Gray, error) {
	if ksize <= 0 || ksize%2 == 0 {
		return nil, fmt.Errorf("structuring element size must be odd and positive, got %d", ksize)
	}
	if ksize == 1 {
		return mask, nil
	}

	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	set := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := mask.Pix[mask.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			set[y*w+x] = row[x] != 0
		}
	}

	half := ksize / 2
	rows := func(line, pos int) int { return line*w + pos }
	cols := func(line, pos int) int { return pos*w + line }
	for _, dilate := range [2]bool{true, false} {
		set = morphPass(set, h, w, rows, half, dilate)
		set = morphPass(set, w, h, cols, half, dilate)
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range set {
		if v {
			out.Pix[i] = 255
		}
	}
	return out, nil
}

// morphPass runs a 1-D dilation (any pixel set) or erosion (every pixel set)
// of width 2·half+1 along each of lines runs of length pixels; at maps a
// line and position to an index in src. Only in-bounds pixels count.
func morphPass(src []bool, lines, length int, at func(line, pos int) int, half int, dilate bool) []bool {
	dst := make([]bool, len(src))
	prefix := make([]int, length+1)
	for l := 0; l < lines; l++ {
		for p := 0; p < length; p++ {
			prefix[p+1] = prefix[p]
			if src[at(l, p)] {
				prefix[p+1]++
			}
		}
		for p := 0; p < length; p++ {
			lo, hi := max(0, p-half), min(length, p+half+1)
			n := prefix[hi] - prefix[lo]
			if dilate {
				dst[at(l, p)] = n > 0
			} else {
				dst[at(l, p)] = n == hi-lo
			}
		}
	}
	return dst
}
