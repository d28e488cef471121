package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/segment"
)

// OtsuThreshold picks the gray level that best separates g into a dark and a
// bright class.
//
// The level t maximizes the between-class variance w0·w1·(μ0 − μ1)², which is
// equivalent to minimizing the summed intra-class variance. Pixels <= t form
// the dark class.
//
// The second return value is false when no level separates anything, which
// happens when every pixel has the same value. The histogram is built with
// bild; for gray input its red channel is the intensity histogram.
func OtsuThreshold(g *image.Gray) (uint8, bool) {
	hist := histogram.NewRGBAHistogram(g)
	bins := hist.R.Bins

	var total, sumAll float64
	for level, n := range bins {
		total += float64(n)
		sumAll += float64(level) * float64(n)
	}
	if total == 0 {
		return 0, false
	}

	var (
		weightDark float64
		sumDark    float64
		best       float64
		bestLevel  = -1
	)
	for level := 0; level < len(bins)-1; level++ {
		weightDark += float64(bins[level])
		if weightDark == 0 {
			continue
		}
		weightBright := total - weightDark
		if weightBright == 0 {
			break
		}
		sumDark += float64(level) * float64(bins[level])
		meanDark := sumDark / weightDark
		meanBright := (sumAll - sumDark) / weightBright
		diff := meanDark - meanBright
		between := weightDark * weightBright * diff * diff
		if between > best {
			best = between
			bestLevel = level
		}
	}
	if bestLevel < 0 {
		return 0, false
	}
	return uint8(bestLevel), true
}

// Binarize returns a mask that is 255 where g > level and 0 elsewhere.
func Binarize(g *image.Gray, level uint8) *image.Gray {
	if level == 255 {
		return image.NewGray(image.Rect(0, 0, g.Bounds().Dx(), g.Bounds().Dy()))
	}
	// bild keeps values >= its level, so shift by one for a strict compare.
	return segment.Threshold(g, level+1)
}
