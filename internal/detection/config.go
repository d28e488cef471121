package detection

import (
	"fmt"
	"math"

	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
)

// HoughConfig tunes CircleFitDetector. Fractions are relative to the image
// size so one profile serves images of any resolution.
type HoughConfig struct {
	// BlurKernel is the odd Gaussian kernel size applied before edge
	// detection to suppress granulation.
	BlurKernel int `json:"blur_kernel"`

	// BlurSigma is the Gaussian sigma; 0 derives it from BlurKernel.
	BlurSigma float64 `json:"blur_sigma"`

	// DP is the inverse accumulator resolution: 1 means one cell per pixel,
	// 2 means half resolution. Must be >= 1.
	DP float64 `json:"dp"`

	// MinDistFraction is the minimum distance between accepted centers as
	// a fraction of the image height.
	MinDistFraction float64 `json:"min_dist_fraction"`

	// MinRadiusFraction and MaxRadiusFraction bound the searched radius as
	// a fraction of the shorter image side.
	MinRadiusFraction float64 `json:"min_radius_fraction"`
	MaxRadiusFraction float64 `json:"max_radius_fraction"`

	// EdgeThreshold is the Canny high threshold; the low one is half of it.
	EdgeThreshold float64 `json:"edge_threshold"`

	// AccumulatorThreshold is the number of votes a center needs, and the
	// number of edge pixels its radius must be supported by.
	AccumulatorThreshold int `json:"accumulator_threshold"`

	// DisableRefine skips the least-squares refit to the limb edge pixels.
	DisableRefine bool `json:"disable_refine"`

	// RefineBand is the half-width in pixels of the band around the coarse
	// circle whose edge pixels feed the refit.
	RefineBand float64 `json:"refine_band"`
}

// DefaultHoughConfig matches the classic HoughCircles tuning for full-disk
// images: 9×9 blur with sigma 1.5, dp 1.2, centers at least half the image
// height apart, radius between 30% and 55% of the shorter side, Canny high
// threshold 100 and 30 accumulator votes.
func DefaultHoughConfig() HoughConfig {
	return HoughConfig{
		BlurKernel:           9,
		BlurSigma:            1.5,
		DP:                   1.2,
		MinDistFraction:      0.5,
		MinRadiusFraction:    0.3,
		MaxRadiusFraction:    0.55,
		EdgeThreshold:        100,
		AccumulatorThreshold: 30,
		RefineBand:           2,
	}
}

// Validate checks every field and wraps failures in geometry.ErrInvalidInput.
func (c HoughConfig) Validate() error {
	switch {
	case c.BlurKernel <= 0 || c.BlurKernel%2 == 0:
		return invalid("hough blur_kernel must be odd and positive, got %d", c.BlurKernel)
	case c.BlurSigma < 0:
		return invalid("hough blur_sigma must be >= 0, got %g", c.BlurSigma)
	case c.DP < 1:
		return invalid("hough dp must be >= 1, got %g", c.DP)
	case c.MinDistFraction <= 0:
		return invalid("hough min_dist_fraction must be > 0, got %g", c.MinDistFraction)
	case c.MinRadiusFraction <= 0 || c.MaxRadiusFraction < c.MinRadiusFraction:
		return invalid("hough radius fractions must satisfy 0 < min <= max, got %g..%g",
			c.MinRadiusFraction, c.MaxRadiusFraction)
	case c.EdgeThreshold <= 0:
		return invalid("hough edge_threshold must be > 0, got %g", c.EdgeThreshold)
	case c.AccumulatorThreshold < 1:
		return invalid("hough accumulator_threshold must be >= 1, got %d", c.AccumulatorThreshold)
	case !c.DisableRefine && c.RefineBand <= 0:
		return invalid("hough refine_band must be > 0 when refinement is enabled, got %g", c.RefineBand)
	}
	return nil
}

// radiusRange converts the radius fractions to whole pixels for an image.
func (c HoughConfig) radiusRange(width, height int) (int, int) {
	short := float64(min(width, height))
	minR := int(math.Ceil(short * c.MinRadiusFraction))
	maxR := int(short * c.MaxRadiusFraction)
	if minR < 1 {
		minR = 1
	}
	if maxR < minR {
		maxR = minR
	}
	return minR, maxR
}

// ContourConfig tunes ContourFitDetector.
type ContourConfig struct {
	// BlurKernel is the odd Gaussian kernel size applied before
	// thresholding.
	BlurKernel int `json:"blur_kernel"`

	// BlurSigma is the Gaussian sigma; 0 derives it from BlurKernel.
	BlurSigma float64 `json:"blur_sigma"`

	// CloseKernel is the odd size of the square structuring element used
	// to close gaps in the thresholded mask.
	CloseKernel int `json:"close_kernel"`

	// FixedThreshold replaces the automatic Otsu level when set; nil means
	// Otsu. Pixels strictly above it are foreground, so 0 keeps every
	// non-black pixel.
	FixedThreshold *int `json:"fixed_threshold,omitempty"`
}

// DefaultContourConfig returns an 11×11 blur, Otsu thresholding and a 7×7
// closing.
func DefaultContourConfig() ContourConfig {
	return ContourConfig{
		BlurKernel:  11,
		CloseKernel: 7,
	}
}

// Validate checks every field and wraps failures in geometry.ErrInvalidInput.
func (c ContourConfig) Validate() error {
	switch {
	case c.BlurKernel <= 0 || c.BlurKernel%2 == 0:
		return invalid("contour blur_kernel must be odd and positive, got %d", c.BlurKernel)
	case c.BlurSigma < 0:
		return invalid("contour blur_sigma must be >= 0, got %g", c.BlurSigma)
	case c.CloseKernel <= 0 || c.CloseKernel%2 == 0:
		return invalid("contour close_kernel must be odd and positive, got %d", c.CloseKernel)
	case c.FixedThreshold != nil && (*c.FixedThreshold < 0 || *c.FixedThreshold > 254):
		return invalid("contour fixed_threshold must be in 0..254, got %d", *c.FixedThreshold)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{geometry.ErrInvalidInput}, args...)...)
}
