//go:build opencv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
)

// StrategyOpenCV is registered only in builds with the opencv tag.
const StrategyOpenCV = "opencv-hough"

func init() {
	strategies[StrategyOpenCV] = func(c Config) Detector {
		return &OpenCVDetector{Config: c.Hough}
	}
}

// OpenCVDetector runs OpenCV's HoughCircles (HOUGH_GRADIENT) through gocv
// with the same HoughConfig as CircleFitDetector. It exists to cross-check
// the pure Go detector against the reference implementation; the refine
// settings are ignored.
type OpenCVDetector struct {
	Config HoughConfig
}

// Name implements Detector.
func (d *OpenCVDetector) Name() string { return StrategyOpenCV }

// Detect implements Detector.
func (d *OpenCVDetector) Detect(img *image.Gray) (geometry.Disk, error) {
	cfg := d.Config
	if err := cfg.Validate(); err != nil {
		return geometry.Disk{}, err
	}
	gray, origin, err := prepare(img)
	if err != nil {
		return geometry.Disk{}, err
	}

	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return geometry.Disk{}, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer src.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	ksize := image.Point{X: cfg.BlurKernel, Y: cfg.BlurKernel}
	gocv.GaussianBlur(src, &blurred, ksize, cfg.BlurSigma, cfg.BlurSigma, gocv.BorderDefault)

	width, height := gray.Bounds().Dx(), gray.Bounds().Dy()
	minR, maxR := cfg.radiusRange(width, height)

	circles := gocv.NewMat()
	defer circles.Close()
	gocv.HoughCirclesWithParams(blurred, &circles, gocv.HoughGradient,
		cfg.DP, cfg.MinDistFraction*float64(height),
		cfg.EdgeThreshold, float64(cfg.AccumulatorThreshold),
		minR, maxR)

	if circles.Empty() || circles.Cols() == 0 {
		return geometry.Disk{}, failure("HoughCircles returned no circles")
	}

	v := circles.GetVecfAt(0, 0)
	disk, err := geometry.NewDisk(float64(v[0]), float64(v[1]), float64(v[2]))
	if err != nil {
		return geometry.Disk{}, failure("HoughCircles returned a degenerate circle: %v", err)
	}
	return disk.Translate(float64(origin.X), float64(origin.Y)), nil
}
