package detection

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
)

// ErrDetectionFailure is returned when a detector finds no usable disk.
// Callers may retry with another strategy or other tuning; they must not
// continue with a placeholder Disk.
var ErrDetectionFailure = errors.New("solar disk not detected")

// Detector locates the solar disk in a grayscale image.
//
// Implementations are stateless apart from their configuration and may be
// shared between goroutines.
type Detector interface {
	// Detect returns the disk in the coordinate space of img.Bounds().
	// It fails with ErrDetectionFailure when no disk is found and with
	// geometry.ErrInvalidInput for empty images or invalid tuning.
	Detect(img *image.Gray) (geometry.Disk, error)

	// Name is the strategy name the detector is registered under.
	Name() string
}

// Strategy names accepted by New.
const (
	StrategyCircleFit  = "circle-fit"
	StrategyContourFit = "contour-fit"
	StrategyAuto       = "auto"
)

// Config carries the tuning for every strategy so a single value can be
// handed to New regardless of which strategy is selected.
type Config struct {
	Hough   HoughConfig   `json:"hough"`
	Contour ContourConfig `json:"contour"`
}

// DefaultConfig returns the default tuning for all strategies.
func DefaultConfig() Config {
	return Config{
		Hough:   DefaultHoughConfig(),
		Contour: DefaultContourConfig(),
	}
}

var strategies = map[string]func(Config) Detector{
	StrategyCircleFit: func(c Config) Detector {
		return NewCircleFitDetector(c.Hough)
	},
	StrategyContourFit: func(c Config) Detector {
		return NewContourFitDetector(c.Contour)
	},
	StrategyAuto: func(c Config) Detector {
		return Fallback{NewCircleFitDetector(c.Hough), NewContourFitDetector(c.Contour)}
	},
}

// New builds the detector registered under strategy. An empty strategy
// selects circle-fit.
func New(strategy string, cfg Config) (Detector, error) {
	if strategy == "" {
		strategy = StrategyCircleFit
	}
	ctor, ok := strategies[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: unknown detector strategy %q (available: %s)",
			geometry.ErrInvalidInput, strategy, strings.Join(Strategies(), ", "))
	}
	return ctor(cfg), nil
}

// Strategies lists the registered strategy names in sorted order.
func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fallback tries each detector in order and returns the first disk found.
//
// Only ErrDetectionFailure moves on to the next detector. Any other error,
// such as invalid input, is returned immediately.
type Fallback []Detector

// Name joins the member names with "|".
func (f Fallback) Name() string {
	names := make([]string, len(f))
	for i, d := range f {
		names[i] = d.Name()
	}
	return strings.Join(names, "|")
}

// Detect implements Detector.
func (f Fallback) Detect(img *image.Gray) (geometry.Disk, error) {
	disk, _, err := f.Resolve(img)
	return disk, err
}

// Resolve is Detect that also reports which member found the disk.
func (f Fallback) Resolve(img *image.Gray) (geometry.Disk, Detector, error) {
	if len(f) == 0 {
		return geometry.Disk{}, nil, fmt.Errorf("%w: empty fallback chain", geometry.ErrInvalidInput)
	}
	var failures []error
	for _, d := range f {
		disk, err := d.Detect(img)
		if err == nil {
			return disk, d, nil
		}
		if !errors.Is(err, ErrDetectionFailure) {
			return geometry.Disk{}, nil, err
		}
		failures = append(failures, fmt.Errorf("%s: %w", d.Name(), err))
	}
	return geometry.Disk{}, nil, errors.Join(failures...)
}

// Run detects the disk with d and returns the name of the strategy that
// produced it. For a Fallback that is the member that succeeded.
func Run(d Detector, img *image.Gray) (geometry.Disk, string, error) {
	if f, ok := d.(Fallback); ok {
		disk, member, err := f.Resolve(img)
		if err != nil {
			return geometry.Disk{}, "", err
		}
		return disk, member.Name(), nil
	}
	disk, err := d.Detect(img)
	if err != nil {
		return geometry.Disk{}, "", err
	}
	return disk, d.Name(), nil
}

// prepare validates img and returns it rebased to the origin along with the
// offset to add back to detected coordinates.
func prepare(img *image.Gray) (*image.Gray, image.Point, error) {
	if img == nil {
		return nil, image.Point{}, fmt.Errorf("%w: nil image", geometry.ErrInvalidInput)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, image.Point{}, fmt.Errorf("%w: image has zero size %dx%d", geometry.ErrInvalidInput, b.Dx(), b.Dy())
	}
	if b.Min == (image.Point{}) {
		return img, b.Min, nil
	}
	rebased := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(rebased.Pix[y*rebased.Stride:y*rebased.Stride+b.Dx()], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return rebased, b.Min, nil
}

func failure(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrDetectionFailure}, args...)...)
}
