package pipeline

import (
	"fmt"
	"os"
	"strconv"

	json "github.com/KevinWang15/go-json5"

	"github.com/ironsheep/solar-grid-mcp/internal/detection"
	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
	"github.com/ironsheep/solar-grid-mcp/internal/helio"
	"github.com/ironsheep/solar-grid-mcp/internal/render"
)

// Environment variables read by LoadOptions.
const (
	EnvDetector = "SOLAR_GRID_DETECTOR"
	EnvStep     = "SOLAR_GRID_STEP"
	EnvProfile  = "SOLAR_GRID_PROFILE"
)

// Options is everything a run needs besides the image. It doubles as the
// schema of a tuning profile.
type Options struct {
	// Detector is a strategy name accepted by detection.New.
	Detector string `json:"detector"`

	Hough   detection.HoughConfig   `json:"hough"`
	Contour detection.ContourConfig `json:"contour"`
	Grid    helio.GridConfig        `json:"grid"`
	Style   render.Style            `json:"style"`
}

// DefaultOptions uses the circle-fit detector with default tuning and a
// 10° grid.
func DefaultOptions() Options {
	return Options{
		Detector: detection.StrategyCircleFit,
		Hough:    detection.DefaultHoughConfig(),
		Contour:  detection.DefaultContourConfig(),
		Grid:     helio.DefaultGridConfig(),
		Style:    render.DefaultStyle(),
	}
}

// DetectionConfig returns the detector tuning in the form detection.New
// expects.
func (o Options) DetectionConfig() detection.Config {
	return detection.Config{Hough: o.Hough, Contour: o.Contour}
}

// NewDetector builds the configured detector.
func (o Options) NewDetector() (detection.Detector, error) {
	return detection.New(o.Detector, o.DetectionConfig())
}

// Validate checks every section so a bad profile fails before any image is
// read.
func (o Options) Validate() error {
	if _, err := o.NewDetector(); err != nil {
		return err
	}
	if err := o.Hough.Validate(); err != nil {
		return err
	}
	if err := o.Contour.Validate(); err != nil {
		return err
	}
	if err := o.Grid.Validate(); err != nil {
		return err
	}
	return o.Style.Normalize().Validate()
}

// ParseProfile overlays a JSON5 document onto DefaultOptions. Keys missing
// from the document keep their defaults, so a profile only needs the values
// it changes:
//
//	{
//	  // tighter radius search for a cropped full-disk image
//	  detector: "auto",
//	  hough: { min_radius_fraction: 0.4, max_radius_fraction: 0.5 },
//	  grid: { step_degrees: 15 },
//	}
func ParseProfile(data []byte) (Options, error) {
	opts := DefaultOptions()
	if err := json.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("%w: failed to parse profile: %v", geometry.ErrInvalidInput, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// LoadProfile reads and parses a JSON5 profile file.
func LoadProfile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read profile: %w", err)
	}
	opts, err := ParseProfile(data)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// LoadOptions resolves options from the environment: the profile named by
// SOLAR_GRID_PROFILE (or the defaults), then SOLAR_GRID_DETECTOR and
// SOLAR_GRID_STEP on top. getenv is usually os.Getenv.
func LoadOptions(getenv func(string) string) (Options, error) {
	opts := DefaultOptions()
	if path := getenv(EnvProfile); path != "" {
		var err error
		if opts, err = LoadProfile(path); err != nil {
			return Options{}, err
		}
	}
	return opts.WithEnv(getenv)
}

// WithEnv applies SOLAR_GRID_DETECTOR and SOLAR_GRID_STEP to o.
func (o Options) WithEnv(getenv func(string) string) (Options, error) {
	if v := getenv(EnvDetector); v != "" {
		o.Detector = v
	}
	if v := getenv(EnvStep); v != "" {
		step, err := strconv.Atoi(v)
		if err != nil {
			return Options{}, fmt.Errorf("%w: %s=%q is not an integer", geometry.ErrInvalidInput, EnvStep, v)
		}
		o.Grid.StepDegrees = step
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}
